package dpics

// Code is one entry of the closed DPICS-style behavior vocabulary attached to
// utterances by the tagging stage.
type Code string

const (
	CodeReflection             Code = "reflection"
	CodeReflectiveQuestion     Code = "reflective_question"
	CodeLabeledPraise          Code = "labeled_praise"
	CodeUnlabeledPraise        Code = "unlabeled_praise"
	CodeBehaviorDescription    Code = "behavior_description"
	CodeDirectCommand          Code = "direct_command"
	CodeIndirectCommand        Code = "indirect_command"
	CodeVagueCommand           Code = "vague_command"
	CodeChainedCommand         Code = "chained_command"
	CodeQuestion               Code = "question"
	CodeNegativeTalk           Code = "negative_talk"
	CodeInformationDescription Code = "information_description"
	CodeAcknowledgement        Code = "acknowledgement"
	CodeSilentSlot             Code = "silent_slot"
)

// AllCodes lists the full vocabulary. The display map must cover every entry;
// codes_test.go enforces that.
var AllCodes = []Code{
	CodeReflection,
	CodeReflectiveQuestion,
	CodeLabeledPraise,
	CodeUnlabeledPraise,
	CodeBehaviorDescription,
	CodeDirectCommand,
	CodeIndirectCommand,
	CodeVagueCommand,
	CodeChainedCommand,
	CodeQuestion,
	CodeNegativeTalk,
	CodeInformationDescription,
	CodeAcknowledgement,
	CodeSilentSlot,
}

const (
	LabelEcho        = "Echo"
	LabelPraise      = "Praise"
	LabelNarration   = "Narration"
	LabelCommand     = "Command"
	LabelQuestion    = "Question"
	LabelCriticism   = "Criticism"
	LabelTalk        = "Talk"
	LabelAcknowledge = "Acknowledge"
	LabelSilence     = "Silence"
)

// displayLabels collapses several codes onto one coaching-facing label.
var displayLabels = map[Code]string{
	CodeReflection:             LabelEcho,
	CodeReflectiveQuestion:     LabelEcho,
	CodeLabeledPraise:          LabelPraise,
	CodeUnlabeledPraise:        LabelPraise,
	CodeBehaviorDescription:    LabelNarration,
	CodeDirectCommand:          LabelCommand,
	CodeIndirectCommand:        LabelCommand,
	CodeVagueCommand:           LabelCommand,
	CodeChainedCommand:         LabelCommand,
	CodeQuestion:               LabelQuestion,
	CodeNegativeTalk:           LabelCriticism,
	CodeInformationDescription: LabelTalk,
	CodeAcknowledgement:        LabelAcknowledge,
	CodeSilentSlot:             LabelSilence,
}

// DisplayLabel returns the coaching label for a code. Codes outside the
// vocabulary return ok=false and are stored with a null display tag.
func DisplayLabel(code Code) (string, bool) {
	label, ok := displayLabels[code]
	return label, ok
}

// Known reports whether code belongs to the closed vocabulary.
func Known(code Code) bool {
	_, ok := displayLabels[code]
	return ok
}

// TagCounts aggregates one session's behavior codes into the categories the
// scoring engine consumes. Derived from utterances, never persisted on its own.
type TagCounts struct {
	Praise    int
	Echo      int
	Narration int
	Question  int
	Command   int
	Criticism int

	DirectCommand   int
	IndirectCommand int
	VagueCommand    int
	ChainedCommand  int
}

// TotalNegatives is the CDI damage denominator: questions, commands and
// criticism all count against the caregiver in child-directed play.
func (tc TagCounts) TotalNegatives() int {
	return tc.Question + tc.Command + tc.Criticism
}

// TotalCommands is the PDI effectiveness denominator.
func (tc TagCounts) TotalCommands() int {
	return tc.DirectCommand + tc.IndirectCommand + tc.VagueCommand + tc.ChainedCommand
}

// CountTags folds a session's codes into TagCounts. Silent slots and unknown
// codes contribute nothing.
func CountTags(codes []Code) TagCounts {
	var tc TagCounts
	for _, code := range codes {
		switch code {
		case CodeLabeledPraise, CodeUnlabeledPraise:
			tc.Praise++
		case CodeReflection, CodeReflectiveQuestion:
			tc.Echo++
		case CodeBehaviorDescription:
			tc.Narration++
		case CodeQuestion:
			tc.Question++
		case CodeNegativeTalk:
			tc.Criticism++
		case CodeDirectCommand:
			tc.Command++
			tc.DirectCommand++
		case CodeIndirectCommand:
			tc.Command++
			tc.IndirectCommand++
		case CodeVagueCommand:
			tc.Command++
			tc.VagueCommand++
		case CodeChainedCommand:
			tc.Command++
			tc.ChainedCommand++
		}
	}
	return tc
}
