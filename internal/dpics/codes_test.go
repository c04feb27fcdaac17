package dpics

import "testing"

func TestDisplayLabelsCoverVocabulary(t *testing.T) {
	for _, code := range AllCodes {
		if _, ok := DisplayLabel(code); !ok {
			t.Fatalf("code %q has no display label", code)
		}
	}
	if len(displayLabels) != len(AllCodes) {
		t.Fatalf("display map has %d entries, vocabulary has %d", len(displayLabels), len(AllCodes))
	}
}

func TestDisplayLabelUnknownCode(t *testing.T) {
	if _, ok := DisplayLabel(Code("made_up")); ok {
		t.Fatalf("expected no label for out-of-vocabulary code")
	}
}

func TestDisplayLabelManyToOne(t *testing.T) {
	a, _ := DisplayLabel(CodeReflection)
	b, _ := DisplayLabel(CodeReflectiveQuestion)
	if a != LabelEcho || b != LabelEcho {
		t.Fatalf("reflection codes should both display as Echo, got %q and %q", a, b)
	}
}

func TestCountTags(t *testing.T) {
	codes := []Code{
		CodeLabeledPraise, CodeUnlabeledPraise,
		CodeReflection, CodeReflectiveQuestion,
		CodeBehaviorDescription,
		CodeQuestion,
		CodeNegativeTalk,
		CodeDirectCommand, CodeIndirectCommand, CodeVagueCommand, CodeChainedCommand,
		CodeSilentSlot,
		Code("out_of_vocab"),
	}
	tc := CountTags(codes)
	if tc.Praise != 2 || tc.Echo != 2 || tc.Narration != 1 {
		t.Fatalf("unexpected skill counts: %+v", tc)
	}
	if tc.Question != 1 || tc.Criticism != 1 || tc.Command != 4 {
		t.Fatalf("unexpected negative counts: %+v", tc)
	}
	if tc.DirectCommand != 1 || tc.IndirectCommand != 1 || tc.VagueCommand != 1 || tc.ChainedCommand != 1 {
		t.Fatalf("unexpected command breakdown: %+v", tc)
	}
	if tc.TotalNegatives() != 6 {
		t.Fatalf("expected 6 negatives, got %d", tc.TotalNegatives())
	}
	if tc.TotalCommands() != 4 {
		t.Fatalf("expected 4 commands, got %d", tc.TotalCommands())
	}
}
