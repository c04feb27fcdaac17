package types

// ClinicalLevel orders intervention urgency, highest priority first.
type ClinicalLevel string

const (
	ClinicalStabilize  ClinicalLevel = "STABILIZE"
	ClinicalDeEscalate ClinicalLevel = "DE_ESCALATE"
	ClinicalDirect     ClinicalLevel = "DIRECT"
	ClinicalSupport    ClinicalLevel = "SUPPORT"
	ClinicalFlourish   ClinicalLevel = "FLOURISH"
)

// ClinicalLevels in priority order; index position is the sort key.
var ClinicalLevels = []ClinicalLevel{
	ClinicalStabilize,
	ClinicalDeEscalate,
	ClinicalDirect,
	ClinicalSupport,
	ClinicalFlourish,
}

// PriorityIndex returns the level's position in the clinical ordering, or
// len(ClinicalLevels) for an unknown level so it sorts last.
func (l ClinicalLevel) PriorityIndex() int {
	for i, level := range ClinicalLevels {
		if level == l {
			return i
		}
	}
	return len(ClinicalLevels)
}

// InterventionStrategies is the fixed 1:1 level -> strategy mapping.
var InterventionStrategies = map[ClinicalLevel]string{
	ClinicalStabilize:  "Safety First",
	ClinicalDeEscalate: "Co-Regulation",
	ClinicalDirect:     "Effective Commands",
	ClinicalSupport:    "Child-Led Connection",
	ClinicalFlourish:   "Enrichment Play",
}
