package services

import (
	"testing"

	"github.com/playnest/playnest-backend/internal/dpics"
	"github.com/playnest/playnest-backend/internal/types"
)

func TestScoreCDIPerfectSession(t *testing.T) {
	tc := dpics.TagCounts{Praise: 10, Echo: 10, Narration: 10}
	score, passed := ScoreCDI(tc)
	if !passed {
		t.Fatalf("expected pass")
	}
	if score != 100 {
		t.Fatalf("expected 100, got %d", score)
	}
}

func TestScoreCDIBelowSkillFloorCapsAt89(t *testing.T) {
	tc := dpics.TagCounts{Praise: 5, Echo: 5, Narration: 5, Question: 2, Command: 1}
	score, passed := ScoreCDI(tc)
	if passed {
		t.Fatalf("expected fail: skills below 10")
	}
	if score > 89 {
		t.Fatalf("failed session must cap at 89, got %d", score)
	}
	// shield = 15 * 4/3 = 20; damage = 3 * 10/3 = 10; raw = 60 + 20 - 10 = 70
	if score != 70 {
		t.Fatalf("expected 70, got %d", score)
	}
}

func TestScoreCDIExcessSkillsCapped(t *testing.T) {
	tc := dpics.TagCounts{Praise: 25, Echo: 30, Narration: 12}
	score, passed := ScoreCDI(tc)
	if !passed {
		t.Fatalf("expected pass")
	}
	if score != 100 {
		t.Fatalf("capped skills still max the shield, got %d", score)
	}
}

func TestScoreCDIShieldBreak(t *testing.T) {
	// shield = 40, hitsToBreak = 12; negatives beyond that chip the base 1:1.
	tc := dpics.TagCounts{Praise: 10, Echo: 10, Narration: 10, Question: 20}
	score, passed := ScoreCDI(tc)
	if passed {
		t.Fatalf("20 negatives cannot pass")
	}
	// raw = 60 - (20 - 12) = 52
	if score != 52 {
		t.Fatalf("expected 52, got %d", score)
	}
}

func TestScoreCDINeverNegative(t *testing.T) {
	tc := dpics.TagCounts{Question: 100, Command: 100, Criticism: 100}
	score, passed := ScoreCDI(tc)
	if passed {
		t.Fatalf("expected fail")
	}
	if score != 0 {
		t.Fatalf("floor is 0, got %d", score)
	}
}

func TestScoreCDIPassGateOnRawCounts(t *testing.T) {
	// Capped skills still pass the gate on raw counts; 4 negatives fail it.
	tc := dpics.TagCounts{Praise: 10, Echo: 10, Narration: 10, Question: 4}
	_, passed := ScoreCDI(tc)
	if passed {
		t.Fatalf("4 negatives must fail the gate")
	}
	tc.Question = 3
	_, passed = ScoreCDI(tc)
	if !passed {
		t.Fatalf("3 negatives with full skills must pass")
	}
}

func TestScoreCDIDeterministic(t *testing.T) {
	tc := dpics.TagCounts{Praise: 7, Echo: 9, Narration: 11, Question: 2, Criticism: 1}
	a, ap := ScoreCDI(tc)
	for i := 0; i < 50; i++ {
		b, bp := ScoreCDI(tc)
		if a != b || ap != bp {
			t.Fatalf("nondeterministic score: %d/%v vs %d/%v", a, ap, b, bp)
		}
	}
	if a < 0 || a > 100 {
		t.Fatalf("score out of range: %d", a)
	}
}

func TestScorePDIEffectiveness(t *testing.T) {
	tc := dpics.TagCounts{DirectCommand: 8, IndirectCommand: 1, VagueCommand: 1}
	score, passed := ScorePDI(tc)
	if score != 80 {
		t.Fatalf("expected 80, got %d", score)
	}
	if !passed {
		t.Fatalf("80 >= 75 must pass")
	}
}

func TestScorePDINoCommands(t *testing.T) {
	score, passed := ScorePDI(dpics.TagCounts{})
	if score != 0 || passed {
		t.Fatalf("zero commands is score 0, fail; got %d/%v", score, passed)
	}
}

func TestScorePDIBoundary(t *testing.T) {
	tc := dpics.TagCounts{DirectCommand: 3, IndirectCommand: 1}
	score, passed := ScorePDI(tc)
	if score != 75 || !passed {
		t.Fatalf("expected 75/pass, got %d/%v", score, passed)
	}
}

func TestScoreDispatch(t *testing.T) {
	if _, _, err := Score(types.SessionModeCDI, dpics.TagCounts{}); err != nil {
		t.Fatalf("CDI dispatch: %v", err)
	}
	if _, _, err := Score(types.SessionModePDI, dpics.TagCounts{}); err != nil {
		t.Fatalf("PDI dispatch: %v", err)
	}
	if _, _, err := Score("TDI", dpics.TagCounts{}); err == nil {
		t.Fatalf("unknown mode must error")
	}
}
