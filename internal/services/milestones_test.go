package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/playnest/playnest-backend/internal/logger"
	"github.com/playnest/playnest-backend/internal/types"
)

func testLibrary() *fakeLibraryRepo {
	return &fakeLibraryRepo{entries: []*types.MilestoneLibraryEntry{
		{Key: "gm_walks_alone", Category: types.MilestoneDomainGrossMotor, StageLabel: "Walks alone", MedianAgeMonths: 13, ThresholdValue: 3, Tip: "Clear a safe path."},
		{Key: "lang_two_word_phrases", Category: types.MilestoneDomainLanguage, StageLabel: "Two-word phrases", MedianAgeMonths: 21, ThresholdValue: 4, Tip: "Expand what they say."},
		{Key: "se_names_feelings", Category: types.MilestoneDomainSocialEmotional, StageLabel: "Names feelings", MedianAgeMonths: 36, ThresholdValue: 5, Tip: "Label emotions aloud."},
	}}
}

type milestoneFixture struct {
	svc        *milestonesService
	classifier *fakeClassifier
	sessions   *fakeSessionRepo
	milestones *fakeChildMilestoneRepo
	session    *types.Session
	child      *types.Child
}

func newMilestoneFixture(t *testing.T, firstProfiling bool) *milestoneFixture {
	t.Helper()
	birthYear := 2024
	child := &types.Child{ID: uuid.New(), Name: "Iris", BirthYear: &birthYear}
	session := &types.Session{ID: uuid.New(), ChildID: child.ID, Mode: types.SessionModeCDI, Status: types.SessionStatusProcessed}
	sessions := newFakeSessionRepo(session)
	if !firstProfiling {
		profiledAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
		earlier := &types.Session{ID: uuid.New(), ChildID: child.ID, ProfiledAt: &profiledAt}
		sessions.sessions[earlier.ID] = earlier
	}
	classifier := &fakeClassifier{}
	milestones := &fakeChildMilestoneRepo{}
	svc := NewMilestonesService(newTestGorm(t), logger.Nop(), classifier, sessions, newFakeChildRepo(child), testLibrary(), milestones).(*milestonesService)
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }
	return &milestoneFixture{svc: svc, classifier: classifier, sessions: sessions, milestones: milestones, session: session, child: child}
}

func TestRunProfilingCreatesEmerging(t *testing.T) {
	fx := newMilestoneFixture(t, false)
	fx.classifier.matched = []string{"gm_walks_alone"}

	result, err := fx.svc.RunProfiling(context.Background(), fx.session.ID, "took several unassisted steps")
	if err != nil {
		t.Fatalf("RunProfiling: %v", err)
	}
	if result.NewlyEmerging != 1 || result.NewlyAchieved != 0 {
		t.Fatalf("counts = %d emerging, %d achieved", result.NewlyEmerging, result.NewlyAchieved)
	}
	row := fx.milestones.byKey("gm_walks_alone")
	if row == nil || row.Status != types.MilestoneStatusEmerging {
		t.Fatalf("milestone row = %+v", row)
	}
	if !row.FirstObservedAt.Equal(fx.svc.now()) {
		t.Fatalf("first observed at = %v", row.FirstObservedAt)
	}
	if len(result.Celebrations) != 1 || result.Celebrations[0].Status != types.MilestoneStatusEmerging {
		t.Fatalf("celebrations = %+v", result.Celebrations)
	}
	if fx.sessions.sessions[fx.session.ID].ProfiledAt == nil {
		t.Fatal("session not marked profiled")
	}
	if fx.classifier.baselineRuns != 0 {
		t.Fatal("baseline should not run after the first profiling session")
	}
}

// The threshold comparison is strict: a milestone observed again advances
// only once the number of sessions since first observation exceeds the
// library threshold.
func TestRunProfilingThresholdIsStrict(t *testing.T) {
	for _, tc := range []struct {
		sessionsSince int64
		wantAchieved  int
	}{
		{sessionsSince: 3, wantAchieved: 0},
		{sessionsSince: 4, wantAchieved: 1},
	} {
		fx := newMilestoneFixture(t, false)
		fx.classifier.matched = []string{"gm_walks_alone"}
		fx.sessions.sessionsSince = tc.sessionsSince
		fx.milestones.rows = []*types.ChildMilestone{{
			ID:              uuid.New(),
			ChildID:         fx.child.ID,
			MilestoneKey:    "gm_walks_alone",
			Status:          types.MilestoneStatusEmerging,
			FirstObservedAt: time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC),
		}}

		result, err := fx.svc.RunProfiling(context.Background(), fx.session.ID, "walked across the room")
		if err != nil {
			t.Fatalf("RunProfiling: %v", err)
		}
		if result.NewlyAchieved != tc.wantAchieved {
			t.Fatalf("sessionsSince=%d: achieved = %d, want %d", tc.sessionsSince, result.NewlyAchieved, tc.wantAchieved)
		}
		row := fx.milestones.byKey("gm_walks_alone")
		wantStatus := types.MilestoneStatusEmerging
		if tc.wantAchieved == 1 {
			wantStatus = types.MilestoneStatusAchieved
		}
		if row.Status != wantStatus {
			t.Fatalf("sessionsSince=%d: status = %s, want %s", tc.sessionsSince, row.Status, wantStatus)
		}
	}
}

func TestRunProfilingAchievedIsTerminal(t *testing.T) {
	fx := newMilestoneFixture(t, false)
	fx.classifier.matched = []string{"gm_walks_alone"}
	achievedAt := time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC)
	fx.milestones.rows = []*types.ChildMilestone{{
		ID:              uuid.New(),
		ChildID:         fx.child.ID,
		MilestoneKey:    "gm_walks_alone",
		Status:          types.MilestoneStatusAchieved,
		FirstObservedAt: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
		AchievedAt:      &achievedAt,
	}}

	result, err := fx.svc.RunProfiling(context.Background(), fx.session.ID, "walked again")
	if err != nil {
		t.Fatalf("RunProfiling: %v", err)
	}
	if result.NewlyEmerging != 0 || result.NewlyAchieved != 0 {
		t.Fatalf("counts = %d emerging, %d achieved", result.NewlyEmerging, result.NewlyAchieved)
	}
	if len(fx.milestones.rows) != 1 {
		t.Fatalf("row count = %d", len(fx.milestones.rows))
	}
}

func TestRunProfilingSkipsUnknownKeys(t *testing.T) {
	fx := newMilestoneFixture(t, false)
	fx.classifier.matched = []string{"not_in_library", "lang_two_word_phrases"}

	result, err := fx.svc.RunProfiling(context.Background(), fx.session.ID, "said more juice")
	if err != nil {
		t.Fatalf("RunProfiling: %v", err)
	}
	if result.NewlyEmerging != 1 {
		t.Fatalf("emerging = %d, want 1", result.NewlyEmerging)
	}
	if fx.milestones.byKey("not_in_library") != nil {
		t.Fatal("unknown key must not be persisted")
	}
}

// On the first profiling session the baseline pass starts mastered
// milestones at ACHIEVED directly, and upgrades a same-run EMERGING match
// without double counting.
// Baseline upgrades are matched by milestone key, so an entry that shares a
// stage label with another must not steal its celebration.
func TestRunProfilingBaselineUpgradeWithDuplicateStageLabels(t *testing.T) {
	birthYear := 2023
	child := &types.Child{ID: uuid.New(), Name: "Remy", BirthYear: &birthYear}
	session := &types.Session{ID: uuid.New(), ChildID: child.ID, Mode: types.SessionModeCDI, Status: types.SessionStatusProcessed}
	sessions := newFakeSessionRepo(session)
	library := &fakeLibraryRepo{entries: []*types.MilestoneLibraryEntry{
		{Key: "gm_stacks_blocks", Category: types.MilestoneDomainGrossMotor, StageLabel: "Stacks blocks", MedianAgeMonths: 18, ThresholdValue: 3, Tip: "Offer big blocks."},
		{Key: "fm_stacks_blocks", Category: types.MilestoneDomainFineMotor, StageLabel: "Stacks blocks", MedianAgeMonths: 20, ThresholdValue: 3, Tip: "Offer small blocks."},
	}}
	classifier := &fakeClassifier{
		matched:  []string{"gm_stacks_blocks", "fm_stacks_blocks"},
		baseline: []string{"fm_stacks_blocks"},
	}
	milestones := &fakeChildMilestoneRepo{}
	svc := NewMilestonesService(newTestGorm(t), logger.Nop(), classifier, sessions, newFakeChildRepo(child), library, milestones).(*milestonesService)
	svc.now = func() time.Time { return time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC) }

	result, err := svc.RunProfiling(context.Background(), session.ID, "stacked a tower of five")
	if err != nil {
		t.Fatalf("RunProfiling: %v", err)
	}
	if result.NewlyEmerging != 1 || result.NewlyAchieved != 1 {
		t.Fatalf("counts = %d emerging, %d achieved", result.NewlyEmerging, result.NewlyAchieved)
	}

	if row := milestones.byKey("gm_stacks_blocks"); row.Status != types.MilestoneStatusEmerging {
		t.Fatalf("gross motor row = %s, want %s", row.Status, types.MilestoneStatusEmerging)
	}
	if row := milestones.byKey("fm_stacks_blocks"); row.Status != types.MilestoneStatusAchieved {
		t.Fatalf("fine motor row = %s, want %s", row.Status, types.MilestoneStatusAchieved)
	}

	byKey := map[string]Celebration{}
	for _, c := range result.Celebrations {
		byKey[c.Key] = c
	}
	if len(result.Celebrations) != 2 {
		t.Fatalf("celebrations = %+v", result.Celebrations)
	}
	if byKey["gm_stacks_blocks"].Status != types.MilestoneStatusEmerging {
		t.Fatalf("gross motor celebration = %+v", byKey["gm_stacks_blocks"])
	}
	if byKey["fm_stacks_blocks"].Status != types.MilestoneStatusAchieved {
		t.Fatalf("fine motor celebration = %+v", byKey["fm_stacks_blocks"])
	}
}

func TestRunProfilingBaseline(t *testing.T) {
	fx := newMilestoneFixture(t, true)
	fx.classifier.matched = []string{"lang_two_word_phrases"}
	fx.classifier.baseline = []string{"gm_walks_alone", "lang_two_word_phrases"}

	result, err := fx.svc.RunProfiling(context.Background(), fx.session.ID, "ran and chatted in short phrases")
	if err != nil {
		t.Fatalf("RunProfiling: %v", err)
	}
	if fx.classifier.baselineRuns != 1 {
		t.Fatalf("baseline runs = %d", fx.classifier.baselineRuns)
	}
	if result.NewlyEmerging != 0 || result.NewlyAchieved != 2 {
		t.Fatalf("counts = %d emerging, %d achieved", result.NewlyEmerging, result.NewlyAchieved)
	}

	walks := fx.milestones.byKey("gm_walks_alone")
	if walks == nil || walks.Status != types.MilestoneStatusAchieved || walks.AchievedAt == nil {
		t.Fatalf("walks row = %+v", walks)
	}
	phrases := fx.milestones.byKey("lang_two_word_phrases")
	if phrases == nil || phrases.Status != types.MilestoneStatusAchieved {
		t.Fatalf("phrases row = %+v", phrases)
	}

	if len(result.Celebrations) != 2 {
		t.Fatalf("celebrations = %d", len(result.Celebrations))
	}
	for _, c := range result.Celebrations {
		if c.Status != types.MilestoneStatusAchieved {
			t.Fatalf("celebration status = %s", c.Status)
		}
	}
}
