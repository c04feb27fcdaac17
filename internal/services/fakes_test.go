package services

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/playnest/playnest-backend/internal/dpics"
	"github.com/playnest/playnest-backend/internal/types"
)

// newTestGorm returns a bare sqlite handle so services can run their
// Transaction wrappers; the fakes below hold the actual state in memory.
func newTestGorm(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

type fakeChildRepo struct {
	children map[uuid.UUID]*types.Child

	updatedPrimaryIssue      *string
	updatedPrimaryStrategy   *string
	updatedSecondaryIssue    *string
	updatedSecondaryStrategy *string
	priorityUpdates          int
}

func newFakeChildRepo(children ...*types.Child) *fakeChildRepo {
	m := map[uuid.UUID]*types.Child{}
	for _, c := range children {
		m[c.ID] = c
	}
	return &fakeChildRepo{children: m}
}

func (f *fakeChildRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Child) (*types.Child, error) {
	f.children[row.ID] = row
	return row, nil
}

func (f *fakeChildRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Child, error) {
	c, ok := f.children[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (f *fakeChildRepo) UpdateRawIssues(ctx context.Context, tx *gorm.DB, id uuid.UUID, rawIssues string) error {
	if c, ok := f.children[id]; ok {
		c.RawIssues = rawIssues
	}
	return nil
}

func (f *fakeChildRepo) UpdatePriorityFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, primaryIssue, primaryStrategy, secondaryIssue, secondaryStrategy *string) error {
	f.updatedPrimaryIssue = primaryIssue
	f.updatedPrimaryStrategy = primaryStrategy
	f.updatedSecondaryIssue = secondaryIssue
	f.updatedSecondaryStrategy = secondaryStrategy
	f.priorityUpdates++
	if c, ok := f.children[id]; ok {
		c.PrimaryIssue = primaryIssue
		c.PrimaryStrategy = primaryStrategy
		c.SecondaryIssue = secondaryIssue
		c.SecondaryStrategy = secondaryStrategy
	}
	return nil
}

type fakeSessionRepo struct {
	sessions      map[uuid.UUID]*types.Session
	statusUpdates map[uuid.UUID][]string
	// sessionsSince is returned by CountByChildSince regardless of arguments.
	sessionsSince int64
}

func newFakeSessionRepo(sessions ...*types.Session) *fakeSessionRepo {
	m := map[uuid.UUID]*types.Session{}
	for _, s := range sessions {
		m[s.ID] = s
	}
	return &fakeSessionRepo{sessions: m, statusUpdates: map[uuid.UUID][]string{}}
}

func (f *fakeSessionRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Session) (*types.Session, error) {
	f.sessions[row.ID] = row
	return row, nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (f *fakeSessionRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error {
	f.statusUpdates[id] = append(f.statusUpdates[id], status)
	if s, ok := f.sessions[id]; ok {
		s.Status = status
	}
	return nil
}

func (f *fakeSessionRepo) MarkProfiled(ctx context.Context, tx *gorm.DB, id uuid.UUID, observations string, profiledAt time.Time) error {
	if s, ok := f.sessions[id]; ok {
		s.Observations = observations
		at := profiledAt
		s.ProfiledAt = &at
	}
	return nil
}

func (f *fakeSessionRepo) CountByChildSince(ctx context.Context, tx *gorm.DB, childID uuid.UUID, since time.Time) (int64, error) {
	return f.sessionsSince, nil
}

func (f *fakeSessionRepo) CountProfiledByChild(ctx context.Context, tx *gorm.DB, childID uuid.UUID) (int64, error) {
	var count int64
	for _, s := range f.sessions {
		if s.ChildID == childID && s.ProfiledAt != nil {
			count++
		}
	}
	return count, nil
}

type fakeUtteranceRepo struct {
	rows map[uuid.UUID][]*types.Utterance
}

func newFakeUtteranceRepo() *fakeUtteranceRepo {
	return &fakeUtteranceRepo{rows: map[uuid.UUID][]*types.Utterance{}}
}

func (f *fakeUtteranceRepo) ReplaceForSession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, rows []*types.Utterance) ([]*types.Utterance, error) {
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	f.rows[sessionID] = rows
	return rows, nil
}

func (f *fakeUtteranceRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.Utterance, error) {
	rows := append([]*types.Utterance{}, f.rows[sessionID]...)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })
	return rows, nil
}

func (f *fakeUtteranceRepo) UpdateTags(ctx context.Context, tx *gorm.DB, rows []*types.Utterance) error {
	return nil
}

type fakeScoreRepo struct {
	scores map[uuid.UUID]*types.SessionScore
}

func newFakeScoreRepo() *fakeScoreRepo {
	return &fakeScoreRepo{scores: map[uuid.UUID]*types.SessionScore{}}
}

func (f *fakeScoreRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.SessionScore) error {
	f.scores[row.SessionID] = row
	return nil
}

func (f *fakeScoreRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.SessionScore, error) {
	s, ok := f.scores[sessionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

type fakeSurveyRepo struct {
	latest map[uuid.UUID]*types.WacbSurvey
}

func newFakeSurveyRepo() *fakeSurveyRepo {
	return &fakeSurveyRepo{latest: map[uuid.UUID]*types.WacbSurvey{}}
}

func (f *fakeSurveyRepo) Create(ctx context.Context, tx *gorm.DB, row *types.WacbSurvey) (*types.WacbSurvey, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	f.latest[row.ChildID] = row
	return row, nil
}

func (f *fakeSurveyRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.WacbSurvey, error) {
	for _, s := range f.latest {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSurveyRepo) GetLatestByChildID(ctx context.Context, tx *gorm.DB, childID uuid.UUID) (*types.WacbSurvey, error) {
	return f.latest[childID], nil
}

type fakeHistoryRepo struct {
	rows []*types.ChildIssuePriority
}

func (f *fakeHistoryRepo) Append(ctx context.Context, tx *gorm.DB, rows []*types.ChildIssuePriority) ([]*types.ChildIssuePriority, error) {
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	f.rows = append(f.rows, rows...)
	return rows, nil
}

func (f *fakeHistoryRepo) GetCurrentByChildID(ctx context.Context, tx *gorm.DB, childID uuid.UUID) ([]*types.ChildIssuePriority, error) {
	var max time.Time
	for _, row := range f.rows {
		if row.ChildID == childID && row.ComputedAt.After(max) {
			max = row.ComputedAt
		}
	}
	var out []*types.ChildIssuePriority
	for _, row := range f.rows {
		if row.ChildID == childID && row.ComputedAt.Equal(max) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PriorityRank < out[j].PriorityRank })
	return out, nil
}

func (f *fakeHistoryRepo) GetByChildID(ctx context.Context, tx *gorm.DB, childID uuid.UUID) ([]*types.ChildIssuePriority, error) {
	var out []*types.ChildIssuePriority
	for _, row := range f.rows {
		if row.ChildID == childID {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeSnapshotCache struct {
	setErr   error
	sets     int
	deletes  int
	snapshot *PriorityResult
}

func (f *fakeSnapshotCache) SetPrioritySnapshot(ctx context.Context, childID uuid.UUID, snapshot any) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	result, ok := snapshot.(*PriorityResult)
	if !ok {
		return fmt.Errorf("unexpected snapshot type %T", snapshot)
	}
	f.snapshot = result
	return nil
}

func (f *fakeSnapshotCache) GetPrioritySnapshot(ctx context.Context, childID uuid.UUID, dest any) (bool, error) {
	if f.snapshot == nil {
		return false, nil
	}
	out, ok := dest.(*PriorityResult)
	if !ok {
		return false, fmt.Errorf("unexpected dest type %T", dest)
	}
	*out = *f.snapshot
	return true, nil
}

func (f *fakeSnapshotCache) DeletePrioritySnapshot(ctx context.Context, childID uuid.UUID) error {
	f.deletes++
	f.snapshot = nil
	return nil
}

type fakeLibraryRepo struct {
	entries []*types.MilestoneLibraryEntry
}

func (f *fakeLibraryRepo) Seed(ctx context.Context, tx *gorm.DB, rows []*types.MilestoneLibraryEntry) error {
	f.entries = rows
	return nil
}

func (f *fakeLibraryRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.MilestoneLibraryEntry, error) {
	return f.entries, nil
}

func (f *fakeLibraryRepo) GetByKeys(ctx context.Context, tx *gorm.DB, keys []string) ([]*types.MilestoneLibraryEntry, error) {
	want := map[string]bool{}
	for _, k := range keys {
		want[k] = true
	}
	var out []*types.MilestoneLibraryEntry
	for _, e := range f.entries {
		if want[e.Key] {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeChildMilestoneRepo struct {
	rows []*types.ChildMilestone
}

func (f *fakeChildMilestoneRepo) GetByChildID(ctx context.Context, tx *gorm.DB, childID uuid.UUID) ([]*types.ChildMilestone, error) {
	var out []*types.ChildMilestone
	for _, row := range f.rows {
		if row.ChildID == childID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeChildMilestoneRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ChildMilestone) ([]*types.ChildMilestone, error) {
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		for _, existing := range f.rows {
			if existing.ChildID == row.ChildID && existing.MilestoneKey == row.MilestoneKey {
				return nil, fmt.Errorf("duplicate (child, milestone) pair %s/%s", row.ChildID, row.MilestoneKey)
			}
		}
		f.rows = append(f.rows, row)
	}
	return rows, nil
}

func (f *fakeChildMilestoneRepo) MarkAchieved(ctx context.Context, tx *gorm.DB, id uuid.UUID, achievedAt time.Time) error {
	for _, row := range f.rows {
		if row.ID == id && row.Status == types.MilestoneStatusEmerging {
			row.Status = types.MilestoneStatusAchieved
			at := achievedAt
			row.AchievedAt = &at
		}
	}
	return nil
}

func (f *fakeChildMilestoneRepo) byKey(key string) *types.ChildMilestone {
	for _, row := range f.rows {
		if row.MilestoneKey == key {
			return row
		}
	}
	return nil
}

type fakeClassifier struct {
	roles        map[string]string
	rolesErr     error
	tags         map[int]dpics.Code
	tagsErr      error
	matched      []string
	matchErr     error
	baseline     []string
	baselineErr  error
	baselineRuns int
}

func (f *fakeClassifier) ClassifyRoles(ctx context.Context, bySpeaker map[string][]string) (map[string]string, error) {
	if f.rolesErr != nil {
		return nil, f.rolesErr
	}
	return f.roles, nil
}

func (f *fakeClassifier) TagBehaviors(ctx context.Context, mode string, inputs []TagInput) (map[int]dpics.Code, error) {
	if f.tagsErr != nil {
		return nil, f.tagsErr
	}
	return f.tags, nil
}

func (f *fakeClassifier) MatchMilestones(ctx context.Context, observations string, ageMonths *int, candidates []MilestoneCandidate) ([]string, error) {
	if f.matchErr != nil {
		return nil, f.matchErr
	}
	return f.matched, nil
}

func (f *fakeClassifier) BaselineMilestones(ctx context.Context, observations string, ageMonths *int, candidates []MilestoneCandidate) ([]string, error) {
	f.baselineRuns++
	if f.baselineErr != nil {
		return nil, f.baselineErr
	}
	return f.baseline, nil
}
