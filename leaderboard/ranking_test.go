package leaderboard

import (
	"context"
	"sort"
	"strconv"
	"testing"
	"time"

	"hackerranker-backend/roster"
)

// memorySnapshots mirrors the PostgreSQL repository contract: merge on
// upsert, positive-score filter and score-desc/member-asc order on reads.
type memorySnapshots struct {
	rows map[string]*Snapshot // key: date|member
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{rows: make(map[string]*Snapshot)}
}

func (m *memorySnapshots) key(memberID int64, date time.Time) string {
	return date.Format("2006-01-02") + "|" + strconv.FormatInt(memberID, 10)
}

func (m *memorySnapshots) Get(_ context.Context, memberID int64, date time.Time) (*Snapshot, error) {
	if s, ok := m.rows[m.key(memberID, date)]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, nil
}

func (m *memorySnapshots) ListForDate(_ context.Context, date time.Time, memberIDs []int64, p Platform) ([]Snapshot, error) {
	allowed := map[int64]bool{}
	for _, id := range memberIDs {
		allowed[id] = true
	}

	var result []Snapshot
	for _, s := range m.rows {
		if s.Date.Format("2006-01-02") != date.Format("2006-01-02") {
			continue
		}
		if memberIDs != nil && !allowed[s.MemberID] {
			continue
		}
		if score := s.Score(p); score == nil || *score <= 0 {
			continue
		}
		result = append(result, *s)
	}

	sort.Slice(result, func(i, j int) bool {
		if *result[i].Score(p) != *result[j].Score(p) {
			return *result[i].Score(p) > *result[j].Score(p)
		}
		return result[i].MemberID < result[j].MemberID
	})
	return result, nil
}

func (m *memorySnapshots) Upsert(_ context.Context, memberID int64, date time.Time, update SnapshotUpdate) (*Snapshot, error) {
	key := m.key(memberID, date)
	s, ok := m.rows[key]
	if !ok {
		s = &Snapshot{Date: date, MemberID: memberID}
		m.rows[key] = s
	}
	if update.HTBRank != nil {
		s.HTBRank = update.HTBRank
	}
	if update.HTBScore != nil {
		s.HTBScore = update.HTBScore
	}
	if update.RMRank != nil {
		s.RMRank = update.RMRank
	}
	if update.RMScore != nil {
		s.RMScore = update.RMScore
	}
	if update.THMRank != nil {
		s.THMRank = update.THMRank
	}
	if update.THMRooms != nil {
		s.THMRooms = update.THMRooms
	}
	copied := *s
	return &copied, nil
}

func (m *memorySnapshots) EarliestPositive(_ context.Context, memberID int64, p Platform) (*Snapshot, error) {
	var earliest *Snapshot
	for _, s := range m.rows {
		if s.MemberID != memberID {
			continue
		}
		if score := s.Score(p); score == nil || *score <= 0 {
			continue
		}
		if earliest == nil || s.Date.Before(earliest.Date) {
			earliest = s
		}
	}
	if earliest == nil {
		return nil, nil
	}
	copied := *earliest
	return &copied, nil
}

var _ SnapshotRepository = (*memorySnapshots)(nil)

type memoryRoster struct {
	members map[int64]*roster.Member
}

func newMemoryRoster(members ...roster.Member) *memoryRoster {
	r := &memoryRoster{members: make(map[int64]*roster.Member)}
	for i := range members {
		m := members[i]
		r.members[m.ID] = &m
	}
	return r
}

func (r *memoryRoster) GetByID(_ context.Context, id int64) (*roster.Member, error) {
	if m, ok := r.members[id]; ok {
		copied := *m
		return &copied, nil
	}
	return nil, roster.ErrNotFound
}

func (r *memoryRoster) GetByUsername(_ context.Context, username string) (*roster.Member, error) {
	for _, m := range r.members {
		if m.Username == username {
			copied := *m
			return &copied, nil
		}
	}
	return nil, roster.ErrNotFound
}

func (r *memoryRoster) Insert(_ context.Context, m *roster.Member) error {
	if _, ok := r.members[m.ID]; ok {
		return roster.ErrConflict
	}
	copied := *m
	r.members[m.ID] = &copied
	return nil
}

func (r *memoryRoster) Update(_ context.Context, id int64, update roster.ProfileUpdate) (*roster.Member, error) {
	m, ok := r.members[id]
	if !ok {
		return nil, roster.ErrNotFound
	}
	if update.Username != nil {
		m.Username = *update.Username
	}
	if update.Birthday != nil {
		m.Birthday = update.Birthday
	}
	if update.HTBID != nil {
		m.HTBID = update.HTBID
	}
	if update.RMID != nil {
		m.RMID = update.RMID
	}
	if update.RMName != nil {
		m.RMName = update.RMName
	}
	if update.THMID != nil {
		m.THMID = update.THMID
	}
	copied := *m
	return &copied, nil
}

func (r *memoryRoster) list(active bool) []roster.Member {
	var result []roster.Member
	for _, m := range r.members {
		if m.Active == active {
			result = append(result, *m)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (r *memoryRoster) ListActive(_ context.Context) ([]roster.Member, error) {
	return r.list(true), nil
}

func (r *memoryRoster) ListDeactivated(_ context.Context) ([]roster.Member, error) {
	return r.list(false), nil
}

func (r *memoryRoster) SetActive(_ context.Context, id int64, active bool) error {
	m, ok := r.members[id]
	if !ok {
		return roster.ErrNotFound
	}
	m.Active = active
	return nil
}

func (r *memoryRoster) Delete(_ context.Context, id int64) error {
	if _, ok := r.members[id]; !ok {
		return roster.ErrNotFound
	}
	delete(r.members, id)
	return nil
}

var _ roster.Repository = (*memoryRoster)(nil)

func intPtr(n int) *int { return &n }

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestOrganizationRankOrdersByScore(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshots()
	today := day("2025-06-01")

	snapshots.Upsert(ctx, 1, today, SnapshotUpdate{HTBScore: intPtr(500), HTBRank: intPtr(10)})
	snapshots.Upsert(ctx, 2, today, SnapshotUpdate{HTBScore: intPtr(300), HTBRank: intPtr(50)})
	snapshots.Upsert(ctx, 3, today, SnapshotUpdate{HTBScore: intPtr(0)})

	service := NewService(snapshots, newMemoryRoster())

	first, err := service.OrganizationRank(ctx, 1, today, PlatformHackTheBox)
	if err != nil {
		t.Fatal(err)
	}
	second, _ := service.OrganizationRank(ctx, 2, today, PlatformHackTheBox)

	if first == nil || *first != 1 {
		t.Fatalf("expected rank 1 for the top score, got %v", first)
	}
	if second == nil || *second != 2 {
		t.Fatalf("expected rank 2 for the lower score, got %v", second)
	}
}

func TestOrganizationRankExcludesNonPositiveScores(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshots()
	today := day("2025-06-01")

	snapshots.Upsert(ctx, 3, today, SnapshotUpdate{HTBScore: intPtr(0)})
	service := NewService(snapshots, newMemoryRoster())

	rank, err := service.OrganizationRank(ctx, 3, today, PlatformHackTheBox)
	if err != nil {
		t.Fatal(err)
	}
	if rank != nil {
		t.Fatalf("zero score must not be ranked, got %v", rank)
	}

	rank, _ = service.OrganizationRank(ctx, 4, today, PlatformHackTheBox)
	if rank != nil {
		t.Fatalf("member without snapshot must not be ranked, got %v", rank)
	}
}

func TestScoreEvolutionUsesThirtyDayBaseline(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshots()
	today := day("2025-06-30")

	snapshots.Upsert(ctx, 1, day("2025-05-31"), SnapshotUpdate{RMScore: intPtr(400)})
	snapshots.Upsert(ctx, 1, today, SnapshotUpdate{RMScore: intPtr(500)})

	service := NewService(snapshots, newMemoryRoster())
	evolution, err := service.ScoreEvolution(ctx, 1, today, PlatformRootMe)
	if err != nil {
		t.Fatal(err)
	}
	if evolution != 100 {
		t.Fatalf("expected evolution 100, got %d", evolution)
	}
}

func TestScoreEvolutionFallsBackToEarliestSnapshot(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshots()
	today := day("2025-06-30")

	// No snapshot at exactly 30 days back, only one 45 days old.
	snapshots.Upsert(ctx, 1, day("2025-05-16"), SnapshotUpdate{RMScore: intPtr(300)})
	snapshots.Upsert(ctx, 1, today, SnapshotUpdate{RMScore: intPtr(500)})

	service := NewService(snapshots, newMemoryRoster())
	evolution, err := service.ScoreEvolution(ctx, 1, today, PlatformRootMe)
	if err != nil {
		t.Fatal(err)
	}
	if evolution != 200 {
		t.Fatalf("expected evolution 200 against the 45-day-old baseline, got %d", evolution)
	}
}

func TestScoreEvolutionIsZeroWithSingleSnapshot(t *testing.T) {
	ctx := context.Background()
	snapshots := newMemorySnapshots()
	today := day("2025-06-30")

	snapshots.Upsert(ctx, 1, today, SnapshotUpdate{THMRooms: intPtr(12), THMRank: intPtr(800)})

	service := NewService(snapshots, newMemoryRoster())
	evolution, err := service.ScoreEvolution(ctx, 1, today, PlatformTryHackMe)
	if err != nil {
		t.Fatal(err)
	}
	if evolution != 0 {
		t.Fatalf("expected evolution 0 with a single snapshot, got %d", evolution)
	}
}

func TestLeaderboardOrdersActiveMembers(t *testing.T) {
	ctx := context.Background()
	today := day("2025-06-01")

	alice := roster.Member{ID: 1, Username: "alice", Active: true, HTBID: intPtr(42)}
	bob := roster.Member{ID: 2, Username: "bob", Active: true, HTBID: intPtr(43)}
	eve := roster.Member{ID: 3, Username: "eve", Active: false, HTBID: intPtr(44)}
	members := newMemoryRoster(alice, bob, eve)

	snapshots := newMemorySnapshots()
	snapshots.Upsert(ctx, 1, today, SnapshotUpdate{HTBScore: intPtr(500), HTBRank: intPtr(10)})
	snapshots.Upsert(ctx, 2, today, SnapshotUpdate{HTBScore: intPtr(300), HTBRank: intPtr(90)})
	snapshots.Upsert(ctx, 3, today, SnapshotUpdate{HTBScore: intPtr(999), HTBRank: intPtr(1)})

	service := NewService(snapshots, members)
	rows, err := service.Leaderboard(ctx, PlatformHackTheBox, today)
	if err != nil {
		t.Fatal(err)
	}

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows (deactivated member excluded), got %d", len(rows))
	}
	if rows[0].Username != "alice" || rows[0].OrgRank != 1 || rows[0].Score != 500 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Username != "bob" || rows[1].OrgRank != 2 || rows[1].Score != 300 {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
	if rows[0].GlobalRank == nil || *rows[0].GlobalRank != 10 {
		t.Fatalf("expected stored global rank 10, got %v", rows[0].GlobalRank)
	}
	if rows[0].PlatformID != "42" {
		t.Fatalf("expected linked id 42, got %q", rows[0].PlatformID)
	}
}
