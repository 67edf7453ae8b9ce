package leaderboard

import (
	"context"
	"fmt"
	"time"

	"hackerranker-backend/roster"
)

// lookback window for score evolution.
const evolutionLookback = 30 * 24 * time.Hour

// Service computes organization-relative ranks and score evolution from the
// snapshot and roster repositories. It never writes; refreshing the data is
// the updater's job.
type Service struct {
	snapshots SnapshotRepository
	members   roster.Repository
}

func NewService(snapshots SnapshotRepository, members roster.Repository) *Service {
	return &Service{snapshots: snapshots, members: members}
}

// OrganizationRank returns the member's 1-based position among all members
// with a positive score on the platform for the date, or nil when the member
// has no positive score that day.
func (s *Service) OrganizationRank(ctx context.Context, memberID int64, date time.Time, p Platform) (*int, error) {
	snapshots, err := s.snapshots.ListForDate(ctx, date, nil, p)
	if err != nil {
		return nil, err
	}
	for i := range snapshots {
		if snapshots[i].MemberID == memberID {
			rank := i + 1
			return &rank, nil
		}
	}
	return nil, nil
}

// OrganizationRanks returns the member's organization rank on every platform
// for the date.
func (s *Service) OrganizationRanks(ctx context.Context, memberID int64, date time.Time) (Ranks, error) {
	var ranks Ranks
	for _, p := range Platforms {
		rank, err := s.OrganizationRank(ctx, memberID, date, p)
		if err != nil {
			return Ranks{}, err
		}
		switch p {
		case PlatformHackTheBox:
			ranks.HTB = rank
		case PlatformRootMe:
			ranks.RM = rank
		case PlatformTryHackMe:
			ranks.THM = rank
		}
	}
	return ranks, nil
}

// ScoreEvolution returns the member's score change since the snapshot taken
// 30 days before date, falling back to the earliest snapshot with a positive
// score when no usable 30-day-old snapshot exists. With no baseline at all
// the evolution is 0.
func (s *Service) ScoreEvolution(ctx context.Context, memberID int64, date time.Time, p Platform) (int, error) {
	current, err := s.snapshots.Get(ctx, memberID, date)
	if err != nil {
		return 0, err
	}
	if current == nil || current.Score(p) == nil {
		return 0, nil
	}

	baseline, err := s.snapshots.Get(ctx, memberID, date.Add(-evolutionLookback))
	if err != nil {
		return 0, err
	}
	if baseline == nil || baseline.Score(p) == nil || *baseline.Score(p) <= 0 {
		baseline, err = s.snapshots.EarliestPositive(ctx, memberID, p)
		if err != nil {
			return 0, err
		}
	}
	if baseline == nil || baseline.Score(p) == nil {
		return 0, nil
	}
	return *current.Score(p) - *baseline.Score(p), nil
}

// Leaderboard builds the organization leaderboard for one platform and date:
// active members with a positive score that day, best first.
func (s *Service) Leaderboard(ctx context.Context, p Platform, date time.Time) ([]Row, error) {
	active, err := s.members.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*roster.Member, len(active))
	ids := make([]int64, 0, len(active))
	for i := range active {
		byID[active[i].ID] = &active[i]
		ids = append(ids, active[i].ID)
	}

	snapshots, err := s.snapshots.ListForDate(ctx, date, ids, p)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(snapshots))
	for i := range snapshots {
		snapshot := &snapshots[i]
		member, ok := byID[snapshot.MemberID]
		if !ok {
			// Snapshot of a member deleted mid-query, skip it.
			continue
		}

		evolution, err := s.ScoreEvolution(ctx, snapshot.MemberID, date, p)
		if err != nil {
			return nil, fmt.Errorf("score evolution member=%d: %w", snapshot.MemberID, err)
		}

		rows = append(rows, Row{
			Username:   member.Username,
			OrgRank:    len(rows) + 1,
			Score:      *snapshot.Score(p),
			GlobalRank: snapshot.Rank(p),
			Evolution:  evolution,
			PlatformID: linkedID(member, p),
		})
	}
	return rows, nil
}
