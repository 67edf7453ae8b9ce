package updater

import (
	"context"
	"fmt"
	"log"
	"time"

	"hackerranker-backend/leaderboard"
	"hackerranker-backend/providers"
	"hackerranker-backend/roster"
)

// ScoreFetcher is the provider surface the updater needs. A nil result means
// the platform was unavailable for that member this cycle.
type ScoreFetcher interface {
	HackTheBox(ctx context.Context, htbID int) *providers.HTBScore
	RootMe(ctx context.Context, rmID int, resolveName bool) *providers.RMScore
	TryHackMe(ctx context.Context, thmID string) *providers.THMScore
}

// Notifier posts fire-and-forget progress messages to the operational
// channel. Implementations must not fail the run.
type Notifier interface {
	Notify(subject, body string)
}

// MemberError records a per-member storage failure during a run.
type MemberError struct {
	MemberID int64  `json:"memberId"`
	Error    string `json:"error"`
}

// Summary is the result of one synchronization run.
type Summary struct {
	Activated   int           `json:"activated"`
	Deactivated int           `json:"deactivated"`
	Deleted     int           `json:"deleted"`
	Synced      int           `json:"synced"`
	Errors      []MemberError `json:"errors,omitempty"`
	Duration    time.Duration `json:"-"`
}

// Updater reconciles the roster against live group membership and refreshes
// every active member's daily snapshot.
type Updater struct {
	members   roster.Repository
	snapshots leaderboard.SnapshotRepository
	fetcher   ScoreFetcher
	notifier  Notifier

	now func() time.Time
}

func New(members roster.Repository, snapshots leaderboard.SnapshotRepository, fetcher ScoreFetcher, notifier Notifier) *Updater {
	return &Updater{
		members:   members,
		snapshots: snapshots,
		fetcher:   fetcher,
		notifier:  notifier,
		now:       time.Now,
	}
}

// SyncAll runs one full synchronization pass. liveIDs is the current group
// membership supplied by the chat collaborator. In dev mode the roster is
// synced as-is with no reconciliation.
//
// Members are processed sequentially, which keeps the per-provider pacing
// budget trivially respected; the whole run can take minutes for a large
// roster and the caller is expected to run it off the request path.
// Cancelling ctx stops starting new members but the in-flight member
// finishes and commits.
//
// Provider failures never abort the run. Storage failures abort only the
// failing member's write and are reported in the summary; the run itself
// fails only when no member could be synced at all.
func (u *Updater) SyncAll(ctx context.Context, liveIDs []int64, devMode bool) (Summary, error) {
	started := u.now()
	var summary Summary

	active, err := u.members.ListActive(ctx)
	if err != nil {
		return summary, fmt.Errorf("list active members: %w", err)
	}
	deactivated, err := u.members.ListDeactivated(ctx)
	if err != nil {
		return summary, fmt.Errorf("list deactivated members: %w", err)
	}

	u.notify("Score sync started", fmt.Sprintf(
		"Activated members: %d\nDeactivated members: %d", len(active), len(deactivated)))

	toSync := active
	if !devMode {
		toSync = u.reconcile(ctx, liveIDs, active, deactivated, &summary)
	}

	for i := range toSync {
		if ctx.Err() != nil {
			log.Printf("Sync cancelled with %d members left", len(toSync)-i)
			break
		}
		if err := u.syncOne(ctx, &toSync[i]); err != nil {
			summary.Errors = append(summary.Errors, MemberError{
				MemberID: toSync[i].ID,
				Error:    err.Error(),
			})
			continue
		}
		summary.Synced++
	}

	summary.Duration = u.now().Sub(started)
	u.notify("Score sync finished", fmt.Sprintf(
		"Synced: %d\nActivated: %d\nDeactivated: %d\nDeleted: %d\nErrors: %d\nDuration: %.2fs",
		summary.Synced, summary.Activated, summary.Deactivated, summary.Deleted,
		len(summary.Errors), summary.Duration.Seconds()))

	if summary.Synced == 0 && len(summary.Errors) > 0 {
		return summary, fmt.Errorf("sync failed for all %d members", len(summary.Errors))
	}
	return summary, nil
}

// reconcile aligns roster activation state with the live membership set and
// returns the members to sync this run. The three id sets are computed
// up-front and applied afterwards so list mutation never skips a member.
func (u *Updater) reconcile(ctx context.Context, liveIDs []int64, active, deactivated []roster.Member, summary *Summary) []roster.Member {
	live := make(map[int64]struct{}, len(liveIDs))
	for _, id := range liveIDs {
		live[id] = struct{}{}
	}

	var toDelete, toDeactivate, toActivate, toSync []roster.Member
	for _, m := range active {
		switch {
		case !m.HasLinkedPlatform():
			toDelete = append(toDelete, m)
		case !contains(live, m.ID):
			toDeactivate = append(toDeactivate, m)
		default:
			toSync = append(toSync, m)
		}
	}
	for _, m := range deactivated {
		if contains(live, m.ID) {
			toActivate = append(toActivate, m)
		}
	}

	for _, m := range toDelete {
		if err := u.members.Delete(ctx, m.ID); err != nil {
			summary.Errors = append(summary.Errors, MemberError{MemberID: m.ID, Error: err.Error()})
			continue
		}
		log.Printf("Deleted member %d (%s): no linked platform", m.ID, m.Username)
		summary.Deleted++
	}
	for _, m := range toDeactivate {
		if err := u.members.SetActive(ctx, m.ID, false); err != nil {
			summary.Errors = append(summary.Errors, MemberError{MemberID: m.ID, Error: err.Error()})
			continue
		}
		log.Printf("Deactivated member %d (%s): left the group", m.ID, m.Username)
		summary.Deactivated++
	}
	for _, m := range toActivate {
		if err := u.members.SetActive(ctx, m.ID, true); err != nil {
			summary.Errors = append(summary.Errors, MemberError{MemberID: m.ID, Error: err.Error()})
			continue
		}
		log.Printf("Reactivated member %d (%s): back in the group", m.ID, m.Username)
		summary.Activated++
		m.Active = true
		toSync = append(toSync, m)
	}

	return toSync
}

// syncOne fetches every linked platform for the member and merges the
// results into today's snapshot. An empty result set writes nothing, which
// keeps "no data" distinct from an explicit zero.
func (u *Updater) syncOne(ctx context.Context, member *roster.Member) error {
	update, rmName := u.fetchScores(ctx, member)

	if rmName != "" && (member.RMName == nil || *member.RMName != rmName) {
		if _, err := u.members.Update(ctx, member.ID, roster.ProfileUpdate{RMName: &rmName}); err != nil {
			return fmt.Errorf("store rm name: %w", err)
		}
	}

	if update.IsEmpty() {
		return nil
	}

	if _, err := u.snapshots.Upsert(ctx, member.ID, u.today(), update); err != nil {
		return err
	}
	return nil
}

// fetchScores calls each platform the member has linked, one after another.
// Unavailable platforms simply contribute no fields.
func (u *Updater) fetchScores(ctx context.Context, member *roster.Member) (leaderboard.SnapshotUpdate, string) {
	var update leaderboard.SnapshotUpdate
	var rmName string

	if member.HTBID != nil {
		if result := u.fetcher.HackTheBox(ctx, *member.HTBID); result != nil {
			update.HTBRank = &result.Rank
			update.HTBScore = &result.Score
		}
	}
	if member.RMID != nil {
		if result := u.fetcher.RootMe(ctx, *member.RMID, true); result != nil {
			update.RMRank = &result.Rank
			update.RMScore = &result.Score
			rmName = result.Name
		}
	}
	if member.THMID != nil {
		if result := u.fetcher.TryHackMe(ctx, *member.THMID); result != nil {
			update.THMRank = &result.Rank
			update.THMRooms = &result.Rooms
		}
	}

	return update, rmName
}

// SyncMember is the ad-hoc single-member refresh used by the profile read
// path. It returns the member's snapshot for today, refreshed where the
// providers answered. Racing against a scheduled run on the same day is
// expected: both merge per field and whoever commits last wins.
func (u *Updater) SyncMember(ctx context.Context, memberID int64) (*leaderboard.Snapshot, error) {
	member, err := u.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if err := u.syncOne(ctx, member); err != nil {
		return nil, err
	}
	return u.snapshots.Get(ctx, memberID, u.today())
}

func (u *Updater) today() time.Time {
	return u.now().UTC().Truncate(24 * time.Hour)
}

func (u *Updater) notify(subject, body string) {
	if u.notifier == nil {
		return
	}
	u.notifier.Notify(subject, body)
}

func contains(set map[int64]struct{}, id int64) bool {
	_, ok := set[id]
	return ok
}
