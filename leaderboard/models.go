package leaderboard

import (
	"fmt"
	"time"

	"hackerranker-backend/roster"
)

// Platform identifies one of the three scoring services. Invalid strings are
// rejected at the boundary by ParsePlatform; everything past that point works
// with the typed constant and the static column table below, never with a
// field name built at runtime.
type Platform string

const (
	PlatformHackTheBox Platform = "htb"
	PlatformRootMe     Platform = "rm"
	PlatformTryHackMe  Platform = "thm"
)

// Platforms lists every supported platform in display order.
var Platforms = []Platform{PlatformHackTheBox, PlatformRootMe, PlatformTryHackMe}

func ParsePlatform(s string) (Platform, error) {
	switch Platform(s) {
	case PlatformHackTheBox, PlatformRootMe, PlatformTryHackMe:
		return Platform(s), nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

type platformColumns struct {
	rank  string
	score string // thm counts completed rooms, the other two count points
}

var platformTable = map[Platform]platformColumns{
	PlatformHackTheBox: {rank: "htb_rank", score: "htb_score"},
	PlatformRootMe:     {rank: "rm_rank", score: "rm_score"},
	PlatformTryHackMe:  {rank: "thm_rank", score: "thm_rooms"},
}

// Snapshot is one member's recorded state for one calendar date. Nil fields
// mean the platform produced no data up to that day; an explicit zero is a
// real value.
type Snapshot struct {
	Date     time.Time `json:"date"`
	MemberID int64     `json:"memberId"`

	HTBRank  *int `json:"htbRank,omitempty"`
	HTBScore *int `json:"htbScore,omitempty"`
	RMRank   *int `json:"rmRank,omitempty"`
	RMScore  *int `json:"rmScore,omitempty"`
	THMRank  *int `json:"thmRank,omitempty"`
	THMRooms *int `json:"thmRooms,omitempty"`
}

// Score returns the snapshot's score-axis value for the platform
// (points for htb/rm, completed rooms for thm).
func (s *Snapshot) Score(p Platform) *int {
	switch p {
	case PlatformHackTheBox:
		return s.HTBScore
	case PlatformRootMe:
		return s.RMScore
	case PlatformTryHackMe:
		return s.THMRooms
	}
	return nil
}

// Rank returns the platform's own global rank recorded in the snapshot.
func (s *Snapshot) Rank(p Platform) *int {
	switch p {
	case PlatformHackTheBox:
		return s.HTBRank
	case PlatformRootMe:
		return s.RMRank
	case PlatformTryHackMe:
		return s.THMRank
	}
	return nil
}

// SnapshotUpdate is a partial per-day merge set. Nil fields leave the stored
// value untouched, so a failed provider fetch never erases data written
// earlier the same day.
type SnapshotUpdate struct {
	HTBRank  *int
	HTBScore *int
	RMRank   *int
	RMScore  *int
	THMRank  *int
	THMRooms *int
}

// IsEmpty reports whether the update carries no fields at all. An empty
// update must not create a snapshot row.
func (u SnapshotUpdate) IsEmpty() bool {
	return u.HTBRank == nil && u.HTBScore == nil && u.RMRank == nil &&
		u.RMScore == nil && u.THMRank == nil && u.THMRooms == nil
}

// Row is one leaderboard line, ready for display.
type Row struct {
	Username   string `json:"username"`
	OrgRank    int    `json:"orgRank"`
	Score      int    `json:"score"`
	GlobalRank *int   `json:"globalRank,omitempty"`
	Evolution  int    `json:"evolution"`
	PlatformID string `json:"platformId,omitempty"`
}

// Ranks holds a member's organization-relative rank per platform for one
// date. Nil means the member had no positive score on that platform.
type Ranks struct {
	HTB *int `json:"htbOrgRank,omitempty"`
	RM  *int `json:"rmOrgRank,omitempty"`
	THM *int `json:"thmOrgRank,omitempty"`
}

// linkedID returns the member's identifier on the platform as display text.
func linkedID(m *roster.Member, p Platform) string {
	switch p {
	case PlatformHackTheBox:
		if m.HTBID != nil {
			return fmt.Sprintf("%d", *m.HTBID)
		}
	case PlatformRootMe:
		if m.RMName != nil {
			return *m.RMName
		}
		if m.RMID != nil {
			return fmt.Sprintf("%d", *m.RMID)
		}
	case PlatformTryHackMe:
		if m.THMID != nil {
			return *m.THMID
		}
	}
	return ""
}
