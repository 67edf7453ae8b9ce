package controllers

import (
	"errors"
	"strconv"

	"hackerranker-backend/leaderboard"
	"hackerranker-backend/roster"

	"github.com/gofiber/fiber/v2"
)

type RegisterRequest struct {
	MemberID int64  `json:"memberId"`
	Username string `json:"username"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username"`
	Birthday *string `json:"birthday"` // DD/MM/YYYY
	HTBID    *int    `json:"htbId"`
	RMID     *int    `json:"rmId"`
	THMID    *string `json:"thmId"`
}

type ProfileResponse struct {
	Member            *roster.Member        `json:"member"`
	TodaySnapshot     *leaderboard.Snapshot `json:"todaySnapshot"`
	OrganizationRanks leaderboard.Ranks     `json:"organizationRanks"`
}

// RegisterMember creates a roster entry for a chat member.
// POST /api/members
func (h *Handler) RegisterMember(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.MemberID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "memberId is required"})
	}
	if !roster.ValidUsername(req.Username) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "username must be alphanumeric, -, _ or . and between 3 and 25 characters",
		})
	}

	// Pre-validation only; the unique constraints are the real enforcement.
	if _, err := h.Members.GetByID(c.Context(), req.MemberID); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Member is already registered"})
	} else if !errors.Is(err, roster.ErrNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to register member"})
	}
	if _, err := h.Members.GetByUsername(c.Context(), req.Username); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Username is already taken"})
	} else if !errors.Is(err, roster.ErrNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to register member"})
	}

	member := &roster.Member{ID: req.MemberID, Username: req.Username, Active: true}
	if err := h.Members.Insert(c.Context(), member); err != nil {
		if errors.Is(err, roster.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Member or username already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to register member"})
	}

	return c.Status(fiber.StatusCreated).JSON(member)
}

// UpdateMemberProfile merges the supplied profile fields. Every field is
// validated and applied independently; platform ids are verified against the
// provider before they are linked, and the verification result seeds today's
// snapshot.
// PATCH /api/members/:id
func (h *Handler) UpdateMemberProfile(c *fiber.Ctx) error {
	memberID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || memberID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid member id"})
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Username == nil && req.Birthday == nil && req.HTBID == nil && req.RMID == nil && req.THMID == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Provide at least one field to update"})
	}

	member, err := h.Members.GetByID(c.Context(), memberID)
	if err != nil {
		if errors.Is(err, roster.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Member is not registered, register first"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load member"})
	}

	var update roster.ProfileUpdate
	var snapshotUpdate leaderboard.SnapshotUpdate

	if req.Username != nil {
		if !roster.ValidUsername(*req.Username) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "username must be alphanumeric, -, _ or . and between 3 and 25 characters",
			})
		}
		if existing, err := h.Members.GetByUsername(c.Context(), *req.Username); err == nil && existing.ID != member.ID {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Username is already taken"})
		}
		update.Username = req.Username
	}

	if req.Birthday != nil {
		birthday, err := roster.ParseBirthday(*req.Birthday)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "birthday must be DD/MM/YYYY"})
		}
		update.Birthday = &birthday
	}

	if req.HTBID != nil {
		if !roster.ValidNumericID(strconv.Itoa(*req.HTBID)) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid HackTheBox id"})
		}
		result := h.Fetcher.HackTheBox(c.Context(), *req.HTBID)
		if result == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "HackTheBox id does not exist"})
		}
		update.HTBID = req.HTBID
		snapshotUpdate.HTBRank = &result.Rank
		snapshotUpdate.HTBScore = &result.Score
	}

	if req.RMID != nil {
		if !roster.ValidNumericID(strconv.Itoa(*req.RMID)) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid RootMe id"})
		}
		result := h.Fetcher.RootMe(c.Context(), *req.RMID, true)
		if result == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "RootMe id does not exist"})
		}
		update.RMID = req.RMID
		update.RMName = &result.Name
		snapshotUpdate.RMRank = &result.Rank
		snapshotUpdate.RMScore = &result.Score
	}

	if req.THMID != nil {
		if !roster.ValidTHMID(*req.THMID) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid TryHackMe username"})
		}
		result := h.Fetcher.TryHackMe(c.Context(), *req.THMID)
		if result == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "TryHackMe username does not exist"})
		}
		update.THMID = req.THMID
		snapshotUpdate.THMRank = &result.Rank
		snapshotUpdate.THMRooms = &result.Rooms
	}

	member, err = h.Members.Update(c.Context(), memberID, update)
	if err != nil {
		if errors.Is(err, roster.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Username is already taken"})
		}
		if errors.Is(err, roster.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Member is not registered, register first"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update member"})
	}

	var snapshot *leaderboard.Snapshot
	if !snapshotUpdate.IsEmpty() {
		snapshot, err = h.Snapshots.Upsert(c.Context(), memberID, today(), snapshotUpdate)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store snapshot"})
		}
	} else {
		snapshot, _ = h.Snapshots.Get(c.Context(), memberID, today())
	}

	ranks, err := h.Ranking.OrganizationRanks(c.Context(), memberID, today())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute ranks"})
	}

	return c.JSON(ProfileResponse{Member: member, TodaySnapshot: snapshot, OrganizationRanks: ranks})
}

// GetMemberProfile returns the member with today's snapshot and organization
// ranks, refreshing the linked platforms on the way.
// GET /api/members/:id/profile
func (h *Handler) GetMemberProfile(c *fiber.Ctx) error {
	memberID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || memberID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid member id"})
	}

	member, err := h.Members.GetByID(c.Context(), memberID)
	if err != nil {
		if errors.Is(err, roster.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Member is not registered, register first"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load member"})
	}

	if !member.HasLinkedPlatform() && member.Birthday == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Member has no profile yet, link a platform id first",
		})
	}

	// Ad-hoc refresh outside the scheduled run. Racing with the scheduler is
	// fine, both sides merge per field.
	snapshot, err := h.Updater.SyncMember(c.Context(), memberID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to refresh profile"})
	}

	// SyncMember may have refreshed the canonical RootMe name.
	member, err = h.Members.GetByID(c.Context(), memberID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load member"})
	}

	ranks, err := h.Ranking.OrganizationRanks(c.Context(), memberID, today())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute ranks"})
	}

	return c.JSON(ProfileResponse{Member: member, TodaySnapshot: snapshot, OrganizationRanks: ranks})
}
