package providers

import (
	"context"
	"fmt"
	"log"
)

// THMScore is a member's TryHackMe state at fetch time. The platform has no
// point score axis here, progress is the number of completed rooms.
type THMScore struct {
	Rank  int
	Rooms int
}

// TryHackMe fetches the rank and completed-room count for thmID through two
// separate endpoints.
func (c *Client) TryHackMe(ctx context.Context, thmID string) *THMScore {
	var rankPayload struct {
		UserRank *flexInt `json:"userRank"`
	}
	rankURL := fmt.Sprintf("%s/user/rank/%s", c.THMBaseURL, thmID)
	if err := c.getJSON(ctx, rankURL, nil, &rankPayload); err != nil {
		log.Printf("Couldn't get THM data for %s: %v", thmID, err)
		return nil
	}

	var rooms flexInt
	roomsURL := fmt.Sprintf("%s/no-completed-rooms-public/%s", c.THMBaseURL, thmID)
	if err := c.getJSON(ctx, roomsURL, nil, &rooms); err != nil {
		log.Printf("Couldn't get THM data for %s: %v", thmID, err)
		return nil
	}

	// A rank with zero completed rooms is how the API answers for unknown
	// users, treat it as unavailable rather than a genuine zero.
	if rankPayload.UserRank == nil || rooms == 0 {
		log.Printf("Couldn't get THM data for %s: empty rank or room count", thmID)
		return nil
	}

	return &THMScore{
		Rank:  int(*rankPayload.UserRank),
		Rooms: int(rooms),
	}
}
