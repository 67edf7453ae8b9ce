package providers

import (
	"context"
	"fmt"
	"log"
)

// HTBScore is a member's HackTheBox state at fetch time.
type HTBScore struct {
	Rank  int
	Score int
}

// HackTheBox fetches the public profile for htbID.
// https://documenter.getpostman.com/view/13129365/TVeqbmeq
func (c *Client) HackTheBox(ctx context.Context, htbID int) *HTBScore {
	var payload struct {
		Profile *struct {
			Ranking flexInt `json:"ranking"`
			Points  flexInt `json:"points"`
		} `json:"profile"`
	}

	url := fmt.Sprintf("%s/profile/%d", c.HTBBaseURL, htbID)
	if err := c.getJSON(ctx, url, nil, &payload); err != nil {
		log.Printf("Couldn't get HTB data for %d: %v", htbID, err)
		return nil
	}
	if payload.Profile == nil {
		log.Printf("Couldn't get HTB data for %d: no profile in response", htbID)
		return nil
	}

	return &HTBScore{
		Rank:  int(payload.Profile.Ranking),
		Score: int(payload.Profile.Points),
	}
}
