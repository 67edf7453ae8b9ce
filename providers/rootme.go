package providers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RMScore is a member's RootMe state at fetch time. Name is only populated
// when the canonical profile name was requested.
type RMScore struct {
	Rank  int
	Score int
	Name  string
}

// RootMe fetches the author record for rmID.
// https://www.root-me.org/fr/breve/API-api-www-root-me-org
//
// With resolveName set, the call also resolves the canonical profile name:
// RootMe disambiguates duplicate names by suffixing the user id, so the
// decorated "name-id" variant is probed first and the plain name is used
// when that profile URL does not exist.
func (c *Client) RootMe(ctx context.Context, rmID int, resolveName bool) *RMScore {
	var payload struct {
		Name     string   `json:"nom"`
		Position flexInt  `json:"position"`
		Score    *flexInt `json:"score"`
	}

	cookies := map[string]string{"api_key": c.rmAPIKey}
	url := fmt.Sprintf("%s/auteurs/%d", c.RMBaseURL, rmID)
	if err := c.getJSON(ctx, url, cookies, &payload); err != nil {
		log.Printf("Couldn't get RM data for %d: %v", rmID, err)
		return nil
	}
	if payload.Score == nil {
		log.Printf("Couldn't get RM data for %d: no score in response", rmID)
		return nil
	}

	result := &RMScore{
		Rank:  int(payload.Position),
		Score: int(*payload.Score),
	}
	if resolveName {
		result.Name = c.resolveRMName(ctx, rmID, payload.Name)
	}
	return result
}

// resolveRMName probes the decorated profile URL and falls back to the plain
// name when it 404s or the page does not parse as a profile.
func (c *Client) resolveRMName(ctx context.Context, rmID int, name string) string {
	decorated := fmt.Sprintf("%s-%d", name, rmID)
	url := fmt.Sprintf("%s/%s", c.RMProfileBaseURL, decorated)

	defer c.pause(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return name
	}
	req.Header.Set("User-Agent", userAgent)
	req.AddCookie(&http.Cookie{Name: "api_key", Value: c.rmAPIKey})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("Couldn't probe RM profile for %d: %v", rmID, err)
		return name
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return name
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		log.Printf("Couldn't parse RM profile page for %d: %v", rmID, err)
		return name
	}
	if strings.TrimSpace(doc.Find("h1").First().Text()) == "" {
		// Not a profile page, keep the undecorated name.
		return name
	}

	return decorated
}
