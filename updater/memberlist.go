package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// MemberLister supplies the live group member ids at the start of a
// scheduled run.
type MemberLister interface {
	LiveMemberIDs(ctx context.Context) ([]int64, error)
}

// HTTPMemberLister pulls the member-id list from the chat collaborator's
// endpoint, which answers with a JSON array of ids.
type HTTPMemberLister struct {
	URL        string
	httpClient *http.Client
}

func NewHTTPMemberLister(url string) *HTTPMemberLister {
	return &HTTPMemberLister{
		URL:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (l *HTTPMemberLister) LiveMemberIDs(ctx context.Context) ([]int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch member list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch member list: http %d", resp.StatusCode)
	}

	var ids []int64
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return nil, fmt.Errorf("decode member list: %w", err)
	}
	return ids, nil
}

var _ MemberLister = (*HTTPMemberLister)(nil)
