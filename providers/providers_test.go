package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(server *httptest.Server) *Client {
	c := NewClient("test-key")
	c.pace = 0
	c.HTBBaseURL = server.URL
	c.RMBaseURL = server.URL
	c.RMProfileBaseURL = server.URL
	c.THMBaseURL = server.URL
	return c
}

func TestHackTheBoxSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/profile/42" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"profile":{"ranking":10,"points":500}}`)
	}))
	defer server.Close()

	result := testClient(server).HackTheBox(context.Background(), 42)
	if result == nil {
		t.Fatal("expected a result, got nil")
	}
	if result.Rank != 10 || result.Score != 500 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestHackTheBoxNullRankingReadsAsZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"profile":{"ranking":null,"points":25}}`)
	}))
	defer server.Close()

	result := testClient(server).HackTheBox(context.Background(), 42)
	if result == nil {
		t.Fatal("expected a result, got nil")
	}
	if result.Rank != 0 || result.Score != 25 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestHackTheBoxUnknownUserIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"message":"user not found"}`)
	}))
	defer server.Close()

	if result := testClient(server).HackTheBox(context.Background(), 99); result != nil {
		t.Fatalf("expected nil for a response without profile, got %+v", result)
	}
}

func TestHackTheBoxServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	if result := testClient(server).HackTheBox(context.Background(), 42); result != nil {
		t.Fatalf("expected nil on http 500, got %+v", result)
	}
}

func TestRootMeParsesStringNumbers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auteurs/42" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if cookie, err := r.Cookie("api_key"); err != nil || cookie.Value != "test-key" {
			t.Fatal("expected api_key cookie on the request")
		}
		fmt.Fprint(w, `{"nom":"jdoe","position":"12","score":"4510"}`)
	}))
	defer server.Close()

	result := testClient(server).RootMe(context.Background(), 42, false)
	if result == nil {
		t.Fatal("expected a result, got nil")
	}
	if result.Rank != 12 || result.Score != 4510 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Name != "" {
		t.Fatalf("name should stay empty without resolution, got %q", result.Name)
	}
}

func TestRootMeMissingScoreIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":"no such author"}`)
	}))
	defer server.Close()

	if result := testClient(server).RootMe(context.Background(), 42, false); result != nil {
		t.Fatalf("expected nil for a response without score, got %+v", result)
	}
}

func TestRootMeResolvesDecoratedName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auteurs/42":
			fmt.Fprint(w, `{"nom":"jdoe","position":7,"score":"100"}`)
		case "/jdoe-42":
			fmt.Fprint(w, `<html><body><h1>jdoe</h1></body></html>`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	result := testClient(server).RootMe(context.Background(), 42, true)
	if result == nil {
		t.Fatal("expected a result, got nil")
	}
	if result.Name != "jdoe-42" {
		t.Fatalf("expected decorated name jdoe-42, got %q", result.Name)
	}
}

func TestRootMeFallsBackToPlainNameOn404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auteurs/42":
			fmt.Fprint(w, `{"nom":"jdoe","position":7,"score":"100"}`)
		case "/jdoe-42":
			w.WriteHeader(http.StatusNotFound)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	result := testClient(server).RootMe(context.Background(), 42, true)
	if result == nil {
		t.Fatal("expected a result, got nil")
	}
	if result.Name != "jdoe" {
		t.Fatalf("expected plain name jdoe, got %q", result.Name)
	}
}

func TestTryHackMeSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user/rank/jdoe":
			fmt.Fprint(w, `{"userRank":1234}`)
		case "/no-completed-rooms-public/jdoe":
			fmt.Fprint(w, `57`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	result := testClient(server).TryHackMe(context.Background(), "jdoe")
	if result == nil {
		t.Fatal("expected a result, got nil")
	}
	if result.Rank != 1234 || result.Rooms != 57 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestTryHackMeZeroRoomsIsUnavailable(t *testing.T) {
	// The rooms endpoint answers 0 for unknown users even when the rank
	// endpoint returns a shape, so 0 must collapse to unavailable.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user/rank/ghost":
			fmt.Fprint(w, `{"userRank":99}`)
		case "/no-completed-rooms-public/ghost":
			fmt.Fprint(w, `0`)
		}
	}))
	defer server.Close()

	if result := testClient(server).TryHackMe(context.Background(), "ghost"); result != nil {
		t.Fatalf("expected nil for zero completed rooms, got %+v", result)
	}
}

func TestTryHackMeMissingRankIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user/rank/jdoe":
			fmt.Fprint(w, `{}`)
		case "/no-completed-rooms-public/jdoe":
			fmt.Fprint(w, `57`)
		}
	}))
	defer server.Close()

	if result := testClient(server).TryHackMe(context.Background(), "jdoe"); result != nil {
		t.Fatalf("expected nil for missing userRank, got %+v", result)
	}
}
