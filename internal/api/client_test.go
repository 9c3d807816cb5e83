package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const (
	testGameID  = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	testAgentID = "6ba7b811-9dad-11d1-80b4-00c04fd430c8"
)

func newTestServer(t *testing.T) (*httptest.Server, *Client) {
	t.Helper()

	purple := true
	game := GameSnapshot{
		GameID:            testGameID,
		ActiveAgent:       testAgentID,
		ActiveAgentPurple: &purple,
		Board:             BoardRecord{Board: "0000000000000000"},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/games", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(GamesResponse{Href: "/games", Games: []GameSnapshot{game}})
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(GameResponse{Href: "/games/" + testGameID, Game: game})
		}
	})
	mux.HandleFunc("/games/"+testGameID+"/plays", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"Href":  "/games/" + testGameID + "/plays",
			"Moves": []string{"♙a2a3", "♘b1c3"},
		})
	})
	mux.HandleFunc("/agents", func(w http.ResponseWriter, r *http.Request) {
		var req agentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Type != "user" || req.GameID != testGameID {
			http.Error(w, `{"message":"bad request"}`, http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(GameResponse{Href: "/agents/" + testAgentID, Game: game})
	})
	mux.HandleFunc("/agents/"+testAgentID, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(GameResponse{Href: "/agents/" + testAgentID, Game: game})
		case http.MethodPut:
			var req playRequest
			json.NewDecoder(r.Body).Decode(&req)
			if req.Move != "e2e4" {
				http.Error(w, `{"message":"invalid move"}`, http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(GameResponse{Href: "/agents/" + testAgentID, Game: game})
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return srv, c
}

func TestClient(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	t.Run("Games", func(t *testing.T) {
		games, err := c.Games(ctx)
		if err != nil {
			t.Fatalf("Games failed: %v", err)
		}
		if len(games) != 1 || games[0].GameID != testGameID {
			t.Errorf("unexpected games: %+v", games)
		}
		if games[0].ActiveAgentPurple == nil || !*games[0].ActiveAgentPurple {
			t.Error("ActiveAgentPurple should decode as true")
		}
	})

	t.Run("CreateGame", func(t *testing.T) {
		resp, err := c.CreateGame(ctx)
		if err != nil {
			t.Fatalf("CreateGame failed: %v", err)
		}
		if resp.Game.GameID != testGameID {
			t.Errorf("GameID = %q", resp.Game.GameID)
		}
	})

	t.Run("JoinGame", func(t *testing.T) {
		resp, err := c.JoinGame(ctx, testGameID, "user")
		if err != nil {
			t.Fatalf("JoinGame failed: %v", err)
		}
		if resp.Href != "/agents/"+testAgentID {
			t.Errorf("Href = %q", resp.Href)
		}
	})

	t.Run("JoinGameInvalidID", func(t *testing.T) {
		if _, err := c.JoinGame(ctx, "not-a-uuid", "user"); err == nil {
			t.Error("expected error for invalid game id")
		}
	})

	t.Run("Agent", func(t *testing.T) {
		snap, err := c.Agent(ctx, "/agents/"+testAgentID)
		if err != nil {
			t.Fatalf("Agent failed: %v", err)
		}
		if snap.ActiveAgent != testAgentID {
			t.Errorf("ActiveAgent = %q", snap.ActiveAgent)
		}
	})

	t.Run("Plays", func(t *testing.T) {
		plays, err := c.Plays(ctx, testGameID)
		if err != nil {
			t.Fatalf("Plays failed: %v", err)
		}
		if len(plays.Moves) != 2 || plays.Moves[1] != "♘b1c3" {
			t.Errorf("Moves = %v", plays.Moves)
		}
	})

	t.Run("Play", func(t *testing.T) {
		if _, err := c.Play(ctx, "/agents/"+testAgentID, "e2e4"); err != nil {
			t.Fatalf("Play failed: %v", err)
		}
	})

	t.Run("PlayRejected", func(t *testing.T) {
		_, err := c.Play(ctx, "/agents/"+testAgentID, "e2e5")
		var he *HTTPError
		if !errors.As(err, &he) {
			t.Fatalf("expected *HTTPError, got %v", err)
		}
		if he.Status != http.StatusBadRequest {
			t.Errorf("Status = %d", he.Status)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := c.Do(ctx, http.MethodGet, "missing", nil)
		var he *HTTPError
		if !errors.As(err, &he) || he.Status != http.StatusNotFound {
			t.Errorf("expected 404 HTTPError, got %v", err)
		}
	})

	t.Run("RawRelativePath", func(t *testing.T) {
		raw, err := c.Do(ctx, http.MethodGet, "games", nil)
		if err != nil {
			t.Fatalf("Do failed: %v", err)
		}
		var resp GamesResponse
		if err := json.Unmarshal(raw, &resp); err != nil || resp.Href != "/games" {
			t.Errorf("raw response not decoded: %s (%v)", raw, err)
		}
	})
}

func TestNewRejectsRelativeURL(t *testing.T) {
	if _, err := New("localhost"); err == nil {
		t.Error("expected error for relative server url")
	}
	if _, err := New(DefaultServer); err != nil {
		t.Errorf("New(DefaultServer) failed: %v", err)
	}
}
