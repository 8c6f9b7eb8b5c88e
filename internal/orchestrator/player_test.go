package orchestrator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type fakeVoiceManager struct{}

func (fakeVoiceManager) CurrentConnection(ctx context.Context, guildID string) (Connection, error) {
	return Connection{ChannelID: "chan-1", SessionID: "sess-1", Token: "tok-1", Endpoint: "ep-1"}, nil
}
func (fakeVoiceManager) Leave(ctx context.Context, guildID string) {}

// newTestNode builds a NodeClient already past the ready handshake, backed
// by an httptest server whose handler the caller controls.
func newTestNode(t *testing.T, handler http.HandlerFunc) (*NodeClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	host := strings.TrimPrefix(srv.URL, "http://")
	node := NewNodeClient(host, "pw", false, "bot-1", 0, noopHandler{})
	node.state = NodeConnected
	node.sessionID = "node-sess-1"
	return node, srv
}

type noopHandler struct{}

func (noopHandler) OnReady(*NodeClient, bool)                      {}
func (noopHandler) OnDisconnect(*NodeClient)                       {}
func (noopHandler) OnTrackStart(*NodeClient, string, string)       {}
func (noopHandler) OnTrackEnd(*NodeClient, string, string, string) {}
func (noopHandler) OnTrackException(*NodeClient, string)           {}
func (noopHandler) OnTrackStuck(*NodeClient, string)               {}
func (noopHandler) OnWebSocketClosed(*NodeClient, string)          {}

func TestPlayFromEmptyQueueOnFreshPlayer(t *testing.T) {
	var patchesIssued int

	node, srv := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/v3/loadtracks"):
			json.NewEncoder(w).Encode(map[string]any{
				"loadType": "TRACK_LOADED",
				"tracks": []map[string]any{
					{"encoded": "enc-1", "info": map[string]any{"title": "Track One"}},
				},
				"playlistInfo": map[string]any{"selectedTrack": -1},
			})
		case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/players/"):
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPatch:
			patchesIssued++
			json.NewEncoder(w).Encode(map[string]any{"guildId": "g1"})
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	})
	defer srv.Close()

	player := NewPlayer("g1", "en-US", "chan-text", node, Connection{
		ChannelID: "chan-1", SessionID: "sess-1", Token: "tok-1", Endpoint: "ep-1",
	}, fakeVoiceManager{})

	result, err := player.Play(context.Background(), "some url", "user-1")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if result.Count != 1 || !result.Playing || result.Truncated {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Track.Encoded != "enc-1" {
		t.Fatalf("unexpected track: %+v", result.Track)
	}
	if player.Queue.Len() != 1 || player.Queue.Index() != 0 {
		t.Fatalf("unexpected queue state: len=%d index=%d", player.Queue.Len(), player.Queue.Index())
	}
	if patchesIssued != 1 {
		t.Fatalf("expected exactly one updatePlayer PATCH, got %d", patchesIssued)
	}
}

func TestPlaySearchFallbackOnlyAppendsFirstResult(t *testing.T) {
	var loadCalls []string

	node, srv := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/v3/loadtracks"):
			loadCalls = append(loadCalls, r.URL.RawQuery)
			if len(loadCalls) == 1 {
				json.NewEncoder(w).Encode(map[string]any{"loadType": "NO_MATCHES", "tracks": []any{}})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"loadType": "SEARCH_RESULT",
				"tracks": []map[string]any{
					{"encoded": "s-1", "info": map[string]any{"title": "First"}},
					{"encoded": "s-2", "info": map[string]any{"title": "Second"}},
					{"encoded": "s-3", "info": map[string]any{"title": "Third"}},
				},
			})
		case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/players/"):
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPatch:
			json.NewEncoder(w).Encode(map[string]any{"guildId": "g1"})
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	})
	defer srv.Close()

	player := NewPlayer("g1", "en-US", "chan-text", node, Connection{
		ChannelID: "chan-1", SessionID: "sess-1", Token: "tok-1", Endpoint: "ep-1",
	}, fakeVoiceManager{})

	result, err := player.Play(context.Background(), "foo", "user-1")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if len(loadCalls) != 2 {
		t.Fatalf("expected a retry with the search prefix, got %d calls", len(loadCalls))
	}
	if !strings.Contains(loadCalls[1], "ytsearch%3Afoo") {
		t.Fatalf("expected second call to use ytsearch prefix, got %q", loadCalls[1])
	}
	if result.Count != 1 || player.Queue.Len() != 1 {
		t.Fatalf("expected only the first search result appended, got count=%d len=%d", result.Count, player.Queue.Len())
	}
}

func TestLoopModeQueueWraparoundCallsStartPlaying(t *testing.T) {
	var patchesIssued int
	node, srv := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			patchesIssued++
		}
		json.NewEncoder(w).Encode(map[string]any{"guildId": "g1"})
	})
	defer srv.Close()

	player := NewPlayer("g1", "en-US", "chan-text", node, Connection{
		ChannelID: "chan-1", SessionID: "sess-1", Token: "tok-1", Endpoint: "ep-1",
	}, fakeVoiceManager{})
	player.Queue.Add([]Track{track("a"), track("b"), track("c")})
	player.Queue.SetMode(LoopQueue)
	player.Queue.SetIndex(2)

	player.Next(context.Background())

	if player.Queue.Index() != 0 {
		t.Fatalf("expected wrap to index 0, got %d", player.Queue.Index())
	}
	if patchesIssued != 1 {
		t.Fatalf("expected startPlaying to issue one PATCH, got %d", patchesIssued)
	}
}

func TestLoopModeNoneStopsWithoutRestCall(t *testing.T) {
	var patchesIssued int
	node, srv := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			patchesIssued++
		}
		json.NewEncoder(w).Encode(map[string]any{"guildId": "g1"})
	})
	defer srv.Close()

	player := NewPlayer("g1", "en-US", "chan-text", node, Connection{
		ChannelID: "chan-1", SessionID: "sess-1", Token: "tok-1", Endpoint: "ep-1",
	}, fakeVoiceManager{})
	player.Queue.Add([]Track{track("a"), track("b")})
	player.Queue.SetMode(LoopNone)
	player.Queue.SetIndex(1)

	player.Next(context.Background())

	if player.Queue.Index() != 1 {
		t.Fatalf("expected index clamped at 1, got %d", player.Queue.Index())
	}
	if patchesIssued != 0 {
		t.Fatalf("expected no PATCH when the queue stops, got %d", patchesIssued)
	}
	if !player.Paused() {
		t.Fatalf("expected player to pause when the queue clamps at the end")
	}
}

func TestPlayerDestroyIsIdempotentAndBlocksFurtherOps(t *testing.T) {
	node, srv := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"guildId": "g1"})
	})
	defer srv.Close()

	player := NewPlayer("g1", "en-US", "chan-text", node, Connection{}, fakeVoiceManager{})
	ctx := context.Background()

	player.Destroy(ctx)
	player.Destroy(ctx) // must not panic or double-run

	if _, _, err := player.Skip(ctx); err != ErrPlayerNotFound {
		t.Fatalf("expected ErrPlayerNotFound after destroy, got %v", err)
	}
	if _, err := player.Play(ctx, "x", "u"); err != ErrPlayerNotFound {
		t.Fatalf("expected ErrPlayerNotFound after destroy, got %v", err)
	}
}
