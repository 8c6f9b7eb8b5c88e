package statusweb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nashiradeer/hydrogen-go/internal/orchestrator"
)

type noopVoiceManager struct{}

func (noopVoiceManager) CurrentConnection(ctx context.Context, guildID string) (orchestrator.Connection, error) {
	return orchestrator.Connection{}, orchestrator.ErrVoiceManagerNotConnected
}
func (noopVoiceManager) Leave(ctx context.Context, guildID string) {}

type noopChannelCache struct{}

func (noopChannelCache) Channel(ctx context.Context, channelID string) (orchestrator.ChannelInfo, error) {
	return orchestrator.ChannelInfo{}, nil
}

type noopChatClient struct{}

func (noopChatClient) UpsertPanel(ctx context.Context, channelID, messageID string, embed orchestrator.PanelRender) (string, error) {
	return "msg-1", nil
}
func (noopChatClient) DeleteMessage(ctx context.Context, channelID, messageID string) {}
func (noopChatClient) ReportError(ctx context.Context, channelID string, err error)   {}

type noopTranslator struct{}

func (noopTranslator) T(locale, category, key string) string { return key }

func TestHealthHandlerAlwaysOK(t *testing.T) {
	s := NewServer()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestStatusHandlerWithoutOrchestratorIsUnavailable(t *testing.T) {
	orchestrator.Set(nil)
	s := NewServer()

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestStatusHandlerReportsNodeAndPlayerCounts(t *testing.T) {
	o := orchestrator.New(orchestrator.Config{}, noopVoiceManager{}, noopChannelCache{}, noopChatClient{}, noopTranslator{})
	orchestrator.Set(o)
	defer orchestrator.Set(nil)

	s := NewServer()
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["nodes"].(float64) != 0 {
		t.Fatalf("expected zero nodes, got %v", body["nodes"])
	}
	if body["players"].(float64) != 0 {
		t.Fatalf("expected zero players, got %v", body["players"])
	}
}

func TestGuildHandlerMissingPlayerReturns404(t *testing.T) {
	o := orchestrator.New(orchestrator.Config{}, noopVoiceManager{}, noopChannelCache{}, noopChatClient{}, noopTranslator{})
	orchestrator.Set(o)
	defer orchestrator.Set(nil)

	s := NewServer()
	req := httptest.NewRequest(http.MethodGet, "/api/guilds/unknown-guild", nil)
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
