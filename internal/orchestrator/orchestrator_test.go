package orchestrator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeChannelCache struct {
	mu      sync.Mutex
	members map[string]int
	isVoice map[string]bool
}

func newFakeChannelCache() *fakeChannelCache {
	return &fakeChannelCache{members: make(map[string]int), isVoice: make(map[string]bool)}
}

func (c *fakeChannelCache) set(channelID string, voice bool, nonBot int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isVoice[channelID] = voice
	c.members[channelID] = nonBot
}

func (c *fakeChannelCache) Channel(ctx context.Context, channelID string) (ChannelInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ChannelInfo{IsVoice: c.isVoice[channelID], NonBotMembers: c.members[channelID]}, nil
}

type fakeChatClient struct {
	mu      sync.Mutex
	upserts int
	deletes int
	lastID  string
}

func (c *fakeChatClient) UpsertPanel(ctx context.Context, channelID, messageID string, embed PanelRender) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.upserts++
	if messageID == "" {
		c.lastID = "panel-1"
	} else {
		c.lastID = messageID
	}
	return c.lastID, nil
}

func (c *fakeChatClient) DeleteMessage(ctx context.Context, channelID, messageID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes++
}

func (c *fakeChatClient) ReportError(ctx context.Context, channelID string, err error) {}

type fakeTranslator struct{}

func (fakeTranslator) T(locale, category, key string) string { return category + "." + key }

func newTestOrchestrator(t *testing.T, chat *fakeChatClient, cache *fakeChannelCache) (*Orchestrator, func()) {
	t.Helper()
	exited := false
	cfg := Config{
		EmptyChatTimeout: 50 * time.Millisecond,
		FatalExit:        func() { exited = true },
	}
	o := New(cfg, fakeVoiceManager{}, cache, chat, fakeTranslator{})
	return o, func() {
		if exited {
			t.Log("fatal exit was invoked")
		}
	}
}

func addFakeNode(o *Orchestrator, host string) *NodeClient {
	n := &NodeClient{Host: host, state: NodeConnected, sessionID: "s-" + host}
	o.pool.Add(n)
	return n
}

func TestVoiceStateThenVoiceServerOrderingIssuesOneCompleteUpdate(t *testing.T) {
	var patches []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			patches = append(patches, body)
		}
		json.NewEncoder(w).Encode(map[string]any{"guildId": "g1"})
	}))
	defer srv.Close()

	chat := &fakeChatClient{}
	cache := newFakeChannelCache()
	o, done := newTestOrchestrator(t, chat, cache)
	defer done()

	host := strings.TrimPrefix(srv.URL, "http://")
	node := addFakeNode(o, host)

	player := NewPlayer("g1", "en-US", "chan-text", node, Connection{}, fakeVoiceManager{})
	o.mu.Lock()
	o.registry["g1"] = player
	o.mu.Unlock()

	ctx := context.Background()
	o.HandleVoiceState(ctx, "g1", "bot-1", true, true, "chan-1", "sess-1", "")
	o.HandleVoiceServer(ctx, "g1", "tok-1", "ep-1")

	if len(patches) != 1 {
		t.Fatalf("expected exactly one updatePlayer PATCH carrying the complete voice block, got %d", len(patches))
	}
	voice, ok := patches[0]["voice"].(map[string]any)
	if !ok {
		t.Fatalf("expected a voice block in the patch, got %+v", patches[0])
	}
	for _, field := range []string{"sessionId", "token", "endpoint"} {
		if voice[field] == "" || voice[field] == nil {
			t.Fatalf("voice block missing %s: %+v", field, voice)
		}
	}
}

func TestIdleDestroyThenCancel(t *testing.T) {
	chat := &fakeChatClient{}
	cache := newFakeChannelCache()
	o, done := newTestOrchestrator(t, chat, cache)
	defer done()

	node := addFakeNode(o, "node-a")
	player := NewPlayer("g1", "en-US", "chan-text", node, Connection{ChannelID: "voice-1"}, fakeVoiceManager{})
	o.mu.Lock()
	o.registry["g1"] = player
	o.mu.Unlock()

	cache.set("voice-1", true, 0) // empty except the bot

	ctx := context.Background()
	o.HandleVoiceState(ctx, "g1", "bot-1", false, false, "", "", "")

	if !o.idle.Armed("g1") {
		t.Fatalf("expected idle timer to be armed")
	}

	cache.set("voice-1", true, 2) // a second non-bot listener joined
	o.HandleVoiceState(ctx, "g1", "bot-1", false, false, "", "", "")

	if o.idle.Armed("g1") {
		t.Fatalf("expected idle timer to be cancelled")
	}

	if _, ok := o.Player("g1"); !ok {
		t.Fatalf("player should not have been destroyed")
	}
}

func TestNodeDisconnectCascadeDestroysOnlyAffectedPlayers(t *testing.T) {
	chat := &fakeChatClient{}
	cache := newFakeChannelCache()
	o, done := newTestOrchestrator(t, chat, cache)
	defer done()

	nodeA := addFakeNode(o, "node-a")
	nodeB := addFakeNode(o, "node-b")
	// Disconnected so Player.Destroy skips the (non-existent) REST call.
	nodeA.state = NodeDisconnected

	p1 := NewPlayer("g1", "en-US", "ch", nodeA, Connection{}, fakeVoiceManager{})
	p2 := NewPlayer("g2", "en-US", "ch", nodeB, Connection{}, fakeVoiceManager{})
	p3 := NewPlayer("g3", "en-US", "ch", nodeA, Connection{}, fakeVoiceManager{})

	o.mu.Lock()
	o.registry["g1"] = p1
	o.registry["g2"] = p2
	o.registry["g3"] = p3
	o.mu.Unlock()

	o.OnDisconnect(nodeA)

	if o.pool.Len() != 1 {
		t.Fatalf("expected 1 node left in pool, got %d", o.pool.Len())
	}
	if _, ok := o.Player("g1"); ok {
		t.Fatalf("g1 should have been destroyed")
	}
	if _, ok := o.Player("g3"); ok {
		t.Fatalf("g3 should have been destroyed")
	}
	if _, ok := o.Player("g2"); !ok {
		t.Fatalf("g2 should still be registered")
	}
}

func TestNodeDisconnectEmptyingPoolIsFatal(t *testing.T) {
	var exited bool
	chat := &fakeChatClient{}
	cache := newFakeChannelCache()
	cfg := Config{FatalExit: func() { exited = true }}
	o := New(cfg, fakeVoiceManager{}, cache, chat, fakeTranslator{})

	node := addFakeNode(o, "only-node")
	o.OnDisconnect(node)

	if !exited {
		t.Fatalf("expected FatalExit to be called when the pool empties")
	}
}
