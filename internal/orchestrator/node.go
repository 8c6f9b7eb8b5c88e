package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// NodeState is the connection lifecycle of a NodeClient.
type NodeState int

const (
	NodeConnecting NodeState = iota
	NodeConnected
	NodeDisconnected
)

// NodeHandler is the narrow interface a NodeClient invokes for the events
// it observes. Keeping it this small (rather than a back-reference to the
// concrete Orchestrator) breaks the Orchestrator<->NodeClient cycle: the
// Orchestrator holds NodeClients, a NodeClient calls back into whatever
// satisfies this interface, and the Orchestrator is assumed to outlive
// every NodeClient it constructed.
type NodeHandler interface {
	OnReady(node *NodeClient, resumed bool)
	OnDisconnect(node *NodeClient)
	OnTrackStart(node *NodeClient, guildID, encodedTrack string)
	OnTrackEnd(node *NodeClient, guildID, encodedTrack, reason string)
	OnTrackException(node *NodeClient, guildID string)
	OnTrackStuck(node *NodeClient, guildID string)
	OnWebSocketClosed(node *NodeClient, guildID string)
}

// VoiceBlock is the `voice` object pushed into updatePlayer once a
// Connection is complete.
type VoiceBlock struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
	Endpoint  string `json:"endpoint"`
}

// UpdatePlayerPatch is the request body of PATCH .../players/{guildId}.
// Fields are pointers so unset ones are omitted on the wire, matching the
// node's "only touch what I send" semantics.
type UpdatePlayerPatch struct {
	EncodedTrack *string     `json:"encodedTrack,omitempty"`
	Position     *int64      `json:"position,omitempty"`
	Paused       *bool       `json:"paused,omitempty"`
	Voice        *VoiceBlock `json:"voice,omitempty"`
}

// PlayerState is the decoded response of an updatePlayer/getPlayer call.
type PlayerState struct {
	GuildID string `json:"guildId"`
	Track   *struct {
		Encoded string `json:"encoded"`
		Info    struct {
			Title  string `json:"title"`
			Author string `json:"author"`
			Length int64  `json:"length"`
			URI    string `json:"uri"`
		} `json:"info"`
	} `json:"track"`
	State struct {
		Position int64 `json:"position"`
	} `json:"state"`
	Paused bool `json:"paused"`
}

// NodeClient is one connection to one remote audio node. It exposes the
// REST operations of the Lavalink v3 surface and dispatches incoming
// WebSocket frames to a NodeHandler.
type NodeClient struct {
	Host     string
	Password string
	TLS      bool
	UserID   string
	timeout  time.Duration
	handler  NodeHandler
	agent    string

	httpClient *http.Client

	mu        sync.RWMutex
	state     NodeState
	sessionID string

	conn     *websocket.Conn
	readyCh  chan struct{}
	readyOne sync.Once
}

// NewNodeClient builds a NodeClient in the Connecting state. Connect must
// be called before any REST operation will succeed.
func NewNodeClient(host, password string, tls bool, userID string, timeout time.Duration, handler NodeHandler) *NodeClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &NodeClient{
		Host:       host,
		Password:   password,
		TLS:        tls,
		UserID:     userID,
		timeout:    timeout,
		handler:    handler,
		agent:      "hydrogen-go/1.0",
		httpClient: &http.Client{},
		state:      NodeConnecting,
		readyCh:    make(chan struct{}),
	}
}

func (n *NodeClient) wsScheme() string {
	if n.TLS {
		return "wss"
	}
	return "ws"
}

func (n *NodeClient) httpScheme() string {
	if n.TLS {
		return "https"
	}
	return "http"
}

// State returns the current connection state.
func (n *NodeClient) State() NodeState {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

// SessionID returns the node-assigned session id, populated once Connected.
func (n *NodeClient) SessionID() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.sessionID
}

// Equal reports whether two NodeClients identify the same node, per the
// (host, session-id, state) equality rule. Session id is meaningless until
// Connected, so it only participates in the comparison once both sides are.
func (n *NodeClient) Equal(other *NodeClient) bool {
	if n == other {
		return true
	}
	if n == nil || other == nil {
		return false
	}
	a, b := n.State(), other.State()
	if n.Host != other.Host || a != b {
		return false
	}
	if a == NodeConnected {
		return n.SessionID() == other.SessionID()
	}
	return true
}

// Connect opens the WebSocket, spawns the reader task, and blocks until
// either the node sends its ready frame or the configured timeout elapses.
func (n *NodeClient) Connect(ctx context.Context) error {
	url := fmt.Sprintf("%s://%s/v3/websocket", n.wsScheme(), n.Host)

	headers := http.Header{}
	headers.Set("Authorization", n.Password)
	headers.Set("User-Id", n.UserID)
	headers.Set("Client-Name", n.agent)

	dialer := websocket.Dialer{HandshakeTimeout: n.timeout}
	conn, _, err := dialer.DialContext(ctx, url, headers)
	if err != nil {
		return &TransportError{Cause: err}
	}

	n.mu.Lock()
	n.conn = conn
	n.mu.Unlock()

	go n.readLoop()

	select {
	case <-n.readyCh:
		return nil
	case <-time.After(n.timeout):
		conn.Close()
		return ErrNotReady
	}
}

// readLoop decodes frames and dispatches them until the socket closes.
func (n *NodeClient) readLoop() {
	for {
		_, message, err := n.conn.ReadMessage()
		if err != nil {
			n.mu.Lock()
			n.state = NodeDisconnected
			n.sessionID = ""
			n.mu.Unlock()
			n.handler.OnDisconnect(n)
			return
		}

		var frame struct {
			Op string `json:"op"`
		}
		if err := json.Unmarshal(message, &frame); err != nil {
			continue
		}

		switch frame.Op {
		case "ready":
			n.handleReady(message)
		case "event":
			n.handleEvent(message)
		case "playerUpdate", "stats":
			// forwarded as optional hooks in richer deployments; this
			// engine has no subscriber for them yet.
		}
	}
}

func (n *NodeClient) handleReady(raw []byte) {
	var payload struct {
		Resumed   bool   `json:"resumed"`
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return
	}

	n.mu.Lock()
	n.sessionID = payload.SessionID
	n.state = NodeConnected
	n.mu.Unlock()

	n.readyOne.Do(func() { close(n.readyCh) })
	n.handler.OnReady(n, payload.Resumed)
}

func (n *NodeClient) handleEvent(raw []byte) {
	var payload struct {
		Type         string `json:"type"`
		GuildID      string `json:"guildId"`
		EncodedTrack string `json:"encodedTrack"`
		Reason       string `json:"reason"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return
	}

	switch payload.Type {
	case "TrackStartEvent":
		n.handler.OnTrackStart(n, payload.GuildID, payload.EncodedTrack)
	case "TrackEndEvent":
		n.handler.OnTrackEnd(n, payload.GuildID, payload.EncodedTrack, payload.Reason)
	case "TrackExceptionEvent":
		n.handler.OnTrackException(n, payload.GuildID)
	case "TrackStuckEvent":
		n.handler.OnTrackStuck(n, payload.GuildID)
	case "WebSocketClosedEvent":
		n.handler.OnWebSocketClosed(n, payload.GuildID)
	}
}

// restURL builds a REST endpoint path under the node's base URL.
func (n *NodeClient) restURL(path string) string {
	return fmt.Sprintf("%s://%s%s", n.httpScheme(), n.Host, path)
}

func (n *NodeClient) requireReady() error {
	if n.State() != NodeConnected || n.SessionID() == "" {
		return ErrNotReady
	}
	return nil
}

// decodeResponse applies the response-parsing rule: try the node's error
// shape first, then the typed body, else InvalidResponse. The error shape
// must be tried first because it carries its own Status field — a struct
// decode into T silently "succeeds" on an error body whose keys don't
// overlap T's fields, returning a zero-value T instead of surfacing the
// error.
func decodeResponse[T any](body []byte) (T, error) {
	var restErr RestError
	if err := json.Unmarshal(body, &restErr); err == nil && restErr.Status != 0 {
		var zero T
		return zero, &restErr
	}

	var typed T
	if err := json.Unmarshal(body, &typed); err == nil {
		return typed, nil
	}

	var zero T
	return zero, &InvalidResponseError{Cause: fmt.Errorf("could not decode %d bytes", len(body))}
}

func (n *NodeClient) do(ctx context.Context, method, url string, body any) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, &TransportError{Cause: err}
	}
	req.Header.Set("Authorization", n.Password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, 0, &TransportError{Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &TransportError{Cause: err}
	}
	return data, resp.StatusCode, nil
}

// UpdatePlayer issues `PATCH /v3/sessions/{sid}/players/{guildId}`.
func (n *NodeClient) UpdatePlayer(ctx context.Context, guildID string, noReplace bool, patch UpdatePlayerPatch) (PlayerState, error) {
	if err := n.requireReady(); err != nil {
		return PlayerState{}, err
	}

	url := n.restURL(fmt.Sprintf("/v3/sessions/%s/players/%s?noReplace=%t", n.SessionID(), guildID, noReplace))
	data, status, err := n.do(ctx, http.MethodPatch, url, patch)
	if err != nil {
		return PlayerState{}, err
	}
	return handleRestBody[PlayerState](data, status)
}

// TrackLoad issues `GET /v3/loadtracks?identifier=...`.
func (n *NodeClient) TrackLoad(ctx context.Context, identifier string) (trackLoadResponse, error) {
	if err := n.requireReady(); err != nil {
		return trackLoadResponse{}, err
	}

	url := n.restURL(fmt.Sprintf("/v3/loadtracks?identifier=%s", neturl.QueryEscape(identifier)))
	data, status, err := n.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return trackLoadResponse{}, err
	}
	return handleRestBody[trackLoadResponse](data, status)
}

// GetPlayer issues `GET /v3/sessions/{sid}/players/{guildId}`. A 404 is
// returned as a *RestError with Status 404 rather than treated specially
// here; Player.Play is the layer that knows 404 means "absent".
func (n *NodeClient) GetPlayer(ctx context.Context, guildID string) (PlayerState, error) {
	if err := n.requireReady(); err != nil {
		return PlayerState{}, err
	}

	url := n.restURL(fmt.Sprintf("/v3/sessions/%s/players/%s", n.SessionID(), guildID))
	data, status, err := n.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return PlayerState{}, err
	}
	return handleRestBody[PlayerState](data, status)
}

// DestroyPlayer issues `DELETE /v3/sessions/{sid}/players/{guildId}`.
func (n *NodeClient) DestroyPlayer(ctx context.Context, guildID string) error {
	if err := n.requireReady(); err != nil {
		return err
	}

	url := n.restURL(fmt.Sprintf("/v3/sessions/%s/players/%s", n.SessionID(), guildID))
	data, status, err := n.do(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	if status >= 200 && status < 300 {
		return nil
	}
	_, err = handleRestBody[struct{}](data, status)
	return err
}

// handleRestBody applies the response-parsing rule for a non-2xx-aware
// caller: a 2xx with an empty body still needs the typed decode attempted
// (most Lavalink bodies are non-empty on success), everything else follows
// decodeResponse.
func handleRestBody[T any](data []byte, status int) (T, error) {
	if status == http.StatusNotFound {
		var zero T
		return zero, &RestError{Status: http.StatusNotFound, Message: "not found"}
	}
	return decodeResponse[T](data)
}

// Close tears down the underlying WebSocket, if any.
func (n *NodeClient) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
