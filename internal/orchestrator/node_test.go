package orchestrator

import "testing"

func TestDecodeResponseTypedBody(t *testing.T) {
	body := []byte(`{"guildId":"123","paused":true}`)
	state, err := decodeResponse[PlayerState](body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.GuildID != "123" || !state.Paused {
		t.Fatalf("unexpected decode: %+v", state)
	}
}

func TestDecodeResponseErrorShape(t *testing.T) {
	body := []byte(`{"timestamp":1,"status":500,"error":"Internal Server Error","message":"boom","path":"/v3/x"}`)
	_, err := decodeResponse[PlayerState](body)
	restErr, ok := err.(*RestError)
	if !ok {
		t.Fatalf("expected *RestError, got %T (%v)", err, err)
	}
	if restErr.Status != 500 || restErr.Message != "boom" {
		t.Fatalf("unexpected rest error: %+v", restErr)
	}
}

func TestDecodeResponseGarbageIsInvalidResponse(t *testing.T) {
	_, err := decodeResponse[PlayerState]([]byte("not json at all"))
	if _, ok := err.(*InvalidResponseError); !ok {
		t.Fatalf("expected *InvalidResponseError, got %T (%v)", err, err)
	}
}

func TestHandleRestBody404IsNormalAbsent(t *testing.T) {
	_, err := handleRestBody[PlayerState](nil, 404)
	restErr, ok := err.(*RestError)
	if !ok {
		t.Fatalf("expected *RestError for 404, got %T", err)
	}
	if restErr.Status != 404 {
		t.Fatalf("expected status 404, got %d", restErr.Status)
	}
}

func TestNodeClientEqualityByHostSessionState(t *testing.T) {
	a := &NodeClient{Host: "node-a", state: NodeConnected, sessionID: "s1"}
	b := &NodeClient{Host: "node-a", state: NodeConnected, sessionID: "s1"}
	c := &NodeClient{Host: "node-a", state: NodeConnected, sessionID: "s2"}
	d := &NodeClient{Host: "node-b", state: NodeConnected, sessionID: "s1"}

	if !a.Equal(b) {
		t.Fatalf("expected a == b")
	}
	if a.Equal(c) {
		t.Fatalf("expected a != c (different session)")
	}
	if a.Equal(d) {
		t.Fatalf("expected a != d (different host)")
	}
}

func TestNodeClientEqualityIgnoresSessionBeforeConnected(t *testing.T) {
	a := &NodeClient{Host: "node-a", state: NodeConnecting, sessionID: ""}
	b := &NodeClient{Host: "node-a", state: NodeConnecting, sessionID: ""}
	if !a.Equal(b) {
		t.Fatalf("expected not-yet-connected nodes with same host to be equal")
	}
}
