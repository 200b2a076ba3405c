package hub

import (
	"encoding/json"
	"testing"
	"time"
)

// testClient builds a client without a websocket connection; the test
// drains the send channel directly instead of running the pumps.
func testClient(h *Hub) *Client {
	c := &Client{hub: h, send: make(chan Message, 256)}
	h.register <- c
	return c
}

func waitCount(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if h.ClientCount() == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("client count never reached %d (now %d)", want, h.ClientCount())
}

func TestHubBroadcastFanOut(t *testing.T) {
	h := New("test", nil)
	go h.Run()
	defer h.Stop()

	a := testClient(h)
	b := testClient(h)
	waitCount(t, h, 2)

	if err := h.BroadcastJSON(map[string]string{"type": "state", "state": "listening"}); err != nil {
		t.Fatalf("BroadcastJSON: %v", err)
	}

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.send:
			if msg.Type != JSONMessage {
				t.Errorf("expected JSON message, got %v", msg.Type)
			}
			var payload map[string]string
			if err := json.Unmarshal(msg.Data, &payload); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if payload["state"] != "listening" {
				t.Errorf("unexpected payload: %v", payload)
			}
		case <-time.After(time.Second):
			t.Fatal("client never received the broadcast")
		}
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	h := New("test", nil)
	go h.Run()
	defer h.Stop()

	c := testClient(h)
	waitCount(t, h, 1)

	h.unregister <- c
	waitCount(t, h, 0)

	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("expected closed send channel")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}

func TestHubStopDisconnectsClients(t *testing.T) {
	h := New("test", nil)
	go h.Run()

	c := testClient(h)
	waitCount(t, h, 1)

	h.Stop()
	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("expected closed send channel after Stop")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel not closed after Stop")
	}
	if h.ClientCount() != 0 {
		t.Errorf("expected 0 clients after Stop, got %d", h.ClientCount())
	}
}
