package stream

import (
	"testing"
	"time"

	"github.com/mcoot/trackmyhand/internal/metrics"
	"github.com/mcoot/trackmyhand/internal/testutil"
)

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		name     string
		event    string
		data     string
		expected string
	}{
		{
			name:     "single line data",
			event:    "game",
			data:     `{"pot":"10.00"}`,
			expected: "event: game\ndata: {\"pot\":\"10.00\"}\n\n",
		},
		{
			name:     "multi-line data",
			event:    "clock",
			data:     "{\n  \"state\": \"running\"\n}",
			expected: "event: clock\ndata: {\ndata:   \"state\": \"running\"\ndata: }\n\n",
		},
		{
			name:     "empty data",
			event:    "ping",
			data:     "",
			expected: "event: ping\ndata: \n\n",
		},
		{
			name:     "data with carriage returns",
			event:    "test",
			data:     "line1\r\nline2\r\n",
			expected: "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatEvent(tt.event, tt.data)
			if string(result) != tt.expected {
				t.Errorf("formatEvent(%q, %q)\ngot:  %q\nwant: %q",
					tt.event, tt.data, string(result), tt.expected)
			}
		})
	}
}

func newTestHub() *Hub {
	hub := NewHub("GAME-1", testutil.NopLogger())
	go hub.Run()
	return hub
}

func receive(t *testing.T, client *Client) (string, bool) {
	t.Helper()
	select {
	case msg, ok := <-client.send:
		return string(msg), ok
	case <-time.After(time.Second):
		t.Fatal("client did not receive message")
		return "", false
	}
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()

	client := NewClient("test")
	if !hub.Register(client) {
		t.Fatal("Register() = false on an open hub")
	}
	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.BroadcastEvent("game", "data")

	if msg, _ := receive(t, client); msg != "event: game\ndata: data\n\n" {
		t.Errorf("client received %q", msg)
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()

	client := NewClient("test")
	hub.Register(client)
	hub.Unregister(client)

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after unregister, want 0", hub.ClientCount())
	}
	if _, ok := <-client.send; ok {
		t.Error("client channel still open after unregister")
	}

	// A second unregister is harmless
	hub.Unregister(client)
}

func TestHub_BroadcastToMultipleClients(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()

	clients := []*Client{NewClient("a"), NewClient("b"), NewClient("c")}
	for _, c := range clients {
		hub.Register(c)
	}

	hub.BroadcastEvent("update", "data")

	for i, c := range clients {
		if msg, _ := receive(t, c); msg != "event: update\ndata: data\n\n" {
			t.Errorf("client %d received %q", i+1, msg)
		}
	}
}

func TestHub_CloseDeliversQueuedMessages(t *testing.T) {
	hub := NewHub("GAME-1", testutil.NopLogger())
	client := NewClient("test")
	hub.Register(client)

	// Queue before Run starts so Close races nothing
	hub.BroadcastEvent(EventClosed, "bye")
	hub.Close()
	go hub.Run()

	if msg, ok := receive(t, client); !ok || msg != "event: closed\ndata: bye\n\n" {
		t.Errorf("received %q (open=%v), want the closed event", msg, ok)
	}
	if _, ok := receive(t, client); ok {
		t.Error("client channel still open after close")
	}

	if hub.Register(NewClient("late")) {
		t.Error("Register() = true on a closed hub")
	}
	hub.Close()
}

func TestManager_SubscribeAndUnsubscribe(t *testing.T) {
	m := metrics.New()
	manager := NewManager(m, testutil.NopLogger())

	if manager.Hub("GAME-1") != nil {
		t.Fatal("Hub returned non-nil before anyone subscribed")
	}

	c1, c2 := NewClient("a"), NewClient("b")
	hub := manager.subscribe("GAME-1", c1)
	if again := manager.subscribe("GAME-1", c2); again != hub {
		t.Error("second subscriber got a different hub")
	}
	if manager.Hub("GAME-1") != hub {
		t.Error("Hub returned a different hub")
	}
	if other := manager.subscribe("GAME-2", NewClient("c")); other == hub {
		t.Error("different games share a hub")
	}

	manager.unsubscribe("GAME-1", hub, c1)
	if manager.Hub("GAME-1") == nil {
		t.Error("hub removed while a client remains")
	}
	manager.unsubscribe("GAME-1", hub, c2)
	if manager.Hub("GAME-1") != nil {
		t.Error("empty hub still exists")
	}

	manager.CloseAll()
	if manager.Hub("GAME-2") != nil {
		t.Error("hub still exists after CloseAll")
	}
}

func TestPublisher_Close(t *testing.T) {
	manager := NewManager(nil, testutil.NopLogger())
	publisher := NewPublisher(manager, testutil.NopLogger())

	// Publishing to a game nobody follows is a no-op
	publisher.Publish("GAME-1", EventGame, map[string]string{"pot": "10.00"})

	client := NewClient("test")
	hub := manager.subscribe("GAME-1", client)
	defer manager.unsubscribe("GAME-1", hub, client)

	publisher.Publish("GAME-1", EventGame, map[string]string{"pot": "10.00"})
	if msg, _ := receive(t, client); msg != "event: game\ndata: {\"pot\":\"10.00\"}\n\n" {
		t.Errorf("client received %q", msg)
	}

	publisher.Close("GAME-1", "archived")
	if msg, _ := receive(t, client); msg != "event: closed\ndata: {\"reason\":\"archived\"}\n\n" {
		t.Errorf("client received %q", msg)
	}
	if _, ok := receive(t, client); ok {
		t.Error("client channel still open after close")
	}
	if manager.Hub("GAME-1") != nil {
		t.Error("hub still exists after close")
	}
}
