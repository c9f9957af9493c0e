package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gift-experience-service/internal/app"
	"gift-experience-service/internal/content"
	"gift-experience-service/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func TestWebSocketExperienceFlow(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	conn := dial(t, server, "/ws?visitorId=v1")
	defer conn.Close()

	welcome := readUntil(t, conn, "welcome", nil)
	if welcome["visitorId"] != "v1" || welcome["sessionId"] == "" {
		t.Fatalf("unexpected welcome: %+v", welcome)
	}

	send(t, conn, "dismissOverlay", nil)
	readUntil(t, conn, "state", func(p map[string]any) bool { return p["showOverlay"] == false })

	for range content.DefaultScript().Lines {
		send(t, conn, "advance", nil)
	}
	readUntil(t, conn, "state", func(p map[string]any) bool { return p["stage"] == "giftBox" })

	send(t, conn, "openGift", nil)
	readUntil(t, conn, "sound", func(p map[string]any) bool { return p["clip"] == "pop" })
	send(t, conn, "startQuiz", nil)
	for q := 0; q < 4; q++ {
		send(t, conn, "select", map[string]any{"questionIndex": q, "optionIndex": 1})
	}

	state := readUntil(t, conn, "state", func(p map[string]any) bool { return p["stage"] == "result" })
	result, _ := state["result"].(map[string]any)
	if result["category"] != "Throwing" {
		t.Fatalf("expected Throwing, got %+v", state["result"])
	}
}

func TestWebSocketRejectsUnknownMessages(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	conn := dial(t, server, "/ws")
	defer conn.Close()

	readUntil(t, conn, "welcome", nil)
	send(t, conn, "dance", nil)
	payload := readUntil(t, conn, "error", nil)
	if payload["message"] != "unsupported message type" {
		t.Fatalf("unexpected error payload: %+v", payload)
	}
}

func TestWebSocketUnknownScript(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	conn := dial(t, server, "/ws?script=nope")
	defer conn.Close()

	payload := readUntil(t, conn, "error", nil)
	if payload["message"] != "script not found" {
		t.Fatalf("unexpected error payload: %+v", payload)
	}
}

func newTestServer() *httptest.Server {
	scripts := memory.NewScriptRepository(memory.NewStaticScriptLoader(content.DefaultScript()), time.Minute)
	service := app.NewExperienceService(memory.NewSessionStore(), scripts, memory.NewFlagStore(), app.WithRevealInterval(0))
	wsHandler := NewWSHandler(service, content.DefaultScriptID)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	return httptest.NewServer(mux)
}

func dial(t *testing.T, server *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + path
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

// readUntil reads messages until one of type typ satisfies match (nil matches any).
func readUntil(t *testing.T, conn *websocket.Conn, typ string, match func(map[string]any) bool) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		_ = conn.SetReadDeadline(deadline)
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json waiting for %s: %v", typ, err)
		}
		if msg.Type == typ && (match == nil || match(msg.Payload)) {
			return msg.Payload
		}
	}
}
