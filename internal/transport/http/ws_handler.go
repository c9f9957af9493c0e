package http

import (
	"encoding/json"
	"log"
	"net/http"

	"gift-experience-service/internal/app"
	"gift-experience-service/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service       *app.ExperienceService
	defaultScript string
	upgrader      websocket.Upgrader
}

func NewWSHandler(service *app.ExperienceService, defaultScript string) *WSHandler {
	return &WSHandler{
		service:       service,
		defaultScript: defaultScript,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	QuestionIndex int `json:"questionIndex"`
	OptionIndex   int `json:"optionIndex"`
}

type welcomePayload struct {
	SessionID string `json:"sessionId"`
	VisitorID string `json:"visitorId"`
	ScriptID  string `json:"scriptId"`
}

type soundPayload struct {
	Clip   domain.Clip `json:"clip"`
	Action string      `json:"action"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and runs one experience per connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	scriptID := r.URL.Query().Get("script")
	if scriptID == "" {
		scriptID = h.defaultScript
	}
	visitorID := r.URL.Query().Get("visitorId")
	if visitorID == "" {
		visitorID = uuid.NewString()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				// keep draining so producers never block on a dead client
				for range send {
				}
				return
			}
		}
	}()

	sessionID, seq, err := h.service.Start(r.Context(), scriptID, visitorID, app.WithSoundPlayer(wsPlayer{out: send}))
	if err != nil {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
		close(send)
		<-writerDone
		return
	}

	updates, cancel := seq.Subscribe()
	updatesDone := make(chan struct{})
	go func() {
		defer close(updatesDone)
		for snap := range updates {
			send <- outboundMessage[any]{Type: "state", Payload: snap}
		}
	}()

	send <- outboundMessage[any]{Type: "welcome", Payload: welcomePayload{
		SessionID: sessionID,
		VisitorID: visitorID,
		ScriptID:  scriptID,
	}}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if msg, ok := h.dispatch(r, seq, inbound); !ok {
			send <- msg
		}
	}

	// End closes the sequencer, which ends updates and stops every sound producer.
	cancel()
	h.service.End(sessionID)
	<-updatesDone
	close(send)
	<-writerDone
}

// dispatch applies one client event. It returns an error message and false
// when the event could not be understood.
func (h *WSHandler) dispatch(r *http.Request, seq *app.Sequencer, inbound inboundMessage) (outboundMessage[any], bool) {
	switch inbound.Type {
	case "advance":
		seq.Advance()
	case "skip":
		seq.SkipReveal()
	case "openGift":
		seq.OpenGift()
	case "startQuiz":
		seq.StartQuiz()
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid select payload"}}, false
		}
		seq.SelectOption(payload.QuestionIndex, payload.OptionIndex)
	case "showDetail":
		seq.ShowDetail()
	case "retake":
		seq.Retake()
	case "dismissOverlay":
		if err := seq.DismissOverlay(r.Context()); err != nil {
			log.Printf("persist overlay flag: %v", err)
		}
	default:
		return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}, false
	}
	return outboundMessage[any]{}, true
}

// wsPlayer forwards sound requests to the client. Requests that do not fit in
// the outgoing buffer are dropped; the client recovers on the next event.
type wsPlayer struct {
	out chan<- outboundMessage[any]
}

func (p wsPlayer) Play(clip domain.Clip)  { p.emit(clip, "play") }
func (p wsPlayer) Loop(clip domain.Clip)  { p.emit(clip, "loop") }
func (p wsPlayer) Pause(clip domain.Clip) { p.emit(clip, "pause") }

func (p wsPlayer) emit(clip domain.Clip, action string) {
	select {
	case p.out <- outboundMessage[any]{Type: "sound", Payload: soundPayload{Clip: clip, Action: action}}:
	default:
	}
}
