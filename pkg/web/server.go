// Package web exposes the call session and the mocked service screens
// over HTTP and websocket: REST endpoints for user intents and state,
// plus a live event stream for connected clients.
package web

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sara-assist/go-sara/pkg/assistant"
	"github.com/sara-assist/go-sara/pkg/audio"
	"github.com/sara-assist/go-sara/pkg/call"
	"github.com/sara-assist/go-sara/pkg/gov"
	"github.com/sara-assist/go-sara/pkg/hub"
	"github.com/sara-assist/go-sara/pkg/messages"
	"github.com/sara-assist/go-sara/pkg/speech"
	"github.com/sara-assist/go-sara/pkg/transcribe"
)

// Deps carries everything the server needs to run calls and screens.
type Deps struct {
	Capability  audio.Capability
	Transcriber transcribe.Transcriber
	Completer   assistant.Completer
	Synthesizer speech.Synthesizer
	Backend     *gov.Backend

	// CallOptions are applied to every session the server starts.
	CallOptions []call.Option

	// MetricsEnabled mounts the Prometheus endpoint at /metrics.
	MetricsEnabled bool

	Logger *slog.Logger
}

// Server is the HTTP and websocket front end.
type Server struct {
	app    *fiber.App
	port   string
	deps   Deps
	logger *slog.Logger

	callHub *hub.Hub
	thread  *messages.Thread

	mu      sync.Mutex
	session *call.Session
}

// NewServer builds the server and its routes.
func NewServer(port string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	s := &Server{
		port:    port,
		deps:    deps,
		logger:  deps.Logger.With("component", "web"),
		callHub: hub.New("call", deps.Logger),
		thread:  messages.NewThread(),
	}

	app := fiber.New(fiber.Config{
		AppName:               "SARA",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/health", s.handleHealth)

	api.Post("/call/start", s.handleCallStart)
	api.Get("/call", s.handleCallState)
	api.Post("/call/hangup", s.handleCallHangup)
	api.Post("/call/mute", s.handleCallMute)
	api.Post("/call/speaker", s.handleCallSpeaker)
	api.Post("/call/talk", s.handleCallTalk)

	api.Post("/chat", s.handleChat)
	api.Get("/chat", s.handleChatHistory)

	api.Post("/auth/login", s.handleLogin)
	api.Get("/profile", s.handleProfile)
	api.Get("/services", s.handleServices)

	api.Post("/gov/travel-record", s.handleTravelRecord)
	api.Post("/gov/relative-match", s.handleRelativeMatch)
	api.Post("/gov/contact-request", s.handleContactRequest)
	api.Post("/gov/secure-channel", s.handleSecureChannel)

	if deps.MetricsEnabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/call", websocket.New(s.handleCallWS))

	s.app = app
	return s
}

// Start runs the hub and listens on the configured port. Blocks.
func (s *Server) Start() error {
	go s.callHub.Run()
	s.logger.Info("server listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// Shutdown gracefully stops the server, ending any active call.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	if s.session != nil {
		s.session.HangUp()
	}
	s.mu.Unlock()
	s.callHub.Stop()
	return s.app.Shutdown()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// activeSession returns the current session, or nil when none is live.
func (s *Server) activeSession() *call.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil || s.session.State() == call.StateEnded {
		return nil
	}
	return s.session
}

// callEvent is the envelope broadcast to websocket clients.
type callEvent struct {
	Type       string               `json:"type"`
	State      call.State           `json:"state,omitempty"`
	Transcript *call.TranscriptLine `json:"transcript,omitempty"`
	Notice     string               `json:"notice,omitempty"`
}

// handleCallWS attaches a websocket client to the call event stream
// and accepts intent messages over the same socket.
func (s *Server) handleCallWS(conn *websocket.Conn) {
	client := hub.NewClient(s.callHub, conn, s.handleWSIntent)

	if session := s.activeSession(); session != nil {
		data, err := json.Marshal(callEvent{Type: "state", State: session.State()})
		if err == nil {
			s.callHub.Broadcast(hub.NewJSONMessage(data))
		}
	}

	client.Run()
}

type wsIntent struct {
	Action string `json:"action"`
}

func (s *Server) handleWSIntent(data []byte) {
	var intent wsIntent
	if err := json.Unmarshal(data, &intent); err != nil {
		s.logger.Debug("bad websocket intent", "error", err)
		return
	}

	session := s.activeSession()
	if session == nil {
		return
	}

	switch intent.Action {
	case "hangup":
		session.HangUp()
	case "mute":
		session.ToggleMute()
	case "speaker":
		session.ToggleSpeaker()
	case "talk":
		session.FinishListening()
	default:
		s.logger.Debug("unknown websocket intent", "action", intent.Action)
	}
}
