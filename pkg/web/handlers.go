package web

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/sara-assist/go-sara/pkg/call"
	"github.com/sara-assist/go-sara/pkg/gov"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"backend": s.deps.Capability.Name(),
	})
}

// handleCallStart creates and starts a new call session. Only one call
// may be active at a time.
func (s *Server) handleCallStart(c *fiber.Ctx) error {
	s.mu.Lock()
	if s.session != nil && s.session.State() != call.StateEnded {
		s.mu.Unlock()
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "a call is already active",
		})
	}

	session := call.NewSession(
		s.deps.Capability,
		s.deps.Transcriber,
		s.deps.Completer,
		s.deps.Synthesizer,
		s.deps.CallOptions...,
	)
	session.OnStateChange(func(st call.State) {
		if st == call.StateEnded {
			callsEnded.Inc()
		}
		s.callHub.BroadcastJSON(callEvent{Type: "state", State: st})
	})
	session.OnTranscript(func(line call.TranscriptLine) {
		transcriptLines.WithLabelValues(line.Speaker).Inc()
		s.callHub.BroadcastJSON(callEvent{Type: "transcript", Transcript: &line})
	})
	session.OnNotice(func(text string) {
		callNotices.Inc()
		s.callHub.BroadcastJSON(callEvent{Type: "notice", Notice: text})
	})

	s.session = session
	s.mu.Unlock()

	if err := session.Start(context.Background()); err != nil {
		s.logger.Warn("call start failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "voice call unavailable",
		})
	}

	callsStarted.Inc()
	return c.JSON(session.Snapshot())
}

func (s *Server) handleCallState(c *fiber.Ctx) error {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()
	if session == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no call",
		})
	}
	return c.JSON(session.Snapshot())
}

func (s *Server) handleCallHangup(c *fiber.Ctx) error {
	session := s.activeSession()
	if session == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no active call",
		})
	}
	session.HangUp()
	return c.JSON(session.Snapshot())
}

func (s *Server) handleCallMute(c *fiber.Ctx) error {
	session := s.activeSession()
	if session == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no active call",
		})
	}
	return c.JSON(fiber.Map{"muted": session.ToggleMute()})
}

func (s *Server) handleCallSpeaker(c *fiber.Ctx) error {
	session := s.activeSession()
	if session == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no active call",
		})
	}
	return c.JSON(fiber.Map{"speaker_enabled": session.ToggleSpeaker()})
}

func (s *Server) handleCallTalk(c *fiber.Ctx) error {
	session := s.activeSession()
	if session == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no active call",
		})
	}
	session.FinishListening()
	return c.JSON(session.Snapshot())
}

type chatRequest struct {
	Text string `json:"text"`
}

// handleChat runs one text-chat exchange through the assistant.
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil || req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "text is required",
		})
	}

	reply, err := s.thread.Exchange(c.Context(), s.deps.Completer, req.Text)
	if err != nil {
		s.logger.Warn("chat exchange failed", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "assistant unavailable",
		})
	}
	return c.JSON(reply)
}

func (s *Server) handleChatHistory(c *fiber.Ctx) error {
	return c.JSON(s.thread.Newest())
}

type loginRequest struct {
	NationalID string `json:"national_id"`
}

// handleLogin validates the national ID, runs the simulated Nafath
// verification, and returns the resolved scenario.
func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if !gov.ValidateNationalID(req.NationalID) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "invalid national ID",
		})
	}

	ok, err := s.deps.Backend.VerifyNafath(c.Context(), req.NationalID)
	if err != nil || !ok {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "verification failed",
		})
	}

	return c.JSON(fiber.Map{
		"verified": true,
		"scenario": gov.DetermineScenario(req.NationalID),
	})
}

func (s *Server) handleProfile(c *fiber.Ctx) error {
	return c.JSON(gov.DemoUser())
}

func (s *Server) handleServices(c *fiber.Ctx) error {
	return c.JSON(gov.DemoUser().Services)
}

type govRequest struct {
	NationalID string `json:"national_id"`
	FullName   string `json:"full_name"`
}

func (s *Server) handleTravelRecord(c *fiber.Ctx) error {
	var req govRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}
	rec, err := s.deps.Backend.CheckTravelRecord(c.Context(), req.NationalID)
	if err != nil {
		return govError(c, err)
	}
	return c.JSON(rec)
}

func (s *Server) handleRelativeMatch(c *fiber.Ctx) error {
	var req govRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}
	match, err := s.deps.Backend.MatchRelative(c.Context(), req.NationalID, req.FullName)
	if err != nil {
		return govError(c, err)
	}
	return c.JSON(match)
}

func (s *Server) handleContactRequest(c *fiber.Ctx) error {
	var req govRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}
	accepted, err := s.deps.Backend.SendContactRequest(c.Context(), req.NationalID, req.FullName)
	if err != nil {
		return govError(c, err)
	}
	return c.JSON(fiber.Map{"accepted": accepted})
}

func (s *Server) handleSecureChannel(c *fiber.Ctx) error {
	var req govRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}
	ch, err := s.deps.Backend.OpenSecureChannel(c.Context(), req.NationalID, req.FullName)
	if err != nil {
		return govError(c, err)
	}
	return c.JSON(ch)
}

func badRequest(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "invalid request body",
	})
}

func govError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gov.ErrInvalidNationalID) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "invalid national ID",
		})
	}
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
		"error": "service unavailable",
	})
}
