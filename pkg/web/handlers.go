package web

import (
	"encoding/base64"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/boardroomai/voicepipe/pkg/breaker"
	"github.com/boardroomai/voicepipe/pkg/tts"
	"github.com/boardroomai/voicepipe/pkg/voice"
)

// SpeechRequest is the request body for both voice endpoints.
type SpeechRequest struct {
	Text string `json:"text"`

	// Speaker is "alexandria", "kim", or "collaborative".
	// Empty defaults to the default persona.
	Speaker string `json:"speaker"`
}

// RealtimeResponse is the realtime/JSON delivery contract. AudioURL is a
// data:audio/mpeg;base64 URI, or null when synthesis was skipped or failed
// and the caller should fall back to text-only.
type RealtimeResponse struct {
	Text     string  `json:"text"`
	AudioURL *string `json:"audioUrl"`
}

func (s *Server) parseRequest(c *fiber.Ctx) (voice.Request, error) {
	var body SpeechRequest
	if err := c.BodyParser(&body); err != nil {
		return voice.Request{}, errors.New("invalid request body")
	}

	req := voice.Request{Text: body.Text}
	switch body.Speaker {
	case "", string(voice.DefaultSpeaker):
		req.Mode = voice.ModeSingle
		req.Speaker = voice.DefaultSpeaker
	case "collaborative":
		req.Mode = voice.ModeCollaborative
	default:
		speaker, err := voice.ParseSpeaker(body.Speaker)
		if err != nil {
			return voice.Request{}, err
		}
		req.Mode = voice.ModeSingle
		req.Speaker = speaker
	}
	return req, nil
}

// handleSpeech implements the buffered contract: the assembled audio as a
// binary stream. There is no text fallback here, so every failure is an
// explicit service-unavailable, never a malformed audio body.
func (s *Server) handleSpeech(c *fiber.Ctx) error {
	req, err := s.parseRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if !s.configured {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "voice service not configured",
		})
	}

	audio, err := s.pipeline.Render(c.Context(), req)
	if err != nil {
		return s.renderError(c, err)
	}

	c.Set(fiber.HeaderContentType, "audio/mpeg")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(audio)
}

// handleRealtime implements the realtime/JSON contract: the response text
// plus the audio embedded as a data URI, degrading to text-only on failure.
func (s *Server) handleRealtime(c *fiber.Ctx) error {
	req, err := s.parseRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if !s.configured {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "voice service not configured",
		})
	}

	resp := RealtimeResponse{Text: req.Text}

	audio, err := s.pipeline.Render(c.Context(), req)
	if err != nil {
		// Text-only degradation: the chat text is still useful even when
		// the voice rendering is not available.
		s.logger.Warn("synthesis failed, returning text-only response", "error", err)
		return c.JSON(resp)
	}

	uri := "data:audio/mpeg;base64," + base64.StdEncoding.EncodeToString(audio)
	resp.AudioURL = &uri
	return c.JSON(resp)
}

// renderError maps pipeline failures onto the buffered contract.
func (s *Server) renderError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, voice.ErrEmptyText):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "no speakable text",
		})
	case errors.Is(err, voice.ErrNotConfigured), errors.Is(err, voice.ErrDisabled), tts.IsAuthFailure(err):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "voice service misconfigured",
		})
	case errors.Is(err, breaker.ErrOpen):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "voice service temporarily unavailable",
		})
	default:
		s.logger.Error("synthesis failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "voice synthesis failed",
		})
	}
}

// handleHealth reports service and voice feature status.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	voiceStatus := fiber.Map{
		"configured": s.configured,
	}
	if s.pipeline != nil {
		voiceStatus["disabled"] = s.pipeline.Disabled()
	}
	if s.breaker != nil {
		voiceStatus["breaker"] = string(s.breaker.Status())
	}

	return c.JSON(fiber.Map{
		"status": "ok",
		"voice":  voiceStatus,
	})
}
