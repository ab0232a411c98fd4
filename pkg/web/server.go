// Package web exposes the voice response pipeline over HTTP.
//
// Two delivery contracts are supported: a buffered caller receives the
// assembled audio as a binary stream, and a realtime caller receives a JSON
// envelope with the audio embedded as a data URI. The handlers are thin
// adapters; all pipeline knowledge lives in pkg/voice.
package web

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/boardroomai/voicepipe/pkg/breaker"
	"github.com/boardroomai/voicepipe/pkg/voice"
)

// Server is the voicepipe HTTP server.
type Server struct {
	app      *fiber.App
	port     string
	logger   *slog.Logger
	pipeline *voice.Pipeline
	breaker  *breaker.Breaker

	// configured is false when no provider credential is present; voice
	// endpoints then answer 503 without touching the pipeline.
	configured bool
}

// ServerConfig wires the server's collaborators.
type ServerConfig struct {
	Port       string
	Pipeline   *voice.Pipeline
	Breaker    *breaker.Breaker
	Configured bool
	Logger     *slog.Logger

	// Debug enables per-request access logging.
	Debug bool
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		port:       cfg.Port,
		logger:     logger.With("component", "web"),
		pipeline:   cfg.Pipeline,
		breaker:    cfg.Breaker,
		configured: cfg.Configured,
	}

	app := fiber.New(fiber.Config{
		AppName:               "voicepipe",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	if cfg.Debug {
		app.Use(fiberlogger.New())
	}

	api := app.Group("/api/voice")
	api.Post("/speech", s.handleSpeech)
	api.Post("/realtime", s.handleRealtime)

	app.Get("/health", s.handleHealth)

	s.app = app
	return s
}

// Start begins serving. It blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
