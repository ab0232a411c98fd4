// voiced: HTTP service that renders advisor responses as speech.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/boardroomai/voicepipe/internal/config"
	"github.com/boardroomai/voicepipe/internal/log"
	"github.com/boardroomai/voicepipe/pkg/breaker"
	"github.com/boardroomai/voicepipe/pkg/tts"
	"github.com/boardroomai/voicepipe/pkg/voice"
	"github.com/boardroomai/voicepipe/pkg/web"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Init("info")
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log.Init(cfg.LogLevel)
	logger := log.L()

	var (
		provider tts.Provider
		cb       *breaker.Breaker
	)
	if cfg.VoiceConfigured() {
		cb = breaker.New(cfg.BreakerThreshold, cfg.BreakerReset,
			breaker.WithLogger(log.Component("breaker")))

		provider, err = tts.NewElevenLabs(
			tts.WithAPIKey(cfg.ElevenLabsAPIKey),
			tts.WithBaseURL(cfg.ElevenLabsBaseURL),
			tts.WithTimeout(cfg.SynthesisTimeout),
			tts.WithBreaker(cb),
			tts.WithLogger(log.Component("tts")),
		)
		if err != nil {
			log.Error("failed to create synthesis provider", "error", err)
			os.Exit(1)
		}
	} else {
		log.Warn("ELEVENLABS_API_KEY not set, voice synthesis disabled")
	}

	pipeline := voice.NewPipeline(provider,
		voice.WithMaxInputChars(cfg.MaxInputChars),
		voice.WithPipelineLogger(logger),
	)

	server := web.NewServer(web.ServerConfig{
		Port:       cfg.Port,
		Pipeline:   pipeline,
		Breaker:    cb,
		Configured: cfg.VoiceConfigured(),
		Logger:     logger,
		Debug:      cfg.LogLevel == "debug",
	})

	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := server.Shutdown(); err != nil {
		log.Error("shutdown error", "error", err)
	}
	if provider != nil {
		provider.Close()
	}
}
