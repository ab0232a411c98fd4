// Package voice implements the voice response pipeline: it turns one block
// of AI-generated conversational text, possibly interleaving turns from the
// two advisor personas, into a single ordered audio/mpeg rendering.
//
// The pipeline is deterministic up to the provider boundary: markers are
// scanned on raw text (sanitization would destroy them), segments are
// extracted and sanitized independently, synthesized in parallel, and
// reassembled in submission order. Delivery contracts live in pkg/web; this
// package only produces the assembled bytes.
package voice

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/boardroomai/voicepipe/pkg/tts"
)

// DefaultMaxInputChars bounds provider cost and latency per response.
const DefaultMaxInputChars = 4000

// Mode selects how a request is rendered.
type Mode string

const (
	// ModeSingle sanitizes the whole text and speaks it with one voice.
	ModeSingle Mode = "single"

	// ModeCollaborative segments the text by attribution markers and speaks
	// each segment with its persona's voice.
	ModeCollaborative Mode = "collaborative"
)

// Request is one pipeline invocation.
type Request struct {
	// Text is the raw AI response, markers and markup included.
	Text string

	// Mode selects single-voice or collaborative rendering.
	Mode Mode

	// Speaker is the persona for single-voice mode. Ignored in
	// collaborative mode.
	Speaker Speaker
}

// Pipeline orchestrates sanitization, segmentation, synthesis, and assembly.
type Pipeline struct {
	provider tts.Provider
	maxChars int
	logger   *slog.Logger

	// disabled latches on when the provider rejects the credential.
	// Retrying a rejected key is pointless; an operator has to fix it.
	disabled atomic.Bool
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithMaxInputChars overrides the input truncation limit.
func WithMaxInputChars(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxChars = n
		}
	}
}

// WithPipelineLogger sets the structured logger.
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger.With("component", "voice.pipeline")
	}
}

// NewPipeline creates a pipeline around a TTS provider.
// A nil provider is allowed: every Render reports ErrNotConfigured, so the
// service can run with the voice feature off.
func NewPipeline(provider tts.Provider, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		provider: provider,
		maxChars: DefaultMaxInputChars,
		logger:   slog.Default().With("component", "voice.pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Disabled reports whether the pipeline latched off after a credential
// rejection.
func (p *Pipeline) Disabled() bool {
	return p.disabled.Load()
}

// Render produces the assembled audio/mpeg buffer for a request.
//
// Truncation happens once, on the whole raw text, before segmentation.
// Collaborative rendering is all-or-nothing: if any segment fails, the whole
// response fails and no partial audio is returned.
func (p *Pipeline) Render(ctx context.Context, req Request) ([]byte, error) {
	if p.provider == nil {
		return nil, ErrNotConfigured
	}
	if p.disabled.Load() {
		return nil, ErrDisabled
	}

	text := truncate(req.Text, p.maxChars)
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	logger := p.logger.With("request_id", uuid.NewString())
	start := time.Now()

	var (
		audio []byte
		err   error
	)
	if req.Mode == ModeCollaborative {
		audio, err = p.renderCollaborative(ctx, logger, text)
	} else {
		audio, err = p.renderSingle(ctx, text, req.Speaker)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("voice response rendered",
		"mode", req.Mode,
		"chars", len(text),
		"bytes", len(audio),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return audio, nil
}

func (p *Pipeline) renderSingle(ctx context.Context, text string, speaker Speaker) ([]byte, error) {
	clean := Sanitize(text)
	if clean == "" {
		return nil, ErrEmptyText
	}

	result, err := p.synthesize(ctx, clean, ResolveVoice(speaker))
	if err != nil {
		return nil, err
	}
	return result.Audio, nil
}

func (p *Pipeline) renderCollaborative(ctx context.Context, logger *slog.Logger, text string) ([]byte, error) {
	// Markers must be scanned before sanitization removes them.
	markers := ScanMarkers(text)
	segments := ExtractSegments(text, markers)

	type job struct {
		index int
		text  string
		voice tts.VoiceConfig
	}
	var jobs []job
	for _, seg := range segments {
		clean := Sanitize(seg.Text)
		if clean == "" {
			continue
		}
		jobs = append(jobs, job{
			index: len(jobs),
			text:  clean,
			voice: ResolveVoice(seg.Speaker),
		})
	}
	if len(jobs) == 0 {
		return nil, ErrEmptyText
	}

	logger.Debug("synthesizing segments",
		"markers", len(markers),
		"segments", len(jobs),
	)

	// One concurrent call per segment; segment counts are small (a handful
	// of turns), so no extra pooling. Order is enforced structurally by the
	// ordinal tag, never by completion order.
	chunks := make([]Chunk, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			result, err := p.synthesize(gctx, j.text, j.voice)
			if err != nil {
				return err
			}
			chunks[j.index] = Chunk{Index: j.index, Data: result.Audio}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// No partial audio: a half-spoken response is useless to a
		// listener, so the caller falls back to text-only.
		return nil, err
	}

	return Assemble(chunks), nil
}

// synthesize wraps the provider call with the fatal-credential latch.
func (p *Pipeline) synthesize(ctx context.Context, text string, voice tts.VoiceConfig) (*tts.AudioResult, error) {
	result, err := p.provider.Synthesize(ctx, text, voice)
	if err != nil {
		if tts.IsAuthFailure(err) {
			p.disabled.Store(true)
			p.logger.Error("provider rejected credential, disabling voice synthesis", "error", err)
		}
		return nil, err
	}
	return result, nil
}

// truncate bounds text to max runes without splitting a rune.
func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
