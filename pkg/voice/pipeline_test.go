package voice_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boardroomai/voicepipe/pkg/tts"
	"github.com/boardroomai/voicepipe/pkg/voice"
)

func TestRenderSingleVoice(t *testing.T) {
	mock := tts.NewMock()
	mock.SynthesizeFunc = func(ctx context.Context, text string, v tts.VoiceConfig) (*tts.AudioResult, error) {
		return &tts.AudioResult{Audio: []byte("audio:" + text)}, nil
	}

	p := voice.NewPipeline(mock)
	audio, err := p.Render(context.Background(), voice.Request{
		Text:    "# Hello\n**World**",
		Mode:    voice.ModeSingle,
		Speaker: voice.SpeakerKim,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Sanitized once, synthesized once, returned directly.
	if string(audio) != "audio:Hello\nWorld" {
		t.Errorf("unexpected audio: %q", audio)
	}
	if mock.CallCount("Synthesize") != 1 {
		t.Errorf("expected 1 synthesis call, got %d", mock.CallCount("Synthesize"))
	}
	if got := mock.Calls()[0].Voice.VoiceID; got != voice.ResolveVoice(voice.SpeakerKim).VoiceID {
		t.Errorf("expected Kim's voice, got %s", got)
	}
}

func TestRenderCollaborativeOrderIndependentOfCompletion(t *testing.T) {
	// First segment synthesizes slowest; output order must still be
	// submission order.
	var calls atomic.Int64
	mock := tts.NewMock()
	mock.SynthesizeFunc = func(ctx context.Context, text string, v tts.VoiceConfig) (*tts.AudioResult, error) {
		if calls.Add(1) == 1 {
			time.Sleep(30 * time.Millisecond)
		}
		return &tts.AudioResult{Audio: []byte("[" + text + "]")}, nil
	}

	p := voice.NewPipeline(mock)
	audio, err := p.Render(context.Background(), voice.Request{
		Text: "**Alexandria (CMO):** Hello **Kim (CSO):** Hi there",
		Mode: voice.ModeCollaborative,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(audio) != "[Hello][Hi there]" {
		t.Errorf("expected submission-order assembly, got %q", audio)
	}
	if mock.CallCount("Synthesize") != 2 {
		t.Errorf("expected 2 synthesis calls, got %d", mock.CallCount("Synthesize"))
	}
}

func TestRenderCollaborativeSanitizesPerSegment(t *testing.T) {
	mock := tts.NewMock()
	p := voice.NewPipeline(mock)

	_, err := p.Render(context.Background(), voice.Request{
		Text: "**Alexandria (CMO):** We need *bold* moves **Kim (CSO):** Agreed, see `plan.md`",
		Mode: voice.ModeCollaborative,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	texts := mock.SynthesizedTexts()
	if len(texts) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(texts))
	}
	if texts[0] != "We need bold moves" {
		t.Errorf("unexpected first segment text: %q", texts[0])
	}
	if texts[1] != "Agreed, see plan.md" {
		t.Errorf("unexpected second segment text: %q", texts[1])
	}
}

func TestRenderCollaborativeNoMarkersUsesDefaultVoice(t *testing.T) {
	mock := tts.NewMock()
	p := voice.NewPipeline(mock)

	_, err := p.Render(context.Background(), voice.Request{
		Text: "No attribution markers anywhere in this answer.",
		Mode: voice.ModeCollaborative,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if calls[0].Voice.VoiceID != voice.ResolveVoice(voice.DefaultSpeaker).VoiceID {
		t.Errorf("expected default speaker voice, got %s", calls[0].Voice.VoiceID)
	}
}

func TestRenderAllOrNothing(t *testing.T) {
	// One failing segment fails the whole collaborative render; the caller
	// must never receive partial audio.
	var calls atomic.Int64
	segErr := errors.New("segment boom")
	mock := tts.NewMock()
	mock.SynthesizeFunc = func(ctx context.Context, text string, v tts.VoiceConfig) (*tts.AudioResult, error) {
		if calls.Add(1) == 2 {
			return nil, segErr
		}
		return &tts.AudioResult{Audio: []byte("ok")}, nil
	}

	p := voice.NewPipeline(mock)
	audio, err := p.Render(context.Background(), voice.Request{
		Text: "**Alexandria (CMO):** One **Kim (CSO):** Two",
		Mode: voice.ModeCollaborative,
	})
	if !errors.Is(err, segErr) {
		t.Fatalf("expected segment error, got %v", err)
	}
	if audio != nil {
		t.Errorf("expected no partial audio, got %d bytes", len(audio))
	}
}

func TestRenderTruncatesBeforeSynthesis(t *testing.T) {
	mock := tts.NewMock()
	p := voice.NewPipeline(mock, voice.WithMaxInputChars(100))

	long := strings.Repeat("a", 5000)
	_, err := p.Render(context.Background(), voice.Request{
		Text:    long,
		Mode:    voice.ModeSingle,
		Speaker: voice.SpeakerAlexandria,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	texts := mock.SynthesizedTexts()
	if len(texts) != 1 {
		t.Fatalf("expected 1 call, got %d", len(texts))
	}
	if len(texts[0]) > 100 {
		t.Errorf("expected at most 100 chars synthesized, got %d", len(texts[0]))
	}
}

func TestRenderNilProvider(t *testing.T) {
	p := voice.NewPipeline(nil)
	_, err := p.Render(context.Background(), voice.Request{Text: "hi", Mode: voice.ModeSingle})
	if !errors.Is(err, voice.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestRenderEmptyText(t *testing.T) {
	p := voice.NewPipeline(tts.NewMock())

	for _, text := range []string{"", "   \n\n  ", "```\nonly code\n```"} {
		_, err := p.Render(context.Background(), voice.Request{Text: text, Mode: voice.ModeSingle})
		if !errors.Is(err, voice.ErrEmptyText) {
			t.Errorf("text %q: expected ErrEmptyText, got %v", text, err)
		}
	}
}

func TestRenderAuthFailureLatchesDisabled(t *testing.T) {
	authErr := &tts.APIError{StatusCode: 401, Message: "invalid api key", Provider: "elevenlabs"}
	mock := tts.WithError(authErr)

	p := voice.NewPipeline(mock)
	_, err := p.Render(context.Background(), voice.Request{
		Text: "hello", Mode: voice.ModeSingle, Speaker: voice.SpeakerAlexandria,
	})
	if !tts.IsAuthFailure(err) {
		t.Fatalf("expected auth failure, got %v", err)
	}
	if !p.Disabled() {
		t.Fatal("expected pipeline disabled after credential rejection")
	}

	// Subsequent renders short-circuit without calling the provider.
	before := mock.CallCount("Synthesize")
	_, err = p.Render(context.Background(), voice.Request{
		Text: "hello again", Mode: voice.ModeSingle, Speaker: voice.SpeakerAlexandria,
	})
	if !errors.Is(err, voice.ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
	if mock.CallCount("Synthesize") != before {
		t.Error("expected no provider call while disabled")
	}
}

func TestRenderCancellationAbortsSegments(t *testing.T) {
	mock := tts.NewMock()
	started := make(chan struct{}, 4)
	mock.SynthesizeFunc = func(ctx context.Context, text string, v tts.VoiceConfig) (*tts.AudioResult, error) {
		started <- struct{}{}
		<-ctx.Done()
		return nil, ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := voice.NewPipeline(mock)

	done := make(chan error, 1)
	go func() {
		_, err := p.Render(ctx, voice.Request{
			Text: "**Alexandria (CMO):** One **Kim (CSO):** Two",
			Mode: voice.ModeCollaborative,
		})
		done <- err
	}()

	<-started
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("render did not return after cancellation")
	}
}

func TestAssembledBytesMatchConcatenation(t *testing.T) {
	// Each segment gets a distinct buffer; the assembled output must be the
	// exact concatenation in segment order.
	mock := tts.NewMock()
	mock.SynthesizeFunc = func(ctx context.Context, text string, v tts.VoiceConfig) (*tts.AudioResult, error) {
		return &tts.AudioResult{Audio: append([]byte(text), 0x00)}, nil
	}

	p := voice.NewPipeline(mock)
	audio, err := p.Render(context.Background(), voice.Request{
		Text: "**Alexandria:** alpha **Kim:** beta **Joint Strategy:** gamma",
		Mode: voice.ModeCollaborative,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := bytes.Join([][]byte{[]byte("alpha"), []byte("beta"), []byte("gamma")}, []byte{0x00})
	want = append(want, 0x00)
	if !bytes.Equal(audio, want) {
		t.Errorf("assembled audio mismatch:\n got %q\nwant %q", audio, want)
	}
}
