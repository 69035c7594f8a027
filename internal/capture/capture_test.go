package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"mira/internal/speech"
)

// budgets below assume one frame per 250ms: 16000 Hz, 4000 sample chunks.
func testConfig() Config {
	return Config{
		SampleRate:     16000,
		ChunkSize:      4000,
		SilenceTimeout: time.Second, // 4 frames
	}
}

func silent() speech.Frame {
	return speech.Frame{Kind: speech.FramePartial}
}

func partial(text string) speech.Frame {
	return speech.Frame{Kind: speech.FramePartial, Text: text}
}

func final(text string) speech.Frame {
	return speech.Frame{Kind: speech.FrameFinal, Text: text}
}

func TestCaptureFinalEndsImmediately(t *testing.T) {
	source := speech.NewScriptedSource("",
		partial("вкл"),
		partial("включи свет"),
		final("включи свет"),
	)
	s := NewSession(testConfig(), source, nil)

	res := s.Capture(context.Background(), 15*time.Second)
	if res.EndedBy != EndSilence {
		t.Fatalf("expected natural end, got %s", res.EndedBy)
	}
	if res.Text != "включи свет" {
		t.Fatalf("unexpected text %q", res.Text)
	}
	if res.Frames != 3 {
		t.Fatalf("expected 3 frames consumed, got %d", res.Frames)
	}
	if source.DrainCalls != 1 {
		t.Fatalf("drain must run exactly once, got %d", source.DrainCalls)
	}
}

func TestCaptureNoSpeechAfterSilenceBudget(t *testing.T) {
	source := speech.NewScriptedSource("") // silent forever
	s := NewSession(testConfig(), source, nil)

	res := s.Capture(context.Background(), 15*time.Second)
	if res.EndedBy != EndNoSpeech {
		t.Fatalf("expected no speech, got %s", res.EndedBy)
	}
	if res.Text != "" {
		t.Fatalf("no speech must carry no text, got %q", res.Text)
	}
	if res.Frames != 4 {
		t.Fatalf("silence budget is 4 frames, session consumed %d", res.Frames)
	}
}

func TestCapturePartialResetsSilenceCounter(t *testing.T) {
	// Three silent frames, speech, then silence again: the counter must
	// restart so the session ends 4 frames after the last speech.
	source := speech.NewScriptedSource("короткая фраза",
		silent(), silent(), silent(),
		partial("короткая"),
		silent(), silent(), silent(), silent(),
	)
	s := NewSession(testConfig(), source, nil)

	res := s.Capture(context.Background(), 15*time.Second)
	if res.EndedBy != EndSilence {
		t.Fatalf("cumulative result present, expected natural end, got %s", res.EndedBy)
	}
	if res.Text != "короткая фраза" {
		t.Fatalf("unexpected text %q", res.Text)
	}
	if res.Frames != 8 {
		t.Fatalf("expected 8 frames consumed, got %d", res.Frames)
	}
}

func TestCaptureMaxDuration(t *testing.T) {
	frames := make([]speech.Frame, 0, 64)
	for i := 0; i < 64; i++ {
		frames = append(frames, partial("говорит без пауз"))
	}
	source := speech.NewScriptedSource("говорит без пауз", frames...)
	s := NewSession(testConfig(), source, nil)

	// 2s budget at 4 frames/second.
	res := s.Capture(context.Background(), 2*time.Second)
	if res.EndedBy != EndMaxDuration {
		t.Fatalf("expected max duration, got %s", res.EndedBy)
	}
	if res.Text != "говорит без пауз" {
		t.Fatalf("truncated session should still return the partial text, got %q", res.Text)
	}
	if res.Frames != 8 {
		t.Fatalf("expected 8 frames consumed, got %d", res.Frames)
	}
}

func TestCaptureSourceErrorAbortsCleanly(t *testing.T) {
	source := speech.NewScriptedSource("половина фразы",
		partial("половина"),
	).FailAt(1, errors.New("stream closed"))
	s := NewSession(testConfig(), source, nil)

	res := s.Capture(context.Background(), 15*time.Second)
	if res.EndedBy != EndError {
		t.Fatalf("expected error outcome, got %s", res.EndedBy)
	}
	if res.Text != "" {
		t.Fatalf("a failed capture must not propagate partial text, got %q", res.Text)
	}
	if source.DrainCalls != 1 {
		t.Fatal("failed sessions must still drain the source")
	}
}

func TestCaptureResetsSourcePerSession(t *testing.T) {
	source := speech.NewScriptedSource("", final("раз"), final("два"))
	s := NewSession(testConfig(), source, nil)

	first := s.Capture(context.Background(), 15*time.Second)
	second := s.Capture(context.Background(), 15*time.Second)

	if first.Text != "раз" || second.Text != "два" {
		t.Fatalf("sessions must not leak into each other: %q / %q", first.Text, second.Text)
	}
	if len(source.ResetCalls) != 2 || source.ResetCalls[0] != 16000 {
		t.Fatalf("each capture must reset the source, saw %v", source.ResetCalls)
	}
	if source.DrainCalls != 2 {
		t.Fatalf("each capture must drain the source, got %d", source.DrainCalls)
	}
}
