package speech

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestFrameSilent(t *testing.T) {
	tests := []struct {
		frame Frame
		want  bool
	}{
		{Frame{Kind: FramePartial, Text: "говорю"}, false},
		{Frame{Kind: FramePartial}, true},
		{Frame{Kind: FrameFinal, Text: "сказал"}, false},
		{Frame{Kind: FrameFinal}, true},
		{Frame{Kind: FrameNoSpeech, Text: "мусор"}, true},
	}
	for _, tt := range tests {
		if got := tt.frame.Silent(); got != tt.want {
			t.Errorf("Silent() for %+v = %v, want %v", tt.frame, got, tt.want)
		}
	}
}

func TestLineSourceDeliversFinalFrames(t *testing.T) {
	src := NewLineSource(strings.NewReader("включи свет\n"), nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for {
		frame, err := src.NextFrame(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if frame.Kind == FramePartial {
			continue
		}
		if frame.Kind != FrameFinal || frame.Text != "включи свет" {
			t.Fatalf("unexpected frame %+v", frame)
		}
		break
	}
	if src.FinalResult() != "включи свет" {
		t.Fatalf("final result %q", src.FinalResult())
	}
}

func TestLineSourceResetClearsState(t *testing.T) {
	src := NewLineSource(strings.NewReader("первая строка\n"), nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for {
		frame, err := src.NextFrame(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if frame.Kind == FrameFinal {
			break
		}
	}

	if err := src.Reset(16000); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if src.FinalResult() != "" {
		t.Fatal("reset must clear the cumulative result")
	}
}
