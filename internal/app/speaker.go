package app

import (
	"context"
	"io"
	"os"

	"github.com/fatih/color"
)

// ConsoleSpeaker voices replies by printing them, standing in for a TTS
// engine on hosts without one.
type ConsoleSpeaker struct {
	out   io.Writer
	style *color.Color
}

func NewConsoleSpeaker() *ConsoleSpeaker {
	return &ConsoleSpeaker{
		out:   os.Stdout,
		style: color.New(color.FgCyan, color.Bold),
	}
}

func (s *ConsoleSpeaker) Speak(_ context.Context, text string) error {
	_, err := s.style.Fprintf(s.out, "mira: %s\n", text)
	return err
}
