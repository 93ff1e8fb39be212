package synth

import (
	"testing"
	"time"
)

func TestNewCommandSynthesizerDefaults(t *testing.T) {
	s := NewCommandSynthesizer("synthesize", 0)
	if s.Timeout != 5*time.Minute {
		t.Errorf("zero timeout should default to 5m, got %v", s.Timeout)
	}
	if s.Command != "synthesize" {
		t.Errorf("command = %q", s.Command)
	}
}

func TestNewCommandSynthesizerKeepsTimeout(t *testing.T) {
	s := NewCommandSynthesizer("synthesize", 30*time.Second)
	if s.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", s.Timeout)
	}
}
