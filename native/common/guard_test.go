package common

import (
	"errors"
	"strings"
	"testing"
)

type pauses map[string]bool

func (p pauses) IsPaused(module string) bool { return p[module] }

func TestGuardReportsPausedModule(t *testing.T) {
	view := pauses{"stablestake.cashout": true}

	if err := Guard(view, "stablestake.deposit"); err != nil {
		t.Fatalf("expected deposit flow open, got %v", err)
	}
	err := Guard(view, " stablestake.cashout ")
	if !errors.Is(err, ErrModulePaused) {
		t.Fatalf("expected ErrModulePaused, got %v", err)
	}
	if !strings.Contains(err.Error(), "stablestake.cashout") {
		t.Fatalf("expected module name in error, got %q", err)
	}
}

func TestGuardNilViewNeverBlocks(t *testing.T) {
	if err := Guard(nil, "stablestake.deposit"); err != nil {
		t.Fatalf("expected nil view to pass, got %v", err)
	}
	if err := Guard(pauses{"": true}, "  "); err != nil {
		t.Fatalf("expected empty module to pass, got %v", err)
	}
}
