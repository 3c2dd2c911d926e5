package driver

import (
	"errors"
	"math"
	"testing"
)

func TestCheckRange(t *testing.T) {
	tests := []struct {
		name    string
		v       float64
		wantErr bool
	}{
		{"Zero", 0, false},
		{"Max", 75, false},
		{"Middle", 32.5, false},
		{"Negative", -0.01, true},
		{"AboveMax", 75.01, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRange(tt.v, 75)
			if tt.wantErr && !errors.Is(err, ErrOutOfRange) {
				t.Errorf("expected ErrOutOfRange, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(-1, 75); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
	if got := Clamp(80, 75); got != 75 {
		t.Errorf("expected 75, got %v", got)
	}
	if got := Clamp(3.1, 75); got != 3.1 {
		t.Errorf("expected 3.1, got %v", got)
	}
}

func TestCheckStep(t *testing.T) {
	for _, step := range []float64{0, -1, math.NaN()} {
		if err := CheckStep(step); !errors.Is(err, ErrInvalidStep) {
			t.Errorf("CheckStep(%v): expected ErrInvalidStep, got %v", step, err)
		}
	}
	if err := CheckStep(0.1); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
