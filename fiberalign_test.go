package fiberalign

import "testing"

func TestFormatVolts(t *testing.T) {
	tests := []struct {
		in       float64
		expected string
	}{
		{3.1, "3.1"},
		{3.0 + 0.1, "3.1"},
		{3, "3"},
		{0, "0"},
		{-0.001, "0"},
		{74.999, "75"},
		{0.1 + 0.2, "0.3"},
	}

	for _, tt := range tests {
		got := FormatVolts(tt.in)
		if got != tt.expected {
			t.Errorf("FormatVolts(%v): expected=%q, got=%q", tt.in, tt.expected, got)
		}
	}
}

func TestEnableStateButtons(t *testing.T) {
	tests := []struct {
		state      EnableState
		canEnable  bool
		canDisable bool
	}{
		{EnableStateUnavailable, false, false},
		{EnableStateDisabled, true, false},
		{EnableStateEnabled, false, true},
		{EnableStateMixed, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if tt.state.CanEnable() != tt.canEnable {
				t.Errorf("CanEnable: expected=%v", tt.canEnable)
			}
			if tt.state.CanDisable() != tt.canDisable {
				t.Errorf("CanDisable: expected=%v", tt.canDisable)
			}
		})
	}
}
