package restart

import (
	"errors"
	"testing"
)

func TestClassifyExit(t *testing.T) {
	tests := []struct {
		name string
		code int
		want Action
	}{
		{"clean stop", 0, ActionStop},
		{"requested restart", 1, ActionRestartNow},
		{"plain crash", 2, ActionRestartAfterDelay},
		{"oom kill", 137, ActionRestartAfterDelay},
		{"sigterm", 143, ActionRestartAfterDelay},
		{"max byte", 255, ActionRestartAfterDelay},
		{"signaled, no status", -1, ActionRestartAfterDelay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyExit(tt.code); got != tt.want {
				t.Errorf("ClassifyExit(%d) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestActionString(t *testing.T) {
	tests := []struct {
		action Action
		want   string
	}{
		{ActionStop, "stop"},
		{ActionRestartNow, "restart_now"},
		{ActionRestartAfterDelay, "restart_after_delay"},
		{Action(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.action.String(); got != tt.want {
			t.Errorf("Action(%d).String() = %q, want %q", int(tt.action), got, tt.want)
		}
	}
}

func TestExitStatusNilError(t *testing.T) {
	code, err := ExitStatus(nil)
	if err != nil {
		t.Fatalf("ExitStatus(nil) returned error: %v", err)
	}
	if code != 0 {
		t.Fatalf("ExitStatus(nil) = %d, want 0", code)
	}
}

func TestExitStatusPlainErrorIsFault(t *testing.T) {
	boom := errors.New("boom")
	_, err := ExitStatus(boom)
	if !errors.Is(err, boom) {
		t.Fatalf("ExitStatus(plain error) should pass the fault through, got %v", err)
	}
}

func TestFaultReasonPlainError(t *testing.T) {
	if got := FaultReason(errors.New("boom")); got != "runtime_error" {
		t.Fatalf("FaultReason(plain error) = %q, want runtime_error", got)
	}
	if got := FaultReason(nil); got != "none" {
		t.Fatalf("FaultReason(nil) = %q, want none", got)
	}
}
