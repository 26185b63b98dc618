package restart

import (
	"errors"
	"os"
	"os/exec"
)

// Exit codes understood by the supervisor. The bot signals intent through
// its exit status; there is no other channel between the two processes.
const (
	// ExitCodeCleanStop means the bot finished for good and must not be
	// relaunched.
	ExitCodeCleanStop = 0

	// ExitCodeRestartRequested signals a deliberate self-restart.
	//
	// Keep this stable. The supervisor compares against it to decide
	// whether to throttle the respawn.
	ExitCodeRestartRequested = 1
)

// Action is the supervisor's response to an observed child exit.
type Action int

const (
	ActionStop Action = iota
	ActionRestartNow
	ActionRestartAfterDelay
)

func (a Action) String() string {
	switch a {
	case ActionStop:
		return "stop"
	case ActionRestartNow:
		return "restart_now"
	case ActionRestartAfterDelay:
		return "restart_after_delay"
	default:
		return "unknown"
	}
}

// ClassifyExit maps a child exit status to the supervisor's next action.
func ClassifyExit(code int) Action {
	switch code {
	case ExitCodeCleanStop:
		return ActionStop
	case ExitCodeRestartRequested:
		return ActionRestartNow
	default:
		return ActionRestartAfterDelay
	}
}

// ExitStatus extracts the child's exit status from a Wait error. A non-nil
// second return means the launch itself faulted and no status exists.
func ExitStatus(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, err
}

// FaultReason gives a short stable label for a launch fault.
func FaultReason(err error) string {
	if err == nil {
		return "none"
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) {
		if errors.Is(execErr.Err, exec.ErrNotFound) {
			return "target_not_found"
		}
		return "exec_error"
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		switch {
		case errors.Is(pathErr.Err, os.ErrNotExist):
			return "target_not_found"
		case errors.Is(pathErr.Err, os.ErrPermission):
			return "permission_denied"
		default:
			return "path_error"
		}
	}

	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return "target_not_found"
	}
	return "runtime_error"
}
