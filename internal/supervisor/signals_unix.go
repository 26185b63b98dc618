//go:build !windows

package supervisor

import (
	"os"
	"syscall"
)

func supervisorSignals() []os.Signal {
	return []os.Signal{
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGHUP,
		syscall.SIGQUIT,
	}
}

// terminateProcess asks the bot to exit without forcing it.
func terminateProcess(p *os.Process) error {
	if p == nil {
		return nil
	}
	return p.Signal(syscall.SIGTERM)
}
