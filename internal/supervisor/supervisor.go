// Package supervisor keeps a bot process alive, relaunching it according
// to its exit code until it stops cleanly or the operator interrupts.
package supervisor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"botkeeper/internal/appinfo"
	"botkeeper/internal/botlog"
	"botkeeper/internal/restart"
)

const (
	// EnvMarker is set in the bot's environment on every launch so the bot
	// can tell it runs under the keeper (and can skip its own reload
	// machinery).
	EnvMarker = "BOT_AUTO_RESTART"

	// EnvSupervisorPID is informational only (helps debugging).
	EnvSupervisorPID = "BOTKEEPER_SUPERVISOR_PID"
)

const (
	// DefaultRestartPause runs before every launch after the first.
	DefaultRestartPause = 2 * time.Second

	// DefaultCrashDelay runs after exits the bot did not ask for.
	DefaultCrashDelay = 3 * time.Second

	// DefaultFaultDelay runs after a launch that never produced a process.
	DefaultFaultDelay = 10 * time.Second

	// DefaultKillGrace bounds how long a scheduled restart waits for the
	// bot to honor the terminate request before killing it.
	DefaultKillGrace = 8 * time.Second
)

// IsManagedChild reports whether this process was itself launched by a
// keeper. Used to refuse keeper-under-keeper setups.
func IsManagedChild() bool {
	return strings.TrimSpace(os.Getenv(EnvMarker)) != ""
}

type State string

const (
	StateStarting   State = "starting"
	StateRunning    State = "running"
	StateRestarting State = "restarting"
	StateFaulted    State = "faulted"
	StateStopped    State = "stopped"
)

// Status is a point-in-time snapshot of the loop, safe to read from other
// goroutines while Run is blocked.
type Status struct {
	BotPID    int
	State     State
	Launches  int
	LastExit  int
	StartedAt time.Time
}

// Schedule yields the next planned restart time. Schedules produced by
// robfig/cron satisfy this.
type Schedule interface {
	Next(time.Time) time.Time
}

type Options struct {
	// BotPath is the program to keep alive.
	BotPath string

	// WorkDir is the bot's working directory. Defaults to the directory
	// containing the keeper executable.
	WorkDir string

	// Env is the base environment for the bot. Defaults to os.Environ().
	// The marker variables are appended on top.
	Env []string

	// Output receives operator-facing lines. Defaults to os.Stdout.
	Output io.Writer

	// Log, when set, receives kind-tagged lifecycle lines.
	Log *botlog.Logger

	ChildStdin  io.Reader
	ChildStdout io.Writer
	ChildStderr io.Writer

	RestartPause time.Duration
	CrashDelay   time.Duration
	FaultDelay   time.Duration
	KillGrace    time.Duration

	// RestartSchedule, when set, asks the bot to exit at each firing and
	// relaunches it immediately.
	RestartSchedule Schedule
}

type Supervisor struct {
	opts Options

	mu        sync.Mutex
	state     State
	launches  int
	botPID    int
	lastExit  int
	startedAt time.Time
}

func New(opts Options) (*Supervisor, error) {
	if strings.TrimSpace(opts.BotPath) == "" {
		return nil, errors.New("bot path is required")
	}
	if strings.TrimSpace(opts.WorkDir) == "" {
		dir, err := ExecutableDir()
		if err != nil {
			return nil, err
		}
		opts.WorkDir = dir
	}
	if opts.Env == nil {
		opts.Env = os.Environ()
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ChildStdin == nil {
		opts.ChildStdin = os.Stdin
	}
	if opts.ChildStdout == nil {
		opts.ChildStdout = os.Stdout
	}
	if opts.ChildStderr == nil {
		opts.ChildStderr = os.Stderr
	}
	if opts.RestartPause <= 0 {
		opts.RestartPause = DefaultRestartPause
	}
	if opts.CrashDelay <= 0 {
		opts.CrashDelay = DefaultCrashDelay
	}
	if opts.FaultDelay <= 0 {
		opts.FaultDelay = DefaultFaultDelay
	}
	if opts.KillGrace <= 0 {
		opts.KillGrace = DefaultKillGrace
	}
	return &Supervisor{opts: opts, state: StateStarting}, nil
}

// ExecutableDir returns the directory containing the keeper executable.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// ResolveBotPath joins a relative bot path with the keeper executable's
// directory, so bots laid out next to the keeper resolve the same way no
// matter where the keeper is started from.
func ResolveBotPath(raw string) (string, error) {
	p := strings.TrimSpace(raw)
	if p == "" {
		return "", errors.New("bot path is empty")
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	dir, err := ExecutableDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, p), nil
}

// Run blocks until the bot exits cleanly or a shutdown signal arrives,
// returning the keeper's exit code.
func (s *Supervisor) Run() (int, error) {
	sigCh := make(chan os.Signal, 4)
	signal.Notify(sigCh, supervisorSignals()...)
	defer signal.Stop(sigCh)

	s.printHeader()
	s.logf(botlog.KindInfo, "keeper started bot=%s workdir=%s", s.opts.BotPath, s.opts.WorkDir)

	for {
		launch := s.beginLaunch()
		if launch > 1 {
			s.setState(StateRestarting)
			s.printf("\n%s\n", botlog.Rule())
			s.printf("🔄 RESTARTING BOT (restart #%d)\n", launch)
			s.printf("%s\n\n", botlog.Rule())
			s.logf(botlog.KindRestart, "restart #%d", launch)
			if sig := pause(sigCh, s.opts.RestartPause); sig != nil {
				return s.stop(sig), nil
			}
		}

		res := s.runOnce(sigCh)
		switch {
		case res.sig != nil:
			return s.stop(res.sig), nil

		case res.fault != nil:
			s.noteFault()
			s.printf("\n❌ Error running bot: %v\n", res.fault)
			s.printf("Retrying in %v...\n", s.opts.FaultDelay)
			s.logf(botlog.KindError, "launch fault reason=%s err=%v", restart.FaultReason(res.fault), res.fault)
			if sig := pause(sigCh, s.opts.FaultDelay); sig != nil {
				return s.stop(sig), nil
			}

		case res.planned:
			s.noteExit(res.code)
			s.printf("\n🔄 Scheduled restart hit. Restarting...\n")
			s.logf(botlog.KindRestart, "scheduled restart, bot exited code=%d", res.code)

		default:
			s.noteExit(res.code)
			switch restart.ClassifyExit(res.code) {
			case restart.ActionStop:
				s.setState(StateStopped)
				s.printf("\n✅ Bot exited cleanly (exit code 0). Stopping auto-restart.\n")
				s.logf(botlog.KindBot, "bot exited code=0, stopping")
				return 0, nil

			case restart.ActionRestartNow:
				s.printf("\n🔄 Bot exited with code %d. Restarting...\n", res.code)
				s.logf(botlog.KindBot, "bot exited code=%d", res.code)

			case restart.ActionRestartAfterDelay:
				s.printf("\n🔄 Bot exited with code %d. Restarting...\n", res.code)
				s.printf("   (Waiting %v before restart...)\n", s.opts.CrashDelay)
				s.logf(botlog.KindBot, "bot exited code=%d, waiting %v", res.code, s.opts.CrashDelay)
				if sig := pause(sigCh, s.opts.CrashDelay); sig != nil {
					return s.stop(sig), nil
				}
			}
		}
	}
}

type runResult struct {
	code    int
	planned bool
	sig     os.Signal
	fault   error
}

func (s *Supervisor) runOnce(sigCh <-chan os.Signal) runResult {
	env := append([]string{}, s.opts.Env...)
	env = append(env,
		EnvMarker+"=1",
		EnvSupervisorPID+"="+strconv.Itoa(os.Getpid()),
	)

	cmd := exec.Command(s.opts.BotPath)
	cmd.Env = env
	cmd.Dir = s.opts.WorkDir
	cmd.Stdin = s.opts.ChildStdin
	cmd.Stdout = s.opts.ChildStdout
	cmd.Stderr = s.opts.ChildStderr

	if err := cmd.Start(); err != nil {
		return runResult{fault: err}
	}
	s.noteStarted(cmd.Process.Pid)
	s.logf(botlog.KindBot, "bot started pid=%d launch=%d", cmd.Process.Pid, s.Status().Launches)

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	var schedCh <-chan time.Time
	if s.opts.RestartSchedule != nil {
		next := s.opts.RestartSchedule.Next(time.Now())
		if !next.IsZero() {
			timer := time.NewTimer(time.Until(next))
			defer timer.Stop()
			schedCh = timer.C
		}
	}

	planned := false
	killCh := (<-chan time.Time)(nil)
	var killTimer *time.Timer

	for {
		select {
		case sig := <-sigCh:
			if cmd.Process != nil {
				_ = cmd.Process.Signal(sig)
			}
			return runResult{sig: sig}

		case <-schedCh:
			schedCh = nil
			planned = true
			s.printf("\n🔄 Scheduled restart: asking bot to exit...\n")
			s.logf(botlog.KindRestart, "scheduled restart pid=%d", cmd.Process.Pid)
			_ = terminateProcess(cmd.Process)
			if killTimer == nil {
				killTimer = time.NewTimer(s.opts.KillGrace)
				killCh = killTimer.C
			}

		case <-killCh:
			if cmd.Process != nil {
				_ = cmd.Process.Kill()
			}
			killCh = nil

		case runErr := <-waitCh:
			if killTimer != nil {
				killTimer.Stop()
			}
			code, err := restart.ExitStatus(runErr)
			if err != nil {
				return runResult{fault: err}
			}
			return runResult{code: code, planned: planned}
		}
	}
}

// pause waits for d unless a shutdown signal arrives first, returning the
// signal that cut it short.
func pause(sigCh <-chan os.Signal, d time.Duration) os.Signal {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case sig := <-sigCh:
		return sig
	case <-timer.C:
		return nil
	}
}

func (s *Supervisor) stop(sig os.Signal) int {
	s.setState(StateStopped)
	name := "Ctrl+C"
	if sig != nil && sig != os.Interrupt {
		name = sig.String()
	}
	s.printf("\n\n🛑 %s detected. Stopping bot and auto-restart wrapper.\n", name)
	s.logf(botlog.KindInfo, "shutdown signal=%v launches=%d", sig, s.Status().Launches)
	return 0
}

func (s *Supervisor) printHeader() {
	rule := botlog.Rule()
	s.printf("%s\n", rule)
	s.printf("%s\n", botlog.Center("🔄 BOT AUTO-RESTART WRAPPER"))
	s.printf("%s\n", botlog.Center(appinfo.Display()))
	s.printf("%s\n", rule)
	s.printf("Bot program: %s\n", s.opts.BotPath)
	s.printf("This will automatically restart the bot when it exits.\n")
	s.printf("Press Ctrl+C to stop completely.\n")
	s.printf("%s\n\n", rule)
}

func (s *Supervisor) printf(format string, args ...any) {
	fmt.Fprintf(s.opts.Output, format, args...)
}

func (s *Supervisor) logf(kind botlog.Kind, format string, args ...any) {
	s.opts.Log.Logf(kind, format, args...)
}

func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		BotPID:    s.botPID,
		State:     s.state,
		Launches:  s.launches,
		LastExit:  s.lastExit,
		StartedAt: s.startedAt,
	}
}

func (s *Supervisor) beginLaunch() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.launches++
	return s.launches
}

func (s *Supervisor) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Supervisor) noteStarted(pid int) {
	s.mu.Lock()
	s.botPID = pid
	s.state = StateRunning
	s.startedAt = time.Now().UTC()
	s.mu.Unlock()
}

func (s *Supervisor) noteExit(code int) {
	s.mu.Lock()
	s.botPID = 0
	s.lastExit = code
	s.mu.Unlock()
}

func (s *Supervisor) noteFault() {
	s.mu.Lock()
	s.botPID = 0
	s.state = StateFaulted
	s.mu.Unlock()
}
