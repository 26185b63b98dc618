package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"botkeeper/internal/appinfo"
	"botkeeper/internal/bootstrap"
	"botkeeper/internal/botlog"
	"botkeeper/internal/config"
	"botkeeper/internal/presence"
	"botkeeper/internal/schedule"
	"botkeeper/internal/supervisor"
	"botkeeper/internal/util"
)

func main() {
	if len(os.Args) < 2 {
		exitRun(nil)
		return
	}

	switch os.Args[1] {
	case "run":
		exitRun(os.Args[2:])
	case "init":
		if err := runInit(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	case "version":
		fmt.Println(appinfo.Display())
	case "help":
		if len(os.Args) > 2 && os.Args[2] == "run" {
			printRunUsage(os.Stdout)
			return
		}
		printRootUsage(os.Stdout)
	default:
		if isHelpArg(os.Args[1]) {
			printRootUsage(os.Stdout)
			return
		}
		exitRun(os.Args[1:])
	}
}

func exitRun(args []string) {
	code, err := runKeeper(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if code != 0 {
		os.Exit(code)
	}
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", "botkeeper.yaml", "path to botkeeper.yaml")
	fs.Parse(args)

	report, err := bootstrap.Init(bootstrap.InitOptions{ConfigPath: *configPath})
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "init complete")
	status := "ok"
	for _, p := range report.Created {
		if p == report.ConfigPath {
			status = "created"
		}
	}
	for _, p := range report.Skipped {
		if p == report.ConfigPath {
			status = "exists"
		}
	}
	fmt.Fprintf(os.Stdout, "config: %s (%s)\n", report.ConfigPath, status)
	return nil
}

func runKeeper(args []string) (int, error) {
	if len(args) > 0 && isHelpArg(args[0]) {
		printRunUsage(os.Stdout)
		return 0, nil
	}

	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "botkeeper.yaml", "path to botkeeper.yaml")
	botPath := fs.String("bot", "", "bot program (overrides config)")
	logFile := fs.String("log-file", "", "lifecycle log file (overrides config)")
	redisURL := fs.String("redis-url", "", "redis url for presence (overrides config)")
	verbose := fs.Bool("verbose", false, "echo lifecycle log lines to stderr")
	fs.Parse(args)

	if supervisor.IsManagedChild() {
		return 0, fmt.Errorf("refusing to run under another keeper (%s is set)", supervisor.EnvMarker)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return 0, err
	}
	if strings.TrimSpace(*botPath) != "" {
		cfg.Bot.Path = strings.TrimSpace(*botPath)
	}
	if strings.TrimSpace(*logFile) != "" {
		cfg.Log.File = strings.TrimSpace(*logFile)
	}
	if strings.TrimSpace(*redisURL) != "" {
		cfg.Presence.RedisURL = strings.TrimSpace(*redisURL)
	}

	resolvedBot, err := supervisor.ResolveBotPath(cfg.Bot.Path)
	if err != nil {
		return 0, err
	}
	workDir, err := supervisor.ExecutableDir()
	if err != nil {
		return 0, err
	}

	var fileW io.Writer
	if path := strings.TrimSpace(cfg.Log.File); path != "" {
		f, err := util.OpenAppend(path)
		if err != nil {
			return 0, err
		}
		defer f.Close()
		fileW = f
	}
	lg := botlog.New(botlog.Options{
		File:        fileW,
		Term:        os.Stderr,
		TermEnabled: *verbose,
		TermColor:   botlog.TermColorEnabled(os.Stderr),
	})

	var sched supervisor.Schedule
	if expr := strings.TrimSpace(cfg.Bot.RestartSchedule); expr != "" {
		parsed, err := schedule.Parse(expr)
		if err != nil {
			return 0, fmt.Errorf("restart schedule: %w", err)
		}
		sched = parsed
	}

	sup, err := supervisor.New(supervisor.Options{
		BotPath:         resolvedBot,
		WorkDir:         workDir,
		Log:             lg,
		RestartSchedule: sched,
	})
	if err != nil {
		return 0, err
	}

	var store presence.Store = presence.NoopStore{}
	if url := strings.TrimSpace(cfg.Presence.RedisURL); url != "" {
		rs, err := presence.NewRedisStore(url)
		if err != nil {
			return 0, err
		}
		store = rs
		defer func() {
			if err := store.Close(); err != nil {
				fmt.Fprintln(os.Stderr, "warning:", err)
			}
		}()
	}

	pubCtx, cancelPub := context.WithCancel(context.Background())
	defer cancelPub()
	pub, err := presence.StartPublisher(pubCtx, presence.PublisherOptions{
		Store:      store,
		BotID:      cfg.Presence.BotID,
		Every:      cfg.HeartbeatInterval(),
		TTLSeconds: cfg.Presence.TTLSeconds,
		Status: func() presence.BotStatus {
			st := sup.Status()
			restarts := st.Launches - 1
			if restarts < 0 {
				restarts = 0
			}
			return presence.BotStatus{
				BotID:         cfg.Presence.BotID,
				PID:           st.BotPID,
				State:         string(st.State),
				Restarts:      restarts,
				LastExitCode:  st.LastExit,
				StartedAt:     st.StartedAt,
				SupervisorPID: os.Getpid(),
			}
		},
		Logf: func(format string, args ...any) {
			lg.Logf(botlog.KindWarn, format, args...)
		},
	})
	if err != nil {
		return 0, err
	}

	code, runErr := sup.Run()

	cancelPub()
	select {
	case <-pub.Done():
	case <-time.After(3 * time.Second):
	}

	if runErr != nil {
		return 0, runErr
	}
	return code, nil
}
