package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"liftsim/src/config"
	"liftsim/src/console"
	"liftsim/src/elev"
	"liftsim/src/fleet"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, console.ErrQuit) {
		fmt.Fprintln(os.Stderr, "liftsim:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "YAML fleet file")
	envPath := flag.String("env", "", ".env file with LIFTSIM_* overrides")
	elevators := flag.Int("elevators", 0, "number of elevators (overrides config)")
	timeUnit := flag.Duration("time-unit", 0, "length of one simulated time unit (overrides config)")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (overrides config)")
	logFile := flag.String("log-file", "", "also write logs to this file")
	interactive := flag.Bool("interactive", false, "read commands from the keyboard")
	duration := flag.Duration("duration", 0, "stop after this long (0 runs until interrupted)")
	report := flag.Duration("report", 5*time.Second, "status table period (0 disables)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if cfg, err = config.ApplyEnv(cfg, *envPath); err != nil {
		return err
	}
	if *elevators > 0 {
		cfg.Elevators = *elevators
	}
	if *timeUnit > 0 {
		cfg.TimeUnit = *timeUnit
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := elev.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logCloser, err := elev.InitLogger(level, *logFile)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	term := console.New(os.Stdout)
	sup, err := fleet.New(cfg, term)
	if err != nil {
		return err
	}
	term.Attach(sup)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	slog.Info("Starting simulation", "elevators", cfg.Elevators, "timeUnit", cfg.TimeUnit, "threshold", cfg.CallThreshold)
	if err := sup.Start(ctx); err != nil {
		return err
	}
	if *report > 0 {
		go term.Report(ctx, *report)
	}

	var result error
	if *interactive {
		result = term.Keys(ctx)
	} else {
		<-ctx.Done()
	}

	sup.Stop()
	term.PrintStatus()
	slog.Info("Simulation finished")
	if errors.Is(result, context.Canceled) || errors.Is(result, context.DeadlineExceeded) {
		return nil
	}
	return result
}
