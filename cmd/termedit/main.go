//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	"termedit/internal/config"
	"termedit/internal/keys"
	"termedit/internal/screen"
	"termedit/internal/session"
	"termedit/internal/terminal"
)

var Version = "0.0.1"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin, stdout, stderr *os.File) (code int) {
	fs := flag.NewFlagSet("termedit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: termedit [flags] [file]")
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "path to a YAML config file")
	logFile := fs.String("log-file", "", "append logs to this file")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn or error")
	version := fs.Bool("version", false, "print the version and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *version {
		fmt.Fprintf(stdout, "termedit %s\n", Version)
		return 0
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "termedit: %v\n", err)
		return 1
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}
	if *logLevel != "" {
		level, err := config.ParseLevel(*logLevel)
		if err != nil {
			fmt.Fprintf(stderr, "termedit: %v\n", err)
			return 2
		}
		cfg.LogLevel = level
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "termedit: %v\n", err)
		return 1
	}
	defer closeLog()

	var raw *terminal.RawMode
	die := func(err error) int {
		if raw != nil {
			_, _ = io.WriteString(stdout, string(screen.ClearScreen))
			_, _ = io.WriteString(stdout, string(screen.CursorHome))
			_ = raw.Restore()
		}
		logger.Error("fatal", "err", err)
		fmt.Fprintf(stderr, "termedit: %v\n", err)
		return 1
	}

	raw, err = terminal.EnableRaw(int(stdin.Fd()), cfg.EscapeTimeout)
	if err != nil {
		return die(&session.FatalError{Op: "raw mode", Err: err})
	}
	defer raw.Restore()
	defer func() {
		if r := recover(); r != nil {
			_ = raw.Restore()
			fmt.Fprintf(stderr, "termedit panic: %v\n", r)
			_, _ = stderr.Write(debug.Stack())
			code = 2
		}
	}()

	in := terminal.NewInput(int(stdin.Fd()))
	rows, cols, err := terminal.WindowSize(int(stdout.Fd()), in, stdout)
	if err != nil {
		return die(&session.FatalError{Op: "window size", Err: err})
	}
	logger.Debug("terminal ready", "rows", rows, "cols", cols)

	s := session.New(session.Options{
		Rows:           rows,
		Cols:           cols,
		TabStop:        cfg.TabStop,
		Version:        Version,
		MessageTimeout: cfg.MessageTimeout,
		Out:            stdout,
		Logger:         logger,
	})
	if fs.NArg() == 1 {
		if err := s.Open(fs.Arg(0)); err != nil {
			return die(err)
		}
	}
	s.SetStatus("HELP: Ctrl-Q = quit")

	if err := s.Run(keys.NewDecoder(in)); err != nil {
		return die(err)
	}
	return 0
}

func newLogger(cfg config.Config) (*slog.Logger, func(), error) {
	if cfg.LogFile == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.LogLevel}))
	return logger, func() { _ = f.Close() }, nil
}
