// Package main is the entry point for the charbuf tool.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"

	"github.com/dshills/charbuf/internal/config"
	"github.com/dshills/charbuf/internal/log"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// env carries what every subcommand needs.
type env struct {
	cfg    *config.Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	usage string
	run   func(ctx context.Context, e *env, args []string) error
}

var commands map[string]command

// Filled in init: the subcommands read the table for their usage line.
func init() {
	commands = map[string]command{
		"encode":  {"encode [-format f] [-encoding e] [-trim] <in|-> <out>", runEncode},
		"render":  {"render [-format f] <file>", runRender},
		"inspect": {"inspect [-format f] [-json] <file>", runInspect},
		"convert": {"convert [-to f] <files...>", runConvert},
		"edit":    {"edit [-format f] (-e code | -script file.lua) [-o out] <file>", runEdit},
		"watch":   {"watch [-format f] <file>", runWatch},
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var (
		configPath  string
		logLevel    string
		workers     int
		showVersion bool
	)

	flags := flag.NewFlagSet("charbuf", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&configPath, "config", defaultConfigPath(), "Path to configuration file (TOML or YAML)")
	flags.StringVar(&configPath, "c", defaultConfigPath(), "Path to configuration file (shorthand)")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.IntVar(&workers, "workers", 0, "Concurrent conversions")
	flags.BoolVar(&showVersion, "version", false, "Show version information")
	flags.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flags.Usage = func() {
		fmt.Fprintf(stderr, "charbuf - persisted character buffers\n\n")
		fmt.Fprintf(stderr, "Usage: charbuf [options] <command> [args...]\n\n")
		fmt.Fprintf(stderr, "Commands:\n")
		for _, name := range []string{"encode", "render", "inspect", "convert", "edit", "watch"} {
			fmt.Fprintf(stderr, "  %s\n", commands[name].usage)
		}
		fmt.Fprintf(stderr, "\nOptions:\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if showVersion {
		fmt.Fprintf(stdout, "charbuf %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	rest := flags.Args()
	if len(rest) == 0 {
		flags.Usage()
		return 2
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n", rest[0])
		flags.Usage()
		return 2
	}

	// Every log line of one invocation carries the same run id.
	log.SetOutput(stderr, "run", uuid.NewString())
	cfg := config.New(config.WithConfigFile(configPath))
	if err := cfg.Load(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if logLevel != "" {
		_ = cfg.Set(config.PathLogLevel, logLevel)
	}
	if workers > 0 {
		_ = cfg.Set(config.PathWorkers, workers)
	}

	if err := cmd.run(ctx, &env{cfg: cfg, stdin: stdin, stdout: stdout, stderr: stderr}, rest[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// settings validates the configuration and applies the log level.
func (e *env) settings() (config.Settings, error) {
	s, err := e.cfg.Settings()
	if err != nil {
		return config.Settings{}, err
	}
	level, err := log.ParseLevel(s.Log.Level)
	if err != nil {
		return config.Settings{}, err
	}
	log.SetLevel(level)
	return s, nil
}

// defaultConfigPath returns $XDG_CONFIG_HOME/charbuf/config.toml or its
// platform equivalent.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "charbuf", "config.toml")
}
