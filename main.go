package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"graphchat/internal/client"
	"graphchat/internal/config"
	"graphchat/internal/logging"
	"graphchat/internal/session"
)

func main() {
	app := &cli.App{
		Name:  "graphchat",
		Usage: "Explore a Neo4j database dump by chatting with an analysis backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a config file (default: config.yaml in the user config dir)",
			},
			&cli.StringFlag{
				Name:    "backend-url",
				Usage:   "analysis backend base URL",
				EnvVars: []string{"BACKEND_URL"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "HTTP timeout per request, 0 waits indefinitely",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn, error or off",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "log file path",
				EnvVars: []string{"LOG_FILE"},
			},
			&cli.StringFlag{
				Name:  "session-file",
				Usage: "where the session id is stored",
			},
			&cli.StringFlag{
				Name:  "export-dir",
				Usage: "directory for downloaded visualizations",
			},
			&cli.BoolFlag{
				Name:  "ephemeral",
				Usage: "keep the session id in memory only",
			},
		},
		Action: runTUI,
		Commands: []*cli.Command{
			{
				Name:   "tui",
				Usage:  "Start the interactive interface (default)",
				Action: runTUI,
			},
			{
				Name:      "upload",
				Usage:     "Upload a database dump and store the session",
				ArgsUsage: "<file>",
				Action:    runUpload,
			},
			{
				Name:      "ask",
				Usage:     "Ask one question using the stored session",
				ArgsUsage: "<question...>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "save", Usage: "write the visualization to the export dir"},
				},
				Action: runAsk,
			},
			{
				Name:  "session",
				Usage: "Inspect the stored session",
				Subcommands: []*cli.Command{
					{Name: "show", Usage: "Print the session id", Action: runSessionShow},
					{Name: "clear", Usage: "Forget the session id", Action: runSessionClear},
				},
			},
			{
				Name:  "mock",
				Usage: "Run a local mock of the analysis backend",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "port", Usage: "listen port (default from config)"},
					&cli.DurationFlag{Name: "ttl", Usage: "idle session lifetime (default from config)"},
					&cli.DurationFlag{Name: "delay", Usage: "artificial latency per query"},
				},
				Action: runMock,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runtime is what every command needs after flags and config are merged.
type runtime struct {
	cfg    *config.Config
	log    *logging.Logger
	store  session.Store
	client *client.Client
}

func setup(c *cli.Context) (*runtime, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("backend-url") {
		cfg.BackendURL = c.String("backend-url")
	}
	if c.IsSet("timeout") {
		cfg.HTTP.Timeout = c.Duration("timeout")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("log-file") {
		cfg.Log.File = c.String("log-file")
	}
	if c.IsSet("session-file") {
		cfg.Session.File = c.String("session-file")
	}
	if c.IsSet("export-dir") {
		cfg.Export.Dir = c.String("export-dir")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logging.NewFileLogger(logging.ParseLevel(cfg.Log.Level), cfg.Log.File)

	var store session.Store
	if c.Bool("ephemeral") {
		store = session.NewMemoryStore()
	} else {
		path := cfg.Session.File
		if path == "" {
			if path, err = session.DefaultPath(); err != nil {
				return nil, fmt.Errorf("session file: %w", err)
			}
		}
		store = session.NewFileStore(path)
	}

	return &runtime{
		cfg:   cfg,
		log:   log,
		store: store,
		client: client.NewClient(cfg.BackendURL,
			client.WithTimeout(cfg.HTTP.Timeout),
			client.WithLogger(log),
		),
	}, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
}

func since(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}
