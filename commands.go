package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"graphchat/internal/export"
	"graphchat/internal/logging"
	"graphchat/internal/mock"
	"graphchat/internal/session"
	"graphchat/internal/state"
	"graphchat/internal/tui/app"
	"graphchat/internal/tui/components/chart"
)

func runTUI(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.log.Sync()

	a := state.New(rt.store,
		state.WithExtension(rt.cfg.Upload.Extension),
		state.WithLogger(rt.log),
	)
	model := app.New(a, rt.client,
		app.WithExportDir(rt.cfg.Export.Dir),
		app.WithLogger(rt.log),
	)

	rt.log.Info("starting tui", "backend", rt.client.BaseURL())
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}

func runUpload(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: graphchat upload <file>", 2)
	}
	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.log.Sync()

	path := c.Args().First()
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ctx, cancel := signalContext(c)
	defer cancel()

	a := state.New(rt.store, state.WithExtension(rt.cfg.Upload.Extension), state.WithLogger(rt.log))
	start := time.Now()
	err = a.Upload(ctx, rt.client, state.File{Name: filepath.Base(path), Content: f})

	var uploadErr *state.UploadError
	switch {
	case errors.Is(err, state.ErrInvalidFileType):
		return cli.Exit(fmt.Sprintf("Invalid file type: please upload a %s file", rt.cfg.Upload.Extension), 1)
	case errors.As(err, &uploadErr):
		return cli.Exit(uploadErr.Message, 1)
	case err != nil:
		return err
	}

	id, _ := rt.store.Get()
	color.Green("%s has been uploaded and processed in %s.", filepath.Base(path), since(start))
	fmt.Println("Session:", id)
	return nil
}

func runAsk(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return cli.Exit("usage: graphchat ask <question...>", 2)
	}
	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.log.Sync()

	ctx, cancel := signalContext(c)
	defer cancel()

	a := state.New(rt.store, state.WithLogger(rt.log))
	msg, err := a.Ask(ctx, rt.client, question)
	if errors.Is(err, state.ErrNoSession) {
		return cli.Exit("No session. Run `graphchat upload <file>` first.", 1)
	}
	if err != nil {
		return err
	}

	out, err := glamour.Render(msg.Content, "auto")
	if err != nil {
		out = msg.Content + "\n"
	}
	fmt.Print(out)

	if v := msg.Visualization; v != nil {
		fmt.Println(chart.Card(*v, 72, 0, false))
		if c.Bool("save") {
			path, err := export.SaveJSON(rt.cfg.Export.Dir, *v)
			if err != nil {
				return err
			}
			color.Green("Saved %s", path)
		}
	}
	return nil
}

func runSessionShow(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return err
	}
	id, err := rt.store.Get()
	if errors.Is(err, session.ErrNotFound) {
		color.Yellow("No session")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println(id)
	if fs, ok := rt.store.(*session.FileStore); ok {
		fmt.Println(color.New(color.Faint).Sprint("stored in " + fs.Path()))
	}
	return nil
}

func runSessionClear(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return err
	}
	return rt.store.Clear()
}

func runMock(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return err
	}

	port := rt.cfg.Mock.Port
	if c.IsSet("port") {
		port = c.Int("port")
	}
	ttl := rt.cfg.Mock.SessionTTL
	if c.IsSet("ttl") {
		ttl = c.Duration("ttl")
	}

	level := logging.ParseLevel(rt.cfg.Log.Level)
	if level == logging.LevelOff {
		level = logging.LevelInfo
	}
	log := logging.NewLogger(level, os.Stderr)
	defer log.Sync()

	ctx, cancel := signalContext(c)
	defer cancel()

	server := mock.NewServer(port,
		mock.WithSessionTTL(ttl),
		mock.WithExtension(rt.cfg.Upload.Extension),
		mock.WithDelay(c.Duration("delay")),
		mock.WithLogger(log),
	)
	return server.Start(ctx)
}
