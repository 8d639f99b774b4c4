// Command showcase drives the project carousel in the terminal, with the
// same controller and timings the site uses.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/Zachkp/portfolio/internal/carousel"
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/logging"
)

type options struct {
	contentPath string
	interval    time.Duration
	logPath     string
}

func main() {
	if err := buildApp(runViewer).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func buildApp(run func(context.Context, options) error) *cli.App {
	return &cli.App{
		Name:  "showcase",
		Usage: "browse portfolio projects in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "content", Usage: "content file (.yaml or .toml), empty for the built-in site", EnvVars: []string{"CONTENT_PATH"}},
			&cli.DurationFlag{Name: "interval", Usage: "auto-advance interval", Value: carousel.DefaultConfig().AutoAdvanceInterval},
			&cli.StringFlag{Name: "log", Usage: "write debug logs to this file"},
		},
		Action: func(ctx *cli.Context) error {
			return run(ctx.Context, options{
				contentPath: ctx.String("content"),
				interval:    ctx.Duration("interval"),
				logPath:     ctx.String("log"),
			})
		},
		Commands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "check a content file and list its projects",
				Action: func(ctx *cli.Context) error {
					return validate(ctx.App.Writer, ctx.String("content"))
				},
			},
		},
	}
}

func validate(w io.Writer, path string) error {
	site, err := content.Load(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%d projects\n", len(site.Projects))
	for _, p := range site.Projects {
		fmt.Fprintf(w, "  %s: %s (%d items, %s frame)\n", p.ID, p.Title, len(p.Media), p.DeviceFrame)
	}
	return nil
}

func runViewer(ctx context.Context, opts options) error {
	logger := zerolog.Nop()
	if opts.logPath != "" {
		f, err := os.OpenFile(opts.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		logger = logging.NewWithWriter(f, "debug")
	}

	site, err := content.Load(opts.contentPath)
	if err != nil {
		return err
	}

	cfg := carousel.DefaultConfig()
	if opts.interval > 0 {
		cfg.AutoAdvanceInterval = opts.interval
	}

	m := newModel(site)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// Send blocks until the program runs, and timer callbacks must not
	// wait on the UI.
	ctrl, err := carousel.New(site.DefaultProject(), cfg,
		carousel.WithLogger(logger),
		carousel.WithListener(func(s carousel.Snapshot) { go p.Send(snapshotMsg(s)) }),
	)
	if err != nil {
		return err
	}
	defer ctrl.Close()
	m.attach(ctrl)

	logger.Debug().Int("projects", len(site.Projects)).Dur("interval", cfg.AutoAdvanceInterval).Msg("showcase started")
	_, err = p.Run()
	return err
}
