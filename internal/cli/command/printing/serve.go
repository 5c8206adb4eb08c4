package printing

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/osgeoweblate/redmine-gtt-print/internal/config"
	"github.com/osgeoweblate/redmine-gtt-print/internal/i18n"
	"github.com/osgeoweblate/redmine-gtt-print/internal/server"
	"github.com/urfave/cli/v3"
)

type ServeCommandFactory struct {
	pipeline Pipeline
	out      io.Writer
}

func NewServeCommandFactory(pipeline Pipeline, out io.Writer) *ServeCommandFactory {
	return &ServeCommandFactory{pipeline: pipeline, out: out}
}

func (f *ServeCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: t.GetMessage("serve_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: cfg.Server.Addr,
				Usage: t.GetMessage("flag_addr_usage", 0, nil),
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   t.GetMessage("flag_file_usage", 0, nil),
			},
		},
		Action: f.createAction(t),
	}
}

func (f *ServeCommandFactory) createAction(t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		repo, err := openSource(ctx, command, f.pipeline)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		addr := command.String("addr")
		fmt.Fprintln(f.out, t.GetMessage("server_listening", 0, map[string]interface{}{"Addr": addr}))

		return server.New(f.pipeline.IssuePrintService(ctx, repo)).ListenAndServe(ctx, addr)
	}
}
