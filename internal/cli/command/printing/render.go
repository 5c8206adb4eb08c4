package printing

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/osgeoweblate/redmine-gtt-print/internal/config"
	"github.com/osgeoweblate/redmine-gtt-print/internal/i18n"
	"github.com/urfave/cli/v3"
)

type RenderCommandFactory struct {
	pipeline Pipeline
	out      io.Writer
}

func NewRenderCommandFactory(pipeline Pipeline, out io.Writer) *RenderCommandFactory {
	return &RenderCommandFactory{pipeline: pipeline, out: out}
}

func (f *RenderCommandFactory) CreateCommand(t *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name:   "render",
		Usage:  t.GetMessage("render_usage", 0, nil),
		Flags:  slices.Concat(sourceFlags(t), optionFlags(t)),
		Action: f.createAction(t),
	}
}

func (f *RenderCommandFactory) createAction(t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		repo, id, err := resolveIssue(ctx, command, f.pipeline, t)
		if err != nil {
			return err
		}

		text, err := f.pipeline.IssuePrintService(ctx, repo).RenderIssue(ctx, id, printOptions(command))
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(f.out, text)
		return err
	}
}
