package printing

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/osgeoweblate/redmine-gtt-print/internal/config"
	"github.com/osgeoweblate/redmine-gtt-print/internal/i18n"
	"github.com/osgeoweblate/redmine-gtt-print/internal/logger"
	"github.com/urfave/cli/v3"
)

type PrintCommandFactory struct {
	pipeline Pipeline
	out      io.Writer
}

func NewPrintCommandFactory(pipeline Pipeline, out io.Writer) *PrintCommandFactory {
	return &PrintCommandFactory{pipeline: pipeline, out: out}
}

func (f *PrintCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	flags := slices.Concat(sourceFlags(t), optionFlags(t))
	flags = append(flags, &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   t.GetMessage("flag_output_usage", 0, nil),
	})

	return &cli.Command{
		Name:   "print",
		Usage:  t.GetMessage("print_usage", 0, nil),
		Flags:  flags,
		Action: f.createAction(t, cfg),
	}
}

func (f *PrintCommandFactory) createAction(t *i18n.Translations, cfg *config.Config) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		repo, id, err := resolveIssue(ctx, command, f.pipeline, t)
		if err != nil {
			return err
		}

		path := command.String("output")
		if path == "" {
			path = fmt.Sprintf("issue-%d.%s", id, cfg.Print.Format)
		}

		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("error creating %s: %w", path, err)
		}

		job, err := f.pipeline.IssuePrintService(ctx, repo).PrintIssue(ctx, id, printOptions(command), file)
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if job != nil {
			fmt.Fprintln(f.out, t.GetMessage("print_job_submitted", 0, map[string]interface{}{"Ref": job.Ref}))
		}
		if err != nil {
			if removeErr := os.Remove(path); removeErr != nil {
				logger.Warn(ctx, "could not remove partial report", "path", path, "error", removeErr)
			}
			return err
		}

		fmt.Fprintln(f.out, t.GetMessage("print_job_saved", 0, map[string]interface{}{"Path": path}))
		return nil
	}
}
