package printing

import (
	"context"
	"errors"

	"github.com/osgeoweblate/redmine-gtt-print/internal/i18n"
	"github.com/osgeoweblate/redmine-gtt-print/internal/infrastructure/tickets/fixture"
	"github.com/osgeoweblate/redmine-gtt-print/internal/infrastructure/tickets/redmine"
	"github.com/osgeoweblate/redmine-gtt-print/internal/ports"
	"github.com/osgeoweblate/redmine-gtt-print/internal/services"
	"github.com/urfave/cli/v3"
)

// Pipeline builds issue sources and the print service on top of them.
type Pipeline interface {
	IssueRepository(ctx context.Context, source, location string) (ports.IssueRepository, error)
	IssuePrintService(ctx context.Context, repo ports.IssueRepository) *services.IssuePrintService
}

type issueIDer interface {
	IssueID() int
}

func sourceFlags(t *i18n.Translations) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   t.GetMessage("flag_file_usage", 0, nil),
		},
		&cli.IntFlag{
			Name:    "issue",
			Aliases: []string{"i"},
			Usage:   t.GetMessage("flag_issue_usage", 0, nil),
		},
	}
}

func optionFlags(t *i18n.Translations) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "layout",
			Aliases: []string{"l"},
			Usage:   t.GetMessage("flag_layout_usage", 0, nil),
		},
		&cli.StringFlag{
			Name:  "custom-text",
			Usage: t.GetMessage("flag_custom_text_usage", 0, nil),
		},
	}
}

func printOptions(command *cli.Command) services.PrintOptions {
	opts := services.PrintOptions{Layout: command.String("layout")}
	if command.IsSet("custom-text") {
		text := command.String("custom-text")
		opts.CustomText = &text
	}
	return opts
}

// openSource picks the fixture when --file is given and Redmine otherwise.
func openSource(ctx context.Context, command *cli.Command, pipeline Pipeline) (ports.IssueRepository, error) {
	if file := command.String("file"); file != "" {
		return pipeline.IssueRepository(ctx, fixture.SourceName, file)
	}
	return pipeline.IssueRepository(ctx, redmine.SourceName, "")
}

// resolveIssue returns the repository and id of the issue to print. A
// fixture without --issue prints the issue it holds.
func resolveIssue(ctx context.Context, command *cli.Command, pipeline Pipeline, t *i18n.Translations) (ports.IssueRepository, int, error) {
	id := int(command.Int("issue"))
	if command.String("file") == "" && id <= 0 {
		return nil, 0, errors.New(t.GetMessage("issue_source_required", 0, nil))
	}

	repo, err := openSource(ctx, command, pipeline)
	if err != nil {
		return nil, 0, err
	}

	if id <= 0 {
		if holder, ok := repo.(issueIDer); ok {
			id = holder.IssueID()
		}
	}
	return repo, id, nil
}
