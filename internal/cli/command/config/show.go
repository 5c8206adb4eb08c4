package config

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/osgeoweblate/redmine-gtt-print/internal/config"
	"github.com/osgeoweblate/redmine-gtt-print/internal/i18n"
	"github.com/urfave/cli/v3"
)

const maskedSecret = "********"

func (c *ConfigCommandFactory) newShowCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: t.GetMessage("config_show_usage", 0, nil),
		Action: func(ctx context.Context, command *cli.Command) error {
			shown := *cfg
			if shown.Redmine.APIKey != "" {
				shown.Redmine.APIKey = maskedSecret
			}

			fmt.Fprintln(c.out, t.GetMessage("config_current", 0, map[string]interface{}{"Path": cfg.PathFile}))
			fmt.Fprintf(c.out, "━━━━━━━━━━━━━━━━━━━━━━━\n")
			return toml.NewEncoder(c.out).Encode(shown)
		},
	}
}
