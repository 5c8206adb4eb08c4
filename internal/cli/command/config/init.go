package config

import (
	"context"
	"fmt"

	"github.com/osgeoweblate/redmine-gtt-print/internal/config"
	"github.com/osgeoweblate/redmine-gtt-print/internal/i18n"
	"github.com/urfave/cli/v3"
)

func (c *ConfigCommandFactory) newInitCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: t.GetMessage("config_init_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host-name",
				Value: cfg.Redmine.HostName,
				Usage: t.GetMessage("flag_host_name_usage", 0, nil),
			},
			&cli.StringFlag{
				Name:  "protocol",
				Value: cfg.Redmine.Protocol,
				Usage: t.GetMessage("flag_protocol_usage", 0, nil),
			},
			&cli.StringFlag{
				Name:  "print-url",
				Value: cfg.Print.BaseURL,
				Usage: t.GetMessage("flag_print_url_usage", 0, nil),
			},
			&cli.StringFlag{
				Name:  "lang",
				Value: cfg.Language,
				Usage: t.GetMessage("flag_lang_usage", 0, nil),
			},
		},
		Action: initConfigAction(c, cfg, t),
	}
}

// initConfigAction rewrites the configuration from defaults plus the given
// flags. Settings not covered by a flag are reset.
func initConfigAction(c *ConfigCommandFactory, cfg *config.Config, t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		fresh := config.DefaultConfig()
		fresh.PathFile = cfg.PathFile
		fresh.Redmine.HostName = command.String("host-name")
		fresh.Redmine.Protocol = command.String("protocol")
		fresh.Print.BaseURL = command.String("print-url")
		fresh.Language = command.String("lang")

		if err := config.SaveConfig(fresh); err != nil {
			return fmt.Errorf("error saving configuration: %w", err)
		}
		*cfg = *fresh

		fmt.Fprintln(c.out, t.GetMessage("config_written", 0, map[string]interface{}{"Path": cfg.PathFile}))
		return nil
	}
}
