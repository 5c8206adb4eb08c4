package config

import (
	"io"

	"github.com/osgeoweblate/redmine-gtt-print/internal/config"
	"github.com/osgeoweblate/redmine-gtt-print/internal/i18n"
	"github.com/urfave/cli/v3"
)

type ConfigCommandFactory struct {
	out io.Writer
}

func NewConfigCommandFactory(out io.Writer) *ConfigCommandFactory {
	return &ConfigCommandFactory{out: out}
}

func (c *ConfigCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   t.GetMessage("config_usage", 0, nil),
		Commands: []*cli.Command{
			c.newShowCommand(t, cfg),
			c.newInitCommand(t, cfg),
		},
	}
}
