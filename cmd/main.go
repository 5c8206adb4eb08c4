package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/osgeoweblate/redmine-gtt-print/internal/cli/command/config"
	"github.com/osgeoweblate/redmine-gtt-print/internal/cli/command/printing"
	"github.com/osgeoweblate/redmine-gtt-print/internal/cli/registry"
	cfg "github.com/osgeoweblate/redmine-gtt-print/internal/config"
	"github.com/osgeoweblate/redmine-gtt-print/internal/i18n"
	"github.com/osgeoweblate/redmine-gtt-print/internal/infrastructure/di"
	"github.com/osgeoweblate/redmine-gtt-print/internal/infrastructure/tickets/fixture"
	"github.com/osgeoweblate/redmine-gtt-print/internal/infrastructure/tickets/redmine"
	"github.com/osgeoweblate/redmine-gtt-print/internal/logger"
	"github.com/osgeoweblate/redmine-gtt-print/internal/version"
	"github.com/urfave/cli/v3"
)

const configEnv = "GTT_PRINT_CONFIG"

func main() {
	app, err := initializeApp(os.Args)
	if err != nil {
		log.Fatalf("Error starting the cli: %v", err)
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Error(context.Background(), "command failed", err)
		os.Exit(1)
	}
}

// initializeApp needs the configuration before the commands exist, so the
// global flags are read from args ahead of the regular parsing.
func initializeApp(args []string) (*cli.Command, error) {
	logger.Initialize(boolFlag(args, "debug"), boolFlag(args, "verbose"))

	configPath, err := resolveConfigPath(args)
	if err != nil {
		return nil, err
	}

	cfgApp, err := cfg.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	translations, err := i18n.NewTranslations(cfg.GetLocaleConfig(cfgApp.Language), cfgApp.LocalesDir)
	if err != nil {
		return nil, fmt.Errorf("error loading translations: %w", err)
	}

	container := di.NewContainer(cfgApp, translations)
	if err := container.RegisterSource(redmine.SourceName, redmine.NewRedmineSourceFactory()); err != nil {
		return nil, err
	}
	if err := container.RegisterSource(fixture.SourceName, fixture.NewFixtureSourceFactory()); err != nil {
		return nil, err
	}

	registerCommand := registry.NewRegistry(cfgApp, translations)

	if err := registerCommand.Register("render", printing.NewRenderCommandFactory(container, os.Stdout)); err != nil {
		return nil, fmt.Errorf("error registering 'render': %w", err)
	}

	if err := registerCommand.Register("print", printing.NewPrintCommandFactory(container, os.Stdout)); err != nil {
		return nil, fmt.Errorf("error registering 'print': %w", err)
	}

	if err := registerCommand.Register("serve", printing.NewServeCommandFactory(container, os.Stdout)); err != nil {
		return nil, fmt.Errorf("error registering 'serve': %w", err)
	}

	if err := registerCommand.Register("config", config.NewConfigCommandFactory(os.Stdout)); err != nil {
		return nil, fmt.Errorf("error registering 'config': %w", err)
	}

	commands := registerCommand.CreateCommands()

	helpCommand := &cli.Command{
		Name:    "help",
		Aliases: []string{"h"},
		Usage:   translations.GetMessage("help_command_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
	}
	commands = append(commands, helpCommand)

	return &cli.Command{
		Name:        "gtt-print",
		Usage:       translations.GetMessage("app_usage", 0, nil),
		Version:     version.Version,
		Description: translations.GetMessage("app_description", 0, nil),
		Commands:    commands,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: translations.GetMessage("flag_config_usage", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: translations.GetMessage("flag_debug_usage", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: translations.GetMessage("flag_verbose_usage", 0, nil),
			},
		},
		EnableShellCompletion: true,
	}, nil
}

func resolveConfigPath(args []string) (string, error) {
	if path, ok := lookupFlag(args, "config"); ok && path != "" {
		return path, nil
	}
	if path := os.Getenv(configEnv); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return homeDir, nil
}

func boolFlag(args []string, name string) bool {
	value, ok := lookupFlag(args, name)
	return ok && value != "false"
}

// lookupFlag finds --name, --name=value or --name value in args.
func lookupFlag(args []string, name string) (string, bool) {
	long := "--" + name
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if arg == long {
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				return args[i+1], true
			}
			return "", true
		}
		if value, ok := strings.CutPrefix(arg, long+"="); ok {
			return value, true
		}
	}
	return "", false
}
