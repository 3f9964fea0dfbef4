// Package cli wires the command line application.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mchmarny/modelscore/pkg/config"
	"github.com/mchmarny/modelscore/pkg/logging"
	urfave "github.com/urfave/cli/v2"
)

const (
	appName      = "modelscore"
	appConfigKey = "app-config"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	debugFlag = &urfave.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	logLevelFlag = &urfave.StringFlag{
		Name:    "log-level",
		Usage:   "Log level [debug, info, warn, error]",
		Value:   "info",
		EnvVars: []string{"LOG_LEVEL"},
	}

	logFileFlag = &urfave.StringFlag{
		Name:    "log-file",
		Usage:   "Append logs to this file instead of stderr",
		EnvVars: []string{"LOG_FILE"},
	}

	silentFlag = &urfave.BoolFlag{
		Name:    "silent",
		Aliases: []string{"q"},
		Usage:   "Suppress all log output, only the report is emitted",
	}
)

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefaultCLILogger(logLevelFlag.Value)

	app := newApp()
	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	Home  string
	Conf  *config.Config
	Debug bool
}

func getConfig(c *urfave.Context) *appConfig {
	return c.App.Metadata[appConfigKey].(*appConfig)
}

func newApp() *urfave.App {
	return &urfave.App{
		Name:                 appName,
		Version:              fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Compiled:             time.Now(),
		EnableBashCompletion: true,
		HideHelpCommand:      true,
		Usage:                "CLI for scoring the trustworthiness of model bundles",
		DefaultCommand:       scoreCmd.Name,
		Flags: []urfave.Flag{
			debugFlag,
			logLevelFlag,
			logFileFlag,
			silentFlag,
		},
		Commands: []*urfave.Command{
			scoreCmd,
			authCmd,
		},
		Before: func(c *urfave.Context) error {
			level := c.String(logLevelFlag.Name)
			if c.Bool(debugFlag.Name) {
				level = "debug"
			}
			switch {
			case c.Bool(silentFlag.Name):
				logging.SetSilent()
			case c.String(logFileFlag.Name) != "":
				if err := logging.SetDefaultFileLogger(level, c.String(logFileFlag.Name)); err != nil {
					return err
				}
			default:
				logging.SetDefaultCLILogger(level)
			}

			home, created, err := config.GetOrCreateHomeDir(appName)
			if err != nil {
				return fmt.Errorf("resolving home dir: %w", err)
			}
			if created {
				slog.Debug("created home dir", "path", home)
			}

			conf, err := config.ReadOrCreate(home)
			if err != nil {
				return fmt.Errorf("reading config: %w", err)
			}

			c.App.Metadata[appConfigKey] = &appConfig{
				Home:  home,
				Conf:  conf,
				Debug: c.Bool(debugFlag.Name),
			}
			return nil
		},
	}
}
