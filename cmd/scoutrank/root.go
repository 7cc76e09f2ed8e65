package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/okian/scoutrank/internal/config"
	"github.com/okian/scoutrank/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// cli carries state shared by every subcommand once the root pre-run has
// loaded configuration.
type cli struct {
	cfgFile string
	envFile string
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "scoutrank",
		Short:         "Score scouted DECODE matches and rank teams per event",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "",
		"config file (default is $SCOUT_CONFIG)")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env",
		"dotenv file loaded before configuration, if present")

	root.AddCommand(
		newRunCmd(c),
		newScoreCmd(c),
		newGenerateCmd(c),
		newVersionCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	if c.envFile != "" {
		if err := godotenv.Load(c.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", c.envFile, err)
		}
	}

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	var err error
	if c.cfgFile != "" {
		c.cfg, err = config.LoadFile(cmd.Context(), c.cfgFile)
	} else {
		c.cfg, err = config.Load(cmd.Context())
	}
	if err != nil {
		return err
	}

	if err := logger.SetLevelString(c.cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", c.cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version)
			return err
		},
	}
}
