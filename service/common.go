package service

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"postapp/app/config"
	"postapp/app/logging"
	"postapp/app/repositories"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is reported by the version command.
const Version = "1.0.0"

// cli carries the state shared by every command of one invocation.
type cli struct {
	configPath string
	envFile    string
	logLevel   string
	addr       string

	cfg    *config.Config
	logger *zap.Logger
}

// setup loads .env, the config file and the logger.
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	if c.envFile != "" {
		if err := godotenv.Load(c.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", c.envFile, err)
		}
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	c.cfg = cfg

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	c.logger = logger
	return nil
}

func (c *cli) teardown(cmd *cobra.Command, args []string) {
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

func (c *cli) openStore() (*repositories.Store, error) {
	store, err := repositories.Open(c.cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", c.cfg.Store.Driver, err)
	}
	return store, nil
}

func (c *cli) isBadger() bool {
	return c.cfg.Store.Driver == repositories.DriverBadger || c.cfg.Store.Driver == ""
}

// badgerExists reports whether the configured badger directory is on disk.
func (c *cli) badgerExists() bool {
	_, err := os.Stat(c.cfg.Store.Path)
	return err == nil
}

// confirm asks a yes/no question on the command's input. Anything but y is no.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	var response string
	fmt.Fscanln(cmd.InOrStdin(), &response)
	response = strings.TrimSpace(response)
	return response == "y" || response == "Y"
}
