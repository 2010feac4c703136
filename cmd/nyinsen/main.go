package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/nyinsen/internal/config"
	"github.com/terraincognita07/nyinsen/internal/db"
	"github.com/terraincognita07/nyinsen/internal/logger"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// runtime is filled by the root command before any subcommand runs.
type runtime struct {
	cfg *config.Config
	log *logrus.Logger
}

func newRootCommand() *cobra.Command {
	rt := &runtime{log: logrus.New()}

	root := &cobra.Command{
		Use:           "nyinsen",
		Short:         "Maternal health API server",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.load()
		},
	}

	root.AddCommand(
		newServeCommand(rt),
		newMigrateCommand(rt),
		newResetPasswordCommand(rt),
	)
	return root
}

func (rt *runtime) load() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	rt.cfg = cfg
	logger.Configure(rt.log, logger.Options{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Environment: cfg.AppEnv,
	})
	return nil
}

func (rt *runtime) openDatabase() (*gorm.DB, func(), error) {
	database, err := db.OpenSQLite(rt.cfg.DBPath, rt.log)
	if err != nil {
		return nil, nil, fmt.Errorf("database init failed: %w", err)
	}
	closeDatabase := func() {
		sqlDB, err := database.DB()
		if err != nil {
			return
		}
		if err := sqlDB.Close(); err != nil {
			rt.log.WithError(err).Warn("close database")
		}
	}
	return database, closeDatabase, nil
}
