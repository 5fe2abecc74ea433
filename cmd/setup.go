package main

import (
	"context"
	"os"

	"github.com/desertthunder/raffle/internal/shared"
	"github.com/desertthunder/raffle/internal/store"
	"github.com/urfave/cli/v3"
)

// SetupDatabase creates the config file when missing, initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = cmd.String("config")
	}

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.writePlain("✓ Config file created at %s\n", configPath)
			if config, err := shared.LoadConfig(configPath); err == nil && !r.fixedConfig {
				r.config = config
			}
		}
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := r.openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	st := store.NewSQLiteStore(db)
	participants, err := st.Revision(ctx, store.KeyParticipants)
	if err != nil {
		return err
	}
	winners, err := st.Revision(ctx, store.KeyWinners)
	if err != nil {
		return err
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
	r.writePlain("  participants revision: %d\n", participants)
	r.writePlain("  winners revision:      %d\n", winners)
	return nil
}
