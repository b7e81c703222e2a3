// Package cli implements schoolctl, the maintenance tool for the school
// tests database.
package cli

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/school-tests-api/pkg/config"
	"github.com/noah-isme/school-tests-api/pkg/database"
	"github.com/noah-isme/school-tests-api/pkg/logger"
)

const name = "schoolctl"

// version is overridden at build time with ldflags.
var version = "dev"

// NewCommand returns the root command.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:    name,
		Usage:   "Maintain the school tests database",
		Version: version,
		Commands: []*cli.Command{
			initDBCmd(),
			seedAdminCmd(),
			verifyRefsCmd(),
		},
	}
}

// env is what every command needs from the running configuration.
type env struct {
	cfg *config.Config
	db  *sqlx.DB
	log *zap.Logger
}

func withEnv(ctx context.Context, fn func(*env) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	return fn(&env{cfg: cfg, db: db, log: log})
}
