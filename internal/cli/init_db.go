package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/noah-isme/school-tests-api/internal/repository"
)

func initDBCmd() *cli.Command {
	return &cli.Command{
		Name:  "init-db",
		Usage: "Create the students and tests tables if missing",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return withEnv(ctx, func(e *env) error {
				if err := repository.EnsureSchema(ctx, e.db); err != nil {
					return err
				}
				e.log.Info("schema ready")
				return nil
			})
		},
	}
}
