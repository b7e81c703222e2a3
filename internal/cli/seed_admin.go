package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-tests-api/internal/models"
	"github.com/noah-isme/school-tests-api/internal/repository"
	"github.com/noah-isme/school-tests-api/internal/validation"
)

// ErrUsernameTaken is returned when the admin to seed already exists.
var ErrUsernameTaken = errors.New("username already taken")

type adminStore interface {
	ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
}

func seedAdminCmd() *cli.Command {
	return &cli.Command{
		Name:  "seed-admin",
		Usage: "Create an admin student able to log in",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true, Sources: cli.EnvVars("SEED_ADMIN_PASSWORD")},
			&cli.StringFlag{Name: "email"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withEnv(ctx, func(e *env) error {
				students := repository.NewStudentRepository(e.db)
				tests := repository.NewTestRepository(e.db)
				admin, err := seedAdmin(ctx, students, validation.NewStudentValidator(tests.Exists), e.cfg.Session.BcryptCost,
					cmd.String("username"), cmd.String("password"), cmd.String("email"))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.Root().Writer, "created admin %s (%s)\n", admin.Username, admin.ID)
				return nil
			})
		},
	}
}

func seedAdmin(ctx context.Context, store adminStore, v *validation.StudentValidator, cost int, username, password, email string) (*models.Student, error) {
	payload := validation.Payload{
		"username": username,
		"isAdmin":  true,
		"password": password,
		"tests":    []interface{}{},
	}
	if email != "" {
		payload["email"] = email
	}
	fields, err := v.Validate(ctx, validation.ModeCreate, payload, nil)
	if err != nil {
		return nil, err
	}

	taken, err := store.ExistsByUsername(ctx, *fields.Username, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: %s", ErrUsernameTaken, *fields.Username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*fields.Password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	hashed := string(hash)
	admin := &models.Student{
		Username: *fields.Username,
		Email:    fields.Email,
		Password: &hashed,
		IsAdmin:  true,
		Tests:    models.Refs{},
	}
	if err := store.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}
