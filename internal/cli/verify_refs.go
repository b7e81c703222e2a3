package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/noah-isme/school-tests-api/internal/models"
	"github.com/noah-isme/school-tests-api/internal/repository"
	"github.com/noah-isme/school-tests-api/internal/service"
)

type studentLister interface {
	List(ctx context.Context) ([]models.Student, error)
}

type testLister interface {
	List(ctx context.Context) ([]models.Test, error)
}

func verifyRefsCmd() *cli.Command {
	return &cli.Command{
		Name:  "verify-refs",
		Usage: "Report references held by only one side of a student/test pair",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withEnv(ctx, func(e *env) error {
				found, err := verifyRefs(ctx, repository.NewStudentRepository(e.db), repository.NewTestRepository(e.db), cmd.Root().Writer)
				if err != nil {
					return err
				}
				if found > 0 {
					return cli.Exit(fmt.Sprintf("%d asymmetric references", found), 1)
				}
				return nil
			})
		},
	}
}

func verifyRefs(ctx context.Context, students studentLister, tests testLister, w io.Writer) (int, error) {
	allStudents, err := students.List(ctx)
	if err != nil {
		return 0, err
	}
	allTests, err := tests.List(ctx)
	if err != nil {
		return 0, err
	}

	asymmetries := service.Asymmetries(allStudents, allTests)
	for _, a := range asymmetries {
		fmt.Fprintf(w, "student=%s test=%s listed-by=%s\n", a.StudentID, a.TestID, a.ListedBy)
	}
	if len(asymmetries) == 0 {
		fmt.Fprintf(w, "references consistent (%d students, %d tests)\n", len(allStudents), len(allTests))
	}
	return len(asymmetries), nil
}
