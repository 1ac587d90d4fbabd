// Package admincli is a one-shot operator tool for the account admin
// operations, run directly against the database.
package admincli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/datingapp/internal/common"
	"github.com/dmitrijs2005/datingapp/internal/server/models"
	"github.com/dmitrijs2005/datingapp/internal/server/services"
	"golang.org/x/term"
)

// operatorID is the requester id used for deletions started from the CLI.
// No account has id 0, so only the protected-account guard applies.
const operatorID int64 = 0

var ErrUsage = errors.New("usage error")

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

type AdminService interface {
	UsersWithRoles(ctx context.Context) ([]*models.UserWithRoles, error)
	EditRoles(ctx context.Context, targetUsername string, roles string) ([]models.RoleName, error)
	DeleteAccount(ctx context.Context, requesterID int64, targetUsername string) error
}

type App struct {
	service AdminService
	in      *bufio.Reader
	out     io.Writer
	stdinFd int
}

func NewApp(service AdminService, in io.Reader, out io.Writer) *App {
	return &App{service: service, in: bufio.NewReader(in), out: out, stdinFd: int(os.Stdin.Fd())}
}

const usage = `commands:
  list                          list users with their roles
  edit-roles <username> <roles> set roles (comma separated)
  delete [-y] <username>        delete an account and everything it owns
`

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return ErrUsage
	}

	switch args[0] {
	case "list":
		return a.list(ctx)
	case "edit-roles":
		return a.editRoles(ctx, args[1:])
	case "delete":
		return a.delete(ctx, args[1:])
	case "help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprintf(a.out, "unknown command %q\n%s", args[0], usage)
		return ErrUsage
	}
}

func (a *App) list(ctx context.Context) error {
	users, err := a.service.UsersWithRoles(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tROLES")
	for _, u := range users {
		roles := make([]string, len(u.Roles))
		for i, r := range u.Roles {
			roles[i] = string(r)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", u.ID, u.UserName, strings.Join(roles, ","))
	}
	return w.Flush()
}

func (a *App) editRoles(ctx context.Context, args []string) error {
	if len(args) != 2 {
		fmt.Fprint(a.out, usage)
		return ErrUsage
	}

	roles, err := a.service.EditRoles(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	fmt.Fprintf(a.out, "%s: %s\n", args[0], strings.Join(names, ","))
	return nil
}

func (a *App) delete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(a.out)
	yes := fs.Bool("y", false, "skip confirmation")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprint(a.out, usage)
		return ErrUsage
	}
	username := fs.Arg(0)

	if !*yes {
		ok, err := a.confirm(fmt.Sprintf("Delete user %q and all their data?", username))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.out, "aborted")
			return nil
		}
	}

	err := a.service.DeleteAccount(ctx, operatorID, username)
	var forbidden *services.ForbiddenError
	switch {
	case err == nil:
		fmt.Fprintf(a.out, "user %s deleted\n", username)
		return nil
	case errors.Is(err, common.ErrorNotFound):
		return fmt.Errorf("user %s not found", username)
	case errors.As(err, &forbidden):
		return fmt.Errorf("refusing to delete %s: %s", username, forbidden.Reason)
	default:
		return err
	}
}

// confirm asks a yes/no question on an interactive terminal. Without a
// terminal there is nobody to answer, so the command must be run with -y.
func (a *App) confirm(question string) (bool, error) {
	if !isTerminal(a.stdinFd) {
		return false, fmt.Errorf("%w: stdin is not a terminal, pass -y to confirm", ErrUsage)
	}

	fmt.Fprintf(a.out, "%s [y/N]: ", question)
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
