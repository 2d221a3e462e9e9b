package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/cinefind/moviesearch/internal/core/domain"
	"github.com/cinefind/moviesearch/internal/core/ports"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

const usage = `usage: accountctl <command> [flags]

commands:
  create-admin  -name NAME -email EMAIL [-password-stdin]
  set-role      (-email EMAIL | -id ID) -role USER|ADMIN
`

var errUsage = errors.New("invalid usage")

type accountAdmin interface {
	Register(ctx context.Context, input ports.RegisterInput) (*ports.SessionResult, error)
	ChangeRole(ctx context.Context, accountID string, role domain.Role) (*domain.PublicAccount, error)
}

type cli struct {
	svc      accountAdmin
	accounts ports.AccountRepository
	in       *bufio.Reader
	stdinFd  int
	out      io.Writer
	log      zerolog.Logger
}

func newCLI(svc accountAdmin, accounts ports.AccountRepository, in io.Reader, stdinFd int, out io.Writer, log zerolog.Logger) *cli {
	return &cli{svc: svc, accounts: accounts, in: bufio.NewReader(in), stdinFd: stdinFd, out: out, log: log}
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(c.out, usage)
		return errUsage
	}

	switch args[0] {
	case "create-admin":
		return c.createAdmin(ctx, args[1:])
	case "set-role":
		return c.setRole(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(c.out, usage)
		return nil
	default:
		fmt.Fprint(c.out, usage)
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func (c *cli) createAdmin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(c.out)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "login email")
	fromStdin := fs.Bool("password-stdin", false, "read the password from the first line of stdin")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *email == "" {
		return fmt.Errorf("%w: -name and -email are required", errUsage)
	}

	password, err := c.password(*fromStdin)
	if err != nil {
		return err
	}

	res, err := c.svc.Register(ctx, ports.RegisterInput{Name: *name, Email: *email, Password: password})
	if errors.Is(err, domain.ErrConflict) {
		return fmt.Errorf("%w; to promote the existing account run: accountctl set-role -email %s -role ADMIN", err, *email)
	}
	if err != nil {
		return err
	}
	account, err := c.svc.ChangeRole(ctx, res.Account.ID, domain.RoleAdmin)
	if err != nil {
		c.log.Error().Err(err).Str("account_id", res.Account.ID).Msg("account created but not promoted")
		return fmt.Errorf("account %s was created with role %s but promotion failed; finish with: accountctl set-role -id %s -role ADMIN: %w",
			res.Account.ID, res.Account.Role, res.Account.ID, err)
	}

	c.log.Info().Str("account_id", account.ID).Msg("admin account created")
	fmt.Fprintf(c.out, "created admin %s <%s> (%s)\n", account.Name, account.Email, account.ID)
	return nil
}

func (c *cli) setRole(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("set-role", flag.ContinueOnError)
	fs.SetOutput(c.out)
	email := fs.String("email", "", "account email")
	id := fs.String("id", "", "account id")
	roleName := fs.String("role", "", "USER or ADMIN")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*email == "") == (*id == "") {
		return fmt.Errorf("%w: exactly one of -email or -id is required", errUsage)
	}

	role, err := domain.ParseRole(*roleName)
	if err != nil {
		return err
	}

	accountID := *id
	if *email != "" {
		a, err := c.accounts.FindByEmail(ctx, domain.NormalizeEmail(*email))
		if err != nil {
			return err
		}
		accountID = a.ID
	}

	account, err := c.svc.ChangeRole(ctx, accountID, role)
	if err != nil {
		return err
	}
	c.log.Info().Str("account_id", account.ID).Str("role", string(account.Role)).Msg("role changed")
	fmt.Fprintf(c.out, "%s <%s> is now %s\n", account.Name, account.Email, account.Role)
	return nil
}

// password reads the new admin password, prompting twice on a terminal.
func (c *cli) password(fromStdin bool) (string, error) {
	if fromStdin || !isTerminal(c.stdinFd) {
		line, err := c.in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	first, err := c.prompt("Password: ")
	if err != nil {
		return "", err
	}
	second, err := c.prompt("Repeat password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("passwords do not match")
	}
	return first, nil
}

func (c *cli) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	pw, err := readPassword(c.stdinFd)
	fmt.Fprintln(c.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}
