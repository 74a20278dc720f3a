// Command provision creates admin accounts. Admins cannot be created over
// HTTP; this is the only way in.
//
//	provision --username root            # prompts for the password
//	echo "$PW" | provision --username root --password-stdin
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/iliyamo/record-tracker/internal/authz"
	"github.com/iliyamo/record-tracker/internal/config"
	"github.com/iliyamo/record-tracker/internal/database"
	"github.com/iliyamo/record-tracker/internal/logging"
	"github.com/iliyamo/record-tracker/internal/repository"
	"github.com/iliyamo/record-tracker/internal/service"
)

// readPassword reads without echo; replaced in tests.
var readPassword = term.ReadPassword

type options struct {
	username      string
	passwordStdin bool
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, out io.Writer) error {
	opts, err := parseFlags(args, out)
	if err != nil {
		return err
	}
	password, err := readSecret(opts, stdin, out)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(out, cfg.IsProd())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
		return err
	}

	users := repository.NewUserRepo(db)
	gate := authz.NewGate(repository.NewRecordRepo(db), users)
	accounts := service.NewAccounts(users, gate, service.NopPublisher{}, logger, cfg.BcryptCost)

	u, err := accounts.CreateAdmin(ctx, opts.username, password)
	if err != nil {
		return err
	}
	logger.Info(ctx, "admin created", "id", u.ID, "username", u.Username)
	return nil
}

func parseFlags(args []string, out io.Writer) (options, error) {
	var opts options
	fs := pflag.NewFlagSet("provision", pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVarP(&opts.username, "username", "u", "", "admin username (required)")
	fs.BoolVar(&opts.passwordStdin, "password-stdin", false, "read the password from stdin instead of prompting")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	opts.username = strings.TrimSpace(opts.username)
	if opts.username == "" {
		return options{}, errors.New("--username is required")
	}
	return opts, nil
}

// readSecret takes the first line of stdin with --password-stdin and
// otherwise prompts on the terminal.
func readSecret(opts options, stdin io.Reader, out io.Writer) (string, error) {
	if opts.passwordStdin {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	fmt.Fprint(out, "Password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}
