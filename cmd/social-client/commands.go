package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/pribylovaa/go-social-client/internal/app"
	"github.com/pribylovaa/go-social-client/internal/config"
	"github.com/pribylovaa/go-social-client/internal/models"
)

var errUsage = errors.New("invalid arguments")

// runCommand выполняет разовую команду CLI и печатает результат в out как JSON.
func runCommand(ctx context.Context, cfg config.Config, log *slog.Logger, cmd string, args []string, out io.Writer) error {
	a, err := app.New(ctx, cfg, log, nil)
	if err != nil {
		return fmt.Errorf("app init: %w", err)
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			log.Warn("store_close_failed", slog.String("err", cerr.Error()))
		}
	}()

	switch cmd {
	case "login":
		return login(ctx, a, args, out)
	case "register":
		return register(ctx, a, args, out)
	case "logout":
		if err := a.Service.Logout(ctx); err != nil {
			return err
		}
		return printJSON(out, a.Service.Whoami())
	case "whoami":
		return printJSON(out, a.Service.Whoami())
	case "get":
		if len(args) != 1 {
			return fmt.Errorf("%w: get <path>", errUsage)
		}
		var body json.RawMessage
		if err := a.Gateway.Do(ctx, http.MethodGet, args[0], nil, &body); err != nil {
			return err
		}
		return printJSON(out, body)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func login(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", os.Getenv("SOCIAL_PASSWORD"), "password (or SOCIAL_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	sess, err := a.Service.Login(ctx, models.Credentials{Email: *email, Password: *password})
	if err != nil {
		return err
	}

	return printJSON(out, sess)
}

func register(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	username := fs.String("username", "", "new username")
	email := fs.String("email", "", "account email")
	password := fs.String("password", os.Getenv("SOCIAL_PASSWORD"), "password (or SOCIAL_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	sess, err := a.Service.Register(ctx, models.Registration{
		Username: *username,
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		return err
	}

	return printJSON(out, sess)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
