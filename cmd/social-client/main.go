package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pribylovaa/go-social-client/internal/config"
	"github.com/pribylovaa/go-social-client/internal/gateway"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const usage = `usage: social-client [--config path] <command> [args]

commands:
  serve                          run local session proxy
  login    --email E --password P
  register --username U --email E --password P
  logout
  whoami
  get      <path>                authenticated GET, prints JSON body
`

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.MustLoad(configPath)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	cmd, args := flag.Arg(0), flag.Args()[1:]

	var err error
	switch cmd {
	case "serve":
		log := setupLogger(cfg.Env, os.Stdout)
		slog.SetDefault(log)
		err = serve(rootCtx, *cfg, log)
	case "login", "register", "logout", "whoami", "get":
		// Stdout занят результатом команды.
		log := setupLogger(cfg.Env, os.Stderr)
		slog.SetDefault(log)
		err = runCommand(rootCtx, *cfg, log, cmd, args, os.Stdout)
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, gateway.ErrUnauthenticated) || errors.Is(err, gateway.ErrSessionExpired) ||
			errors.Is(err, gateway.ErrRefreshTimeout) {
			fmt.Fprintln(os.Stderr, "run `social-client login` to sign in")
		}
		rootCancel()
		os.Exit(1)
	}
}

func setupLogger(env string, w io.Writer) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
