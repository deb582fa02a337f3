package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/go-social-client/internal/app"
	"github.com/pribylovaa/go-social-client/internal/config"
)

// serve поднимает локальный прокси сессии и ждёт сигнала остановки.
func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	log.Info("starting social-client", slog.String("env", cfg.Env), slog.String("storage", cfg.Storage.Driver))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a, err := app.New(ctx, cfg, log, reg)
	if err != nil {
		return fmt.Errorf("app init: %w", err)
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			log.Warn("store_close_failed", slog.String("err", cerr.Error()))
		}
	}()

	// Выход из сессии в другом месте (logout, провал обновления) виден в логе.
	updates, unsubscribe := a.Store.Subscribe()
	defer unsubscribe()
	go func() {
		for s := range updates {
			log.Info("session_changed",
				slog.Bool("authenticated", s.IsAuthenticated),
				slog.String("user_id", s.SubjectID),
			)
		}
	}()

	var ready int32 // 0 — not ready; 1 — ready

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(&ready) == 1 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}

		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/", a.Router())

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return fmt.Errorf("http listen %s: %w", httpAddr, err)
	}

	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)
	log.Info("proxy_ready", slog.Bool("authenticated", a.Guard.IsPermitted()))

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown_requested")
	case serveErr = <-serveErrCh:
		if serveErr != nil {
			log.Error("http_serve_failed", slog.String("err", serveErr.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	log.Info("service_stopped")
	return serveErr
}
