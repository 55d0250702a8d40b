package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"infostore/internal/access"
	"infostore/internal/handler"
)

type cmdServe struct {
	Addr string `long:"addr" env:"HTTP_ADDR" description:"Listen address (default: http.addr from config, else 127.0.0.1:8080)"`
}

func (cmd *cmdServe) Execute([]string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, cfg, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer provider.Release()

	addr := cfg.HTTP.Addr
	if cmd.Addr != "" {
		addr = cmd.Addr
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      handler.NewMux(access.NewPoint(provider)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.WithField("addr", addr).Info("server listening")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
