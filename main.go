package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stenstromen/healthviz/api"
	"github.com/stenstromen/healthviz/config"
	"github.com/stenstromen/healthviz/db"
	"github.com/stenstromen/healthviz/logging"
	"github.com/stenstromen/healthviz/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	log, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := api.NewServer(store, session.NewManager([]byte(cfg.SessionSecret)), cfg.DataDir, cfg.OTPEnabled, log)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Handlers(srv),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", cfg.ListenAddr, "data_dir", cfg.DataDir, "otp", cfg.OTPEnabled)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// openStore picks MySQL when a DSN is configured and the flat file otherwise.
func openStore(ctx context.Context, cfg *config.Config) (db.Store, func(), error) {
	if cfg.DatabaseDSN == "" {
		return db.NewFileStore(cfg.UsersFile, cfg.OTPEnabled), func() {}, nil
	}

	conn, err := db.New(cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := conn.InitializeDB(ctx); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return db.NewMySQLStore(conn, cfg.OTPEnabled), func() { conn.Close() }, nil
}
