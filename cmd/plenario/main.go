package main

import (
	"context"
	"errors"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	handler "github.com/camaradigital/plenario/internal/adapters/handler/http"
	"github.com/camaradigital/plenario/internal/adapters/rest"
	"github.com/camaradigital/plenario/internal/adapters/socket"
	"github.com/camaradigital/plenario/internal/config"
	"github.com/camaradigital/plenario/internal/core/services"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiClient := rest.NewClient(rest.Config{
		BaseURL:  cfg.APIBaseURL,
		TenantID: cfg.TenantID,
		Token:    cfg.Token,
	}, logger)
	votacaoGateway := rest.NewVotacaoGateway(apiClient)
	voteGateway := rest.NewVoteGateway(apiClient)

	feed := socket.NewManager(socket.Config{
		URL:           cfg.SocketEndpoint(),
		DialTimeout:   cfg.DialTimeout,
		ReconnectBase: cfg.ReconnectBase,
		ReconnectMax:  cfg.ReconnectMax,
		MaxAttempts:   cfg.MaxAttempts,
	}, logger)

	tally := services.NewTallyService(logger)
	sessions := services.NewSessionService(votacaoGateway, voteGateway, tally, feed, logger)
	ballots := services.NewBallotService(voteGateway, tally, logger)

	if !apiClient.Healthy(ctx) {
		logger.Warn("api health probe failed, connecting anyway")
	}

	feed.Connect(ctx, cfg.TenantID, cfg.Token)
	defer feed.Disconnect()

	go sessions.Run(ctx)

	if _, err := sessions.LoadActive(ctx); err != nil {
		logger.Warn("initial votacao load failed", "error", err)
	}

	panelHandler := handler.NewPanelHandler(sessions, tally, ballots, feed, cfg.VereadorID)
	server := &stdhttp.Server{Addr: cfg.ListenAddr, Handler: handler.NewHandler(panelHandler)}

	go func() {
		logger.Info("panel listening", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.Error("panel server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
