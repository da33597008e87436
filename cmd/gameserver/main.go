// Package main provides the game server binary: the Telnet front end backed
// by the narrative game engine and PostgreSQL persistence.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/dkessler/fableforge/internal/config"
	"github.com/dkessler/fableforge/internal/frontend/telnet"
	"github.com/dkessler/fableforge/internal/game/content"
	"github.com/dkessler/fableforge/internal/game/engine"
	"github.com/dkessler/fableforge/internal/generation"
	"github.com/dkessler/fableforge/internal/observability"
	"github.com/dkessler/fableforge/internal/server"
	"github.com/dkessler/fableforge/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	starterPath := flag.String("starter", "content/starter.yaml", "path to starter kit YAML; empty = built-in defaults")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting game server",
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.String("model", cfg.Generation.Model),
	)

	// Load starter kit content
	starter := content.DefaultStarter()
	if *starterPath != "" {
		if _, statErr := os.Stat(*starterPath); statErr == nil {
			starter, err = content.LoadStarterFromFile(*starterPath)
			if err != nil {
				logger.Fatal("loading starter kit", zap.Error(err))
			}
			logger.Info("starter kit loaded",
				zap.String("path", *starterPath),
				zap.Int("items", len(starter.Items)),
				zap.String("location", starter.Location),
			)
		} else {
			logger.Warn("starter kit file not found, using built-in defaults",
				zap.String("path", *starterPath),
			)
		}
	}

	// Connect to PostgreSQL
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)

	chars := postgres.NewCharacterRepository(pool.DB())
	inv := postgres.NewInventoryRepository(pool.DB())
	battles := postgres.NewBattleRepository(pool.DB())

	gen := generation.NewClient(cfg.Generation, logger)

	eng := engine.New(chars, inv, battles, gen, starter,
		cfg.Generation.SceneTokens, cfg.Generation.StatTokens, logger)

	acceptor := telnet.NewAcceptor(cfg.Telnet, telnet.NewSession(eng, logger), logger)

	// Wire lifecycle
	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add("telnet", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	lifecycle.Add("postgres", &server.FuncService{
		StartFn: func() error {
			for {
				time.Sleep(30 * time.Second)
				if err := pool.Health(ctx, 5*time.Second); err != nil {
					logger.Warn("database health check failed", zap.Error(err))
				}
			}
		},
		StopFn: func() {
			pool.Close()
		},
	})

	logger.Info("game server initialized",
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
