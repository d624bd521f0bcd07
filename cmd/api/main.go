package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gorilla/sessions"

	"membersite-prototype/core"
)

func main() {
	cfg, err := core.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	ctx := context.Background()

	logCloser, err := core.SetupLogging(cfg, "api.log")
	if err != nil {
		log.Fatalf("failed to setup logging: %v", err)
	}
	defer logCloser.Close()

	db, err := core.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	if err := core.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("failed to ensure schema: %v", err)
	}

	// Gorilla cookie store for session management; the key signs every
	// session cookie, making client-held state tamper-evident.
	store := sessions.NewCookieStore([]byte(cfg.SessionKey))

	userRepo := core.NewPgUserRepository(db)
	authService := core.NewRepositoryAuthService(userRepo)

	if err := core.BootstrapAccount(ctx, userRepo, cfg); err != nil {
		log.Fatalf("bootstrap account failed: %v", err)
	}

	router := core.NewRouter(cfg, store, authService, userRepo)

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("starting server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
