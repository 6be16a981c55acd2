package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	sess, err := NewSession(cfg)
	if err != nil {
		log.Fatalf("session: %v", err)
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Starting %s session %s on level %d", cfg.Role, sess.ID, cfg.Level)
	if err := sess.Run(ctx); err != nil {
		log.Fatalf("run: %v", err)
	}
	log.Println("Shutting down...")
}
