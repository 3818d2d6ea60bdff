// chessmatch serves two-player games and attack queries over HTTP.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hailam/chessmatch/internal/config"
	"github.com/hailam/chessmatch/internal/server"
	"github.com/hailam/chessmatch/internal/storage"
)

func main() {
	// Flags (env fallbacks).
	addr := flag.String("addr", config.Getenv(config.EnvAddr, ":8080"), "listen address")
	dataDir := flag.String("data-dir", config.Getenv(config.EnvDataDir, ""), "directory for the game store (default: platform data dir)")
	inMemory := flag.Bool("in-memory", config.Getenb(config.EnvInMemory, false), "keep games in memory only")
	captureTurn := flag.Bool("capture-turn", config.Getenb(config.EnvCaptureTurn, true), "check owner and turn on captures for new games")
	origins := flag.String("origins", config.Getenv(config.EnvOrigins, ""), "comma-separated allowed origins (default: any)")
	flag.Parse()

	var (
		store *storage.Storage
		err   error
	)
	if *inMemory {
		store, err = storage.OpenInMemory()
	} else {
		store, err = storage.Open(*dataDir)
	}
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	cfg := server.DefaultConfig()
	cfg.EnforceCaptureTurn = *captureTurn
	cfg.AllowedOrigins = config.SplitList(*origins)
	srv := server.New(store, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Close(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	if !*captureTurn {
		log.Printf("Captures skip the owner and turn check for new games")
	}
	if err := srv.Listen(*addr); err != nil {
		log.Fatal(err)
	}
}
