package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/hailam/chessmatch/internal/config"
	"github.com/hailam/chessmatch/internal/console"
	"github.com/hailam/chessmatch/internal/storage"
)

var (
	cpuprofile  = flag.String("cpuprofile", "", "write cpu profile to file")
	useStore    = flag.Bool("store", false, "enable save/load against the game store")
	dataDir     = flag.String("data-dir", config.Getenv(config.EnvDataDir, ""), "directory for the game store (default: platform data dir)")
	captureTurn = flag.Bool("capture-turn", config.Getenb(config.EnvCaptureTurn, true), "check owner and turn on captures")
	verbose     = flag.Bool("v", false, "log rejected moves to stderr")
)

func main() {
	flag.Parse()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	opts := []console.Option{console.WithEnforceCaptureTurn(*captureTurn)}
	if *verbose {
		opts = append(opts, console.WithLogger(log.New(os.Stderr, "", log.LstdFlags)))
	}
	if *useStore {
		store, err := storage.Open(*dataDir)
		if err != nil {
			log.Fatalf("open store: %v", err)
		}
		defer store.Close()
		opts = append(opts, console.WithStore(store))
	}

	c, err := console.New(os.Stdin, os.Stdout, opts...)
	if err != nil {
		log.Fatalf("console: %v", err)
	}
	if err := c.Run(); err != nil {
		log.Printf("read input: %v", err)
	}
}
