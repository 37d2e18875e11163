// Package main is the entry point for the soundpalette API server
package main

import (
	"flag"
	"os"

	"github.com/james-see/soundpalette/pkg/api"
	"github.com/james-see/soundpalette/pkg/config"
	"github.com/james-see/soundpalette/pkg/converter"
	"github.com/james-see/soundpalette/pkg/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Warnf("ignoring config: %v", err)
		cfg = config.DefaultConfig()
	}

	port := flag.Int("port", cfg.Server.Port, "Server port")
	spacing := flag.Int("spacing", cfg.Spacing, "Ticks between messages read from .syx files")
	debug := flag.Bool("debug", false, "Log every request")
	flag.Parse()

	if *debug {
		log.Level = log.LevelDebug
	}
	cfg.Server.Port, cfg.Spacing = *port, *spacing
	if err := cfg.Validate(); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}

	log.Infof("Starting soundpalette API server on port %d...", cfg.Server.Port)
	log.Infof("Swagger docs available at http://localhost:%d/swagger/index.html", cfg.Server.Port)

	opts := converter.Options{
		Division: uint16(cfg.Division),
		Spacing:  uint32(cfg.Spacing),
		Tempo:    cfg.Tempo,
	}
	if err := api.StartServer(cfg.Server.Port, opts); err != nil {
		log.Errorf("Server error: %v", err)
		os.Exit(1)
	}
}
