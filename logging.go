package main

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// setupLogging configures the global logger from config
func setupLogging(cfg *Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	if strings.ToLower(cfg.LogFormat) == "json" {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
