package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Modes
const (
	ModeRelay = "relay" // run the room relay
	ModeHost  = "host"  // create a room and play as host
	ModeJoin  = "join"  // join a room as guest
	ModeSolo  = "solo"  // play offline
)

const envPrefix = "PLATFORMER_"

// Config is the process configuration. Every flag defaults to the matching
// PLATFORMER_* environment variable.
type Config struct {
	Mode string

	// relay
	Addr       string
	DBPath     string
	InviteBase string

	// peer
	RelayURL  string
	Room      string
	Name      string
	Passcode  string
	Level     int
	Autopilot bool
	Chat      bool

	LogLevel  string
	LogFormat string
}

// LoadConfig loads an optional .env file and parses flags from args
func LoadConfig(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Warn("could not load .env")
	}

	fs := flag.NewFlagSet("platformer", flag.ContinueOnError)
	cfg := &Config{}
	fs.StringVar(&cfg.Mode, "mode", getEnvDefault("MODE", ModeSolo), "relay, host, join or solo")
	fs.StringVar(&cfg.Addr, "addr", getEnvDefault("ADDR", ":8080"), "relay HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db", getEnvDefault("DB", "platformer.db"), "relay SQLite path (empty keeps runs in memory only)")
	fs.StringVar(&cfg.InviteBase, "invite", getEnvDefault("INVITE", "http://localhost:8080/"), "base link encoded in invite QR codes")
	fs.StringVar(&cfg.RelayURL, "relay", getEnvDefault("RELAY", "ws://localhost:8080/ws"), "relay websocket URL")
	fs.StringVar(&cfg.Room, "room", getEnvDefault("ROOM", ""), "room id to join")
	fs.StringVar(&cfg.Name, "name", getEnvDefault("NAME", ""), "player name")
	fs.StringVar(&cfg.Passcode, "passcode", getEnvDefault("PASSCODE", ""), "room passcode")
	fs.IntVar(&cfg.Level, "level", getEnvInt("LEVEL", 0), "first level (host and solo)")
	fs.BoolVar(&cfg.Autopilot, "autopilot", getEnvBool("AUTOPILOT", true), "drive the local player headlessly")
	fs.BoolVar(&cfg.Chat, "chat", getEnvBool("CHAT", false), "send stdin lines as chat")
	fs.StringVar(&cfg.LogLevel, "log-level", getEnvDefault("LOG_LEVEL", "info"), "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", getEnvDefault("LOG_FORMAT", "text"), "text or json")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Validate rejects unusable combinations
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeRelay:
		if c.Addr == "" {
			return fmt.Errorf("mode %s needs -addr", c.Mode)
		}
	case ModeHost:
		if c.RelayURL == "" {
			return fmt.Errorf("mode %s needs -relay", c.Mode)
		}
	case ModeJoin:
		if c.RelayURL == "" || c.Room == "" {
			return fmt.Errorf("mode %s needs -relay and -room", c.Mode)
		}
	case ModeSolo:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.Level < 0 || c.Level >= LevelCount() {
		return fmt.Errorf("level %d out of range [0, %d)", c.Level, LevelCount())
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

func getEnvDefault(key, defaultValue string) string {
	value := os.Getenv(envPrefix + key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnvDefault(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(getEnvDefault(key, ""))
	if err != nil {
		return defaultValue
	}
	return b
}
