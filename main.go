package main

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	setupLogging(cfg)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Mode == ModeRelay {
		err = runRelay(ctx, cfg)
	} else {
		err = runPeer(ctx, cfg)
	}
	if err != nil {
		log.Fatal(err)
	}
	log.Println("Shutting down...")
}

func runRelay(ctx context.Context, cfg *Config) error {
	var db *DB
	if cfg.DBPath != "" {
		var err error
		db, err = OpenDB(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	hub := NewHub(db)
	hubCtx, stopHub := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(hubCtx)
		close(done)
	}()

	server := &http.Server{Addr: cfg.Addr, Handler: NewServer(hub, cfg.InviteBase)}
	go func() {
		log.WithFields(log.Fields{"addr": cfg.Addr, "db": cfg.DBPath}).Info("relay starting")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := server.Shutdown(shutdownCtx)
	// flush recorded runs before the database closes
	stopHub()
	<-done
	return err
}

func runPeer(ctx context.Context, cfg *Config) error {
	var input InputSource = IdleInput{}
	if cfg.Autopilot {
		input = &Autopilot{FireEvery: 45}
	}

	role, pc := RoleSolo, PeerConfig{Name: cfg.Name}
	switch cfg.Mode {
	case ModeHost:
		pc.URL, pc.Passcode = cfg.RelayURL, cfg.Passcode
	case ModeJoin:
		role = RoleClient
		pc.URL, pc.Room, pc.Passcode = cfg.RelayURL, cfg.Room, cfg.Passcode
	}

	game := NewGame(role, cfg.Name, input)
	if err := game.Start(cfg.Level); err != nil {
		return err
	}
	peer := NewPeer(game, pc)
	if cfg.Chat {
		go readChat(ctx, game)
	}
	log.WithFields(log.Fields{"mode": cfg.Mode, "role": role, "relay": pc.URL}).Info("peer starting")
	return peer.Run(ctx)
}

// readChat sends every stdin line as a chat message
func readChat(ctx context.Context, game *Game) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		if line := strings.TrimSpace(sc.Text()); line != "" {
			game.SendChat(line)
		}
	}
}
