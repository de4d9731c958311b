package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/clients/roomapi"
	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/app"
	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/gamestore"
	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/identity"
	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/notify"
	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/session"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	configPath := flag.String("config", "", "path to config yaml")
	name := flag.String("name", "", "display name (defaults to the remembered nickname)")
	join := flag.String("join", "", "room code to join; empty creates a new room")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	clock := clockwork.NewRealClock()
	queue := notify.NewQueue(clock)
	store := gamestore.New(queue)
	prefs := identity.NewFilePrefs(cfg.PrefsPath)
	api := roomapi.NewClient(cfg.Server.APIBaseURL)
	supervisor := session.NewSupervisor(store, cfg.Server.WSBaseURL,
		session.WithClock(clock),
		session.WithPolicy(cfg.Reconnect),
	)
	application := app.New(store, api, supervisor, prefs)

	displayName := *name
	if displayName == "" {
		displayName = application.SavedNickname()
	}
	if displayName == "" {
		log.Fatal().Msg("no display name: pass -name or save a nickname first")
	}
	application.SetUser(displayName)
	application.SaveNickname(displayName)

	ctx := context.Background()
	if *join != "" {
		if err := application.JoinRoom(ctx, *join); err != nil {
			log.Fatal().Err(err).Str("room_code", *join).Msg("could not join room")
		}
	} else {
		if err := application.CreateRoom(ctx); err != nil {
			log.Fatal().Err(err).Msg("could not create room")
		}
	}

	room := store.Room()
	fmt.Printf("room %s: share this code to invite players\n", room.Code)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	lastStatus := store.Status()
	for {
		select {
		case <-sigCh:
			log.Info().Msg("shutting down")
			application.LeaveRoom()
			supervisor.Close()
			queue.Close()
			return
		case <-ticker.C:
			if st := store.Status(); st != lastStatus {
				lastStatus = st
				log.Info().Str("status", string(st)).Msg("status changed")
			}
			for _, n := range queue.List() {
				log.Info().Str("category", string(n.Category)).Msg(n.Message)
				queue.Remove(n.ID)
			}
		}
	}
}
