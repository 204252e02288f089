package main

import (
	"context"
	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/enemies/bot"
	"github.com/zucenko/enemies/model"
	"github.com/zucenko/enemies/server"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

type Server struct {
	router     *way.Router
	GameServer *server.GameServer
}

// botFactory starts the configured command for a color, or an in-process
// greedy bot when none is configured.
func botFactory(cfg *server.Config) server.BotFactory {
	return func(matchID string, c model.Color) (bot.Bot, error) {
		argv := cfg.RedBot
		if c == model.Blue {
			argv = cfg.BlueBot
		}
		name := c.String() + "-" + matchID[:8]
		if len(argv) == 0 {
			return bot.NewGreedy(name), nil
		}
		return bot.StartProcess(name, argv, cfg.Match.MoveTimeout)
	}
}

func main() {
	cfg, err := server.LoadConfig(nil)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	log.SetLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := Server{
		GameServer: server.NewGameServer(cfg.Match, botFactory(cfg)),
	}
	go s.GameServer.Loop(ctx)
	s.routes()

	httpServer := &http.Server{Addr: ":" + cfg.Port, Handler: s.router}
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info("shutting down")
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warnf("shutdown %v", err)
		}
	}()

	log.Printf("listening on port %s", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalln(err)
	}
}
