package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"gridwalk/config"
	"gridwalk/handlers"
	"gridwalk/logging"
	"gridwalk/persistence"
	"gridwalk/world"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin during development
		// In production, restrict this to your client's domain
		return true
	},
}

func main() {
	var configPath, addr string
	flag.StringVar(&configPath, "config", "", "path to TOML config file")
	flag.StringVar(&addr, "addr", "", "listen address override, e.g. :8080")
	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.ReadTOML(configPath)
		if err != nil {
			panic(err)
		}
		cfg = loaded
	}
	if addr != "" {
		cfg.Server.Address = addr
	}

	if err := logging.Init(cfg.Server.LogFile); err != nil {
		panic(err)
	}
	defer logging.Sync()

	store, err := openStore(&cfg.Server)
	if err != nil {
		logging.Log.Fatalf("failed to initialize persistence: %v", err)
	}
	defer store.Close()

	clientManager := handlers.NewClientManager()
	worldService := world.NewService(cfg.World, store, clientManager, nil)
	worldService.Start()
	defer worldService.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.Log.Warnf("failed to upgrade connection: %v", err)
			return
		}
		handlers.HandleClientConnection(conn, worldService, clientManager)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: cfg.Server.Address, Handler: mux}
	go func() {
		logging.Log.Infof("gridwalk server listening on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Log.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Log.Warnf("shutdown: %v", err)
	}
}

func openStore(cfg *config.ServerConfig) (persistence.Storage, error) {
	if cfg.Store == "postgres" {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			dsn = cfg.DSN
		}
		logging.Log.Info("using PostgreSQL persistence")
		return persistence.NewPostgresStore(dsn)
	}
	logging.Log.Infof("using JSON persistence at %s", cfg.DBFile)
	return persistence.NewJSONStore(cfg.DBFile)
}
