// A headless client: connects to a server, receives control of a player and
// wanders around, logging the authoritative state it observes. Useful for
// exercising a server without a rendering front end.
package main

import (
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gridwalk/client"
	"gridwalk/config"
	"gridwalk/input"
	"gridwalk/logging"
)

var walkKeys = []input.Key{input.KeyUp, input.KeyDown, input.KeyLeft, input.KeyRight}

func main() {
	var configPath, serverURL, name string
	flag.StringVar(&configPath, "config", "", "path to TOML config file")
	flag.StringVar(&serverURL, "server", "", "server websocket URL override")
	flag.StringVar(&name, "name", "", "player name override")
	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.ReadTOML(configPath)
		if err != nil {
			panic(err)
		}
		cfg = loaded
	}
	if serverURL != "" {
		cfg.Client.ServerURL = serverURL
	}
	if name != "" {
		cfg.Client.Name = name
	}

	if err := logging.Init(cfg.Client.LogFile); err != nil {
		panic(err)
	}
	defer logging.Sync()

	c, err := client.Dial(cfg.Client.ServerURL, cfg.Client.Name)
	if err != nil {
		logging.Log.Fatalf("connect: %v", err)
	}
	defer c.Close()

	if err := c.WaitReady(10 * time.Second); err != nil {
		logging.Log.Fatalf("join: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	walk := time.NewTicker(800 * time.Millisecond)
	defer walk.Stop()
	report := time.NewTicker(3 * time.Second)
	defer report.Stop()

	controller := c.Controller()
	var held *input.Key

	for {
		select {
		case <-walk.C:
			if held != nil {
				controller.KeyUp(*held)
				held = nil
			}
			// Rest roughly one step in four.
			if rand.Intn(4) != 0 {
				k := walkKeys[rand.Intn(len(walkKeys))]
				controller.KeyDown(k)
				held = &k
			}
		case <-report.C:
			for _, p := range c.Players() {
				pos := p.Position()
				logging.Log.Infof("player %s at (%.1f, %.1f) heading %s", p.ID, pos.X, pos.Y, p.Direction())
			}
		case <-quit:
			if held != nil {
				controller.KeyUp(*held)
			}
			logging.Log.Info("leaving")
			return
		}
	}
}
