package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ServerConfig configures the game server process.
type ServerConfig struct {
	Address string
	LogFile string
	// Store selects the persistence backend: "json" or "postgres".
	Store  string
	DBFile string
	DSN    string
}

// WorldConfig configures the authoritative world.
type WorldConfig struct {
	// ViewRadius is the Chebyshev distance, in tiles, within which a session
	// observes other players.
	ViewRadius int
	// Speed is the movement speed of new players, in tiles per second.
	Speed float64
	// ChunkSize is the side length of a terrain chunk, in tiles.
	ChunkSize int
	// SweepIntervalMs is how often observation sets are recomputed between
	// state changes.
	SweepIntervalMs int
	SpawnX, SpawnY  float64
}

// ClientConfig configures the headless client.
type ClientConfig struct {
	ServerURL string
	Name      string
	LogFile   string
}

type Config struct {
	Server ServerConfig
	World  WorldConfig
	Client ClientConfig
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address: ":8080",
			LogFile: "gridwalk.log",
			Store:   "json",
			DBFile:  "db.json",
		},
		World: WorldConfig{
			ViewRadius:      10,
			Speed:           4,
			ChunkSize:       50,
			SweepIntervalMs: 250,
			SpawnX:          25,
			SpawnY:          25,
		},
		Client: ClientConfig{
			ServerURL: "ws://localhost:8080/ws",
			Name:      "wanderer",
		},
	}
}

// ReadTOML loads configuration from a TOML file, filling unset fields from
// Default.
func ReadTOML(fileName string) (*Config, error) {
	file, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}

	config := Default()
	if err := toml.Unmarshal(file, config); err != nil {
		return nil, err
	}
	return config, nil
}
