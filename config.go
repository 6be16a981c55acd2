package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings of one peer
type Config struct {
	Role         string // host, client or solo
	Addr         string // host listen address
	HostURL      string // client dial target
	Ticket       string // client join ticket
	Password     string // room password, both sides
	Level        int
	DBPath       string // empty disables persistence
	FrameRate    int
	PushRate     int
	SnapshotRate int
	TicketSecret string // hex, optional
	PublicURL    string // base URL advertised in the join QR code
	EnvFile      string
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("config: ignoring %s=%q, not a number", key, v)
	}
	return def
}

// LoadConfig reads .env, then GOBLIN_* environment variables, then flags
func LoadConfig(args []string) (Config, error) {
	envFile := ".env"
	for i, a := range args {
		if (a == "-env" || a == "--env") && i+1 < len(args) {
			envFile = args[i+1]
		}
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	fsFlags := flag.NewFlagSet("goblin-coop", flag.ContinueOnError)
	cfg := Config{EnvFile: envFile}
	fsFlags.StringVar(&cfg.EnvFile, "env", envFile, "Path to .env file")
	fsFlags.StringVar(&cfg.Role, "role", envString("GOBLIN_ROLE", "host"), "Peer role: host, client or solo")
	fsFlags.StringVar(&cfg.Addr, "addr", envString("GOBLIN_ADDR", ":8080"), "HTTP listen address (host)")
	fsFlags.StringVar(&cfg.HostURL, "host", envString("GOBLIN_HOST_URL", ""), "Host URL to dial (client)")
	fsFlags.StringVar(&cfg.Ticket, "ticket", envString("GOBLIN_TICKET", ""), "Join ticket (client)")
	fsFlags.StringVar(&cfg.Password, "password", envString("GOBLIN_PASSWORD", ""), "Room password")
	fsFlags.IntVar(&cfg.Level, "level", envInt("GOBLIN_LEVEL", 1), "Starting level")
	fsFlags.StringVar(&cfg.DBPath, "db", envString("GOBLIN_DB", "goblin.db"), "SQLite path, empty to disable")
	fsFlags.IntVar(&cfg.FrameRate, "fps", envInt("GOBLIN_FPS", 60), "Frame driver rate")
	fsFlags.IntVar(&cfg.PushRate, "push-rate", envInt("GOBLIN_PUSH_RATE", StatePushRate), "Client state pushes per second")
	fsFlags.IntVar(&cfg.SnapshotRate, "snapshot-rate", envInt("GOBLIN_SNAPSHOT_RATE", SnapshotRate), "Host snapshots per second")
	fsFlags.StringVar(&cfg.TicketSecret, "ticket-secret", envString("GOBLIN_TICKET_SECRET", ""), "Hex ticket signing secret")
	fsFlags.StringVar(&cfg.PublicURL, "public-url", envString("GOBLIN_PUBLIC_URL", ""), "Base URL advertised to the partner")
	if err := fsFlags.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Role {
	case "host", "solo":
	case "client":
		if c.HostURL == "" {
			return fmt.Errorf("client role needs -host")
		}
	default:
		return fmt.Errorf("unknown role %q", c.Role)
	}
	if c.Level < 1 || c.Level > LevelCount {
		return fmt.Errorf("level must be 1-%d", LevelCount)
	}
	if c.FrameRate <= 0 || c.PushRate <= 0 || c.SnapshotRate <= 0 {
		return fmt.Errorf("rates must be positive")
	}
	if c.PublicURL == "" {
		c.PublicURL = "http://localhost" + c.Addr
		if len(c.Addr) > 0 && c.Addr[0] != ':' {
			c.PublicURL = "http://" + c.Addr
		}
	}
	return nil
}
