// config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Game holds gameplay tunables. Durations are Go duration strings ("1h", "15m").
type Game struct {
	CaptureCooldown    string `toml:"capture_cooldown"`
	DailyQuestMin      int    `toml:"daily_quest_min"`
	DailyQuestMax      int    `toml:"daily_quest_max"`
	ExperiencePerLevel int64  `toml:"experience_per_level"`
	Timezone           string `toml:"timezone"`
	CatalogRefresh     string `toml:"catalog_refresh"`
	RolloverWorkers    int    `toml:"rollover_workers"`
}

type gameFile struct {
	Game Game `toml:"game"`
}

// DefaultGame mirrors the values the mobile client was built against.
var DefaultGame = Game{
	CaptureCooldown:    "1h",
	DailyQuestMin:      3,
	DailyQuestMax:      5,
	ExperiencePerLevel: 1000,
	Timezone:           "UTC",
	CatalogRefresh:     "15m",
	RolloverWorkers:    8,
}

// Tunables is Game after parsing and validation.
type Tunables struct {
	CaptureCooldown    time.Duration
	DailyQuestMin      int
	DailyQuestMax      int
	ExperiencePerLevel int64
	Location           *time.Location
	CatalogRefresh     time.Duration
	RolloverWorkers    int
}

type Config struct {
	DatabaseURL      string
	ListenAddr       string
	GameServiceToken string
	AllowedOrigins   []string

	SyncServiceURL string

	QuestCatalogFile string
	QuestCatalogKey  string

	R2AccountID       string
	R2AccessKeyID     string
	R2AccessKeySecret string
	R2Bucket          string

	Game Tunables
}

// Load reads .env (optional), the process environment and the optional
// GAME_CONFIG_FILE TOML document.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		ListenAddr:        envOr("LISTEN_ADDR", ":5200"),
		GameServiceToken:  os.Getenv("GAME_SERVICE_TOKEN"),
		AllowedOrigins:    splitOrigins(envOr("ALLOWED_ORIGINS", "http://localhost:3000")),
		SyncServiceURL:    os.Getenv("SYNC_SERVICE_URL"),
		QuestCatalogFile:  os.Getenv("QUEST_CATALOG_FILE"),
		QuestCatalogKey:   os.Getenv("QUEST_CATALOG_KEY"),
		R2AccountID:       os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2AccessKeySecret: os.Getenv("R2_ACCESS_KEY_SECRET"),
		R2Bucket:          os.Getenv("R2_BUCKET_NAME"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if cfg.GameServiceToken == "" {
		return nil, fmt.Errorf("GAME_SERVICE_TOKEN environment variable not set")
	}

	game := DefaultGame
	if path := os.Getenv("GAME_CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read game config %s: %w", path, err)
		}
		if game, err = ParseGame(data); err != nil {
			return nil, fmt.Errorf("parse game config %s: %w", path, err)
		}
	}

	tunables, err := game.Resolve()
	if err != nil {
		return nil, err
	}
	cfg.Game = tunables
	return cfg, nil
}

// ParseGame decodes a TOML document with a [game] table on top of DefaultGame.
func ParseGame(data []byte) (Game, error) {
	file := gameFile{Game: DefaultGame}
	if err := toml.Unmarshal(data, &file); err != nil {
		return Game{}, err
	}
	return file.Game, nil
}

func (g Game) Resolve() (Tunables, error) {
	cooldown, err := time.ParseDuration(g.CaptureCooldown)
	if err != nil {
		return Tunables{}, fmt.Errorf("capture_cooldown: %w", err)
	}
	if cooldown <= 0 {
		return Tunables{}, fmt.Errorf("capture_cooldown must be positive")
	}
	refresh, err := time.ParseDuration(g.CatalogRefresh)
	if err != nil {
		return Tunables{}, fmt.Errorf("catalog_refresh: %w", err)
	}
	if g.DailyQuestMin < 1 {
		return Tunables{}, fmt.Errorf("daily_quest_min must be at least 1")
	}
	if g.DailyQuestMax < g.DailyQuestMin {
		return Tunables{}, fmt.Errorf("daily_quest_max (%d) is below daily_quest_min (%d)", g.DailyQuestMax, g.DailyQuestMin)
	}
	if g.ExperiencePerLevel <= 0 {
		return Tunables{}, fmt.Errorf("experience_per_level must be positive")
	}
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return Tunables{}, fmt.Errorf("timezone: %w", err)
	}
	workers := g.RolloverWorkers
	if workers < 1 {
		workers = 1
	}

	return Tunables{
		CaptureCooldown:    cooldown,
		DailyQuestMin:      g.DailyQuestMin,
		DailyQuestMax:      g.DailyQuestMax,
		ExperiencePerLevel: g.ExperiencePerLevel,
		Location:           loc,
		CatalogRefresh:     refresh,
		RolloverWorkers:    workers,
	}, nil
}

// R2Enabled reports whether object storage credentials are present.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2AccessKeySecret != "" && c.R2Bucket != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitOrigins(raw string) []string {
	var out []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			out = append(out, origin)
		}
	}
	return out
}
