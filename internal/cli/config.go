package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/gantry/pkg/store"
)

// Config holds CLI configuration loaded from a TOML file.
type Config struct {
	Store StoreConfig `toml:"store"`
}

// StoreConfig selects and configures the snapshot storage backend.
type StoreConfig struct {
	// Backend is one of "file", "redis", or "mongo". Defaults to "file".
	Backend string `toml:"backend"`

	File  FileStoreConfig  `toml:"file"`
	Redis RedisStoreConfig `toml:"redis"`
	Mongo MongoStoreConfig `toml:"mongo"`
}

// FileStoreConfig configures the file backend.
type FileStoreConfig struct {
	// Dir is the snapshot directory. Empty uses ~/.config/gantry/snapshots/
	Dir string `toml:"dir"`
}

// RedisStoreConfig configures the Redis backend.
type RedisStoreConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	// TTLHours bounds snapshot lifetime. Zero means no expiration.
	TTLHours int `toml:"ttl_hours"`
}

// MongoStoreConfig configures the MongoDB backend.
type MongoStoreConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// defaultConfigPath returns ~/.config/gantry/config.toml.
func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "gantry", "config.toml"), nil
}

// loadConfig reads the TOML config at path. If path is empty, the default
// location is used; a missing file there yields the zero config.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		path, err = defaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) && !explicit {
			return &cfg, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return &cfg, nil
}

// openStore opens the snapshot store the config selects.
func openStore(ctx context.Context, cfg *Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "", "file":
		return store.NewFileStore(cfg.Store.File.Dir)
	case "redis":
		addr := cfg.Store.Redis.Addr
		if addr == "" {
			addr = "localhost:6379"
		}
		return store.NewRedisStore(ctx, store.RedisConfig{
			Addr:     addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
			TTL:      time.Duration(cfg.Store.Redis.TTLHours) * time.Hour,
		})
	case "mongo":
		uri := cfg.Store.Mongo.URI
		if uri == "" {
			uri = "mongodb://localhost:27017"
		}
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        uri,
			Database:   cfg.Store.Mongo.Database,
			Collection: cfg.Store.Mongo.Collection,
		})
	default:
		return nil, fmt.Errorf("unknown store backend %q (want file, redis, or mongo)", cfg.Store.Backend)
	}
}
