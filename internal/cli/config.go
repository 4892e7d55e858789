package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/ShantaRam81/Nodes/pkg/sim"
)

// Config is the nodes.toml configuration file. Every section has working
// defaults; a missing file means "all defaults".
type Config struct {
	Sim      sim.Config     `toml:"sim"`
	Scan     ScanConfig     `toml:"scan"`
	Server   ServerConfig   `toml:"server"`
	Cache    CacheConfig    `toml:"cache"`
	Snapshot SnapshotConfig `toml:"snapshot"`
}

// ScanConfig mirrors internal/scan.Options plus the watch debounce.
type ScanConfig struct {
	MaxDepth       int  `toml:"max_depth"`
	GroupFiles     bool `toml:"group_files"`
	GroupThreshold int  `toml:"group_threshold"`
	IncludeHidden  bool `toml:"include_hidden"`
	DebounceMS     int  `toml:"debounce_ms"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// CacheConfig selects and configures the layout cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"` // "file" (default), "redis", "none"
	Dir           string `toml:"dir"`     // file backend; empty = XDG cache dir
	TTLMinutes    int    `toml:"ttl_minutes"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// SnapshotConfig selects and configures the snapshot store backend.
type SnapshotConfig struct {
	Backend       string `toml:"backend"` // "file" (default), "mongo"
	Dir           string `toml:"dir"`     // file backend; empty = ~/.config/nodes/snapshots
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// DefaultCLIConfig returns the configuration used when no nodes.toml exists.
func DefaultCLIConfig() Config {
	return Config{
		Sim: sim.DefaultConfig(),
		Scan: ScanConfig{
			GroupFiles:     true,
			GroupThreshold: 24,
			DebounceMS:     250,
		},
		Server: ServerConfig{Addr: "localhost:8340"},
		Cache: CacheConfig{
			Backend:    "file",
			TTLMinutes: 24 * 60,
			RedisAddr:  "localhost:6379",
		},
		Snapshot: SnapshotConfig{
			Backend:       "file",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: appName,
		},
	}
}

// LoadConfig reads a nodes.toml file. With an empty path it looks for
// ./nodes.toml, then ~/.config/nodes/nodes.toml, and returns defaults when
// neither exists. The file only needs to list the keys it overrides.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultCLIConfig()

	if path == "" {
		path = findConfigFile()
		if path == "" {
			return cfg, nil
		}
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func findConfigFile() string {
	local := appName + ".toml"
	if _, err := os.Stat(local); err == nil {
		return local
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(home, ".config", appName, appName+".toml")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}
