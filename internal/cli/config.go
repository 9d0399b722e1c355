package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/seatlens/seatlens/pkg/errs"
	"github.com/seatlens/seatlens/pkg/rendercache"
)

// configFile is looked up in the working directory when --config is not set.
const configFile = "seatlens.toml"

// Config holds runtime settings shared by the serve, view and map commands.
type Config struct {
	// VenuesDir holds one TOML venue config per venue.
	VenuesDir string       `toml:"venues_dir"`
	Server    ServerConfig `toml:"server"`
	Render    RenderConfig `toml:"render"`
	Cache     CacheConfig  `toml:"cache"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type RenderConfig struct {
	// URL of the GPU render backend. Empty disables rendering; map and
	// pose still work.
	URL      string   `toml:"url"`
	Timeout  duration `toml:"timeout"`
	Attempts int      `toml:"attempts"`
}

type CacheConfig struct {
	MaxBytes   int64    `toml:"max_bytes"`
	MaxEntries int      `toml:"max_entries"`
	TTL        duration `toml:"ttl"`
	// RedisURL enables the shared backing store (redis://host:port/db).
	RedisURL string `toml:"redis_url"`
	// Dir overrides where rendered frames persist on disk. Empty uses
	// the user cache directory.
	Dir string `toml:"dir"`
}

// duration decodes TOML strings like "45m" or "1h30m".
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

// defaultConfig returns the settings used when no config file exists.
func defaultConfig() Config {
	return Config{
		VenuesDir: "venues",
		Server:    ServerConfig{Addr: ":8080"},
		Render: RenderConfig{
			Timeout:  duration(rendercache.DefaultRenderTimeout),
			Attempts: 3,
		},
		Cache: CacheConfig{
			MaxBytes:   rendercache.DefaultMaxBytes,
			MaxEntries: rendercache.DefaultMaxEntries,
			TTL:        duration(45 * time.Minute),
		},
	}
}

// loadConfig reads the config at path, or the defaults when path is empty
// and no seatlens.toml exists in the working directory.
func loadConfig(path string) (Config, error) {
	explicit := path != ""
	if path == "" {
		path = configFile
	}

	cfg := defaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, errs.Wrap(errs.ErrCodeInternal, err, "load config %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, errs.New(errs.ErrCodeInternal, "unknown config key %q in %s", undecoded[0], path)
	}
	return cfg, nil
}

// cacheConfig converts the file settings into cache bounds.
func (c Config) cacheConfig() rendercache.Config {
	return rendercache.Config{
		MaxBytes:      c.Cache.MaxBytes,
		MaxEntries:    c.Cache.MaxEntries,
		TTL:           time.Duration(c.Cache.TTL),
		RenderTimeout: time.Duration(c.Render.Timeout),
	}
}

// frameDir resolves the directory where rendered frames persist on disk.
func (c Config) frameDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInternal, err, "resolve user cache dir")
	}
	return filepath.Join(base, "seatlens", "renders"), nil
}

// envOr reads an environment variable with a fallback.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
