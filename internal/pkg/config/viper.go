package config

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides: TRIPMAILER_MAIL_MANDRILL_API_KEY
// sets mail.mandrill.api_key.
const EnvPrefix = "TRIPMAILER"

var ErrConfigTypeRequired = errors.New("config type is required")

// Viper implements Config on top of spf13/viper.
type Viper struct {
	v *viper.Viper
}

func withEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// NewViper reads file and re-reads it whenever it changes on disk, so keys
// read per call (maintenance endpoints, consumer switches) follow edits
// without a restart. The format comes from the file extension.
func NewViper(file string) (*Viper, error) {
	v := withEnv()
	v.SetConfigFile(filepath.Clean(file))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(ev fsnotify.Event) {
		if err := v.ReadInConfig(); err != nil {
			slog.Error("config reload failed", "path", ev.Name, "error", err)
			return
		}
		slog.Info("config reloaded", "path", ev.Name, "op", ev.Op.String())
	})
	v.WatchConfig()

	return &Viper{v: v}, nil
}

// NewViperFromBytes reads data in the given viper format ("yaml", "json", ...).
// Tests build their config this way.
func NewViperFromBytes(format string, data []byte) (*Viper, error) {
	if strings.TrimSpace(format) == "" {
		return nil, ErrConfigTypeRequired
	}

	v := withEnv()
	v.SetConfigType(format)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	return &Viper{v: v}, nil
}

func (c *Viper) GetBool(key string) bool       { return c.v.GetBool(key) }
func (c *Viper) GetString(key string) string   { return c.v.GetString(key) }
func (c *Viper) GetInt(key string) int         { return c.v.GetInt(key) }
func (c *Viper) GetInt32(key string) int32     { return c.v.GetInt32(key) }
func (c *Viper) GetUint(key string) uint       { return c.v.GetUint(key) }
func (c *Viper) GetFloat64(key string) float64 { return c.v.GetFloat64(key) }

func (c *Viper) GetSecond(key string) time.Duration {
	return time.Duration(c.v.GetInt64(key)) * time.Second
}

func (c *Viper) GetArray(key string) []string {
	raw := c.v.GetStringSlice(key)
	if s, ok := c.v.Get(key).(string); ok {
		raw = strings.Split(s, ",")
	}

	out := raw[:0:0]
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Close satisfies io.Closer. The file watcher lives as long as the process.
func (c *Viper) Close() error { return nil }
