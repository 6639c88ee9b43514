// Package config loads the krishimitra configuration: YAML file first,
// then environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/krishimitra/krishi_mitra/internal/store"
	"github.com/krishimitra/krishi_mitra/pkg/mqttbus"
)

const (
	BackendSQLite   = "sqlite"
	BackendSupabase = "supabase"

	SpeechNone = "none"
	SpeechLog  = "log"
	SpeechMQTT = "mqtt"
)

type Config struct {
	HTTP   HTTPConfig   `yaml:"http"`
	Store  StoreConfig  `yaml:"store"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
	Influx InfluxConfig `yaml:"influx"`
	Speech SpeechConfig `yaml:"speech"`
	Log    LogConfig    `yaml:"log"`
}

type HTTPConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type StoreConfig struct {
	Backend    string           `yaml:"backend"`
	SQLitePath string           `yaml:"sqlite_path"`
	Supabase   store.RESTConfig `yaml:"supabase"`
}

// MQTTConfig enables sensor ingest and the voice kiosk when Broker.Host is set.
type MQTTConfig struct {
	Broker       mqttbus.Config `yaml:"broker"`
	SensorTopics []string       `yaml:"sensor_topics"`
	DedupTTL     time.Duration  `yaml:"dedup_ttl"`
	DedupMax     int            `yaml:"dedup_max"`
}

func (c MQTTConfig) Enabled() bool { return strings.TrimSpace(c.Broker.Host) != "" }

// InfluxConfig enables the time-series mirror when URL is set.
type InfluxConfig struct {
	URL           string        `yaml:"url"`
	Token         string        `yaml:"token"`
	Org           string        `yaml:"org"`
	Bucket        string        `yaml:"bucket"`
	BatchSize     uint          `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

func (c InfluxConfig) Enabled() bool { return strings.TrimSpace(c.URL) != "" }

type SpeechConfig struct {
	Backend string `yaml:"backend"`
	Topic   string `yaml:"topic"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Store: StoreConfig{
			Backend:    BackendSQLite,
			SQLitePath: "krishimitra.db",
			Supabase: store.RESTConfig{
				Timeout:          5 * time.Second,
				FailureThreshold: 5,
				OpenFor:          10 * time.Second,
			},
		},
		MQTT: MQTTConfig{
			Broker:       mqttbus.Config{Port: 1883, ClientID: "krishimitra", MaxRetries: 5},
			SensorTopics: []string{"sensor/soil/#"},
			DedupTTL:     10 * time.Minute,
			DedupMax:     10000,
		},
		Influx: InfluxConfig{
			Org:           "krishimitra",
			Bucket:        "soil",
			BatchSize:     10,
			FlushInterval: 200 * time.Millisecond,
		},
		Speech: SpeechConfig{Backend: SpeechLog, Topic: "speech/utterance"},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file is not an error; an
// empty path skips the file. Environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.HTTP.Port = envInt("KM_HTTP_PORT", c.HTTP.Port)
	c.Store.Backend = envStr("KM_STORE_BACKEND", c.Store.Backend)
	c.Store.SQLitePath = envStr("KM_SQLITE_PATH", c.Store.SQLitePath)
	c.Store.Supabase.URL = envStr("SUPABASE_URL", c.Store.Supabase.URL)
	c.Store.Supabase.Key = envStr("SUPABASE_KEY", c.Store.Supabase.Key)

	c.MQTT.Broker.Host = envStr("MQTT_HOST", c.MQTT.Broker.Host)
	c.MQTT.Broker.Port = envInt("MQTT_PORT", c.MQTT.Broker.Port)
	c.MQTT.Broker.User = envStr("MQTT_USER", c.MQTT.Broker.User)
	c.MQTT.Broker.Password = envStr("MQTT_PASSWORD", c.MQTT.Broker.Password)
	c.MQTT.Broker.ClientID = envStr("HOSTNAME", c.MQTT.Broker.ClientID)

	c.Influx.URL = envStr("INFLUX_URL", c.Influx.URL)
	c.Influx.Token = envStr("INFLUX_TOKEN", c.Influx.Token)
	c.Influx.Org = envStr("INFLUX_ORG", c.Influx.Org)
	c.Influx.Bucket = envStr("INFLUX_BUCKET", c.Influx.Bucket)

	c.Speech.Backend = envStr("KM_SPEECH_BACKEND", c.Speech.Backend)
	c.Log.Level = envStr("KM_LOG_LEVEL", c.Log.Level)
}

func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("config: invalid http port %d", c.HTTP.Port)
	}
	switch c.Store.Backend {
	case BackendSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("config: sqlite backend needs sqlite_path")
		}
	case BackendSupabase:
		if c.Store.Supabase.URL == "" || c.Store.Supabase.Key == "" {
			return fmt.Errorf("config: supabase backend needs SUPABASE_URL and SUPABASE_KEY")
		}
	default:
		return fmt.Errorf("config: unknown store backend %q (valid: %s, %s)", c.Store.Backend, BackendSQLite, BackendSupabase)
	}
	switch c.Speech.Backend {
	case SpeechNone, SpeechLog:
	case SpeechMQTT:
		if !c.MQTT.Enabled() {
			return fmt.Errorf("config: mqtt speech backend needs MQTT_HOST")
		}
	default:
		return fmt.Errorf("config: unknown speech backend %q", c.Speech.Backend)
	}
	return nil
}

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
