package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent bridge configuration stored as config.toml
// in the .bridge/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version   int             `toml:"version"`
	Storage   StorageConfig   `toml:"storage"`
	Server    ServerConfig    `toml:"server"`
	Assistant AssistantConfig `toml:"assistant"`
	Channel   ChannelConfig   `toml:"channel"`
	Events    EventsConfig    `toml:"events"`
	Notify    NotifyConfig    `toml:"notify"`
	Client    ClientConfig    `toml:"client"`
}

// StorageConfig selects and configures the durable state store.
type StorageConfig struct {
	// Provider is one of "memory", "sqlite" or "postgres".
	Provider    string `toml:"provider,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// AssistantConfig holds the conversational-AI backend settings.
type AssistantConfig struct {
	URL         string `toml:"url,omitempty"`
	APIKey      string `toml:"api_key,omitempty"`
	AssistantID string `toml:"assistant_id,omitempty"`
	Version     string `toml:"version,omitempty"`
	IAMURL      string `toml:"iam_url,omitempty"`
}

// ChannelConfig holds the bot's channel registration.
type ChannelConfig struct {
	AppID           string `toml:"app_id,omitempty"`
	AppPassword     string `toml:"app_password,omitempty"`
	RecordOnMessage bool   `toml:"record_on_message,omitempty"`
}

// EventsConfig selects the lifecycle event stream.
type EventsConfig struct {
	// Provider is "none" or "kafka".
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// NotifyConfig holds proactive notification settings.
type NotifyConfig struct {
	Concurrency uint   `toml:"concurrency,omitempty"`
	Message     string `toml:"message,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to a running
// bridge server (e.g. bridge notify). Values are full URLs.
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.provider": {
		get: func(c *Config) string { return c.Storage.Provider },
		set: func(c *Config, v string) error {
			switch v {
			case StorageMemory, StorageSQLite, StoragePostgres:
				c.Storage.Provider = v
				return nil
			default:
				return fmt.Errorf("invalid value for storage.provider: %q (available: memory, sqlite, postgres)", v)
			}
		},
	},
	"storage.sqlite_path":    stringKey(func(c *Config) *string { return &c.Storage.SQLitePath }),
	"storage.postgres_dsn":   stringKey(func(c *Config) *string { return &c.Storage.PostgresDSN }),
	"server.listen":          stringKey(func(c *Config) *string { return &c.Server.Listen }),
	"assistant.url":          stringKey(func(c *Config) *string { return &c.Assistant.URL }),
	"assistant.api_key":      stringKey(func(c *Config) *string { return &c.Assistant.APIKey }),
	"assistant.assistant_id": stringKey(func(c *Config) *string { return &c.Assistant.AssistantID }),
	"assistant.version":      stringKey(func(c *Config) *string { return &c.Assistant.Version }),
	"assistant.iam_url":      stringKey(func(c *Config) *string { return &c.Assistant.IAMURL }),
	"channel.app_id":         stringKey(func(c *Config) *string { return &c.Channel.AppID }),
	"channel.app_password":   stringKey(func(c *Config) *string { return &c.Channel.AppPassword }),
	"channel.record_on_message": {
		get: func(c *Config) string { return strconv.FormatBool(c.Channel.RecordOnMessage) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for channel.record_on_message: %w", err)
			}
			c.Channel.RecordOnMessage = b
			return nil
		},
	},
	"events.provider": {
		get: func(c *Config) string { return c.Events.Provider },
		set: func(c *Config, v string) error {
			switch v {
			case EventsNone, EventsKafka:
				c.Events.Provider = v
				return nil
			default:
				return fmt.Errorf("invalid value for events.provider: %q (available: none, kafka)", v)
			}
		},
	},
	"events.brokers": {
		get: func(c *Config) string { return strings.Join(c.Events.Brokers, ",") },
		set: func(c *Config, v string) error {
			c.Events.Brokers = SplitList(v)
			return nil
		},
	},
	"events.topic": stringKey(func(c *Config) *string { return &c.Events.Topic }),
	"notify.concurrency": {
		get: func(c *Config) string {
			if c.Notify.Concurrency == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Notify.Concurrency), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for notify.concurrency: %w", err)
			}
			c.Notify.Concurrency = uint(n)
			return nil
		},
	},
	"notify.message":    stringKey(func(c *Config) *string { return &c.Notify.Message }),
	"client.api_target": stringKey(func(c *Config) *string { return &c.Client.APITarget }),
}

// SplitList splits a comma separated list, dropping empty items.
func SplitList(v string) []string {
	var out []string
	for item := range strings.SplitSeq(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
