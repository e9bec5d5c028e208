package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/bridge/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the BRIDGE_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (BRIDGE_SERVER_LISTEN, BRIDGE_ASSISTANT_API_KEY, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: BRIDGE_SERVER_LISTEN, BRIDGE_STORAGE_SQLITE_PATH, etc.
	v.SetEnvPrefix("BRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Storage
	v.SetDefault("storage.provider", d.Storage.Provider)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)

	// Server
	v.SetDefault("server.listen", d.Server.Listen)

	// Assistant
	v.SetDefault("assistant.url", d.Assistant.URL)
	v.SetDefault("assistant.api_key", d.Assistant.APIKey)
	v.SetDefault("assistant.assistant_id", d.Assistant.AssistantID)
	v.SetDefault("assistant.version", d.Assistant.Version)
	v.SetDefault("assistant.iam_url", d.Assistant.IAMURL)

	// Channel
	v.SetDefault("channel.app_id", d.Channel.AppID)
	v.SetDefault("channel.app_password", d.Channel.AppPassword)
	v.SetDefault("channel.record_on_message", d.Channel.RecordOnMessage)

	// Events
	v.SetDefault("events.provider", d.Events.Provider)
	v.SetDefault("events.brokers", strings.Join(d.Events.Brokers, ","))
	v.SetDefault("events.topic", d.Events.Topic)

	// Notify
	v.SetDefault("notify.concurrency", d.Notify.Concurrency)
	v.SetDefault("notify.message", d.Notify.Message)

	// Client
	v.SetDefault("client.api_target", d.Client.APITarget)
}

// Brokers returns the configured Kafka brokers, accepting either a TOML list
// or a comma separated string (as set by flags and environment variables).
func Brokers(v *viper.Viper) []string {
	var out []string
	for _, item := range v.GetStringSlice("events.brokers") {
		out = append(out, SplitList(item)...)
	}
	return out
}
