// Package configcmder provides the config command for managing persistent
// bridge configuration stored in the .bridge/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent bridge configuration.

Configuration is stored as config.toml in the .bridge/ directory and provides
default values for command flags. CLI flags and BRIDGE_* environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.provider, storage.sqlite_path, storage.postgres_dsn,
  server.listen,
  assistant.url, assistant.api_key, assistant.assistant_id,
  assistant.version, assistant.iam_url,
  channel.app_id, channel.app_password, channel.record_on_message,
  events.provider, events.brokers, events.topic,
  notify.concurrency, notify.message,
  client.api_target

Use subcommands to get, set, or list configuration values:
  bridge config set <key> <value>    Set a configuration value
  bridge config get <key>            Get a configuration value
  bridge config list                 List all configuration values

Examples:
  bridge config set assistant.assistant_id 0a1b2c3d-...
  bridge config set events.brokers kafka-1:9092,kafka-2:9092
  bridge config get storage.provider
  bridge config list`

const configShortDesc string = "Manage persistent bridge configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
