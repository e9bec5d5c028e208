// Package bridgecmder
package bridgecmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/papercomputeco/bridge/cmd/bridge/chat"
	configcmder "github.com/papercomputeco/bridge/cmd/bridge/config"
	initcmder "github.com/papercomputeco/bridge/cmd/bridge/init"
	notifycmder "github.com/papercomputeco/bridge/cmd/bridge/notify"
	refscmder "github.com/papercomputeco/bridge/cmd/bridge/refs"
	servecmder "github.com/papercomputeco/bridge/cmd/bridge/serve"
	versioncmder "github.com/papercomputeco/bridge/cmd/version"
)

const bridgeLongDesc string = `Bridge relays Bot Framework conversations to Watson Assistant.

Run services using:
  bridge serve          Run the bot endpoint
  bridge chat           Talk to the assistant from the terminal
  bridge notify         Send proactive notifications through a running server
  bridge refs           List conversations that can receive notifications`

const bridgeShortDesc string = "Bridge - Bot Framework to Watson Assistant relay"

func NewBridgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "bridge",
		Short:        bridgeShortDesc,
		Long:         bridgeLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to the .bridge/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(notifycmder.NewNotifyCmd())
	cmd.AddCommand(refscmder.NewRefsCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
