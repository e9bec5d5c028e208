// Package refscmder provides the refs command for inspecting the
// conversation reference directory in the configured store.
package refscmder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/bridge/pkg/activity"
	"github.com/papercomputeco/bridge/pkg/cliui"
	"github.com/papercomputeco/bridge/pkg/config"
	"github.com/papercomputeco/bridge/pkg/dotdir"
	"github.com/papercomputeco/bridge/pkg/reference"
	"github.com/papercomputeco/bridge/pkg/storage"
	"github.com/papercomputeco/bridge/pkg/storage/provider"
	"github.com/papercomputeco/bridge/pkg/utils"
)

var refsFlags = []string{
	config.FlagStorage,
	config.FlagSQLite,
	config.FlagPostgres,
}

type refsCommander struct {
	storage     string
	sqlitePath  string
	postgresDSN string
	asJSON      bool
	configDir   string

	viper *viper.Viper
}

const refsLongDesc string = `List the conversations the bot can proactively message.

Reads the conversation reference directory straight from the configured
store (the same one "bridge serve" uses). Pass a user id to show a single
reference in full.

Examples:
  bridge refs
  bridge refs --json
  bridge refs 29:1f2a...`

const refsShortDesc string = "List recorded conversation references"

func NewRefsCmd() *cobra.Command {
	cmder := &refsCommander{}

	cmd := &cobra.Command{
		Use:   "refs [user-id]",
		Short: refsShortDesc,
		Long:  refsLongDesc,
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, config.Registry, refsFlags)
			cmder.viper = v
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			driver, err := cmder.open(cmd.Context())
			if err != nil {
				return err
			}
			defer driver.Close()

			userID := ""
			if len(args) == 1 {
				userID = args[0]
			}
			return cmder.run(cmd.Context(), cmd.OutOrStdout(), driver, userID)
		},
	}

	config.AddStringFlag(cmd, config.Registry, config.FlagStorage, &cmder.storage)
	config.AddStringFlag(cmd, config.Registry, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Registry, config.FlagPostgres, &cmder.postgresDSN)
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print references as JSON")

	return cmd
}

func (c *refsCommander) open(ctx context.Context) (storage.Driver, error) {
	opts := provider.Options{
		Provider:    c.viper.GetString("storage.provider"),
		PostgresDSN: c.viper.GetString("storage.postgres_dsn"),
	}
	if opts.Provider == provider.SQLite {
		path, err := dotdir.NewManager().ResolvePath(c.configDir, c.viper.GetString("storage.sqlite_path"))
		if err != nil {
			return nil, err
		}
		opts.SQLitePath = path
	}
	return provider.Open(ctx, opts)
}

func (c *refsCommander) run(ctx context.Context, out io.Writer, driver storage.Driver, userID string) error {
	directory, err := reference.NewDirectory(reference.Config{Driver: driver})
	if err != nil {
		return err
	}

	var refs []activity.ConversationReference
	if userID != "" {
		ref, ok, err := directory.Lookup(ctx, userID)
		if err != nil {
			return fmt.Errorf("reading references: %w", err)
		}
		if !ok {
			return fmt.Errorf("no conversation recorded for user %q", userID)
		}
		refs = append(refs, ref)
	} else {
		refs, err = directory.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("reading references: %w", err)
		}
	}

	if c.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(refs)
	}

	if len(refs) == 0 {
		fmt.Fprintf(out, "\n  %s\n\n", cliui.DimStyle.Render("No conversations recorded yet."))
		return nil
	}

	fmt.Fprintf(out, "\n  %s %s\n\n", cliui.KeyStyle.Render("Conversations:"), cliui.ValueStyle.Render(fmt.Sprint(len(refs))))
	for _, ref := range refs {
		if userID != "" {
			printReference(out, ref)
			continue
		}
		fmt.Fprintf(out, "  %s  %s  %s\n",
			cliui.KeyStyle.Render(ref.User.ID),
			cliui.ValueStyle.Render(ref.ChannelID),
			cliui.DimStyle.Render(utils.Truncate(ref.Conversation.ID, 40)),
		)
	}
	fmt.Fprintln(out)

	return nil
}

func printReference(out io.Writer, ref activity.ConversationReference) {
	const width = 14
	cliui.KeyValue(out, width, "user", ref.User.ID)
	cliui.KeyValue(out, width, "user name", ref.User.Name)
	cliui.KeyValue(out, width, "bot", ref.Bot.ID)
	cliui.KeyValue(out, width, "channel", ref.ChannelID)
	cliui.KeyValue(out, width, "conversation", ref.Conversation.ID)
	cliui.KeyValue(out, width, "service url", ref.ServiceURL)
	cliui.KeyValue(out, width, "locale", ref.Locale)
}
