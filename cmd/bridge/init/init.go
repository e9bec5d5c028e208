// Package initcmder provides the init command for initializing a local
// .bridge directory in the current working directory.
package initcmder

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/bridge/pkg/cliui"
	"github.com/papercomputeco/bridge/pkg/config"
	"github.com/papercomputeco/bridge/pkg/dotdir"
)

const initLongDesc string = `Initialize a new .bridge/ directory in the current working directory.

Creates a local .bridge/ directory that takes precedence over the default
~/.bridge/ directory, and writes a config.toml seeded from a preset.

Presets:
  emulator   In-memory state, no channel credentials, references recorded
             on every message. For the Bot Framework Emulator.
  local      SQLite state in .bridge/bridge.sqlite (the default).
  cloud      PostgreSQL state and Kafka lifecycle events.

An existing config.toml is left alone unless --force is given.

Examples:
  bridge init
  bridge init --preset emulator
  bridge init --preset cloud --force`

const initShortDesc string = "Initialize a local .bridge/ directory"

type initCommander struct {
	preset string
	force  bool
}

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}
			return cmder.run(cmd.OutOrStdout(), cwd)
		},
		ValidArgsFunction: cobra.NoFileCompletions,
	}

	cmd.Flags().StringVar(&cmder.preset, "preset", "",
		fmt.Sprintf("Config preset (%s)", strings.Join(config.ValidPresetNames(), ", ")))
	cmd.Flags().BoolVar(&cmder.force, "force", false, "Overwrite an existing config.toml")

	return cmd
}

func (c *initCommander) run(out io.Writer, parent string) error {
	cfg := config.NewDefaultConfig()
	if c.preset != "" {
		var err error
		cfg, err = config.PresetConfig(c.preset)
		if err != nil {
			return err
		}
	}

	dir, created, err := dotdir.NewManager().Init(parent)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(out, "  %s Initialized %s\n", cliui.SuccessMark, dir)
	} else {
		fmt.Fprintf(out, "  %s Already initialized: %s\n", cliui.DimStyle.Render("●"), dir)
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return err
	}

	_, statErr := os.Stat(cfger.GetTarget())
	if statErr == nil && !c.force {
		fmt.Fprintf(out, "  %s Keeping existing %s\n", cliui.DimStyle.Render("●"), filepath.Base(cfger.GetTarget()))
		return nil
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	preset := c.preset
	if preset == "" {
		preset = "default"
	}
	fmt.Fprintf(out, "  %s Wrote %s %s\n",
		cliui.SuccessMark,
		cfger.GetTarget(),
		cliui.DimStyle.Render(fmt.Sprintf("(%s)", preset)),
	)
	return nil
}
