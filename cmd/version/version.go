// Package versioncmder provides the version command.
package versioncmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/bridge/pkg/cliui"
	"github.com/papercomputeco/bridge/pkg/utils"
)

type versionCommander struct {
	short bool
}

func NewVersionCmd() *cobra.Command {
	cmder := &versionCommander{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the bridge version",
		Long:  "Print the version, commit, and build time of this bridge binary.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&cmder.short, "short", false, "Print only the version")

	return cmd
}

func (c *versionCommander) run(out io.Writer) error {
	if c.short {
		_, err := fmt.Fprintln(out, utils.Version)
		return err
	}

	cliui.KeyValue(out, 10, "version", utils.Version)
	cliui.KeyValue(out, 10, "commit", utils.Sha)
	cliui.KeyValue(out, 10, "built", utils.Buildtime)
	return nil
}
