// Package notifycmder provides the notify command, which triggers proactive
// notifications through a running bridge server.
package notifycmder

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/bridge/pkg/cliui"
	"github.com/papercomputeco/bridge/pkg/config"
)

type notifyCommander struct {
	apiTarget string
	userID    string
	message   string
	all       bool

	client *http.Client
	out    io.Writer
}

const notifyLongDesc string = `Send a proactive notification through a running bridge server.

Calls the server's notify routes, which look up the stored conversation
reference and continue that conversation with a new message. With --all
every recorded conversation is notified and the command returns once all
deliveries have finished.

Examples:
  bridge notify --user 29:1f2a...
  bridge notify --user 29:1f2a... --message "Your report is ready"
  bridge notify --all --api-target http://bot.internal:3978`

const notifyShortDesc string = "Send proactive notifications"

// headingPattern extracts the heading from the server's HTML responses.
var headingPattern = regexp.MustCompile(`<h1>(.*?)</h1>`)

func NewNotifyCmd() *cobra.Command {
	cmder := &notifyCommander{}

	cmd := &cobra.Command{
		Use:   "notify",
		Short: notifyShortDesc,
		Long:  notifyLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmder.all == (cmder.userID != "") {
				return errors.New("specify exactly one of --user or --all")
			}

			if cmd.Flags().Changed(config.Registry[config.FlagAPITarget].Name) {
				return nil
			}

			configDir, _ := cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cfg, err := cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.apiTarget = cfg.Client.APITarget
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.out = cmd.OutOrStdout()
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Registry, config.FlagAPITarget, &cmder.apiTarget)
	cmd.Flags().StringVarP(&cmder.userID, "user", "u", "", "User id to notify")
	cmd.Flags().StringVarP(&cmder.message, "message", "m", "", "Notification text (default: the server's configured message)")
	cmd.Flags().BoolVar(&cmder.all, "all", false, "Notify every recorded conversation")

	return cmd
}

func (c *notifyCommander) run(ctx context.Context) error {
	if c.out == nil {
		c.out = os.Stdout
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: 2 * time.Minute}
	}

	target, label := c.endpoint()

	var heading string
	err := cliui.Step(c.out, label, func() error {
		var err error
		heading, err = c.call(ctx, target)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "  %s\n", cliui.DimStyle.Render(heading))
	return nil
}

// endpoint returns the URL to call and the step label.
func (c *notifyCommander) endpoint() (string, string) {
	query := url.Values{}
	if c.message != "" {
		query.Set("message", c.message)
	}

	base := strings.TrimSuffix(c.apiTarget, "/")
	if c.all {
		return withQuery(base+"/api/notifyAll", query), "Notifying all conversations"
	}

	query.Set("userID", c.userID)
	return withQuery(base+"/api/notify", query), fmt.Sprintf("Notifying %s", c.userID)
}

func withQuery(u string, query url.Values) string {
	if len(query) == 0 {
		return u
	}
	return u + "?" + query.Encode()
}

func (c *notifyCommander) call(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling bridge server: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	heading := extractHeading(body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bridge server returned status %d: %s", resp.StatusCode, heading)
	}
	return heading, nil
}

func extractHeading(body []byte) string {
	if m := headingPattern.FindSubmatch(body); m != nil {
		return html.UnescapeString(string(m[1]))
	}
	return strings.TrimSpace(string(body))
}
