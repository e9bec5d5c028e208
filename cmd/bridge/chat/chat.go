// Package chatcmder provides the chat command: a terminal conversation with
// the assistant using the same session handling as the bot.
package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/bridge/pkg/assistant"
	"github.com/papercomputeco/bridge/pkg/assistant/watson"
	"github.com/papercomputeco/bridge/pkg/cliui"
	"github.com/papercomputeco/bridge/pkg/config"
	"github.com/papercomputeco/bridge/pkg/logger"
	"github.com/papercomputeco/bridge/pkg/session"
)

var chatFlags = []string{
	config.FlagAssistantURL,
	config.FlagAssistantKey,
	config.FlagAssistantID,
}

type chatCommander struct {
	assistantURL string
	assistantKey string
	assistantID  string
	userID       string
	debug        bool

	viper   *viper.Viper
	manager *session.Manager
	logger  *slog.Logger

	profile session.UserProfile
	choices []assistant.Choice
}

const chatLongDesc string = `Start an interactive conversation with the assistant.

Messages are sent through the same session manager the bot uses: a session
is created on the first message and transparently recreated once if it has
expired. Option replies are listed with numbers; type a number to pick one.

Commands:
  /session   Show the current assistant session id
  /reset     Forget the session so the next message starts a new one
  /exit      Quit (Ctrl+D works too)

Examples:
  bridge chat --assistant-id <id> --assistant-api-key <key>
  bridge chat --user alice`

const chatShortDesc string = "Chat with the assistant from the terminal"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, config.Registry, chatFlags)
			cmder.viper = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			if err := cmder.setup(); err != nil {
				return err
			}
			return cmder.loop(cmd.Context(), os.Stdin, os.Stdout)
		},
	}

	config.AddStringFlag(cmd, config.Registry, config.FlagAssistantURL, &cmder.assistantURL)
	config.AddStringFlag(cmd, config.Registry, config.FlagAssistantKey, &cmder.assistantKey)
	config.AddStringFlag(cmd, config.Registry, config.FlagAssistantID, &cmder.assistantID)
	cmd.Flags().StringVarP(&cmder.userID, "user", "u", "terminal-user", "User id sent to the assistant")

	return cmd
}

func (c *chatCommander) setup() error {
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithFormat(logger.FormatPretty),
		logger.WithComponent("chat"),
		logger.WithWriter(os.Stderr),
	)

	backend, err := watson.New(watson.Config{
		URL:         c.viper.GetString("assistant.url"),
		APIKey:      c.viper.GetString("assistant.api_key"),
		AssistantID: c.viper.GetString("assistant.assistant_id"),
		Version:     c.viper.GetString("assistant.version"),
		IAMURL:      c.viper.GetString("assistant.iam_url"),
	})
	if err != nil {
		return fmt.Errorf("creating assistant client: %w", err)
	}

	c.manager, err = session.NewManager(session.Config{
		Assistant: backend,
		Logger:    c.logger,
	})
	return err
}

// loop reads lines from in until EOF or /exit and writes replies to out.
func (c *chatCommander) loop(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "\n  %s %s\n", cliui.KeyStyle.Render("User:"), cliui.ValueStyle.Render(c.userID))
	fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "%s ", cliui.UserPrompt)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case "/exit":
			fmt.Fprintln(out)
			return nil
		case "/session":
			c.printSession(out)
			continue
		case "/reset":
			c.profile = session.UserProfile{}
			c.choices = nil
			fmt.Fprintf(out, "  %s session cleared\n\n", cliui.SuccessMark)
			continue
		}

		text := c.resolveChoice(input)
		resp := c.manager.SendMessage(ctx, text, &c.profile, c.userID)
		c.render(out, resp)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(out)
	return nil
}

// resolveChoice maps a number typed after an options reply to that
// choice's value. Anything else is sent as typed.
func (c *chatCommander) resolveChoice(input string) string {
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(c.choices) {
		return input
	}
	return c.choices[n-1].Value
}

func (c *chatCommander) printSession(out io.Writer) {
	if c.profile.SessionID == "" {
		fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render("no session yet"))
		return
	}
	fmt.Fprintf(out, "  %s %s\n\n", cliui.KeyStyle.Render("Session:"), cliui.ValueStyle.Render(c.profile.SessionID))
}

func (c *chatCommander) render(out io.Writer, resp *assistant.Response) {
	c.choices = nil

	for _, fragment := range resp.Fragments {
		switch f := fragment.(type) {
		case assistant.Text:
			rendered, err := cliui.RenderMarkdown(f.Text)
			if err != nil {
				c.logger.Debug("markdown render failed", "error", err)
			}
			fmt.Fprintf(out, "%s %s\n", cliui.BotPrompt, strings.TrimSpace(rendered))

		case assistant.Options:
			fmt.Fprintf(out, "%s %s\n", cliui.BotPrompt, f.Title)
			if f.Description != "" {
				fmt.Fprintf(out, "  %s\n", cliui.DimStyle.Render(f.Description))
			}
			for i, choice := range f.Choices {
				fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render(fmt.Sprintf("%d.", i+1)), choice.Label)
			}
			c.choices = f.Choices

		case assistant.LinkCard:
			fmt.Fprintf(out, "%s %s\n", cliui.BotPrompt, cliui.KeyStyle.Render(f.Title))
			if f.Description != "" {
				fmt.Fprintf(out, "  %s\n", f.Description)
			}
			fmt.Fprintf(out, "  %s\n", cliui.StepStyle.Render(f.URL))

		default:
			c.logger.Debug("skipping fragment", "fragment", assistant.Describe(fragment))
		}
	}

	fmt.Fprintln(out)
}
