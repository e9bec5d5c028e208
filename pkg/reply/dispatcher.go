// Package reply renders assistant reply fragments as channel activities.
package reply

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/bridge/pkg/activity"
	"github.com/papercomputeco/bridge/pkg/assistant"
	"github.com/papercomputeco/bridge/pkg/channel"
)

// OpenWebsiteTitle is the button title on link cards.
const OpenWebsiteTitle = "Open Website"

// Dispatcher sends each fragment of a reply, in order, as one activity.
type Dispatcher struct {
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{logger: logger}
}

// Dispatch sends the reply's fragments through sender. Fragments that have
// no channel rendering are skipped. The first send failure stops dispatch.
func (d *Dispatcher) Dispatch(ctx context.Context, sender channel.Sender, resp *assistant.Response) error {
	if resp == nil {
		return nil
	}

	for i, fragment := range resp.Fragments {
		act, ok := Render(fragment)
		if !ok {
			d.logger.Debug("skipping unsupported reply fragment",
				"index", i,
				"fragment", assistant.Describe(fragment),
			)
			continue
		}

		if _, err := sender.SendActivity(ctx, act); err != nil {
			return fmt.Errorf("sending reply fragment %d: %w", i, err)
		}
	}
	return nil
}

// Render converts a single fragment to an outbound activity. It reports
// false for fragments that are not rendered.
func Render(fragment assistant.Fragment) (*activity.Activity, bool) {
	switch f := fragment.(type) {
	case assistant.Text:
		return activity.Text(f.Text), true

	case assistant.Options:
		actions := make([]activity.CardAction, 0, len(f.Choices))
		for _, choice := range f.Choices {
			actions = append(actions, activity.CardAction{
				Type:  activity.ActionImBack,
				Title: choice.Label,
				Value: choice.Value,
			})
		}
		return activity.Suggested(f.Title, actions), true

	case assistant.LinkCard:
		card := activity.HeroCard{
			Title: f.Title,
			Text:  f.Description,
			Images: []activity.CardImage{
				{URL: f.URL},
			},
			Buttons: []activity.CardAction{
				{Type: activity.ActionOpenURL, Title: OpenWebsiteTitle, Value: f.URL},
			},
		}
		return activity.WithAttachment(activity.HeroCardAttachment(card)), true

	default:
		return nil, false
	}
}
