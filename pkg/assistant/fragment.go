package assistant

import (
	"encoding/json"
	"fmt"
)

// Kind names a reply fragment variant as tagged on the wire ("response_type").
type Kind string

const (
	KindText    Kind = "text"
	KindOption  Kind = "option"
	KindIframe  Kind = "iframe"
	KindUnknown Kind = ""
)

// Fragment is one unit of a backend reply. The concrete types are Text,
// Options, LinkCard and Unknown.
type Fragment interface {
	Kind() Kind
}

// Text is a plain text reply.
type Text struct {
	Text string
}

// Options is a set of choices the user can pick from.
type Options struct {
	Title       string
	Description string
	Choices     []Choice
}

// Choice is a single option: Label is displayed, Value is sent back as user input.
type Choice struct {
	Label string
	Value string
}

// LinkCard is a link-style card pointing at an embeddable page.
type LinkCard struct {
	Title       string
	Description string
	URL         string
}

// Unknown is any fragment kind the bridge does not render.
type Unknown struct {
	Type string
	Raw  json.RawMessage
}

func (Text) Kind() Kind     { return KindText }
func (Options) Kind() Kind  { return KindOption }
func (LinkCard) Kind() Kind { return KindIframe }
func (Unknown) Kind() Kind  { return KindUnknown }

// genericItem is the union of all fields used by the supported generic
// response types.
type genericItem struct {
	ResponseType string `json:"response_type"`

	// text
	Text string `json:"text"`

	// option and iframe
	Title       string `json:"title"`
	Description string `json:"description"`

	// option
	Options []struct {
		Label string `json:"label"`
		Value struct {
			Input struct {
				Text string `json:"text"`
			} `json:"input"`
		} `json:"value"`
	} `json:"options"`

	// iframe
	Source string `json:"source"`
}

// ParseGeneric converts the backend's "output.generic" array into fragments.
// Items of unsupported kinds become Unknown; items that fail to decode are
// also kept as Unknown so one odd item never fails the whole reply.
func ParseGeneric(items []json.RawMessage) []Fragment {
	fragments := make([]Fragment, 0, len(items))
	for _, raw := range items {
		fragments = append(fragments, parseItem(raw))
	}
	return fragments
}

func parseItem(raw json.RawMessage) Fragment {
	var item genericItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return Unknown{Raw: raw}
	}

	switch Kind(item.ResponseType) {
	case KindText:
		return Text{Text: item.Text}

	case KindOption:
		choices := make([]Choice, 0, len(item.Options))
		for _, opt := range item.Options {
			choices = append(choices, Choice{
				Label: opt.Label,
				Value: opt.Value.Input.Text,
			})
		}
		return Options{
			Title:       item.Title,
			Description: item.Description,
			Choices:     choices,
		}

	case KindIframe:
		return LinkCard{
			Title:       item.Title,
			Description: item.Description,
			URL:         item.Source,
		}

	default:
		return Unknown{Type: item.ResponseType, Raw: raw}
	}
}

// Describe renders a fragment for logs.
func Describe(f Fragment) string {
	switch v := f.(type) {
	case Text:
		return fmt.Sprintf("text(%q)", v.Text)
	case Options:
		return fmt.Sprintf("option(%d choices)", len(v.Choices))
	case LinkCard:
		return fmt.Sprintf("iframe(%s)", v.URL)
	case Unknown:
		return fmt.Sprintf("unknown(%s)", v.Type)
	default:
		return fmt.Sprintf("%T", f)
	}
}
