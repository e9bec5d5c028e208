package channel

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	// DefaultTokenURL is the Bot Framework client-credentials token endpoint.
	DefaultTokenURL = "https://login.microsoftonline.com/botframework.com/oauth2/v2.0/token"

	// DefaultScope is the scope requested for connector calls.
	DefaultScope = "https://api.botframework.com/.default"

	refreshMargin = 5 * time.Minute
)

// newTokenSource returns a client-credentials token source that reuses its
// token until shortly before it expires. A token without an expiry is kept
// until the connector rejects it.
func newTokenSource(cfg Config) oauth2.TokenSource {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	scope := cfg.Scope
	if scope == "" {
		scope = DefaultScope
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.AppID,
		ClientSecret: cfg.AppPassword,
		TokenURL:     tokenURL,
		Scopes:       []string{scope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	// Token fetches outlive any single send, so they get their own client.
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{
		Timeout: 15 * time.Second,
	})

	return oauth2.ReuseTokenSourceWithExpiry(nil, cc.TokenSource(ctx), refreshMargin)
}
