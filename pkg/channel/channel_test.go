package channel_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/bridge/pkg/activity"
	"github.com/papercomputeco/bridge/pkg/channel"
	"github.com/papercomputeco/bridge/pkg/logger"
)

var _ = Describe("Client", func() {
	var (
		ctx         context.Context
		connector   *httptest.Server
		tokenServer *httptest.Server
		paths       []string
		auth        string
		received    activity.Activity
		tokenCalls  atomic.Int32
		tokenBody   string
		status      int
	)

	BeforeEach(func() {
		ctx = context.Background()
		paths = nil
		auth = ""
		status = http.StatusOK
		tokenCalls.Store(0)
		tokenBody = `{"access_token":"aad-token","token_type":"Bearer","expires_in":3600}`

		connector = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			auth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&received)
			w.WriteHeader(status)
			if status == http.StatusOK {
				_, _ = w.Write([]byte(`{"id":"sent-1"}`))
			}
		}))

		tokenServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenCalls.Add(1)
			Expect(r.ParseForm()).To(Succeed())
			Expect(r.Form.Get("grant_type")).To(Equal("client_credentials"))
			Expect(r.Form.Get("client_id")).To(Equal("app-id"))
			Expect(r.Form.Get("scope")).To(Equal(channel.DefaultScope))
			if tokenBody == "" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(tokenBody))
		}))
	})

	AfterEach(func() {
		connector.Close()
		tokenServer.Close()
	})

	outbound := func(text string) *activity.Activity {
		act := activity.Text(text)
		act.ServiceURL = connector.URL + "/"
		act.ChannelID = "msteams"
		act.Conversation = activity.ConversationAccount{ID: "conv-1"}
		return act
	}

	It("posts new activities to the conversation", func() {
		c := channel.NewClient(channel.Config{Logger: logger.Nop()})
		rr, err := c.SendActivity(ctx, outbound("hi"))
		Expect(err).NotTo(HaveOccurred())
		Expect(rr.ID).To(Equal("sent-1"))
		Expect(paths).To(Equal([]string{"/v3/conversations/conv-1/activities"}))
		Expect(received.Text).To(Equal("hi"))
		Expect(auth).To(BeEmpty())
	})

	It("posts replies to the replied-to activity", func() {
		c := channel.NewClient(channel.Config{})
		act := outbound("hi")
		act.ReplyToID = "act-1"
		_, err := c.SendActivity(ctx, act)
		Expect(err).NotTo(HaveOccurred())
		Expect(paths).To(Equal([]string{"/v3/conversations/conv-1/activities/act-1"}))
	})

	It("authenticates with a cached client-credentials token when an app id is set", func() {
		c := channel.NewClient(channel.Config{
			AppID:       "app-id",
			AppPassword: "secret",
			TokenURL:    tokenServer.URL,
		})
		_, err := c.SendActivity(ctx, outbound("one"))
		Expect(err).NotTo(HaveOccurred())
		_, err = c.SendActivity(ctx, outbound("two"))
		Expect(err).NotTo(HaveOccurred())

		Expect(auth).To(Equal("Bearer aad-token"))
		Expect(tokenCalls.Load()).To(Equal(int32(1)))
	})

	It("keeps a token that carries no expiry", func() {
		tokenBody = `{"access_token":"aad-token","token_type":"Bearer"}`
		c := channel.NewClient(channel.Config{
			AppID:       "app-id",
			AppPassword: "secret",
			TokenURL:    tokenServer.URL,
		})
		for _, text := range []string{"one", "two", "three"} {
			_, err := c.SendActivity(ctx, outbound(text))
			Expect(err).NotTo(HaveOccurred())
		}

		Expect(auth).To(Equal("Bearer aad-token"))
		Expect(tokenCalls.Load()).To(Equal(int32(1)))
	})

	It("fails the send without calling the connector when the token is refused", func() {
		tokenBody = ""
		c := channel.NewClient(channel.Config{
			AppID:       "app-id",
			AppPassword: "wrong",
			TokenURL:    tokenServer.URL,
		})
		_, err := c.SendActivity(ctx, outbound("hi"))
		Expect(err).To(MatchError(ContainSubstring("requesting connector token")))
		Expect(paths).To(BeEmpty())
	})

	It("returns an error on non-2xx responses", func() {
		status = http.StatusForbidden
		c := channel.NewClient(channel.Config{})
		_, err := c.SendActivity(ctx, outbound("hi"))
		Expect(err).To(MatchError(ContainSubstring("status 403")))
	})

	It("requires a service url", func() {
		c := channel.NewClient(channel.Config{})
		_, err := c.SendActivity(ctx, activity.Text("hi"))
		Expect(err).To(MatchError(channel.ErrNoServiceURL))
	})

	It("only delivers trace activities to the emulator", func() {
		c := channel.NewClient(channel.Config{})

		trace := activity.Trace("OnTurnError Trace", "boom", "", "TurnError")
		trace.ServiceURL = connector.URL
		trace.Conversation = activity.ConversationAccount{ID: "conv-1"}
		trace.ChannelID = "msteams"
		_, err := c.SendActivity(ctx, trace)
		Expect(err).NotTo(HaveOccurred())
		Expect(paths).To(BeEmpty())

		trace.ChannelID = channel.EmulatorChannelID
		_, err = c.SendActivity(ctx, trace)
		Expect(err).NotTo(HaveOccurred())
		Expect(paths).To(HaveLen(1))
	})
})
