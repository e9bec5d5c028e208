package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/bridge/pkg/activity"
	"github.com/papercomputeco/bridge/pkg/bot"
	"github.com/papercomputeco/bridge/pkg/logger"
	"github.com/papercomputeco/bridge/pkg/notify"
	"github.com/papercomputeco/bridge/pkg/reference"
	"github.com/papercomputeco/bridge/pkg/session"
	"github.com/papercomputeco/bridge/pkg/storage"
	"github.com/papercomputeco/bridge/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/bridge/pkg/utils/test"
	"github.com/papercomputeco/bridge/server"
	"github.com/papercomputeco/bridge/server/mcp"
)

type failingWrites struct {
	storage.Driver
}

func (failingWrites) Write(context.Context, ...*storage.Record) error {
	return errors.New("store offline")
}

func activityJSON(activityType, userID, text string) string {
	data, err := json.Marshal(&activity.Activity{
		Type:         activityType,
		ID:           "act-1",
		ChannelID:    "emulator",
		ServiceURL:   "http://localhost:5000",
		From:         activity.ChannelAccount{ID: userID},
		Recipient:    activity.ChannelAccount{ID: "bot"},
		Conversation: activity.ConversationAccount{ID: "conv-" + userID},
		Text:         text,
	})
	Expect(err).NotTo(HaveOccurred())
	return string(data)
}

var _ = Describe("Server", func() {
	var (
		backend   *testutils.FakeAssistant
		sender    *testutils.RecordingSender
		directory *reference.Directory
		srv       *server.Server
		logs      *bytes.Buffer
	)

	build := func(driver storage.Driver) {
		manager, err := session.NewManager(session.Config{Assistant: backend})
		Expect(err).NotTo(HaveOccurred())

		directory, err = reference.NewDirectory(reference.Config{Driver: driver})
		Expect(err).NotTo(HaveOccurred())

		adapter := bot.NewAdapter(sender, logger.Nop())
		b, err := bot.New(bot.Config{
			Sessions:  manager,
			Profiles:  session.NewProfileStore(driver),
			Directory: directory,
		})
		Expect(err).NotTo(HaveOccurred())

		notifier, err := notify.NewNotifier(notify.Config{Directory: directory, Adapter: adapter})
		Expect(err).NotTo(HaveOccurred())

		mcpServer, err := mcp.NewServer(mcp.Config{Directory: directory, Notifier: notifier, Logger: logger.Nop()})
		Expect(err).NotTo(HaveOccurred())

		srv, err = server.NewServer(server.Config{
			ListenAddr: ":0",
			Adapter:    adapter,
			Bot:        b,
			Directory:  directory,
			Notifier:   notifier,
			MCPHandler: mcpServer.Handler(),
			Logger:     logger.New(logger.WithFormat(logger.FormatJSON), logger.WithWriter(logs)),
		})
		Expect(err).NotTo(HaveOccurred())
	}

	do := func(req *http.Request) (int, string) {
		resp, err := srv.App().Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return resp.StatusCode, string(body)
	}

	post := func(body string) (int, string) {
		req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return do(req)
	}

	get := func(path string) (int, string) {
		return do(httptest.NewRequest(http.MethodGet, path, nil))
	}

	BeforeEach(func() {
		backend = &testutils.FakeAssistant{Reply: testutils.TextReply("hi")}
		sender = testutils.NewRecordingSender()
		logs = &bytes.Buffer{}
		build(inmemory.NewDriver())
	})

	It("requires its collaborators", func() {
		_, err := server.NewServer(server.Config{})
		Expect(err).To(HaveOccurred())
	})

	It("answers ping", func() {
		status, body := get("/ping")
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(Equal(`"pong"`))
	})

	Describe("POST /api/messages", func() {
		It("relays a message and replies with the assistant text", func() {
			status, _ := post(activityJSON(activity.TypeMessage, "u1", "hello"))
			Expect(status).To(Equal(http.StatusOK))
			Expect(sender.Texts()).To(Equal([]string{"hi"}))
			Expect(backend.Messages[0].Text).To(Equal("hello"))
		})

		It("records the conversation on a conversation update", func() {
			status, _ := post(activityJSON(activity.TypeConversationUpdate, "u1", ""))
			Expect(status).To(Equal(http.StatusOK))

			_, ok, err := directory.Lookup(context.Background(), "u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})

		It("rejects malformed JSON", func() {
			status, _ := post("{not json")
			Expect(status).To(Equal(http.StatusBadRequest))
		})

		It("rejects an activity without a type", func() {
			status, _ := post(`{"text":"hello"}`)
			Expect(status).To(Equal(http.StatusBadRequest))
		})

		It("returns 500 and apologizes when the turn fails", func() {
			build(failingWrites{Driver: inmemory.NewDriver()})

			status, _ := post(activityJSON(activity.TypeConversationUpdate, "u1", ""))
			Expect(status).To(Equal(http.StatusInternalServerError))
			Expect(sender.Texts()).To(Equal([]string{bot.TurnErrorMessage, bot.TurnErrorFollowUp}))
		})
	})

	Describe("GET /api/notify", func() {
		BeforeEach(func() {
			post(activityJSON(activity.TypeConversationUpdate, "u1", ""))
		})

		It("sends the default notification", func() {
			status, body := get("/api/notify?userID=u1")
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(Equal("<html><body><h1>Notification messages have been sent.</h1></body></html>"))
			Expect(sender.Texts()).To(Equal([]string{notify.DefaultMessage}))
		})

		It("sends a custom message", func() {
			status, _ := get("/api/notify?userID=u1&message=deploy%20done")
			Expect(status).To(Equal(http.StatusOK))
			Expect(sender.Texts()).To(Equal([]string{"deploy done"}))
		})

		It("returns 400 when no user is given", func() {
			status, body := get("/api/notify")
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(ContainSubstring("No user defined"))
			Expect(sender.Sent()).To(BeEmpty())
		})

		It("returns 400 for an unknown user", func() {
			status, body := get("/api/notify?userID=ghost")
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(ContainSubstring("unknown user"))
		})
	})

	Describe("GET /api/notifyAll", func() {
		It("notifies every recorded conversation before responding", func() {
			post(activityJSON(activity.TypeConversationUpdate, "u1", ""))
			post(activityJSON(activity.TypeConversationUpdate, "u2", ""))

			status, body := get("/api/notifyAll")
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(ContainSubstring("Notification messages have been sent."))
			Expect(sender.Texts()).To(HaveLen(2))
		})

		It("warns about each user it could not reach and still answers", func() {
			post(activityJSON(activity.TypeConversationUpdate, "u1", ""))
			post(activityJSON(activity.TypeConversationUpdate, "u2", ""))
			sender.FailFor["u2"] = true

			status, _ := get("/api/notifyAll")
			Expect(status).To(Equal(http.StatusOK))
			Expect(sender.Texts()).To(HaveLen(1))
			Expect(logs.String()).To(ContainSubstring(`"msg":"notification not delivered"`))
			Expect(logs.String()).To(ContainSubstring(`"user_id":"u2"`))
			Expect(logs.String()).NotTo(ContainSubstring(`"user_id":"u1"`))
		})

		It("succeeds with an empty directory", func() {
			status, _ := get("/api/notifyAll")
			Expect(status).To(Equal(http.StatusOK))
			Expect(sender.Sent()).To(BeEmpty())
		})
	})

	Describe("GET /api/references", func() {
		It("lists recorded conversations", func() {
			post(activityJSON(activity.TypeConversationUpdate, "u2", ""))
			post(activityJSON(activity.TypeConversationUpdate, "u1", ""))

			status, body := get("/api/references")
			Expect(status).To(Equal(http.StatusOK))

			var resp server.ReferencesResponse
			Expect(json.Unmarshal([]byte(body), &resp)).To(Succeed())
			Expect(resp.Count).To(Equal(2))
			Expect(resp.References[0].User.ID).To(Equal("u1"))
			Expect(resp.References[1].Conversation.ID).To(Equal("conv-u2"))
		})
	})
})
