package chatcmder

import (
	"bytes"
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/bridge/pkg/assistant"
	"github.com/papercomputeco/bridge/pkg/logger"
	"github.com/papercomputeco/bridge/pkg/session"
	testutils "github.com/papercomputeco/bridge/pkg/utils/test"
)

var _ = Describe("NewChatCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := NewChatCmd()
		Expect(cmd.Use).To(Equal("chat"))
	})

	It("has a --user flag with a default", func() {
		flag := NewChatCmd().Flags().Lookup("user")
		Expect(flag).NotTo(BeNil())
		Expect(flag.Shorthand).To(Equal("u"))
		Expect(flag.DefValue).To(Equal("terminal-user"))
	})

	It("registers the assistant flags", func() {
		cmd := NewChatCmd()
		Expect(cmd.Flags().Lookup("assistant-id")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("assistant-api-key")).NotTo(BeNil())
	})
})

var _ = Describe("chat loop", func() {
	var (
		backend *testutils.FakeAssistant
		cmder   *chatCommander
		out     *bytes.Buffer
	)

	BeforeEach(func() {
		backend = &testutils.FakeAssistant{}
		manager, err := session.NewManager(session.Config{Assistant: backend})
		Expect(err).NotTo(HaveOccurred())

		cmder = &chatCommander{
			userID:  "alice",
			manager: manager,
			logger:  logger.Nop(),
		}
		out = &bytes.Buffer{}
	})

	run := func(lines ...string) {
		in := strings.NewReader(strings.Join(lines, "\n") + "\n")
		Expect(cmder.loop(context.Background(), in, out)).To(Succeed())
	}

	It("creates a session on the first message and reuses it", func() {
		backend.Reply = testutils.TextReply("hi")

		run("hello", "again")

		Expect(backend.Creates).To(Equal(1))
		Expect(backend.Messages).To(HaveLen(2))
		Expect(backend.Messages[0].UserID).To(Equal("alice"))
		Expect(backend.Messages[1].SessionID).To(Equal("session-1"))
		Expect(out.String()).To(ContainSubstring("hi"))
	})

	It("recreates an expired session once", func() {
		backend.MessageResults = []testutils.MessageResult{
			{Err: assistant.SessionInvalid(404, "Invalid Session")},
			{Response: testutils.TextReply("welcome back")},
		}

		run("hello")

		Expect(backend.Calls).To(Equal([]string{"create", "message", "create", "message"}))
		Expect(cmder.profile.SessionID).To(Equal("session-2"))
		Expect(out.String()).To(ContainSubstring("welcome back"))
	})

	It("shows backend failures as text", func() {
		backend.CreateErr = assistant.Other(500, "unavailable", nil)

		run("hello")

		Expect(out.String()).To(ContainSubstring("Error unavailable (status 500)"))
	})

	It("lists options and sends the chosen value", func() {
		backend.MessageResults = []testutils.MessageResult{
			{Response: &assistant.Response{Fragments: []assistant.Fragment{
				assistant.Options{
					Title:   "Continue?",
					Choices: []assistant.Choice{{Label: "Yes", Value: "yes"}, {Label: "No", Value: "no"}},
				},
			}}},
		}
		backend.Reply = testutils.TextReply("ok")

		run("start", "2")

		Expect(out.String()).To(ContainSubstring("Continue?"))
		Expect(out.String()).To(ContainSubstring("Yes"))
		Expect(backend.Messages[1].Text).To(Equal("no"))
	})

	It("sends numbers as text when no options are pending", func() {
		backend.Reply = testutils.TextReply("ok")

		run("7")

		Expect(backend.Messages[0].Text).To(Equal("7"))
	})

	It("renders link cards", func() {
		backend.Reply = &assistant.Response{Fragments: []assistant.Fragment{
			assistant.LinkCard{Title: "Docs", URL: "https://example.com/docs"},
		}}

		run("docs")

		Expect(out.String()).To(ContainSubstring("Docs"))
		Expect(out.String()).To(ContainSubstring("https://example.com/docs"))
	})

	It("handles /session, /reset and /exit", func() {
		backend.Reply = testutils.TextReply("hi")

		run("/session", "hello", "/session", "/reset", "/session", "/exit", "ignored")

		Expect(out.String()).To(ContainSubstring("no session yet"))
		Expect(out.String()).To(ContainSubstring("session-1"))
		Expect(out.String()).To(ContainSubstring("session cleared"))
		Expect(cmder.profile.SessionID).To(BeEmpty())
		Expect(backend.Messages).To(HaveLen(1))
	})
})
