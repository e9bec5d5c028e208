package mcp_test

import (
	"context"
	"encoding/json"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/bridge/pkg/activity"
	"github.com/papercomputeco/bridge/pkg/bot"
	"github.com/papercomputeco/bridge/pkg/logger"
	"github.com/papercomputeco/bridge/pkg/notify"
	"github.com/papercomputeco/bridge/pkg/reference"
	"github.com/papercomputeco/bridge/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/bridge/pkg/utils/test"
	"github.com/papercomputeco/bridge/server/mcp"
)

var _ = Describe("MCP Server", func() {
	var (
		ctx       context.Context
		sender    *testutils.RecordingSender
		directory *reference.Directory
		notifier  *notify.Notifier
		server    *mcp.Server
	)

	BeforeEach(func() {
		ctx = context.Background()
		sender = testutils.NewRecordingSender()

		var err error
		directory, err = reference.NewDirectory(reference.Config{Driver: inmemory.NewDriver()})
		Expect(err).NotTo(HaveOccurred())

		notifier, err = notify.NewNotifier(notify.Config{
			Directory: directory,
			Adapter:   bot.NewAdapter(sender, logger.Nop()),
		})
		Expect(err).NotTo(HaveOccurred())

		server, err = mcp.NewServer(mcp.Config{
			Directory: directory,
			Notifier:  notifier,
			Logger:    logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewServer", func() {
		It("returns an error when the directory is nil", func() {
			_, err := mcp.NewServer(mcp.Config{Notifier: notifier, Logger: logger.Nop()})
			Expect(err).To(MatchError(ContainSubstring("reference directory is required")))
		})

		It("returns an error when the notifier is nil", func() {
			_, err := mcp.NewServer(mcp.Config{Directory: directory, Logger: logger.Nop()})
			Expect(err).To(MatchError(ContainSubstring("notifier is required")))
		})

		It("returns an error when logger is nil", func() {
			_, err := mcp.NewServer(mcp.Config{Directory: directory, Notifier: notifier})
			Expect(err).To(MatchError(ContainSubstring("logger is required")))
		})

		It("returns an HTTP handler", func() {
			Expect(server.Handler()).NotTo(BeNil())
		})
	})

	Describe("tools", func() {
		var session *sdk.ClientSession

		record := func(userID string) {
			Expect(directory.Record(ctx, &activity.Activity{
				Type:         activity.TypeConversationUpdate,
				ChannelID:    "emulator",
				ServiceURL:   "http://localhost:5000",
				From:         activity.ChannelAccount{ID: userID},
				Recipient:    activity.ChannelAccount{ID: "bot"},
				Conversation: activity.ConversationAccount{ID: "conv-" + userID},
			})).To(Succeed())
		}

		call := func(name string, args map[string]any) *sdk.CallToolResult {
			res, err := session.CallTool(ctx, &sdk.CallToolParams{Name: name, Arguments: args})
			Expect(err).NotTo(HaveOccurred())
			return res
		}

		text := func(res *sdk.CallToolResult) string {
			Expect(res.Content).To(HaveLen(1))
			tc, ok := res.Content[0].(*sdk.TextContent)
			Expect(ok).To(BeTrue())
			return tc.Text
		}

		BeforeEach(func() {
			serverTransport, clientTransport := sdk.NewInMemoryTransports()
			serverSession, err := server.MCPServer().Connect(ctx, serverTransport, nil)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(serverSession.Close)

			client := sdk.NewClient(&sdk.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
			session, err = client.Connect(ctx, clientTransport, nil)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(session.Close)
		})

		It("lists the registered tools", func() {
			res, err := session.ListTools(ctx, &sdk.ListToolsParams{})
			Expect(err).NotTo(HaveOccurred())

			var names []string
			for _, tool := range res.Tools {
				names = append(names, tool.Name)
			}
			Expect(names).To(ConsistOf("list_conversations", "notify_user", "notify_all"))
		})

		It("lists recorded conversations", func() {
			record("u2")
			record("u1")

			res := call("list_conversations", map[string]any{})
			Expect(res.IsError).To(BeFalse())

			var out mcp.ListOutput
			Expect(json.Unmarshal([]byte(text(res)), &out)).To(Succeed())
			Expect(out.Count).To(Equal(2))
			Expect(out.Conversations[0].UserID).To(Equal("u1"))
			Expect(out.Conversations[1].ConversationID).To(Equal("conv-u2"))
		})

		It("notifies one user", func() {
			record("u1")

			res := call("notify_user", map[string]any{"user_id": "u1", "message": "ping"})
			Expect(res.IsError).To(BeFalse())
			Expect(sender.Texts()).To(Equal([]string{"ping"}))
		})

		It("reports an unknown user as a tool error", func() {
			res := call("notify_user", map[string]any{"user_id": "ghost"})
			Expect(res.IsError).To(BeTrue())
			Expect(text(res)).To(ContainSubstring("unknown user"))
			Expect(sender.Sent()).To(BeEmpty())
		})

		It("notifies every user and reports failures", func() {
			record("u1")
			record("u2")
			sender.FailFor["u2"] = true

			res := call("notify_all", map[string]any{})
			Expect(res.IsError).To(BeFalse())

			var out mcp.NotifyAllOutput
			Expect(json.Unmarshal([]byte(text(res)), &out)).To(Succeed())
			Expect(out.Sent).To(Equal([]string{"u1"}))
			Expect(out.Failed).To(HaveLen(1))
			Expect(out.Failed[0].UserID).To(Equal("u2"))
			Expect(sender.Texts()).To(Equal([]string{notify.DefaultMessage}))
		})
	})
})
