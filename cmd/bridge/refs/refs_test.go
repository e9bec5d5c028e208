package refscmder

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/bridge/pkg/activity"
	"github.com/papercomputeco/bridge/pkg/reference"
	"github.com/papercomputeco/bridge/pkg/storage"
	"github.com/papercomputeco/bridge/pkg/storage/inmemory"
	"github.com/papercomputeco/bridge/pkg/storage/sqlite"
)

func seed(ctx context.Context, driver storage.Driver, userIDs ...string) {
	directory, err := reference.NewDirectory(reference.Config{Driver: driver})
	Expect(err).NotTo(HaveOccurred())

	for _, userID := range userIDs {
		Expect(directory.Record(ctx, &activity.Activity{
			Type:         activity.TypeConversationUpdate,
			ChannelID:    "msteams",
			ServiceURL:   "https://smba.trafficmanager.net/emea/",
			From:         activity.ChannelAccount{ID: userID, Name: "User " + userID},
			Recipient:    activity.ChannelAccount{ID: "bot"},
			Conversation: activity.ConversationAccount{ID: "conv-" + userID},
		})).To(Succeed())
	}
}

var _ = Describe("refs command", func() {
	var (
		ctx    context.Context
		driver *inmemory.Driver
		out    *bytes.Buffer
		cmder  *refsCommander
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()
		out = &bytes.Buffer{}
		cmder = &refsCommander{}
	})

	It("reports an empty directory", func() {
		Expect(cmder.run(ctx, out, driver, "")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("No conversations recorded yet."))
	})

	It("lists every recorded conversation", func() {
		seed(ctx, driver, "u2", "u1")

		Expect(cmder.run(ctx, out, driver, "")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("u1"))
		Expect(out.String()).To(ContainSubstring("conv-u2"))
	})

	It("prints JSON", func() {
		seed(ctx, driver, "u2", "u1")
		cmder.asJSON = true

		Expect(cmder.run(ctx, out, driver, "")).To(Succeed())

		var refs []activity.ConversationReference
		Expect(json.Unmarshal(out.Bytes(), &refs)).To(Succeed())
		Expect(refs).To(HaveLen(2))
		Expect(refs[0].User.ID).To(Equal("u1"))
	})

	It("shows a single reference in full", func() {
		seed(ctx, driver, "u1")

		Expect(cmder.run(ctx, out, driver, "u1")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("User u1"))
		Expect(out.String()).To(ContainSubstring("https://smba.trafficmanager.net/emea/"))
	})

	It("fails for an unknown user", func() {
		Expect(cmder.run(ctx, out, driver, "ghost")).To(MatchError(ContainSubstring("no conversation recorded")))
	})

	It("reads the sqlite store used by serve", func() {
		tmpDir, err := os.MkdirTemp("", "refs-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, tmpDir)

		db, err := sqlite.NewDriver(ctx, filepath.Join(tmpDir, "bridge.sqlite"))
		Expect(err).NotTo(HaveOccurred())
		seed(ctx, db, "u1")
		Expect(db.Close()).To(Succeed())

		var buf bytes.Buffer
		cmd := NewRefsCmd()
		cmd.Flags().String("config-dir", "", "")
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"--config-dir", tmpDir, "--storage", "sqlite", "--json"})
		Expect(cmd.Execute()).To(Succeed())

		var refs []activity.ConversationReference
		Expect(json.Unmarshal(buf.Bytes(), &refs)).To(Succeed())
		Expect(refs).To(HaveLen(1))
		Expect(refs[0].Conversation.ID).To(Equal("conv-u1"))
	})
})
