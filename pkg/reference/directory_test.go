package reference_test

import (
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/bridge/pkg/activity"
	"github.com/papercomputeco/bridge/pkg/eventstream"
	"github.com/papercomputeco/bridge/pkg/logger"
	"github.com/papercomputeco/bridge/pkg/reference"
	"github.com/papercomputeco/bridge/pkg/storage"
	"github.com/papercomputeco/bridge/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/bridge/pkg/utils/test"
)

func conversationUpdate(userID, conversationID string) *activity.Activity {
	return &activity.Activity{
		Type:         activity.TypeConversationUpdate,
		ID:           "act-" + conversationID,
		ChannelID:    "emulator",
		ServiceURL:   "http://localhost:5000",
		From:         activity.ChannelAccount{ID: userID},
		Recipient:    activity.ChannelAccount{ID: "bot"},
		Conversation: activity.ConversationAccount{ID: conversationID},
	}
}

type failingDriver struct {
	storage.Driver
}

func (failingDriver) Write(context.Context, ...*storage.Record) error {
	return errors.New("disk full")
}

var _ = Describe("Directory", func() {
	var (
		ctx    context.Context
		mem    *inmemory.Driver
		driver *testutils.CountingDriver
		events *testutils.RecordingPublisher
		dir    *reference.Directory
	)

	newDirectory := func(d storage.Driver) *reference.Directory {
		directory, err := reference.NewDirectory(reference.Config{
			Driver:    d,
			Publisher: events,
			Logger:    logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
		return directory
	}

	BeforeEach(func() {
		ctx = context.Background()
		mem = inmemory.NewDriver()
		driver = testutils.NewCountingDriver(mem)
		events = &testutils.RecordingPublisher{}
		dir = newDirectory(driver)
	})

	It("requires a driver", func() {
		_, err := reference.NewDirectory(reference.Config{})
		Expect(err).To(HaveOccurred())
	})

	Describe("Load", func() {
		It("starts empty with the wildcard etag when nothing is stored", func() {
			snap, err := dir.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Entries).To(BeEmpty())
			Expect(snap.ETag).To(Equal(storage.ETagAny))
		})

		It("reads the store only once and returns the same snapshot", func() {
			first, err := dir.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			second, err := dir.Load(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(second).To(BeIdenticalTo(first))
			Expect(driver.Reads()).To(Equal(1))
		})

		It("reads the stored layout", func() {
			Expect(mem.Write(ctx, &storage.Record{
				Key:      reference.StorageKey,
				Document: []byte(`{"CRList":{"u1":{"user":{"id":"u1"},"bot":{"id":"bot"},"conversation":{"id":"c1"},"channelId":"msteams","serviceUrl":"https://smba"}}}`),
			})).To(Succeed())

			ref, ok, err := dir.Lookup(ctx, "u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(ref.Conversation.ID).To(Equal("c1"))
			Expect(ref.ServiceURL).To(Equal("https://smba"))
		})

		It("fails on a corrupt document", func() {
			Expect(mem.Write(ctx, &storage.Record{
				Key:      reference.StorageKey,
				Document: []byte(`not json`),
			})).To(Succeed())

			_, err := dir.Load(ctx)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Record", func() {
		It("persists immediately in the stored layout", func() {
			Expect(dir.Record(ctx, conversationUpdate("u1", "c1"))).To(Succeed())

			rec, err := storage.ReadOne(ctx, mem, reference.StorageKey)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(rec.Document)).To(ContainSubstring(`"CRList":{"u1":`))
			Expect(driver.Writes()).To(Equal(1))
		})

		It("keeps one entry per user holding the latest reference", func() {
			Expect(dir.Record(ctx, conversationUpdate("u1", "c1"))).To(Succeed())
			Expect(dir.Record(ctx, conversationUpdate("u1", "c2"))).To(Succeed())

			refs, err := dir.ListAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(refs).To(HaveLen(1))
			Expect(refs[0].Conversation.ID).To(Equal("c2"))
		})

		It("is idempotent for the same activity", func() {
			act := conversationUpdate("u1", "c1")
			Expect(dir.Record(ctx, act)).To(Succeed())
			Expect(dir.Record(ctx, act)).To(Succeed())

			snap, err := dir.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Entries).To(Equal(map[string]activity.ConversationReference{
				"u1": activity.GetConversationReference(act),
			}))
		})

		It("never mutates a snapshot handed out earlier", func() {
			before, err := dir.Load(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(dir.Record(ctx, conversationUpdate("u1", "c1"))).To(Succeed())

			Expect(before.Entries).To(BeEmpty())
			after, err := dir.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(after.Entries).To(HaveLen(1))
			Expect(after.ETag).NotTo(Equal(storage.ETagAny))
		})

		It("rejects activities without a user id", func() {
			Expect(dir.Record(ctx, conversationUpdate("", "c1"))).To(MatchError(reference.ErrNoUser))
		})

		It("propagates store failures and keeps the cached directory", func() {
			broken := newDirectory(failingDriver{Driver: mem})
			err := broken.Record(ctx, conversationUpdate("u1", "c1"))
			Expect(err).To(MatchError(ContainSubstring("disk full")))

			refs, err := broken.ListAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(refs).To(BeEmpty())
		})

		It("publishes a recorded event", func() {
			Expect(dir.Record(ctx, conversationUpdate("u1", "c1"))).To(Succeed())
			Expect(events.Types()).To(Equal([]string{eventstream.EventTypeReferenceRecorded}))
			Expect(events.Events()[0].ConversationID).To(Equal("c1"))
		})

		It("serializes concurrent writers in one process", func() {
			var wg sync.WaitGroup
			for _, id := range []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7", "u8"} {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					Expect(dir.Record(ctx, conversationUpdate(id, "c-"+id))).To(Succeed())
				}()
			}
			wg.Wait()

			dir.Reset()
			refs, err := dir.ListAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(refs).To(HaveLen(8))
		})
	})

	Describe("conflicts with another process", func() {
		It("merges a concurrent external write instead of losing it", func() {
			Expect(dir.Record(ctx, conversationUpdate("u0", "c0"))).To(Succeed())

			other := newDirectory(mem)
			_, err := other.Load(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(dir.Record(ctx, conversationUpdate("u1", "c1"))).To(Succeed())
			Expect(other.Record(ctx, conversationUpdate("u2", "c2"))).To(Succeed())

			fresh := newDirectory(mem)
			refs, err := fresh.ListAll(ctx)
			Expect(err).NotTo(HaveOccurred())

			users := []string{}
			for _, ref := range refs {
				users = append(users, ref.User.ID)
			}
			Expect(users).To(Equal([]string{"u0", "u1", "u2"}))
		})

		It("merges when both processes loaded an empty directory", func() {
			_, err := dir.ListAll(ctx)
			Expect(err).NotTo(HaveOccurred())

			other := newDirectory(mem)
			Expect(other.Record(ctx, conversationUpdate("u2", "c2"))).To(Succeed())
			Expect(dir.Record(ctx, conversationUpdate("u1", "c1"))).To(Succeed())

			refs, err := newDirectory(mem).ListAll(ctx)
			Expect(err).NotTo(HaveOccurred())

			users := []string{}
			for _, ref := range refs {
				users = append(users, ref.User.ID)
			}
			Expect(users).To(Equal([]string{"u1", "u2"}))
		})

		It("gives up after the retry limit", func() {
			Expect(dir.Record(ctx, conversationUpdate("u0", "c0"))).To(Succeed())

			external := newDirectory(mem)
			driver.BeforeWrite = func(ctx context.Context, _ ...*storage.Record) {
				external.Reset()
				Expect(external.Record(ctx, conversationUpdate("intruder", "cx"))).To(Succeed())
			}

			err := dir.Record(ctx, conversationUpdate("u1", "c1"))
			Expect(err).To(MatchError(storage.ErrConflict))
			Expect(driver.Writes()).To(Equal(1 + 1 + reference.DefaultMaxConflictRetries))
		})
	})

	Describe("Lookup and ListAll", func() {
		It("reports unknown users as not found", func() {
			_, ok, err := dir.Lookup(ctx, "nobody")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("lists nothing for an empty directory", func() {
			refs, err := dir.ListAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(refs).To(BeEmpty())
		})

		It("lists references ordered by user id", func() {
			for _, id := range []string{"carol", "alice", "bob"} {
				Expect(dir.Record(ctx, conversationUpdate(id, "c-"+id))).To(Succeed())
			}

			refs, err := dir.ListAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(refs).To(HaveLen(3))
			Expect(refs[0].User.ID).To(Equal("alice"))
			Expect(refs[2].User.ID).To(Equal("carol"))
		})
	})

	Describe("Reset", func() {
		It("round-trips the recorded entries through the store", func() {
			Expect(dir.Record(ctx, conversationUpdate("u1", "c1"))).To(Succeed())
			Expect(dir.Record(ctx, conversationUpdate("u2", "c2"))).To(Succeed())
			before, err := dir.Load(ctx)
			Expect(err).NotTo(HaveOccurred())

			dir.Reset()
			after, err := dir.Load(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(after).NotTo(BeIdenticalTo(before))
			Expect(after.Entries).To(Equal(before.Entries))
			Expect(after.ETag).To(Equal(before.ETag))
			Expect(driver.Reads()).To(Equal(2))
		})
	})
})
