package session_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/bridge/pkg/session"
	"github.com/papercomputeco/bridge/pkg/storage"
	"github.com/papercomputeco/bridge/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/bridge/pkg/utils/test"
)

var _ = Describe("ProfileStore", func() {
	var (
		ctx    context.Context
		driver *testutils.CountingDriver
		store  *session.ProfileStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = testutils.NewCountingDriver(inmemory.NewDriver())
		store = session.NewProfileStore(driver)
	})

	It("keys profiles by channel and user", func() {
		Expect(session.ProfileKey("msteams", "u1")).To(Equal("msteams/users/u1"))
	})

	It("returns an empty profile for a new user", func() {
		loaded, err := store.Load(ctx, "msteams", "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Profile).To(Equal(session.UserProfile{}))
	})

	It("persists a changed profile", func() {
		loaded, err := store.Load(ctx, "msteams", "u1")
		Expect(err).NotTo(HaveOccurred())
		loaded.Profile.SessionID = "s-1"
		Expect(store.Save(ctx, loaded)).To(Succeed())

		again, err := store.Load(ctx, "msteams", "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(again.Profile.SessionID).To(Equal("s-1"))

		rec, err := storage.ReadOne(ctx, driver, "msteams/users/u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(rec.Document)).To(MatchJSON(`{"userProfile":{"wa_session_id":"s-1"}}`))
	})

	It("skips the write when nothing changed", func() {
		loaded, err := store.Load(ctx, "msteams", "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(store.Save(ctx, loaded)).To(Succeed())
		Expect(driver.Writes()).To(BeZero())
	})

	It("conflicts when another turn saved the same profile first", func() {
		first, err := store.Load(ctx, "msteams", "u1")
		Expect(err).NotTo(HaveOccurred())
		first.Profile.SessionID = "s-1"
		Expect(store.Save(ctx, first)).To(Succeed())

		a, err := store.Load(ctx, "msteams", "u1")
		Expect(err).NotTo(HaveOccurred())
		b, err := store.Load(ctx, "msteams", "u1")
		Expect(err).NotTo(HaveOccurred())

		a.Profile.SessionID = "s-2"
		Expect(store.Save(ctx, a)).To(Succeed())

		b.Profile.SessionID = "s-3"
		Expect(store.Save(ctx, b)).To(MatchError(storage.ErrConflict))
	})

	It("conflicts when two first turns of a new user both save", func() {
		a, err := store.Load(ctx, "msteams", "u1")
		Expect(err).NotTo(HaveOccurred())
		b, err := store.Load(ctx, "msteams", "u1")
		Expect(err).NotTo(HaveOccurred())

		a.Profile.SessionID = "s-1"
		Expect(store.Save(ctx, a)).To(Succeed())

		b.Profile.SessionID = "s-2"
		Expect(store.Save(ctx, b)).To(MatchError(storage.ErrConflict))
	})

	It("keeps saving after a successful write using the new etag", func() {
		loaded, err := store.Load(ctx, "msteams", "u1")
		Expect(err).NotTo(HaveOccurred())
		loaded.Profile.SessionID = "s-1"
		Expect(store.Save(ctx, loaded)).To(Succeed())
		loaded.Profile.SessionID = "s-2"
		Expect(store.Save(ctx, loaded)).To(Succeed())
		Expect(driver.Writes()).To(Equal(2))
	})
})
