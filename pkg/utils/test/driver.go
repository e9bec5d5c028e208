package testutils

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/bridge/pkg/storage"
)

// ItBehavesLikeADriver registers the shared storage.Driver contract specs.
// newDriver is invoked once per test; the returned driver is closed afterwards.
func ItBehavesLikeADriver(newDriver func() storage.Driver) {
	var (
		driver storage.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = newDriver()
	})

	AfterEach(func() {
		if driver != nil {
			driver.Close()
		}
	})

	Describe("Read", func() {
		It("omits missing keys", func() {
			records, err := driver.Read(ctx, "missing")
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(BeEmpty())
		})

		It("returns nothing for no keys", func() {
			records, err := driver.Read(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(BeEmpty())
		})
	})

	Describe("Write", func() {
		It("stores and reads back a record", func() {
			rec := &storage.Record{Key: "a", Document: []byte(`{"v":1}`)}
			Expect(driver.Write(ctx, rec)).To(Succeed())
			Expect(rec.ETag).NotTo(BeEmpty())

			records, err := driver.Read(ctx, "a", "b")
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(records["a"].Document).To(MatchJSON(`{"v":1}`))
			Expect(records["a"].ETag).To(Equal(rec.ETag))
		})

		It("changes the etag on every write", func() {
			rec := &storage.Record{Key: "a", Document: []byte(`{}`)}
			Expect(driver.Write(ctx, rec)).To(Succeed())
			first := rec.ETag

			Expect(driver.Write(ctx, rec)).To(Succeed())
			Expect(rec.ETag).NotTo(Equal(first))
		})

		It("overwrites unconditionally with the wildcard etag", func() {
			Expect(driver.Write(ctx, &storage.Record{Key: "a", Document: []byte(`{"v":1}`)})).To(Succeed())
			Expect(driver.Write(ctx, &storage.Record{Key: "a", Document: []byte(`{"v":2}`), ETag: storage.ETagAny})).To(Succeed())

			rec, err := storage.ReadOne(ctx, driver, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Document).To(MatchJSON(`{"v":2}`))
		})

		It("accepts a write carrying the current etag", func() {
			rec := &storage.Record{Key: "a", Document: []byte(`{"v":1}`)}
			Expect(driver.Write(ctx, rec)).To(Succeed())

			rec.Document = []byte(`{"v":2}`)
			Expect(driver.Write(ctx, rec)).To(Succeed())

			stored, err := storage.ReadOne(ctx, driver, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Document).To(MatchJSON(`{"v":2}`))
		})

		It("rejects a write carrying a stale etag", func() {
			rec := &storage.Record{Key: "a", Document: []byte(`{"v":1}`)}
			Expect(driver.Write(ctx, rec)).To(Succeed())
			stale := rec.ETag

			Expect(driver.Write(ctx, rec)).To(Succeed())

			err := driver.Write(ctx, &storage.Record{Key: "a", Document: []byte(`{"v":3}`), ETag: stale})
			Expect(errors.Is(err, storage.ErrConflict)).To(BeTrue())

			var conflict *storage.ConflictError
			Expect(errors.As(err, &conflict)).To(BeTrue())
			Expect(conflict.Current).To(Equal(rec.ETag))

			stored, err := storage.ReadOne(ctx, driver, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Document).To(MatchJSON(`{"v":1}`))
		})

		It("rejects a conditional write to a missing record", func() {
			err := driver.Write(ctx, &storage.Record{Key: "ghost", Document: []byte(`{}`), ETag: "stale"})
			Expect(err).To(MatchError(storage.ErrConflict))
		})

		It("creates a missing record with the absent etag", func() {
			rec := &storage.Record{Key: "new", Document: []byte(`{"v":1}`), ETag: storage.ETagAbsent}
			Expect(driver.Write(ctx, rec)).To(Succeed())
			Expect(rec.ETag).NotTo(Equal(storage.ETagAbsent))

			stored, err := storage.ReadOne(ctx, driver, "new")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.ETag).To(Equal(rec.ETag))
		})

		It("refuses to create over an existing record", func() {
			existing := &storage.Record{Key: "taken", Document: []byte(`{"v":1}`)}
			Expect(driver.Write(ctx, existing)).To(Succeed())

			err := driver.Write(ctx, &storage.Record{Key: "taken", Document: []byte(`{"v":2}`), ETag: storage.ETagAbsent})
			Expect(err).To(MatchError(storage.ErrConflict))

			var conflict *storage.ConflictError
			Expect(errors.As(err, &conflict)).To(BeTrue())
			Expect(conflict.Current).To(Equal(existing.ETag))

			stored, err := storage.ReadOne(ctx, driver, "taken")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Document).To(MatchJSON(`{"v":1}`))
		})

		It("writes nothing when any record in the batch conflicts", func() {
			err := driver.Write(ctx,
				&storage.Record{Key: "ok", Document: []byte(`{}`)},
				&storage.Record{Key: "bad", Document: []byte(`{}`), ETag: "stale"},
			)
			Expect(err).To(MatchError(storage.ErrConflict))

			records, err := driver.Read(ctx, "ok")
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(BeEmpty())
		})

		It("rejects records with an empty key", func() {
			Expect(driver.Write(ctx, &storage.Record{Document: []byte(`{}`)})).NotTo(Succeed())
		})
	})

	Describe("Delete", func() {
		It("removes records and ignores missing keys", func() {
			Expect(driver.Write(ctx, &storage.Record{Key: "a", Document: []byte(`{}`)})).To(Succeed())
			Expect(driver.Delete(ctx, "a", "missing")).To(Succeed())

			_, err := storage.ReadOne(ctx, driver, "a")
			Expect(err).To(BeAssignableToTypeOf(storage.NotFoundError{}))
		})
	})
}
