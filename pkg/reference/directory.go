// Package reference keeps the durable directory of conversations the bot can
// proactively message, keyed by user id.
//
// The whole directory is stored as a single document. It is loaded once per
// process, every change is written back immediately, and writes carry the
// ETag of the last observed version (or a create-only precondition when
// nothing was stored) so a concurrent writer in another process is detected
// and merged rather than overwritten.
package reference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/papercomputeco/bridge/pkg/activity"
	"github.com/papercomputeco/bridge/pkg/eventstream"
	"github.com/papercomputeco/bridge/pkg/storage"
)

// StorageKey is the key the directory document is stored under.
const StorageKey = "ConversationReferences"

// DefaultMaxConflictRetries bounds read-merge-write attempts after an ETag conflict.
const DefaultMaxConflictRetries = 3

// ErrNoUser is returned when recording an activity that carries no user id.
var ErrNoUser = errors.New("activity has no user id")

// Snapshot is an immutable view of the directory. Entries must not be
// modified; the Directory swaps in a new Snapshot on every change.
type Snapshot struct {
	Entries map[string]activity.ConversationReference
	ETag    string
}

// document is the stored layout of the directory.
type document struct {
	CRList map[string]activity.ConversationReference `json:"CRList"`
}

// Config is the configuration for a Directory.
type Config struct {
	// Driver is the durable store holding the directory document.
	Driver storage.Driver

	// Publisher receives reference lifecycle events. Optional.
	Publisher eventstream.Publisher

	// MaxConflictRetries bounds retries after an ETag conflict.
	// Defaults to DefaultMaxConflictRetries.
	MaxConflictRetries int

	// Logger is the provided slog logger
	Logger *slog.Logger
}

// Directory is the process-wide conversation reference directory.
type Directory struct {
	driver     storage.Driver
	publisher  eventstream.Publisher
	maxRetries int
	logger     *slog.Logger

	mu       sync.Mutex
	snapshot *Snapshot
}

// NewDirectory creates a Directory. Nothing is read until first use.
func NewDirectory(c Config) (*Directory, error) {
	if c.Driver == nil {
		return nil, fmt.Errorf("storage driver is required")
	}

	maxRetries := c.MaxConflictRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxConflictRetries
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Directory{
		driver:     c.Driver,
		publisher:  c.Publisher,
		maxRetries: maxRetries,
		logger:     logger,
	}, nil
}

// Load returns the directory, reading it from the store on first use only.
// A directory that was never stored loads as empty with ETag storage.ETagAny.
func (d *Directory) Load(ctx context.Context) (*Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loadLocked(ctx)
}

func (d *Directory) loadLocked(ctx context.Context) (*Snapshot, error) {
	if d.snapshot != nil {
		return d.snapshot, nil
	}

	snap, err := d.read(ctx)
	if err != nil {
		return nil, err
	}

	d.snapshot = snap
	d.logger.Debug("conversation references loaded",
		"count", len(snap.Entries),
		"etag", snap.ETag,
	)
	return snap, nil
}

func (d *Directory) read(ctx context.Context) (*Snapshot, error) {
	records, err := d.driver.Read(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("reading conversation references: %w", err)
	}

	rec, ok := records[StorageKey]
	if !ok {
		return &Snapshot{
			Entries: map[string]activity.ConversationReference{},
			ETag:    storage.ETagAny,
		}, nil
	}

	var doc document
	if err := json.Unmarshal(rec.Document, &doc); err != nil {
		return nil, fmt.Errorf("decoding conversation references: %w", err)
	}
	if doc.CRList == nil {
		doc.CRList = map[string]activity.ConversationReference{}
	}

	return &Snapshot{Entries: doc.CRList, ETag: rec.ETag}, nil
}

// Record stores the conversation reference of act under its user id,
// replacing any previous entry for that user, and persists the directory
// before returning.
//
// If another process changed the stored directory since it was loaded, the
// fresh copy is read, the entry is applied on top of it, and the write is
// retried up to the configured limit.
func (d *Directory) Record(ctx context.Context, act *activity.Activity) error {
	ref := activity.GetConversationReference(act)
	if ref.User.ID == "" {
		return ErrNoUser
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	snap, err := d.loadLocked(ctx)
	if err != nil {
		return err
	}

	for attempt := 0; ; attempt++ {
		next, err := d.write(ctx, snap, ref)
		if err == nil {
			d.snapshot = next
			break
		}

		if !errors.Is(err, storage.ErrConflict) || attempt >= d.maxRetries {
			return err
		}

		d.logger.Warn("conversation references changed concurrently, merging",
			"user_id", ref.User.ID,
			"attempt", attempt+1,
		)

		snap, err = d.read(ctx)
		if err != nil {
			return err
		}
		d.snapshot = snap
	}

	d.logger.Debug("conversation reference recorded",
		"user_id", ref.User.ID,
		"conversation_id", ref.Conversation.ID,
		"channel_id", ref.ChannelID,
	)

	d.publish(ctx, eventstream.NewEvent(eventstream.EventTypeReferenceRecorded, ref.User.ID).
		WithConversation(ref.ChannelID, ref.Conversation.ID))
	return nil
}

// write persists snap with ref applied and returns the resulting snapshot.
func (d *Directory) write(ctx context.Context, snap *Snapshot, ref activity.ConversationReference) (*Snapshot, error) {
	entries := maps.Clone(snap.Entries)
	entries[ref.User.ID] = ref

	doc, err := json.Marshal(document{CRList: entries})
	if err != nil {
		return nil, fmt.Errorf("encoding conversation references: %w", err)
	}

	// A directory that was never stored is created, never overwritten.
	precondition := snap.ETag
	if storage.Unconditional(precondition) {
		precondition = storage.ETagAbsent
	}

	rec := &storage.Record{
		Key:      StorageKey,
		Document: doc,
		ETag:     precondition,
	}
	if err := d.driver.Write(ctx, rec); err != nil {
		return nil, fmt.Errorf("writing conversation references: %w", err)
	}

	return &Snapshot{Entries: entries, ETag: rec.ETag}, nil
}

// Lookup returns the reference recorded for userID.
func (d *Directory) Lookup(ctx context.Context, userID string) (activity.ConversationReference, bool, error) {
	snap, err := d.Load(ctx)
	if err != nil {
		return activity.ConversationReference{}, false, err
	}

	ref, ok := snap.Entries[userID]
	return ref, ok, nil
}

// ListAll returns every recorded reference ordered by user id.
func (d *Directory) ListAll(ctx context.Context) ([]activity.ConversationReference, error) {
	snap, err := d.Load(ctx)
	if err != nil {
		return nil, err
	}

	refs := make([]activity.ConversationReference, 0, len(snap.Entries))
	for _, userID := range slices.Sorted(maps.Keys(snap.Entries)) {
		refs = append(refs, snap.Entries[userID])
	}
	return refs, nil
}

// Reset drops the cached directory so the next use reads the store again.
func (d *Directory) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.snapshot = nil
}

func (d *Directory) publish(ctx context.Context, event *eventstream.Event) {
	if d.publisher == nil {
		return
	}
	if err := d.publisher.Publish(ctx, event); err != nil {
		d.logger.Warn("could not publish event",
			"event_type", event.EventType,
			"error", err,
		)
	}
}
