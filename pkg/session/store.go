package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/papercomputeco/bridge/pkg/storage"
)

// profileProperty is the document property holding the profile.
const profileProperty = "userProfile"

// ProfileKey returns the storage key of a user's profile.
func ProfileKey(channelID, userID string) string {
	return channelID + "/users/" + userID
}

// ProfileStore persists UserProfiles through a storage.Driver.
type ProfileStore struct {
	driver storage.Driver
}

// NewProfileStore creates a ProfileStore over driver.
func NewProfileStore(driver storage.Driver) *ProfileStore {
	return &ProfileStore{driver: driver}
}

// LoadedProfile is a profile read at the start of a turn. Save writes it back
// only if Profile changed since it was loaded.
type LoadedProfile struct {
	Profile UserProfile

	key      string
	etag     string
	original UserProfile
}

type profileDocument struct {
	UserProfile UserProfile `json:"userProfile"`
}

// Load reads the profile for a user. A user seen for the first time gets an
// empty profile.
func (s *ProfileStore) Load(ctx context.Context, channelID, userID string) (*LoadedProfile, error) {
	key := ProfileKey(channelID, userID)

	records, err := s.driver.Read(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", profileProperty, err)
	}

	loaded := &LoadedProfile{key: key, etag: storage.ETagAbsent}
	rec, ok := records[key]
	if !ok {
		return loaded, nil
	}

	var doc profileDocument
	if err := json.Unmarshal(rec.Document, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s %s: %w", profileProperty, key, err)
	}

	loaded.Profile = doc.UserProfile
	loaded.original = doc.UserProfile
	loaded.etag = rec.ETag
	return loaded, nil
}

// Save persists the profile if it changed. The write is conditional on the
// ETag observed by Load (create-only for a new user), so a concurrent turn
// for the same user that saved first causes a storage.ErrConflict.
func (s *ProfileStore) Save(ctx context.Context, loaded *LoadedProfile) error {
	if loaded.Profile == loaded.original {
		return nil
	}

	doc, err := json.Marshal(profileDocument{UserProfile: loaded.Profile})
	if err != nil {
		return fmt.Errorf("encoding %s: %w", profileProperty, err)
	}

	rec := &storage.Record{
		Key:      loaded.key,
		Document: doc,
		ETag:     loaded.etag,
	}
	if err := s.driver.Write(ctx, rec); err != nil {
		return fmt.Errorf("writing %s %s: %w", profileProperty, loaded.key, err)
	}

	loaded.original = loaded.Profile
	loaded.etag = rec.ETag
	return nil
}
