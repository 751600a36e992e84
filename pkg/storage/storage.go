package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/kdabb05/llmud/pkg/lore"
	"github.com/kdabb05/llmud/pkg/scenario"
)

// ErrNotFound is returned when a document, map or lore collection does not exist.
var ErrNotFound = errors.New("not found")

// ResourceState is the session state document.
const ResourceState = "game_state"

const characterPrefix = "characters/"

// Key identifies one document inside a session.
type Key struct {
	Session  string
	Resource string
}

func (k Key) String() string {
	return k.Session + "/" + k.Resource
}

// StateKey addresses a session's state document.
func StateKey(sessionID string) Key {
	return Key{Session: sessionID, Resource: ResourceState}
}

// CharacterKey addresses a character sheet within a session.
func CharacterKey(sessionID, name string) Key {
	return Key{Session: sessionID, Resource: characterPrefix + name}
}

// CharacterName returns the character name of a character resource.
func CharacterName(resource string) (string, bool) {
	if !strings.HasPrefix(resource, characterPrefix) {
		return "", false
	}
	return strings.TrimPrefix(resource, characterPrefix), true
}

// DocumentStore persists session documents: one state document plus one
// sheet per character, grouped under a session id.
type DocumentStore interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Get returns ErrNotFound when the document does not exist.
	Get(ctx context.Context, key Key) ([]byte, error)
	// Put replaces a whole document.
	Put(ctx context.Context, key Key, doc []byte) error
	// SessionExists reports whether any document exists for the session.
	SessionExists(ctx context.Context, sessionID string) (bool, error)
	// DeleteSession removes every document of the session. Deleting a missing
	// session is not an error.
	DeleteSession(ctx context.Context, sessionID string) error
}

// WorldStore serves read-only world data.
type WorldStore interface {
	GetMap(ctx context.Context, name string) (*scenario.Map, error)
	ListMaps(ctx context.Context) ([]string, error)
	// GetLayout returns an empty layout when the map has none.
	GetLayout(ctx context.Context, mapName string) (scenario.Layout, error)
	GetLore(ctx context.Context, category lore.Category) (lore.Collection, error)
}
