package dialog

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// StateStore persists conversation states by conversation identity.
type StateStore interface {
	// Load returns nil without error when nothing is stored. An undecodable
	// blob yields an empty state together with ErrCorruptState.
	Load(ctx context.Context, conversationID string) (*ConversationState, error)
	// Save writes the state if the stored version still equals state.Version,
	// then bumps state.Version. Otherwise it returns ErrStaleState.
	Save(ctx context.Context, state *ConversationState) error
	Delete(ctx context.Context, conversationID string) error
}

// StateRepository defines the database operations for conversation state.
// The state travels as an opaque blob.
type StateRepository interface {
	SaveConversationState(ctx context.Context, conversationID string, expected, next int64, blob []byte) error
	LoadConversationState(ctx context.Context, conversationID string) ([]byte, int64, error)
	DeleteConversationState(ctx context.Context, conversationID string) error
}

// MongoStateStorage adapts the database repository to the StateStore interface.
type MongoStateStorage struct {
	repo StateRepository
}

// NewMongoStateStorage creates a new MongoDB state storage.
func NewMongoStateStorage(repo StateRepository) *MongoStateStorage {
	return &MongoStateStorage{repo: repo}
}

func (s *MongoStateStorage) Load(ctx context.Context, conversationID string) (*ConversationState, error) {
	blob, version, err := s.repo.LoadConversationState(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return nil, nil
	}
	return restore(conversationID, blob, version)
}

func (s *MongoStateStorage) Save(ctx context.Context, state *ConversationState) error {
	expected := state.Version
	blob, err := encodeVersion(state, expected+1)
	if err != nil {
		return err
	}
	if err := s.repo.SaveConversationState(ctx, state.ConversationID, expected, expected+1, blob); err != nil {
		return err
	}
	state.Version = expected + 1
	return nil
}

func (s *MongoStateStorage) Delete(ctx context.Context, conversationID string) error {
	return s.repo.DeleteConversationState(ctx, conversationID)
}

type memoryRecord struct {
	version int64
	blob    []byte
}

// MemoryStateStorage keeps serialized states in process memory.
type MemoryStateStorage struct {
	mu      sync.Mutex
	records map[string]memoryRecord
}

// NewMemoryStateStorage creates an empty in-memory store.
func NewMemoryStateStorage() *MemoryStateStorage {
	return &MemoryStateStorage{records: make(map[string]memoryRecord)}
}

func (s *MemoryStateStorage) Load(_ context.Context, conversationID string) (*ConversationState, error) {
	s.mu.Lock()
	rec, ok := s.records[conversationID]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return restore(conversationID, rec.blob, rec.version)
}

func (s *MemoryStateStorage) Save(_ context.Context, state *ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.records[state.ConversationID].version
	if current != state.Version {
		return fmt.Errorf("%w: %s stored %d, loaded %d", ErrStaleState, state.ConversationID, current, state.Version)
	}
	blob, err := encodeVersion(state, current+1)
	if err != nil {
		return err
	}
	s.records[state.ConversationID] = memoryRecord{version: current + 1, blob: blob}
	state.Version = current + 1
	return nil
}

func (s *MemoryStateStorage) Delete(_ context.Context, conversationID string) error {
	s.mu.Lock()
	delete(s.records, conversationID)
	s.mu.Unlock()
	return nil
}

func restore(conversationID string, blob []byte, version int64) (*ConversationState, error) {
	state, err := DecodeState(blob)
	if err != nil {
		state = NewConversationState(conversationID, "")
		state.Version = version
		return state, fmt.Errorf("%w: %s: %v", ErrCorruptState, conversationID, err)
	}
	state.Version = version
	return state, nil
}

func encodeVersion(state *ConversationState, version int64) ([]byte, error) {
	loaded := state.Version
	state.Version = version
	state.UpdatedAt = time.Now()
	blob, err := EncodeState(state)
	state.Version = loaded
	return blob, err
}
