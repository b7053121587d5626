package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/w-h-a/support/session"
)

type entry struct {
	messages []session.Message
	mtx      sync.Mutex
}

type memoryStore struct {
	options  session.Options
	sessions *cache.Cache
}

func (s *memoryStore) GetOrCreate(ctx context.Context, id string) (string, []session.Message, error) {
	if len(id) > 0 {
		if e, ok := s.lookup(id); ok {
			return id, e.snapshot(), nil
		}
	}

	for {
		id = uuid.NewString()
		// Add refuses existing keys, so a colliding id is never reissued.
		if err := s.sessions.Add(id, &entry{}, cache.NoExpiration); err == nil {
			return id, []session.Message{}, nil
		}
	}
}

func (s *memoryStore) Append(ctx context.Context, id string, msg session.Message) ([]session.Message, error) {
	e, ok := s.lookup(id)
	if !ok {
		return nil, session.ErrNotFound
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()

	prior := slices.Clone(e.messages)
	e.messages = append(e.messages, msg)

	return prior, nil
}

func (s *memoryStore) History(ctx context.Context, id string) ([]session.Message, error) {
	e, ok := s.lookup(id)
	if !ok {
		return nil, session.ErrNotFound
	}
	return e.snapshot(), nil
}

func (s *memoryStore) Count(ctx context.Context) int {
	return s.sessions.ItemCount()
}

func (s *memoryStore) lookup(id string) (*entry, bool) {
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil, false
	}
	e, ok := v.(*entry)
	return e, ok
}

func (e *entry) snapshot() []session.Message {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	out := make([]session.Message, len(e.messages))
	copy(out, e.messages)

	return out
}

// NewStore keeps sessions for the life of the process.
func NewStore(opts ...session.Option) session.Store {
	options := session.NewOptions(opts...)

	return &memoryStore{
		options:  options,
		sessions: cache.New(cache.NoExpiration, 0),
	}
}
