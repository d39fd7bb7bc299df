package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artifact-explorer/api/internal/artifact"
	"artifact-explorer/api/internal/explorer"
)

type blockingDispatcher struct{ release chan struct{} }

func (b blockingDispatcher) Describe(ctx context.Context, _ artifact.Request) (string, error) {
	select {
	case <-b.release:
		return "ok", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func newTestStore(capacity int, ttl time.Duration) *Store {
	d := blockingDispatcher{release: make(chan struct{})}
	return NewStore(capacity, ttl, func() *explorer.Controller { return explorer.NewController(d) })
}

func TestGetCreatesAndReuses(t *testing.T) {
	s := newTestStore(4, time.Hour)
	defer s.Close()

	id, c := s.Get("")
	require.NotEmpty(t, id)
	require.NotNil(t, c)

	id2, c2 := s.Get(id)
	assert.Equal(t, id, id2)
	assert.Same(t, c, c2)
	assert.Equal(t, 1, s.Len())

	id3, c3 := s.Get("not-a-uuid")
	assert.NotEqual(t, id, id3)
	assert.NotSame(t, c, c3)
	assert.Equal(t, 2, s.Len())
}

func TestUnknownIDGetsFreshSession(t *testing.T) {
	s := newTestStore(4, time.Hour)
	defer s.Close()

	id, _ := s.Get("3f2504e0-4f89-11d3-9a0c-0305e82c3301")
	assert.NotEqual(t, "3f2504e0-4f89-11d3-9a0c-0305e82c3301", id)
}

func TestEvictionClosesController(t *testing.T) {
	s := newTestStore(1, time.Hour)
	defer s.Close()

	id, c := s.Get("")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p, err := c.Begin(artifact.Request{Name: "Rosetta Stone"})
	require.NoError(t, err)

	_, _ = s.Get("")
	_, ok := s.Peek(id)
	assert.False(t, ok)

	cancel()
	_ = p.Run(ctx)
	assert.Equal(t, explorer.StateError, c.View().State)
}
