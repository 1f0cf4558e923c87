package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	t.Run("FirstReserveOwnsKey", func(t *testing.T) {
		resp, err := s.Reserve(ctx, "k1")
		assert.NoError(t, err)
		assert.Nil(t, resp)
	})

	t.Run("ConcurrentRetryIsRejected", func(t *testing.T) {
		_, err := s.Reserve(ctx, "k1")
		assert.ErrorIs(t, err, ErrInProgress)
	})

	t.Run("CompletedKeyReplays", func(t *testing.T) {
		require.NoError(t, s.Complete(ctx, "k1", Response{StatusCode: 201, Body: []byte(`{"id":1}`)}))
		resp, err := s.Reserve(ctx, "k1")
		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, 201, resp.StatusCode)
		assert.JSONEq(t, `{"id":1}`, string(resp.Body))
	})

	t.Run("ReleasedKeyCanBeReservedAgain", func(t *testing.T) {
		_, _ = s.Reserve(ctx, "k2")
		require.NoError(t, s.Release(ctx, "k2"))
		resp, err := s.Reserve(ctx, "k2")
		assert.NoError(t, err)
		assert.Nil(t, resp)
	})

	t.Run("ExpiredKeyIsFree", func(t *testing.T) {
		now := time.Now()
		s.now = func() time.Time { return now }
		_, _ = s.Reserve(ctx, "k3")
		s.now = func() time.Time { return now.Add(2 * time.Hour) }
		resp, err := s.Reserve(ctx, "k3")
		assert.NoError(t, err)
		assert.Nil(t, resp)
	})
}
