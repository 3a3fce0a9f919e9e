package cache

import (
	"context"
	"testing"
	"time"

	"storynest/services/auth/internal/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (CodeStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCodeStore(client), mr
}

func TestCodeStore_ConsumeOnce(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	code, err := store.Issue(ctx, "u1", entity.CodeSignup, time.Hour)
	require.NoError(t, err)
	assert.Len(t, code, 32)

	userID, purpose, err := store.Consume(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, entity.CodeSignup, purpose)

	_, _, err = store.Consume(ctx, code)
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestCodeStore_Expires(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	code, err := store.Issue(ctx, "u1", entity.CodeRecovery, time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, _, err = store.Consume(ctx, code)
	assert.ErrorIs(t, err, ErrCodeNotFound)
}
