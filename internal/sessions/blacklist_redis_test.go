package sessions

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestBlacklist_RevokeAndExpire(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	bl := NewBlacklist(redis.NewClient(&redis.Options{Addr: m.Addr()}))

	ctx := context.Background()
	token := "access-token-1"
	// blacklist for 2 seconds
	require.NoError(t, bl.Revoke(ctx, token, 2*time.Second))

	ok, err := bl.IsRevoked(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)

	// raw tokens are never used as keys
	require.False(t, m.Exists("blacklist:access:"+token))

	// advance past TTL
	m.FastForward(3 * time.Second)

	ok2, err := bl.IsRevoked(ctx, token)
	require.NoError(t, err)
	require.False(t, ok2)
}

// Ensure blacklist functions are no-ops when no Redis client configured
func TestBlacklist_NoClient_Noop(t *testing.T) {
	ctx := context.Background()
	for _, bl := range []*Blacklist{nil, NewBlacklist(nil)} {
		require.NoError(t, bl.Revoke(ctx, "no-client-token", time.Second))
		ok, err := bl.IsRevoked(ctx, "no-client-token")
		require.NoError(t, err)
		require.False(t, ok)
	}
}
