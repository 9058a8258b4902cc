package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_CreateLookup(t *testing.T) {
	store := NewSessionStore(time.Hour)

	sess := store.Create("jane@example.com")
	require.NotEmpty(t, sess.Token)
	assert.Equal(t, time.Hour, sess.ExpiresAt.Sub(sess.CreatedAt))

	got, ok := store.Lookup(sess.Token)
	require.True(t, ok)
	assert.Equal(t, "jane@example.com", got.Email)

	_, ok = store.Lookup("unknown")
	assert.False(t, ok)
}

func TestSessionStore_UniqueTokens(t *testing.T) {
	store := NewSessionStore(time.Hour)
	a := store.Create("jane@example.com")
	b := store.Create("jane@example.com")
	assert.NotEqual(t, a.Token, b.Token)
	assert.Equal(t, 2, store.Len())
}

func TestSessionStore_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore(time.Minute)
	store.now = func() time.Time { return now }

	sess := store.Create("jane@example.com")

	now = now.Add(59 * time.Second)
	_, ok := store.Lookup(sess.Token)
	assert.True(t, ok, "session should be live before ttl")

	now = now.Add(time.Second)
	_, ok = store.Lookup(sess.Token)
	assert.False(t, ok, "session should expire at ttl")
	assert.Equal(t, 0, store.Len())
}

func TestSessionStore_Revoke(t *testing.T) {
	store := NewSessionStore(time.Hour)
	sess := store.Create("jane@example.com")

	got, ok := store.Revoke(sess.Token)
	require.True(t, ok)
	assert.Equal(t, "jane@example.com", got.Email)

	_, ok = store.Lookup(sess.Token)
	assert.False(t, ok)

	_, ok = store.Revoke(sess.Token)
	assert.False(t, ok)
}
