package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/distress/internal/model"
)

func TestCacheKey(t *testing.T) {
	k1 := CacheKey("finbert", "ProsusAI/finbert", "Sales declined.")
	k2 := CacheKey("finbert", "ProsusAI/finbert", "Sales declined.")
	k3 := CacheKey("openai", "ProsusAI/finbert", "Sales declined.")

	assert.True(t, strings.HasPrefix(k1, KeyPrefix))
	assert.Len(t, k1, len(KeyPrefix)+64)
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)

	// Part boundaries are significant
	assert.NotEqual(t, CacheKey("ab", "c"), CacheKey("a", "bc"))
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	require.NoError(t, c.Set("k", []byte("v"), 0))
	val, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), val)
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Delete("k"))
	_, ok = c.Get("k")
	assert.False(t, ok)

	require.NoError(t, c.Set("a", []byte("1"), time.Minute))
	require.NoError(t, c.Clear())
	assert.Zero(t, c.Len())
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	require.NoError(t, c.Set("k", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := CacheKey("wordlist", "", "Liquidity is strong.")

	require.NoError(t, c.Set(key, []byte(`{"sentiment_score":0.5}`), 0))
	val, ok := c.Get(key)
	require.True(t, ok)
	assert.JSONEq(t, `{"sentiment_score":0.5}`, string(val))

	// No temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, c.Delete(key))
	_, ok = c.Get(key)
	assert.False(t, ok)
	assert.NoError(t, c.Delete(key), "deleting a missing entry is not an error")
}

func TestDiskCache_Expired(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	require.NoError(t, c.Set("k", []byte("v"), time.Millisecond))
	time.Sleep(10 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
	_, err := os.Stat(filepath.Join(dir, "k.cache"))
	assert.True(t, os.IsNotExist(err), "expired entry should be removed")
}

func TestDiskCache_Corrupt(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "k.cache"), []byte("{broken"), 0644))

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestLayeredCache_PromotesFromDisk(t *testing.T) {
	dir := t.TempDir()
	layered := NewLayeredCache(time.Minute, dir, time.Hour)

	// Written by a previous process
	require.NoError(t, NewDiskCache(dir, time.Hour).Set("k", []byte("v"), 0))

	val, ok := layered.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), val)

	val, ok = layered.memory.Get("k")
	require.True(t, ok, "disk hit should be promoted to memory")
	assert.Equal(t, []byte("v"), val)

	require.NoError(t, layered.Delete("k"))
	_, ok = layered.Get("k")
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	assert.Nil(t, New(model.CacheConfig{Enabled: false}))

	_, isMemory := New(model.CacheConfig{Enabled: true, MemoryTTL: time.Minute}).(*MemoryCache)
	assert.True(t, isMemory)

	_, isLayered := New(model.CacheConfig{Enabled: true, DiskDir: t.TempDir()}).(*LayeredCache)
	assert.True(t, isLayered)
}
