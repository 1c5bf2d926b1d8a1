package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestNilClientIsMiss(t *testing.T) {
	var c *Client
	ctx := context.Background()

	val, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, val)
	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.Error(t, c.Ping(ctx))
}

func TestUnreachableRedisFailsSafe(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewFromClient(rdb, nil)
	defer c.Close()

	ctx := context.Background()
	val, err := c.Get(ctx, "session:revoked:abc")
	assert.NoError(t, err)
	assert.Nil(t, val)
	assert.NoError(t, c.Set(ctx, "session:revoked:abc", []byte("1"), time.Minute))
	assert.Error(t, c.Ping(ctx))
}
