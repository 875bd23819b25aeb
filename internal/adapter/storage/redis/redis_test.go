package redis

import (
	"context"
	"strconv"
	"testing"

	"wallet-ledger/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRedisConfig(t *testing.T, mr *miniredis.Miniredis) config.RedisConfig {
	t.Helper()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	return config.RedisConfig{Host: mr.Host(), Port: port}
}

func TestNewOptions(t *testing.T) {
	opts := newOptions(config.RedisConfig{Host: "redis.example.com", Port: 6380, Password: "pw", DB: 2})

	assert.Equal(t, "redis.example.com:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)
}

func TestNewClient_Connects(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), testRedisConfig(t, mr), zerolog.Nop())
	require.NoError(t, err)
	defer client.Close()

	hc := NewHealthCheck(client)
	assert.Equal(t, "redis", hc.Name())
	assert.NoError(t, hc.Ping(context.Background()))
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testRedisConfig(t, mr)
	mr.Close()

	client, err := NewClient(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
	assert.Nil(t, client)
}
