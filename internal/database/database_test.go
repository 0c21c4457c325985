package database

import (
	"context"
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/pogoda/internal/config"
	"github.com/valpere/pogoda/tests/helpers"
)

func TestConnectRedis(t *testing.T) {
	t.Run("disabled cache returns no client", func(t *testing.T) {
		testLogger := helpers.NewTestLogger()

		client, err := ConnectRedis(context.Background(), &config.RedisConfig{Host: "localhost", Port: 6379}, testLogger.Logger)

		require.NoError(t, err)
		assert.Nil(t, client)
		testLogger.AssertLogContains(t, "Redis cache disabled")
	})

	t.Run("unreachable server", func(t *testing.T) {
		// Reserve a port and close it so nothing listens there.
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		port := ln.Addr().(*net.TCPAddr).Port
		require.NoError(t, ln.Close())

		cfg := &config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: port}
		client, err := ConnectRedis(context.Background(), cfg, helpers.NewSilentTestLogger())

		assert.Nil(t, client)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to connect to Redis")
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		cfg := &config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 6379}
		client, err := ConnectRedis(ctx, cfg, helpers.NewSilentTestLogger())

		assert.Nil(t, client)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestVerifyRedis(t *testing.T) {
	cfg := &helpers.GetTestConfig().Redis

	t.Run("answering server", func(t *testing.T) {
		mockRedis := helpers.NewMockRedis()
		defer mockRedis.Close()
		mockRedis.ExpectPing()
		testLogger := helpers.NewTestLogger()

		err := verifyRedis(context.Background(), mockRedis.Client, cfg, testLogger.Logger)

		require.NoError(t, err)
		mockRedis.ExpectationsWereMet(t)
		testLogger.AssertLogContains(t, "Connected to Redis")
		testLogger.AssertLogContains(t, `"addr":"localhost:6379"`)
	})

	t.Run("failing ping", func(t *testing.T) {
		mockRedis := helpers.NewMockRedis()
		mockRedis.ExpectPingError()
		testLogger := helpers.NewTestLogger()

		err := verifyRedis(context.Background(), mockRedis.Client, cfg, testLogger.Logger)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to connect to Redis")
		mockRedis.ExpectationsWereMet(t)
		testLogger.AssertLogNotContains(t, "Connected to Redis")
	})
}

func TestRedisOptions(t *testing.T) {
	t.Run("builds correct address", func(t *testing.T) {
		cfg := &config.RedisConfig{
			Host:     "redis.example.com",
			Port:     6380,
			Password: "strongpassword",
			DB:       5,
		}

		opts := redisOptions(cfg)

		assert.Equal(t, "redis.example.com:6380", opts.Addr)
		assert.Equal(t, "strongpassword", opts.Password)
		assert.Equal(t, 5, opts.DB)
	})

	t.Run("defaults from config", func(t *testing.T) {
		cfg := helpers.GetTestConfig().Redis

		assert.Equal(t, net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)), redisAddr(&cfg))
	})
}
