package helpers

import (
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// MockRedis represents a mocked Redis connection for testing
type MockRedis struct {
	Client *redis.Client
	Mock   redismock.ClientMock
}

// NewMockRedis creates a new mock Redis client
func NewMockRedis() *MockRedis {
	client, mock := redismock.NewClientMock()

	return &MockRedis{
		Client: client,
		Mock:   mock,
	}
}

// Close closes the mock Redis connection
func (m *MockRedis) Close() error {
	return m.Client.Close()
}

// ExpectationsWereMet checks if all expected Redis interactions were met
func (m *MockRedis) ExpectationsWereMet(t *testing.T) {
	require.NoError(t, m.Mock.ExpectationsWereMet())
}

// ExpectCacheHit sets up expectation for a cache hit
func (m *MockRedis) ExpectCacheHit(key, value string) {
	m.Mock.ExpectGet(key).SetVal(value)
}

// ExpectCacheMiss sets up expectation for a cache miss
func (m *MockRedis) ExpectCacheMiss(key string) {
	m.Mock.ExpectGet(key).RedisNil()
}

// ExpectCacheReadError sets up expectation for a failing cache read
func (m *MockRedis) ExpectCacheReadError(key string) {
	m.Mock.ExpectGet(key).SetErr(errors.New("redis: connection refused"))
}

// ExpectCacheSetWithTTL sets up expectation for storing a payload with TTL
func (m *MockRedis) ExpectCacheSetWithTTL(key string, value []byte, ttl time.Duration) {
	m.Mock.ExpectSet(key, value, ttl).SetVal("OK")
}

// ExpectCacheSetError sets up expectation for a failing cache write
func (m *MockRedis) ExpectCacheSetError(key string, value []byte, ttl time.Duration) {
	m.Mock.ExpectSet(key, value, ttl).SetErr(errors.New("redis: read only replica"))
}

// ExpectPing sets up expectation for ping command
func (m *MockRedis) ExpectPing() {
	m.Mock.ExpectPing().SetVal("PONG")
}

// ExpectPingError sets up expectation for a failing ping
func (m *MockRedis) ExpectPingError() {
	m.Mock.ExpectPing().SetErr(errors.New("redis: connection refused"))
}
