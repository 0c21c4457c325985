// Package tests contains test utilities and mock generation directives.
//
// For testing, the project uses:
// - gomock mocks of internal/interfaces in tests/mocks
// - httpmock for the weather and geolocation upstreams
// - redismock for the weather cache
// - testcontainers for the Redis integration test (build tag "integration")
//
// Regenerate mocks with: go generate ./internal/interfaces/...
package tests
