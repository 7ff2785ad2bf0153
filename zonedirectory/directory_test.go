package zonedirectory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigamon-dev/SubspaceServer-sub008/zonedirectory"
)

// Discover and Register require a live Consul agent, so these tests only
// cover construction and cache-lifetime configuration, which don't.

func TestNewBuildsClientAgainstGivenAddress(t *testing.T) {
	d, err := zonedirectory.New("127.0.0.1:8500", "http")
	require.NoError(t, err)
	assert.NotNil(t, d)
}

func TestNewDefaultsWhenAddressEmpty(t *testing.T) {
	d, err := zonedirectory.New("", "")
	require.NoError(t, err)
	assert.NotNil(t, d)
}

func TestSetCacheTTLOverridesDefault(t *testing.T) {
	d, err := zonedirectory.New("127.0.0.1:8500", "http")
	require.NoError(t, err)
	d.SetCacheTTL(time.Minute)
}
