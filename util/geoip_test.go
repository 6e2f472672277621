package util

import (
	"path/filepath"
	"testing"

	cache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetIPLocation_SkipsLocalAddresses(t *testing.T) {
	for _, ip := range []string{"", "garbage", "127.0.0.1", "::1", "10.1.2.3", "192.168.0.10", "172.16.5.4", "fe80::1"} {
		assert.Equal(t, "", GetIPLocation(ip), ip)
	}
}

func TestGetIPLocation_UsesCache(t *testing.T) {
	geoipCache.Set("203.0.113.9", "Denpasar/Indonesia", cache.DefaultExpiration)
	t.Cleanup(func() { geoipCache.Delete("203.0.113.9") })
	hitsBefore, _, _ := GetGeoIPCacheMetrics()

	assert.Equal(t, "Denpasar/Indonesia", GetIPLocation("203.0.113.9"))

	hits, _, size := GetGeoIPCacheMetrics()
	assert.Equal(t, hitsBefore+1, hits)
	assert.GreaterOrEqual(t, size, 1)
}

func TestGetIPLocation_NoDatabase(t *testing.T) {
	CloseGeoIP()
	_, missBefore, _ := GetGeoIPCacheMetrics()

	assert.Equal(t, "", GetIPLocation("198.51.100.7"))

	_, miss, _ := GetGeoIPCacheMetrics()
	assert.Equal(t, missBefore+1, miss)
}

func TestInitGeoIP(t *testing.T) {
	t.Setenv("GEOIP_DB_PATH", "")
	require.NoError(t, InitGeoIP(""), "no path is a no-op")

	err := InitGeoIP(filepath.Join(t.TempDir(), "missing.mmdb"))
	assert.Error(t, err)
}

func TestJoinLocation(t *testing.T) {
	assert.Equal(t, "Ubud/Indonesia", joinLocation("Ubud", "Indonesia"))
	assert.Equal(t, "Indonesia", joinLocation("", "Indonesia"))
	assert.Equal(t, "Ubud", joinLocation("Ubud", ""))
	assert.Equal(t, "", joinLocation("", ""))
}
