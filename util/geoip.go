package util

import (
	"net/netip"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oschwald/geoip2-golang"
	cache "github.com/patrickmn/go-cache"
)

var (
	geoipMu        sync.RWMutex
	geoipDB        *geoip2.Reader
	geoipCache     = cache.New(24*time.Hour, time.Hour)
	geoipCacheHits atomic.Int64
	geoipCacheMiss atomic.Int64
)

// InitGeoIP opens a GeoIP2/GeoLite2 .mmdb file. An empty path falls back to
// GEOIP_DB_PATH; when neither is set lookups simply resolve nothing.
func InitGeoIP(dbPath string) error {
	if dbPath == "" {
		dbPath = os.Getenv("GEOIP_DB_PATH")
	}
	if dbPath == "" {
		return nil
	}
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return err
	}
	geoipMu.Lock()
	geoipDB = r
	geoipMu.Unlock()
	return nil
}

// CloseGeoIP closes the GeoIP DB if opened.
func CloseGeoIP() {
	geoipMu.Lock()
	defer geoipMu.Unlock()
	if geoipDB != nil {
		_ = geoipDB.Close()
		geoipDB = nil
	}
}

// GetIPLocation returns a "City/Country" label for ip, or "" when it cannot be
// resolved. Private and loopback addresses are never looked up.
func GetIPLocation(ip string) string {
	addr, err := netip.ParseAddr(ip)
	if err != nil || addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() || addr.IsLinkLocalUnicast() {
		return ""
	}

	if v, ok := geoipCache.Get(ip); ok {
		geoipCacheHits.Add(1)
		return v.(string)
	}
	geoipCacheMiss.Add(1)

	geoipMu.RLock()
	reader := geoipDB
	geoipMu.RUnlock()
	if reader == nil {
		return ""
	}

	rec, err := reader.City(addr.AsSlice())
	if err != nil {
		return ""
	}
	country := rec.Country.Names["en"]
	if country == "" {
		country = rec.Country.IsoCode
	}
	location := joinLocation(rec.City.Names["en"], country)
	geoipCache.Set(ip, location, cache.DefaultExpiration)
	return location
}

func joinLocation(city, country string) string {
	switch {
	case city != "" && country != "":
		return city + "/" + country
	case country != "":
		return country
	default:
		return city
	}
}

// GetGeoIPCacheMetrics returns the cache hits, misses and current size.
func GetGeoIPCacheMetrics() (hits int64, misses int64, size int) {
	return geoipCacheHits.Load(), geoipCacheMiss.Load(), geoipCache.ItemCount()
}
