package util

import (
	"fmt"
	"os"
	"strconv"
	"time"

	cache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

var userEmailCache = cache.New(10*time.Minute, 20*time.Minute)

// InitUserEmailCacheFromEnv sets the cache TTL from USER_EMAIL_CACHE_TTL
// (a Go duration, default 10m) and drops current entries.
func InitUserEmailCacheFromEnv() {
	ttl := 10 * time.Minute
	if d, err := time.ParseDuration(os.Getenv("USER_EMAIL_CACHE_TTL")); err == nil && d > 0 {
		ttl = d
	}
	userEmailCache = cache.New(ttl, 2*ttl)
}

func userCacheKey(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

// UserEmailCacheSet stores the email of userID.
func UserEmailCacheSet(userID uint, email string) {
	userEmailCache.Set(userCacheKey(userID), email, cache.DefaultExpiration)
}

// UserEmailCacheDelete forgets userID, used when an account changes or is removed.
func UserEmailCacheDelete(userID uint) {
	userEmailCache.Delete(userCacheKey(userID))
}

// GetUserEmail returns the email for userID using the cache, falling back to
// the users table.
func GetUserEmail(db *gorm.DB, userID uint) string {
	if userID == 0 {
		return ""
	}
	if v, ok := userEmailCache.Get(userCacheKey(userID)); ok {
		return v.(string)
	}
	if db == nil {
		return ""
	}
	var u struct{ Email string }
	if err := db.Table("users").Select("email").Where("id = ? AND deleted_at IS NULL", userID).Take(&u).Error; err != nil {
		return ""
	}
	if u.Email != "" {
		UserEmailCacheSet(userID, u.Email)
	}
	return u.Email
}

func formatUserID(userID uint) string {
	if userID == 0 {
		return ""
	}
	return fmt.Sprintf("%d", userID)
}
