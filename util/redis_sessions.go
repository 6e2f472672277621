package util

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ariebrainware/clinic-therapy/config"
	"github.com/redis/go-redis/v9"
)

// removeTokenScript removes a token from the per-user set and deletes the set
// once it is empty.
const removeTokenScript = `
local removed = redis.call('SREM', KEYS[1], ARGV[1])
if removed > 0 and redis.call('SCARD', KEYS[1]) == 0 then
	redis.call('DEL', KEYS[1])
end
return removed
`

func sessionKey(token string) string { return "session:" + token }

func userSessionsKey(userID uint) string { return fmt.Sprintf("user_sessions:%d", userID) }

// CacheSession stores "userID:roleID" under session:<token> for ttl and adds
// the token to the user's session set. The set has no TTL; it is cleaned up
// by RemoveSession and InvalidateUserSessions.
func CacheSession(ctx context.Context, token string, userID uint, roleID uint32, ttl time.Duration) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	if err := rdb.Set(ctx, sessionKey(token), fmt.Sprintf("%d:%d", userID, roleID), ttl).Err(); err != nil {
		return err
	}
	if err := rdb.SAdd(ctx, userSessionsKey(userID), token).Err(); err != nil {
		return err
	}
	return rdb.Persist(ctx, userSessionsKey(userID)).Err()
}

// LookupSession reads a cached session. ok is false on a cache miss or when
// Redis is not configured.
func LookupSession(ctx context.Context, token string) (userID uint, roleID uint32, ok bool, err error) {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return 0, 0, false, nil
	}
	val, err := rdb.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, err
	}
	uidStr, ridStr, found := strings.Cut(val, ":")
	if !found {
		return 0, 0, false, fmt.Errorf("malformed session value %q", val)
	}
	uid, err := strconv.ParseUint(uidStr, 10, 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("malformed session user id: %w", err)
	}
	rid, err := strconv.ParseUint(ridStr, 10, 32)
	if err != nil {
		return 0, 0, false, fmt.Errorf("malformed session role id: %w", err)
	}
	return uint(uid), uint32(rid), true, nil
}

// RemoveSession deletes one cached session.
func RemoveSession(ctx context.Context, userID uint, token string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	if err := rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
		return err
	}
	return rdb.Eval(ctx, removeTokenScript, []string{userSessionsKey(userID)}, token).Err()
}

// InvalidateUserSessions deletes every cached session of userID and the set
// itself, used when an account is changed or removed.
func InvalidateUserSessions(ctx context.Context, userID uint) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	members, err := rdb.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	for _, tok := range members {
		_ = rdb.Del(ctx, sessionKey(tok)).Err()
	}
	return rdb.Del(ctx, userSessionsKey(userID)).Err()
}
