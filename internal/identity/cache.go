package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	id "thesisflow/pkg/domain"
)

// CachedOracle is a redis read-through decorator. Role and subject-area
// lookups sit on every request-creation path, so they are cached with a
// short TTL. Cache failures degrade to the underlying oracle; they are
// never surfaced to callers.
type CachedOracle struct {
	next   Oracle
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ Oracle = (*CachedOracle)(nil)

func NewCached(next Oracle, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedOracle {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedOracle{next: next, client: client, ttl: ttl, logger: logger}
}

func roleKey(userID id.UserID, role Role) string {
	return fmt.Sprintf("identity:role:%s:%s", userID, role)
}

func areasKey(userID id.UserID) string {
	return fmt.Sprintf("identity:areas:%s", userID)
}

func (o *CachedOracle) HasRole(ctx context.Context, userID id.UserID, role Role) (bool, error) {
	key := roleKey(userID, role)
	if cached, err := o.client.Get(ctx, key).Result(); err == nil {
		return cached == "1", nil
	} else if err != redis.Nil {
		o.logger.Warn("identity cache read failed", "key", key, "error", err)
	}

	has, err := o.next.HasRole(ctx, userID, role)
	if err != nil {
		return false, err
	}

	value := "0"
	if has {
		value = "1"
	}
	if err := o.client.Set(ctx, key, value, o.ttl).Err(); err != nil {
		o.logger.Warn("identity cache write failed", "key", key, "error", err)
	}
	return has, nil
}

func (o *CachedOracle) SubjectAreasOf(ctx context.Context, userID id.UserID) ([]id.SubjectAreaID, error) {
	key := areasKey(userID)
	if cached, err := o.client.Get(ctx, key).Result(); err == nil {
		return decodeAreas(cached)
	} else if err != redis.Nil {
		o.logger.Warn("identity cache read failed", "key", key, "error", err)
	}

	areas, err := o.next.SubjectAreasOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := o.client.Set(ctx, key, encodeAreas(areas), o.ttl).Err(); err != nil {
		o.logger.Warn("identity cache write failed", "key", key, "error", err)
	}
	return areas, nil
}

// Invalidate drops cached entries for a user after a role or expertise
// change.
func (o *CachedOracle) Invalidate(ctx context.Context, userID id.UserID) error {
	keys := []string{
		roleKey(userID, RoleStudent),
		roleKey(userID, RoleTutor),
		roleKey(userID, RoleAdmin),
		areasKey(userID),
	}
	return o.client.Del(ctx, keys...).Err()
}

// Subject-area sets are encoded as a comma-joined UUID list. The empty
// set encodes as "-" so a cached empty result is distinguishable from a
// cache miss.
func encodeAreas(areas []id.SubjectAreaID) string {
	if len(areas) == 0 {
		return "-"
	}
	parts := make([]string, len(areas))
	for i, a := range areas {
		parts[i] = a.String()
	}
	return strings.Join(parts, ",")
}

func decodeAreas(encoded string) ([]id.SubjectAreaID, error) {
	if encoded == "-" || encoded == "" {
		return nil, nil
	}
	parts := strings.Split(encoded, ",")
	areas := make([]id.SubjectAreaID, 0, len(parts))
	for _, p := range parts {
		area, err := id.ParseSubjectAreaID(p)
		if err != nil {
			return nil, fmt.Errorf("decode cached subject area: %w", err)
		}
		areas = append(areas, area)
	}
	return areas, nil
}
