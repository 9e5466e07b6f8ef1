package cache

import (
	"context"
	"errors"
	"time"
)

// Cache interface định nghĩa contract cho cache layer.
// Projections are stored as JSON; implementations must be safe for concurrent use.
type Cache interface {
	// Get loads the value stored at key into dest.
	// found = false on a cache miss, dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key with the given TTL
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Incr tăng counter tại key (key chưa có thì bắt đầu từ 0), không TTL
	Incr(ctx context.Context, key string) (int64, error)

	// DeletePattern removes every key matching a glob pattern (e.g. "books:*")
	DeletePattern(ctx context.Context, pattern string) error

	Ping(ctx context.Context) error
}

// Generation đọc counter tại genKey; chưa có = 0.
// Key cache chứa generation nên một lần Incr làm mọi entry cũ không còn được đọc,
// kể cả entry do một request đọc cũ ghi vào sau khi write đã xong.
func Generation(ctx context.Context, c Cache, genKey string) (int64, error) {
	var gen int64
	if _, err := c.Get(ctx, genKey, &gen); err != nil {
		return 0, err
	}
	return gen, nil
}

// Invalidate tăng generation rồi dọn các key theo pattern.
// genKey không được match pattern, nếu không counter sẽ bị reset.
func Invalidate(ctx context.Context, c Cache, genKey, pattern string) error {
	_, incrErr := c.Incr(ctx, genKey)
	return errors.Join(incrErr, c.DeletePattern(ctx, pattern))
}

// Noop is used when Redis is disabled. Every lookup is a miss.
type Noop struct{}

func (Noop) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (Noop) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (Noop) Incr(context.Context, string) (int64, error) { return 0, nil }
func (Noop) DeletePattern(context.Context, string) error { return nil }
func (Noop) Ping(context.Context) error { return nil }
