package attemptstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/projectshelf/internal/domain/auth"
)

// ValkeyStore keeps login attempt counters in a Valkey-compatible database so
// every instance behind the load balancer sees the same totals.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "projectshelf"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

// incrementScript bumps the counter and arms the window expiry in one atomic
// step. A counter found without a TTL gets one too, so no key can outlive its
// window and lock an account out for good.
const incrementLua = `
local count = redis.call('INCR', KEYS[1])
local window = tonumber(ARGV[1])
if window > 0 and redis.call('PTTL', KEYS[1]) < 0 then
  redis.call('PEXPIRE', KEYS[1], window)
end
return count
`

var incrementScript = valkey.NewLuaScript(incrementLua)

// Increment counts one failed attempt inside the current window.
func (s *ValkeyStore) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	k := s.key(key)
	count, err := incrementScript.Exec(ctx, s.client, []string{k}, []string{windowMillis(window)}).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", k, err)
	}
	return count, nil
}

// Count reads the counter; a missing key counts as zero.
func (s *ValkeyStore) Count(ctx context.Context, key string) (int64, error) {
	k := s.key(key)
	count, err := s.client.Do(ctx, s.client.B().Get().Key(k).Build()).AsInt64()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("get %s: %w", k, err)
	}
	return count, nil
}

// Reset deletes the counter.
func (s *ValkeyStore) Reset(ctx context.Context, key string) error {
	k := s.key(key)
	if err := s.client.Do(ctx, s.client.B().Del().Key(k).Build()).Error(); err != nil {
		return fmt.Errorf("del %s: %w", k, err)
	}
	return nil
}

func windowMillis(window time.Duration) string {
	if window <= 0 {
		return "0"
	}
	if window < time.Millisecond {
		window = time.Millisecond
	}
	return strconv.FormatInt(window.Milliseconds(), 10)
}

func (s *ValkeyStore) key(key string) string {
	return fmt.Sprintf("%s:attempts:%s", s.prefix, key)
}

var _ auth.AttemptStore = (*ValkeyStore)(nil)
