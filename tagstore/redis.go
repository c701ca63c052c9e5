package tagstore

import (
	"context"
	"sort"

	"github.com/redis/go-redis/v9"
)

// Redis shares the tag index across processes and survives restarts.
// Index keys never carry a TTL: the engine unlinks eagerly on delete,
// invalidation and expiry-prune, so the sets track live entries.
//
// Layout:
//
//	tag:<ns>:<tag>    - SET of member keys
//	tagsof:<ns>:<key> - SET of tags the key carries
//
// Link, Unlink and DropTag run as server-side Lua scripts so each call is
// atomic on the Redis side. The scripts build tag-set keys from ARGV rather
// than declaring them in KEYS, so the store requires a single-node (or
// single-shard) Redis deployment; Redis Cluster cannot route these scripts.
type Redis struct {
	rdb redis.UniversalClient
	ns  string // logical namespace; should match Options.Namespace
}

var _ TagStore = (*Redis)(nil)

func NewRedis(client redis.UniversalClient, namespace string) *Redis {
	return &Redis{rdb: client, ns: namespace}
}

func (s *Redis) tagPrefix() string        { return "tag:" + s.ns + ":" }
func (s *Redis) tagKey(tag string) string { return s.tagPrefix() + tag }
func (s *Redis) keyKey(key string) string { return "tagsof:" + s.ns + ":" + key }

// KEYS[1] = tagsof:<ns>:<key>
// ARGV[1] = tag prefix, ARGV[2] = member key, ARGV[3..] = new tags
var linkScript = redis.NewScript(`
local prev = redis.call('SMEMBERS', KEYS[1])
for _, t in ipairs(prev) do
  redis.call('SREM', ARGV[1] .. t, ARGV[2])
end
redis.call('DEL', KEYS[1])
for i = 3, #ARGV do
  redis.call('SADD', KEYS[1], ARGV[i])
  redis.call('SADD', ARGV[1] .. ARGV[i], ARGV[2])
end
return prev
`)

// KEYS[1] = tagsof:<ns>:<key>
// ARGV[1] = tag prefix, ARGV[2] = member key
var unlinkScript = redis.NewScript(`
local prev = redis.call('SMEMBERS', KEYS[1])
for _, t in ipairs(prev) do
  redis.call('SREM', ARGV[1] .. t, ARGV[2])
end
redis.call('DEL', KEYS[1])
return prev
`)

// KEYS[1] = tag:<ns>:<tag>
var dropEmptyScript = redis.NewScript(`
if redis.call('SCARD', KEYS[1]) == 0 then
  redis.call('DEL', KEYS[1])
end
return 0
`)

func (s *Redis) Link(ctx context.Context, key string, tags []string) ([]string, error) {
	argv := make([]any, 0, 2+len(tags))
	argv = append(argv, s.tagPrefix(), key)
	for _, t := range tags {
		argv = append(argv, t)
	}
	res, err := linkScript.Run(ctx, s.rdb, []string{s.keyKey(key)}, argv...).Result()
	if err != nil {
		return nil, err
	}
	return toStrings(res), nil
}

func (s *Redis) Unlink(ctx context.Context, key string) ([]string, error) {
	res, err := unlinkScript.Run(ctx, s.rdb, []string{s.keyKey(key)}, s.tagPrefix(), key).Result()
	if err != nil {
		return nil, err
	}
	return toStrings(res), nil
}

func (s *Redis) Members(ctx context.Context, tag string) ([]string, error) {
	out, err := s.rdb.SMembers(ctx, s.tagKey(tag)).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func (s *Redis) Tags(ctx context.Context, key string) ([]string, error) {
	out, err := s.rdb.SMembers(ctx, s.keyKey(key)).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func (s *Redis) DropTag(ctx context.Context, tag string) error {
	return dropEmptyScript.Run(ctx, s.rdb, []string{s.tagKey(tag)}).Err()
}

// Close releases the underlying redis client.
func (s *Redis) Close(context.Context) error { return s.rdb.Close() }

// toStrings converts a Lua table reply ([]interface{} of strings) into a
// sorted string slice.
func toStrings(res any) []string {
	vals, ok := res.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		switch vv := v.(type) {
		case string:
			out = append(out, vv)
		case []byte:
			out = append(out, string(vv))
		}
	}
	sort.Strings(out)
	return out
}
