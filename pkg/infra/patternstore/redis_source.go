package patternstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const DefaultPatternsKey = "xssguard:patterns"

// Source supplies custom expressions once, when a guard is built.
type Source interface {
	Load(ctx context.Context) ([]string, error)
}

type redisSource struct {
	client redis.Cmdable
	key    string
}

// NewRedisSource reads expressions from a redis list, in list order.
func NewRedisSource(client redis.Cmdable, key string) Source {
	if key == "" {
		key = DefaultPatternsKey
	}
	return &redisSource{
		client: client,
		key:    key,
	}
}

func (s *redisSource) Load(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	values, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load patterns from %s: %w", s.key, err)
	}

	patterns := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			patterns = append(patterns, v)
		}
	}
	return patterns, nil
}

// Merge appends the loaded expressions that are not already configured. The configured
// list is returned as is, duplicates included, so a redis source never changes how the
// configured patterns behave.
func Merge(configured, loaded []string) []string {
	seen := make(map[string]struct{}, len(configured)+len(loaded))
	out := make([]string, 0, len(configured)+len(loaded))
	for _, p := range configured {
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, p := range loaded {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
