package cache

import (
	"context"
	"fmt"
	"strings"
)

// Open selects a backend from a location string:
//
//	""              NullCache
//	"none"          NullCache
//	"redis://..."   RedisCache (also rediss://)
//	"mongodb://..." MongoCache (also mongodb+srv://)
//	anything else   FileCache rooted at that directory ("file://" optional)
func Open(ctx context.Context, location, namespace string) (Cache, error) {
	switch {
	case location == "" || location == "none":
		return NewNullCache(), nil
	case strings.HasPrefix(location, "redis://"), strings.HasPrefix(location, "rediss://"):
		return NewRedisCacheFromURL(ctx, location, namespace)
	case strings.HasPrefix(location, "mongodb://"), strings.HasPrefix(location, "mongodb+srv://"):
		return NewMongoCache(ctx, location, namespace)
	case strings.Contains(location, "://") && !strings.HasPrefix(location, "file://"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBackend, location)
	default:
		return NewFileCache(strings.TrimPrefix(location, "file://"))
	}
}
