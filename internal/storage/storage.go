package storage

import (
	"context"
	"encoding/json"
	"log"
)

// Keys used for the storefront state.
const (
	KeyToken = "token"
	KeyUser  = "user"
	KeyCart  = "cart"
)

// Store persists named JSON blobs in durable local storage.
//
// Load reports found=false both for a missing key and for a stored value
// that cannot be decoded into out; the latter is logged and must not fail the
// caller. When found is false out may have been partly written.
type Store interface {
	Load(ctx context.Context, key string, out any) (found bool, err error)
	Save(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	Close() error
}

func decode(logger *log.Logger, key string, data []byte, out any) bool {
	if err := json.Unmarshal(data, out); err != nil {
		logger.Printf("storage: discarding malformed value for %q: %v", key, err)
		return false
	}
	return true
}
