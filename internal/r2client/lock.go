package r2client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// LockInfo is the JSON body of a held publish lock.
type LockInfo struct {
	Owner     string    `json:"owner"`      // Unique identifier of the lock owner
	ExpiresAt time.Time `json:"expires_at"` // When the lock expires
}

// PublishLock serializes dataset publishes using R2 conditional
// writes. Ingest runs are short-lived, so there is no renewal; the
// TTL just has to outlast one publish, and a crashed run's lock is
// stolen once it expires.
type PublishLock struct {
	store   ObjectStore
	key     string
	ttl     time.Duration
	ownerID string
	etag    string // ETag of the lock we hold, for release verification
}

// NewPublishLock creates a lock over the given object key.
func NewPublishLock(store ObjectStore, key string, ttl time.Duration) *PublishLock {
	return &PublishLock{
		store:   store,
		key:     key,
		ttl:     ttl,
		ownerID: uuid.New().String(),
	}
}

// Acquire attempts to take the lock.
// Returns (true, nil) if the lock was acquired, (false, nil) if
// another publisher holds an unexpired lock.
func (l *PublishLock) Acquire(ctx context.Context) (bool, error) {
	data, err := l.marshalInfo()
	if err != nil {
		return false, fmt.Errorf("acquire lock: %w", err)
	}

	created, etag, err := l.store.PutObjectIfNotExists(ctx, l.key, bytes.NewReader(data), "application/json")
	if err != nil {
		return false, fmt.Errorf("acquire lock: %w", err)
	}
	if created {
		l.etag = etag
		return true, nil
	}

	// Lock exists, check whether the holder's TTL ran out
	expired, oldEtag, err := l.checkExpired(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire lock: check expired: %w", err)
	}
	if !expired {
		return false, nil
	}

	data, err = l.marshalInfo()
	if err != nil {
		return false, fmt.Errorf("acquire lock: %w", err)
	}

	// The holder's lock vanished while we looked, so create from scratch
	if oldEtag == "" {
		created, etag, err = l.store.PutObjectIfNotExists(ctx, l.key, bytes.NewReader(data), "application/json")
		if err != nil {
			return false, fmt.Errorf("acquire lock: recreate: %w", err)
		}
		if created {
			l.etag = etag
		}
		return created, nil
	}

	// Steal the expired lock. If-Match loses to any concurrent thief.
	stolen, newEtag, err := l.store.PutObjectIfMatch(ctx, l.key, bytes.NewReader(data), oldEtag, "application/json")
	if err != nil {
		return false, fmt.Errorf("acquire lock: steal: %w", err)
	}
	if stolen {
		l.etag = newEtag
		return true, nil
	}
	return false, nil
}

// Release deletes the lock if this instance still owns it.
func (l *PublishLock) Release(ctx context.Context) error {
	body, _, err := l.store.Download(ctx, l.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil // Lock already gone, that's fine
		}
		return fmt.Errorf("release lock: verify: %w", err)
	}

	data, err := io.ReadAll(body)
	_ = body.Close()
	if err != nil {
		return fmt.Errorf("release lock: read: %w", err)
	}

	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		// Garbage lock body, delete it anyway
		return l.store.DeleteObject(ctx, l.key)
	}

	if info.Owner != l.ownerID {
		// Someone stole the lock after our TTL ran out
		return nil
	}
	return l.store.DeleteObject(ctx, l.key)
}

// OwnerID returns the unique identifier of this lock instance.
func (l *PublishLock) OwnerID() string {
	return l.ownerID
}

func (l *PublishLock) marshalInfo() ([]byte, error) {
	info := LockInfo{
		Owner:     l.ownerID,
		ExpiresAt: time.Now().Add(l.ttl),
	}
	data, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("marshal lock info: %w", err)
	}
	return data, nil
}

// checkExpired reads the current lock and reports whether its TTL
// passed, along with the ETag needed to steal it.
func (l *PublishLock) checkExpired(ctx context.Context) (bool, string, error) {
	body, etag, err := l.store.Download(ctx, l.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return true, "", nil // Lock was deleted in the meantime
		}
		return false, "", err
	}
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	if err != nil {
		return false, "", fmt.Errorf("read lock: %w", err)
	}

	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		// Unparseable lock body counts as expired
		return true, etag, nil
	}
	return time.Now().After(info.ExpiresAt), etag, nil
}
