package r2client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/abitbot/itmo-masters-bot/internal/logger"
	"github.com/abitbot/itmo-masters-bot/internal/metrics"
)

// ModuleName identifies this module in logs.
const ModuleName = "r2client"

// SnapshotConfig holds dataset snapshot settings.
type SnapshotConfig struct {
	Prefix  string        // Object key prefix, e.g. "datasets"
	LockKey string        // Object key for the publish lock
	LockTTL time.Duration // How long a crashed publisher blocks the next one
}

// SnapshotStore publishes dataset artifacts to object storage and
// restores them on hosts that have none. Artifacts are stored
// zstd-compressed under the configured prefix, keyed by file name.
type SnapshotStore struct {
	store   ObjectStore
	config  SnapshotConfig
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewSnapshotStore creates a snapshot store.
func NewSnapshotStore(store ObjectStore, cfg SnapshotConfig, m *metrics.Metrics, log *logger.Logger) *SnapshotStore {
	return &SnapshotStore{
		store:   store,
		config:  cfg,
		metrics: m,
		log:     log.WithModule(ModuleName),
	}
}

// objectKey maps an artifact file name to its object key.
func (s *SnapshotStore) objectKey(name string) string {
	return path.Join(s.config.Prefix, name) + ".zst"
}

// Publish compresses and uploads the named artifacts from dir. The
// publish lock serializes concurrent ingest runs; when another run
// holds the lock the publish is skipped without error.
func (s *SnapshotStore) Publish(ctx context.Context, dir string, names ...string) error {
	lock := NewPublishLock(s.store, s.config.LockKey, s.config.LockTTL)

	acquired, err := lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	if !acquired {
		s.metrics.RecordSnapshotOperation("upload", "skipped")
		s.log.Warn("Snapshot publish skipped, another publisher holds the lock")
		return nil
	}
	defer func() {
		if err := lock.Release(ctx); err != nil {
			s.log.WithError(err).Warn("Failed to release publish lock")
		}
	}()

	for _, name := range names {
		if err := s.uploadArtifact(ctx, dir, name); err != nil {
			s.metrics.RecordSnapshotOperation("upload", "error")
			return fmt.Errorf("publish snapshot: %w", err)
		}
		s.metrics.RecordSnapshotOperation("upload", "success")
	}

	s.log.Infof("Published %d dataset artifacts to %s/", len(names), s.config.Prefix)
	return nil
}

func (s *SnapshotStore) uploadArtifact(ctx context.Context, dir, name string) error {
	srcPath := filepath.Join(dir, name)
	compressedPath := filepath.Join(os.TempDir(), fmt.Sprintf("%s_%d.zst", name, time.Now().UnixNano()))

	if err := CompressFile(srcPath, compressedPath); err != nil {
		return fmt.Errorf("compress %s: %w", name, err)
	}
	defer func() { _ = os.Remove(compressedPath) }()

	f, err := os.Open(compressedPath)
	if err != nil {
		return fmt.Errorf("open compressed %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	etag, err := s.store.Upload(ctx, s.objectKey(name), f, "application/zstd")
	if err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}

	s.log.Debugf("Uploaded %s (etag %s)", s.objectKey(name), etag)
	return nil
}

// Restore downloads and decompresses the named artifacts into dir.
// Artifacts are staged next to their destinations and moved into place
// only after every download succeeds, so a half-published generation is
// never mixed into the local dataset. Returns ErrNotFound when any
// artifact is missing remotely.
func (s *SnapshotStore) Restore(ctx context.Context, dir string, names ...string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}

	staged := make([]string, 0, len(names))
	defer func() {
		for _, p := range staged {
			_ = os.Remove(p)
		}
	}()

	for _, name := range names {
		stagePath := filepath.Join(dir, name+".restore")
		if err := s.downloadArtifact(ctx, stagePath, name); err != nil {
			if errors.Is(err, ErrNotFound) {
				s.metrics.RecordSnapshotOperation("download", "skipped")
				return ErrNotFound
			}
			s.metrics.RecordSnapshotOperation("download", "error")
			return fmt.Errorf("restore snapshot: %w", err)
		}
		staged = append(staged, stagePath)
	}

	for i, name := range names {
		if err := os.Rename(staged[i], filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("restore snapshot: %w", err)
		}
		s.metrics.RecordSnapshotOperation("download", "success")
	}

	s.log.Infof("Restored %d dataset artifacts into %s", len(names), dir)
	return nil
}

func (s *SnapshotStore) downloadArtifact(ctx context.Context, destPath, name string) error {
	body, etag, err := s.store.Download(ctx, s.objectKey(name))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("download %s: %w", name, err)
	}
	defer func() { _ = body.Close() }()

	if err := DecompressStream(body, destPath); err != nil {
		return fmt.Errorf("decompress %s: %w", name, err)
	}

	s.log.Debugf("Staged %s (etag %s)", destPath, etag)
	return nil
}
