package epoch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"cybercommand/internal/util"
)

const (
	currentEpochKey = "cybercommand:epoch:current"
	buildLockKey    = "cybercommand:epoch:build_lock"

	// A build that outlives the lock TTL is assumed dead; the lock expires
	// so a stuck run cannot block generation forever.
	defaultLockTTL = 30 * time.Minute
)

var (
	ErrNoPublishedEpoch = errors.New("epoch: no epoch has been published")
	ErrBuildInProgress  = errors.New("epoch: another build holds the generation lock")
	ErrLockLost         = errors.New("epoch: generation lock no longer held by this build")
)

// Build is one staged generation epoch. Rows written under its ID stay
// invisible until Publish moves the pointer.
type Build struct {
	ID        string
	StartedAt time.Time
}

// Manager owns the current-epoch pointer and the generation lock in Redis.
// Readers resolve the pointer on every query; Publish is a single atomic SET,
// which is what makes regeneration all-or-nothing from a reader's view.
type Manager struct {
	rdb     *redis.Client
	lockTTL time.Duration
}

func NewManager(rdb *redis.Client) *Manager {
	return &Manager{rdb: rdb, lockTTL: defaultLockTTL}
}

// WithLockTTL overrides the build-lock expiry. Test hook.
func (m *Manager) WithLockTTL(ttl time.Duration) *Manager {
	m.lockTTL = ttl
	return m
}

// Current returns the published epoch ID, or ErrNoPublishedEpoch before the
// first successful publish.
func (m *Manager) Current(ctx context.Context) (string, error) {
	id, err := m.rdb.Get(ctx, currentEpochKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoPublishedEpoch
	}
	if err != nil {
		return "", fmt.Errorf("failed to read epoch pointer: %w", err)
	}
	return id, nil
}

// Begin stakes out a new build. Exactly one build can hold the lock; a
// concurrent caller fails fast with ErrBuildInProgress.
func (m *Manager) Begin(ctx context.Context) (*Build, error) {
	build := &Build{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	ok, err := m.rdb.SetNX(ctx, buildLockKey, build.ID, m.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire generation lock: %w", err)
	}
	if !ok {
		return nil, ErrBuildInProgress
	}

	util.Info("generation build started",
		zap.String("epoch_id", build.ID))
	return build, nil
}

// Publish atomically moves the epoch pointer to the finished build and
// releases the lock. Readers see the old epoch right up to the SET and the
// new one right after; there is no intermediate state.
func (m *Manager) Publish(ctx context.Context, build *Build) error {
	if err := m.verifyLock(ctx, build); err != nil {
		return err
	}

	if err := m.rdb.Set(ctx, currentEpochKey, build.ID, 0).Err(); err != nil {
		return fmt.Errorf("failed to move epoch pointer: %w", err)
	}
	if err := m.rdb.Del(ctx, buildLockKey).Err(); err != nil {
		util.Warn("failed to release generation lock after publish",
			zap.String("epoch_id", build.ID), zap.Error(err))
	}

	util.Info("epoch published",
		zap.String("epoch_id", build.ID),
		zap.Duration("build_duration", time.Since(build.StartedAt)))
	return nil
}

// Abort releases the lock without touching the pointer. The previous epoch
// stays fully queryable; rows written under the aborted ID are garbage that
// the next publish's cleanup removes.
func (m *Manager) Abort(ctx context.Context, build *Build) error {
	if err := m.verifyLock(ctx, build); err != nil {
		return err
	}
	if err := m.rdb.Del(ctx, buildLockKey).Err(); err != nil {
		return fmt.Errorf("failed to release generation lock: %w", err)
	}

	util.Warn("generation build aborted",
		zap.String("epoch_id", build.ID))
	return nil
}

func (m *Manager) verifyLock(ctx context.Context, build *Build) error {
	holder, err := m.rdb.Get(ctx, buildLockKey).Result()
	if errors.Is(err, redis.Nil) {
		return ErrLockLost
	}
	if err != nil {
		return fmt.Errorf("failed to verify generation lock: %w", err)
	}
	if holder != build.ID {
		return ErrLockLost
	}
	return nil
}
