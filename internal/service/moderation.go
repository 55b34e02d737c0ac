package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dtroode/academia-moderation/internal/logger"
	"github.com/dtroode/academia-moderation/internal/metrics"
	"github.com/dtroode/academia-moderation/internal/model"
	"github.com/dtroode/academia-moderation/internal/validation"
)

const (
	defaultTxTimeout     = 5 * time.Second
	defaultPreviewExpiry = 15 * time.Minute
)

// Moderation applies moderation transitions to materials and users and
// reports moderation statistics.
type Moderation struct {
	materialStore model.MaterialStore
	userStore     model.UserStore
	transactor    model.Transactor
	storage       model.Storage
	validator     *validation.Validator
	logger        *logger.Logger

	txTimeout     time.Duration
	previewExpiry time.Duration
	now           func() time.Time
}

// ModerationConfig tunes the moderation service. Zero values select defaults.
type ModerationConfig struct {
	TxTimeout     time.Duration
	PreviewExpiry time.Duration
}

// NewModeration creates a moderation service. storage may be nil when object
// storage is disabled.
func NewModeration(
	materialStore model.MaterialStore,
	userStore model.UserStore,
	transactor model.Transactor,
	storage model.Storage,
	validator *validation.Validator,
	logger *logger.Logger,
	cfg ModerationConfig,
) *Moderation {
	if cfg.TxTimeout <= 0 {
		cfg.TxTimeout = defaultTxTimeout
	}
	if cfg.PreviewExpiry <= 0 {
		cfg.PreviewExpiry = defaultPreviewExpiry
	}

	return &Moderation{
		materialStore: materialStore,
		userStore:     userStore,
		transactor:    transactor,
		storage:       storage,
		validator:     validator,
		logger:        logger,
		txTimeout:     cfg.TxTimeout,
		previewExpiry: cfg.PreviewExpiry,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// withinTransaction runs fn in a bounded read-write transaction.
func (s *Moderation) withinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	return classify(s.transactor.WithinTransaction(ctx, fn))
}

// withinSnapshot runs fn in a bounded read-only snapshot.
func (s *Moderation) withinSnapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	return classify(s.transactor.WithinSnapshot(ctx, fn))
}

// classify passes classified errors through and wraps everything else,
// including deadlines and exhausted retries, as unavailable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var e *model.Error
	if errors.As(err, &e) {
		return err
	}
	return model.NewErrUnavailable(err)
}

// record counts the outcome of a moderation action.
func record(action string, err error) {
	result := "ok"
	if err != nil {
		result = model.KindOf(err).String()
	}
	metrics.RecordModeration(action, result)
}

// trimmed returns nil for nil or blank values.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func wrapStoreErr(op string, err error) error {
	return fmt.Errorf("failed to %s: %w", op, err)
}
