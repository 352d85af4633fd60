// Package identity derives the durable visitor id and tracks the visit-scoped
// session id. Store failures degrade to fresh ephemeral ids; nothing is ever
// surfaced to the caller.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"conversion-analytics/internal/kvstore"
)

const (
	userPrefix    = "user_"
	sessionPrefix = "session_"
	eventPrefix   = "event_"
)

// Options configures a Resolver.
type Options struct {
	UserIDKey    string
	SessionIDKey string
	// Timeout bounds every store call.
	Timeout time.Duration
}

// Resolver reads and writes identity keys.
type Resolver struct {
	durable kvstore.Store
	visit   kvstore.Store
	opts    Options
	logger  zerolog.Logger
}

// NewResolver builds a Resolver over a durable store and a visit-scoped store.
func NewResolver(durable, visit kvstore.Store, opts Options, logger zerolog.Logger) *Resolver {
	if opts.Timeout <= 0 {
		opts.Timeout = 250 * time.Millisecond
	}
	return &Resolver{
		durable: durable,
		visit:   visit,
		opts:    opts,
		logger:  logger.With().Str("component", "identity").Logger(),
	}
}

// UserID returns the persisted visitor id, creating and persisting one when
// absent. If the durable store is unavailable a new id is returned per call.
func (r *Resolver) UserID() string {
	ctx, cancel := context.WithTimeout(context.Background(), r.opts.Timeout)
	defer cancel()

	id, err := r.durable.Get(ctx, r.opts.UserIDKey)
	if err == nil && id != "" {
		return id
	}
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		r.logger.Warn().Err(err).Msg("durable store unavailable, using ephemeral user id")
		return NewUserID()
	}

	id = NewUserID()
	if err := r.durable.Set(ctx, r.opts.UserIDKey, id); err != nil {
		r.logger.Warn().Err(err).Msg("persist user id failed")
	}
	return id
}

// SessionID returns the session id of the current visit, if any.
func (r *Resolver) SessionID() (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), r.opts.Timeout)
	defer cancel()

	id, err := r.visit.Get(ctx, r.opts.SessionIDKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			r.logger.Warn().Err(err).Msg("visit store unavailable")
		}
		return "", false
	}
	return id, id != ""
}

// SetSessionID records id as the current visit's session.
func (r *Resolver) SetSessionID(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.opts.Timeout)
	defer cancel()

	if err := r.visit.Set(ctx, r.opts.SessionIDKey, id); err != nil {
		r.logger.Warn().Err(err).Str("session_id", id).Msg("persist session id failed")
	}
}

// ClearSessionID forgets the current visit's session.
func (r *Resolver) ClearSessionID() {
	ctx, cancel := context.WithTimeout(context.Background(), r.opts.Timeout)
	defer cancel()

	if err := r.visit.Delete(ctx, r.opts.SessionIDKey); err != nil {
		r.logger.Warn().Err(err).Msg("clear session id failed")
	}
}

// NewUserID returns a fresh visitor id.
func NewUserID() string { return newID(userPrefix) }

// NewSessionID returns a fresh session id.
func NewSessionID() string { return newID(sessionPrefix) }

// NewEventID returns a fresh event id.
func NewEventID() string { return newID(eventPrefix) }

// newID combines a time-ordered UUIDv7 (millisecond timestamp plus random
// bits) with a readable prefix, so concurrent writers never collide.
func newID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return prefix + id.String()
}
