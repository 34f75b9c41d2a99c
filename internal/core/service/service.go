package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/marsone/crew-api/internal/core/domain"
	"github.com/marsone/crew-api/internal/core/ports"
)

// Options carries the collaborators shared by every resource service. Audit
// and Idempotency are optional.
type Options struct {
	Audit       ports.AuditRecorder
	Idempotency ports.IdempotencyStore
	Logger      zerolog.Logger
	Now         func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}

// audit records a committed mutation. Failures are logged and never reach the caller.
func (o Options) audit(ctx context.Context, resource string, id int64, action domain.AuditAction, fields []string) {
	if o.Audit == nil {
		return
	}
	entry := domain.AuditEntry{
		Resource: resource,
		EntityID: id,
		Action:   action,
		Fields:   fields,
		At:       o.now(),
	}
	if err := o.Audit.Record(ctx, entry); err != nil {
		o.Logger.Warn().Err(err).Str("resource", resource).Int64("id", id).Msg("failed to record audit entry")
	}
}

// keyInUse reports a key held by a create that has not finished yet.
func keyInUse() error {
	return domain.Conflict("idempotency_key_in_use", "a request with this idempotency key is still in progress")
}

// claimKey reserves key before a create. When an earlier create already
// remembered an id, replay loads it and claimKey reports replayed. A remembered
// id whose entity is gone is released and claimed again.
//
// On a fresh claim the caller must invoke settle with the created id, or with
// zero when the create failed. settle is never nil.
func (o Options) claimKey(ctx context.Context, scope, key string, replay func(id int64) error) (replayed bool, settle func(id int64), err error) {
	noop := func(int64) {}
	if o.Idempotency == nil || key == "" {
		return false, noop, nil
	}

	for attempt := 0; attempt < 2; attempt++ {
		claimed, id, err := o.Idempotency.Claim(ctx, scope, key)
		if err != nil {
			o.Logger.Warn().Err(err).Str("scope", scope).Msg("idempotency claim failed, creating anyway")
			return false, noop, nil
		}
		if claimed {
			return false, o.settler(ctx, scope, key), nil
		}
		if id == 0 {
			return false, noop, keyInUse()
		}

		err = replay(id)
		if err == nil {
			return true, noop, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return false, noop, err
		}
		if err := o.Idempotency.Release(ctx, scope, key); err != nil {
			o.Logger.Warn().Err(err).Str("scope", scope).Msg("failed to release stale idempotency key")
			return false, noop, nil
		}
	}
	return false, noop, keyInUse()
}

func (o Options) settler(ctx context.Context, scope, key string) func(id int64) {
	return func(id int64) {
		if id == 0 {
			if err := o.Idempotency.Release(ctx, scope, key); err != nil {
				o.Logger.Warn().Err(err).Str("scope", scope).Msg("failed to release idempotency key")
			}
			return
		}
		if err := o.Idempotency.Remember(ctx, scope, key, id); err != nil {
			o.Logger.Warn().Err(err).Str("scope", scope).Int64("id", id).Msg("failed to remember idempotency key")
		}
	}
}

// notFoundAs converts a repository miss into the typed NotFound error for entity.
func notFoundAs(err error, entity string, id int64) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound(entity, id)
	}
	return err
}
