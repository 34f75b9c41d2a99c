package ports

import (
	"context"

	"github.com/marsone/crew-api/internal/core/domain"
)

// AuditRecorder persists committed mutations to the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
}

// IdempotencyStore maps client-supplied idempotency keys to created entity ids.
//
// A create first claims its key. Exactly one caller wins the claim; the others
// see either the id the winner remembered or, while the winner is still
// running, a zero id.
type IdempotencyStore interface {
	Claim(ctx context.Context, scope, key string) (claimed bool, id int64, err error)
	// Remember binds key to the created id, replacing the claim.
	Remember(ctx context.Context, scope, key string, id int64) error
	// Release drops a claim whose create failed so the key can be retried.
	Release(ctx context.Context, scope, key string) error
}

// AuditReader returns the recorded history of one entity, oldest first.
type AuditReader interface {
	History(ctx context.Context, resource string, id int64) ([]domain.AuditEntry, error)
}
