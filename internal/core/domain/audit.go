package domain

import (
	"strconv"
	"time"
)

// AuditAction is the kind of mutation recorded in the audit trail.
type AuditAction string

const (
	AuditCreate AuditAction = "create"
	AuditUpdate AuditAction = "update"
	AuditDelete AuditAction = "delete"
)

// AuditEntry records one committed mutation.
type AuditEntry struct {
	Resource string
	EntityID int64
	Action   AuditAction
	Fields   []string // fields supplied by the caller, empty for delete
	At       time.Time
}

// Key identifies the entity the entry belongs to.
func (e AuditEntry) Key() string {
	return e.Resource + ":" + strconv.FormatInt(e.EntityID, 10)
}
