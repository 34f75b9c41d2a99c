package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/marsone/crew-api/internal/core/domain"
	"github.com/marsone/crew-api/internal/core/ports"
)

const auditCollection = "audit_events"

// AuditRepository stores the audit trail in a MongoDB collection.
type AuditRepository struct {
	coll *mongo.Collection
}

var (
	_ ports.AuditRecorder = (*AuditRepository)(nil)
	_ ports.AuditReader   = (*AuditRepository)(nil)
)

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type auditDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Resource   string             `bson:"resource"`
	EntityID   int64              `bson:"entity_id"`
	Action     string             `bson:"action"`
	Fields     []string           `bson:"fields,omitempty"`
	At         time.Time          `bson:"at"`
	RecordedAt time.Time          `bson:"recorded_at"`
}

// EnsureIndexes creates the lookup index on (resource, entity_id, at).
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "resource", Value: 1}, {Key: "entity_id", Value: 1}, {Key: "at", Value: 1}},
		Options: options.Index().SetName("resource_entity_at"),
	})
	if err != nil {
		return fmt.Errorf("create audit index: %w", err)
	}
	return nil
}

// Record persists entry.
func (r *AuditRepository) Record(ctx context.Context, entry domain.AuditEntry) error {
	if _, err := r.coll.InsertOne(ctx, toAuditDoc(entry, time.Now().UTC())); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// History returns the entries recorded for one entity, oldest first.
func (r *AuditRepository) History(ctx context.Context, resource string, id int64) ([]domain.AuditEntry, error) {
	filter := bson.M{"resource": resource, "entity_id": id}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find audit entries: %w", err)
	}
	defer cur.Close(ctx)

	var docs []auditDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode audit entries: %w", err)
	}
	out := make([]domain.AuditEntry, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func toAuditDoc(e domain.AuditEntry, recordedAt time.Time) auditDoc {
	return auditDoc{
		Resource:   e.Resource,
		EntityID:   e.EntityID,
		Action:     string(e.Action),
		Fields:     e.Fields,
		At:         e.At.UTC(),
		RecordedAt: recordedAt,
	}
}

func (d auditDoc) toDomain() domain.AuditEntry {
	return domain.AuditEntry{
		Resource: d.Resource,
		EntityID: d.EntityID,
		Action:   domain.AuditAction(d.Action),
		Fields:   d.Fields,
		At:       d.At.UTC(),
	}
}
