package mongo

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/marsone/crew-api/internal/core/domain"
)

func TestAuditDoc_BSONLayout(t *testing.T) {
	at := time.Date(2024, 4, 1, 12, 0, 0, 0, time.FixedZone("MSD", 3600))
	doc := toAuditDoc(domain.AuditEntry{
		Resource: "jobs",
		EntityID: 7,
		Action:   domain.AuditUpdate,
		Fields:   []string{"job", "end_date"},
		At:       at,
	}, at)

	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["_id"]; ok {
		t.Fatalf("zero _id must be omitted so the server assigns one")
	}
	if m["resource"] != "jobs" || m["entity_id"] != int64(7) || m["action"] != "update" {
		t.Fatalf("unexpected document: %v", m)
	}

	back := doc.toDomain()
	if !back.At.Equal(at) || back.At.Location() != time.UTC || len(back.Fields) != 2 {
		t.Fatalf("unexpected round trip: %+v", back)
	}
}

func TestAuditRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("record", func(mt *mtest.T) {
		repo := &AuditRepository{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.Record(context.Background(), domain.AuditEntry{
			Resource: "users", EntityID: 3, Action: domain.AuditCreate, At: time.Now(),
		})
		if err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
	})

	mt.Run("record failure", func(mt *mtest.T) {
		repo := &AuditRepository{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "boom"}))

		if err := repo.Record(context.Background(), domain.AuditEntry{Resource: "users", EntityID: 3}); err == nil {
			t.Fatalf("expected error")
		}
	})

	mt.Run("history", func(mt *mtest.T) {
		repo := &AuditRepository{coll: mt.Coll}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch,
				bson.D{{Key: "resource", Value: "jobs"}, {Key: "entity_id", Value: int64(7)}, {Key: "action", Value: "create"}, {Key: "at", Value: first}},
				bson.D{{Key: "resource", Value: "jobs"}, {Key: "entity_id", Value: int64(7)}, {Key: "action", Value: "delete"}, {Key: "at", Value: first.Add(time.Hour)}},
			),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch),
		)

		entries, err := repo.History(context.Background(), "jobs", 7)
		if err != nil {
			t.Fatalf("History returned error: %v", err)
		}
		if len(entries) != 2 || entries[0].Action != domain.AuditCreate || entries[1].Action != domain.AuditDelete {
			t.Fatalf("unexpected history: %+v", entries)
		}
		if !entries[0].At.Equal(first) {
			t.Fatalf("unexpected timestamp %v", entries[0].At)
		}
	})
}
