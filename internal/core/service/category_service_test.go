package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/marsone/crew-api/internal/core/domain"
)

func TestCategoryService_CreateGetList(t *testing.T) {
	store := newStubStore()
	audit := &stubAudit{}
	svc := NewCategoryService(store, Options{Audit: audit, Logger: zerolog.Nop()})

	created, err := svc.Create(context.Background(), "mining")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID == 0 || created.Name != "mining" {
		t.Fatalf("unexpected category: %+v", created)
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if *got != *created {
		t.Fatalf("expected %+v, got %+v", created, got)
	}

	all, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one category, got %d", len(all))
	}

	entries := audit.all()
	if len(entries) != 1 || entries[0].Resource != "categories" || entries[0].Action != domain.AuditCreate {
		t.Fatalf("unexpected audit entries: %+v", entries)
	}
}

func TestCategoryService_GetNotFound(t *testing.T) {
	svc := NewCategoryService(newStubStore(), Options{Logger: zerolog.Nop()})
	_, err := svc.Get(context.Background(), 3)
	assertKind(t, err, domain.ErrNotFound, "category_not_found")
}
