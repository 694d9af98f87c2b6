package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"datalens/domain/core"
	"datalens/domain/dataset"
)

func newDataset(name string, createdAt time.Time) *dataset.Dataset {
	return &dataset.Dataset{
		ID:               core.NewDatasetID(),
		OriginalFilename: name,
		MimeType:         "text/csv",
		Source:           "csv",
		Status:           dataset.StatusReady,
		CreatedAt:        createdAt,
	}
}

func TestDatasetRepository_CreateAndGet(t *testing.T) {
	repo := NewDatasetRepository()
	ctx := context.Background()

	ds := newDataset("sales.csv", time.Now())
	if err := repo.Create(ctx, ds); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, ds.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.OriginalFilename != "sales.csv" {
		t.Errorf("expected sales.csv, got %s", got.OriginalFilename)
	}

	// stored copy must not alias the caller's struct
	got.OriginalFilename = "mutated.csv"
	again, _ := repo.GetByID(ctx, ds.ID)
	if again.OriginalFilename != "sales.csv" {
		t.Error("repository returned an aliased dataset")
	}
}

func TestDatasetRepository_GetMissing(t *testing.T) {
	repo := NewDatasetRepository()

	_, err := repo.GetByID(context.Background(), core.NewDatasetID())
	if !errors.Is(err, core.ErrDatasetNotFound) {
		t.Errorf("expected ErrDatasetNotFound, got %v", err)
	}
}

func TestDatasetRepository_ListNewestFirst(t *testing.T) {
	repo := NewDatasetRepository()
	ctx := context.Background()

	base := time.Now()
	for i, name := range []string{"a.csv", "b.csv", "c.csv"} {
		ds := newDataset(name, base.Add(time.Duration(i)*time.Minute))
		if err := repo.Create(ctx, ds); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	all, err := repo.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 datasets, got %d", len(all))
	}
	if all[0].OriginalFilename != "c.csv" || all[2].OriginalFilename != "a.csv" {
		t.Errorf("expected newest first, got %s..%s", all[0].OriginalFilename, all[2].OriginalFilename)
	}

	page, err := repo.List(ctx, 1, 1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page) != 1 || page[0].OriginalFilename != "b.csv" {
		t.Errorf("expected second page [b.csv], got %+v", page)
	}
}

func TestDatasetRepository_Update(t *testing.T) {
	repo := NewDatasetRepository()
	ctx := context.Background()

	ds := newDataset("raw.csv", time.Now())
	if err := repo.Create(ctx, ds); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	ds.RecordCount = 500
	ds.Status = dataset.StatusReady
	if err := repo.Update(ctx, ds); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := repo.GetByID(ctx, ds.ID)
	if got.RecordCount != 500 {
		t.Errorf("expected record count 500, got %d", got.RecordCount)
	}

	missing := newDataset("ghost.csv", time.Now())
	if err := repo.Update(ctx, missing); !errors.Is(err, core.ErrDatasetNotFound) {
		t.Errorf("expected ErrDatasetNotFound for unknown update, got %v", err)
	}
}

func TestDatasetRepository_Delete(t *testing.T) {
	repo := NewDatasetRepository()
	ctx := context.Background()

	ds := newDataset("gone.csv", time.Now())
	if err := repo.Create(ctx, ds); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Delete(ctx, ds.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.GetByID(ctx, ds.ID); !errors.Is(err, core.ErrDatasetNotFound) {
		t.Errorf("expected dataset gone, got %v", err)
	}
}
