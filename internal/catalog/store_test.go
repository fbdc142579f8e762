package catalog

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(context.Background(), filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	schema := BookSchema()

	rec := NewRecord(schema)
	if err := rec.SetField("title", "The Left Hand of Darkness"); err != nil {
		t.Fatalf("set title: %v", err)
	}
	if err := rec.SetField("isbn", "978-0-441-47812-5"); err != nil {
		t.Fatalf("set isbn: %v", err)
	}
	if err := store.Put(ctx, rec); err != nil {
		t.Fatalf("put: %v", err)
	}

	loaded, err := store.Get(ctx, schema, rec.ID())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Field("title") != "The Left Hand of Darkness" {
		t.Fatalf("unexpected title %q", loaded.Field("title"))
	}
	if loaded.Field("isbn") != "978-0-441-47812-5" {
		t.Fatalf("unexpected isbn %q", loaded.Field("isbn"))
	}
}

func TestStoreListFiltersByType(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	book := NewRecord(BookSchema())
	if err := book.SetField("title", "Hyperion"); err != nil {
		t.Fatalf("set title: %v", err)
	}
	game := NewRecord(GameSchema())
	if err := game.SetField("title", "Outer Wilds"); err != nil {
		t.Fatalf("set title: %v", err)
	}
	for _, rec := range []*Record{book, game} {
		if err := store.Put(ctx, rec); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	books, err := store.List(ctx, BookSchema())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(books) != 1 || books[0].Field("title") != "Hyperion" {
		t.Fatalf("unexpected book list %v", books)
	}

	count, err := store.Count(ctx, TypeGame)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 game, got %d", count)
	}
}

func TestStorePutUpdatesExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	schema := BookSchema()

	rec := NewRecord(schema)
	if err := rec.SetField("title", "Draft"); err != nil {
		t.Fatalf("set title: %v", err)
	}
	if err := store.Put(ctx, rec); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := rec.SetField("title", "Final"); err != nil {
		t.Fatalf("update title: %v", err)
	}
	if err := store.Put(ctx, rec); err != nil {
		t.Fatalf("put update: %v", err)
	}

	loaded, err := store.Get(ctx, schema, rec.ID())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Field("title") != "Final" {
		t.Fatalf("expected updated title, got %q", loaded.Field("title"))
	}
	count, err := store.Count(ctx, TypeBook)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected single record, got %d", count)
	}
}

func TestStoreDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	schema := BookSchema()

	rec := NewRecord(schema)
	if err := rec.SetField("title", "Gone"); err != nil {
		t.Fatalf("set title: %v", err)
	}
	if err := store.Put(ctx, rec); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Delete(ctx, rec.ID()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, schema, rec.ID()); err == nil {
		t.Fatal("expected not-found error after delete")
	}
}
