package catalog

import (
	"fmt"
	"sync"
	"testing"
)

func TestSchemaRejectsDuplicateFieldNames(t *testing.T) {
	s := NewSchema(TypeBook)
	if err := s.AddField(Field{Name: "title"}); err != nil {
		t.Fatalf("add field: %v", err)
	}
	if err := s.AddField(Field{Name: "title"}); err == nil {
		t.Fatal("expected duplicate field error")
	}
}

func TestExtendAllowedGrowsChoiceList(t *testing.T) {
	s := GameSchema()
	if !s.ExtendAllowed("platform", "Nintendo Switch 2") {
		t.Fatal("expected allowed list to grow")
	}
	if s.ExtendAllowed("platform", "Nintendo Switch 2") {
		t.Fatal("expected second extend to be a no-op")
	}
	found := false
	for _, value := range s.Allowed("platform") {
		if value == "Nintendo Switch 2" {
			found = true
		}
	}
	if !found {
		t.Fatal("extended value missing from allowed list")
	}
}

func TestExtendAllowedIgnoresNonChoiceFields(t *testing.T) {
	s := GameSchema()
	if s.ExtendAllowed("title", "anything") {
		t.Fatal("non-choice field must not grow an allowed list")
	}
}

func TestExtendAllowedConcurrentWriters(t *testing.T) {
	s := GameSchema()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.ExtendAllowed("platform", fmt.Sprintf("Platform %d", i%4))
		}(i)
	}
	wg.Wait()

	seen := map[string]int{}
	for _, value := range s.Allowed("platform") {
		seen[value]++
	}
	for value, count := range seen {
		if count > 1 {
			t.Fatalf("value %q appears %d times in allowed list", value, count)
		}
	}
}

func TestRecordSetFieldValidatesSchema(t *testing.T) {
	s := BookSchema()
	rec := NewRecord(s)
	if err := rec.SetField("title", "The Hobbit"); err != nil {
		t.Fatalf("set title: %v", err)
	}
	if err := rec.SetField("platform", "Windows"); err == nil {
		t.Fatal("expected error for field outside schema")
	}
}

func TestRecordChoiceValueRequiresAllowedEntry(t *testing.T) {
	s := GameSchema()
	rec := NewRecord(s)
	if err := rec.SetField("platform", "Nintendo Switch 2"); err == nil {
		t.Fatal("expected unknown platform to be rejected before schema extension")
	}
	s.ExtendAllowed("platform", "Nintendo Switch 2")
	if err := rec.SetField("platform", "Nintendo Switch 2"); err != nil {
		t.Fatalf("set platform after extension: %v", err)
	}
	if rec.Field("platform") != "Nintendo Switch 2" {
		t.Fatalf("unexpected platform %q", rec.Field("platform"))
	}
}

func TestRecordMultiValueRoundTrip(t *testing.T) {
	s := BookSchema()
	rec := NewRecord(s)
	if err := rec.SetValues("author", []string{"Terry Pratchett", "Neil Gaiman"}); err != nil {
		t.Fatalf("set authors: %v", err)
	}
	values := rec.Values("author")
	if len(values) != 2 || values[0] != "Terry Pratchett" || values[1] != "Neil Gaiman" {
		t.Fatalf("unexpected values %v", values)
	}
}

func TestRecordCloneIsIndependent(t *testing.T) {
	s := BookSchema()
	rec := NewRecord(s)
	if err := rec.SetField("title", "Dune"); err != nil {
		t.Fatalf("set title: %v", err)
	}
	clone := rec.Clone()
	if clone.ID() != rec.ID() {
		t.Fatal("clone must keep the record id")
	}
	if err := clone.SetField("title", "Dune Messiah"); err != nil {
		t.Fatalf("set clone title: %v", err)
	}
	if rec.Field("title") != "Dune" {
		t.Fatalf("original mutated: %q", rec.Field("title"))
	}
}

func TestSplitValuesDropsBlanks(t *testing.T) {
	values := SplitValues("a; ; b")
	if len(values) != 2 || values[0] != "a" || values[1] != "b" {
		t.Fatalf("unexpected values %v", values)
	}
}
