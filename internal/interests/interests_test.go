package interests

import (
	"context"
	"testing"
)

func TestMemoryDefaults(t *testing.T) {
	m := NewMemory([]string{"AI", "research"})

	got, err := m.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != 2 || got[0] != "AI" {
		t.Errorf("Get() = %v, want the seeded defaults", got)
	}
}

func TestMemorySetReplaces(t *testing.T) {
	m := NewMemory([]string{"AI"})
	ctx := context.Background()

	if err := m.Set(ctx, []string{"databases", "networking"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := m.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != 2 || got[0] != "databases" {
		t.Errorf("Get() = %v, want the replacement list", got)
	}
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	m := NewMemory([]string{"AI"})
	ctx := context.Background()

	got, _ := m.Get(ctx)
	got[0] = "mutated"

	again, _ := m.Get(ctx)
	if again[0] != "AI" {
		t.Error("mutating a Get result must not affect the registry")
	}
}
