package uid

import (
	"testing"

	"github.com/google/uuid"
)

func TestSnowflake_Generate(t *testing.T) {
	t.Setenv("SNOWFLAKE_NODE", "7")

	gen, err := NewSnowflake()
	if err != nil {
		t.Fatalf("NewSnowflake() error = %v", err)
	}

	seen := make(map[int64]struct{}, 1000)
	var prev int64
	for range 1000 {
		id := gen.Generate()
		if id <= prev {
			t.Fatalf("ids not increasing: prev=%d got=%d", prev, id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = struct{}{}
		prev = id
	}
}

func TestSnowflake_InvalidNode(t *testing.T) {
	t.Setenv("SNOWFLAKE_NODE", "abc")

	if _, err := NewSnowflake(); err == nil {
		t.Fatal("expected error for non numeric node")
	}
}

func TestUUID_Generate(t *testing.T) {
	id := NewUUID().Generate()

	parsed, err := uuid.Parse(id)
	if err != nil {
		t.Fatalf("uuid.Parse(%q) error = %v", id, err)
	}
	if parsed.Version() != 7 {
		t.Fatalf("version = %d, want 7", parsed.Version())
	}
}
