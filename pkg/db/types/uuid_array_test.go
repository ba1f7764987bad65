package dbtypes

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDArrayRoundTrip(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	arr := UUIDArray{a, b}

	value, err := arr.Value()
	if err != nil {
		t.Fatalf("value failed: %v", err)
	}

	var decoded UUIDArray
	if err := decoded.Scan(value); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(decoded) != 2 || decoded[0] != a || decoded[1] != b {
		t.Fatalf("round trip mismatch: %v", decoded)
	}
}

func TestUUIDArrayEmptyAndNil(t *testing.T) {
	var arr UUIDArray
	value, err := arr.Value()
	if err != nil {
		t.Fatalf("value failed: %v", err)
	}
	if value != "{}" {
		t.Fatalf("expected empty literal, got %v", value)
	}

	var decoded UUIDArray
	if err := decoded.Scan(nil); err != nil {
		t.Fatalf("scan nil failed: %v", err)
	}
	if len(decoded) != 0 {
		t.Fatalf("expected empty array, got %v", decoded)
	}
}

func TestUUIDArrayContains(t *testing.T) {
	a := uuid.New()
	arr := UUIDArray{a}
	if !arr.Contains(a) {
		t.Fatal("expected membership")
	}
	if arr.Contains(uuid.New()) {
		t.Fatal("unexpected membership")
	}
}

func TestUUIDArrayRejectsGarbage(t *testing.T) {
	var decoded UUIDArray
	if err := decoded.Scan("{not-a-uuid}"); err == nil {
		t.Fatal("expected parse error")
	}
}
