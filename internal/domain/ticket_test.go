package domain

import (
	"testing"
	"time"
)

func TestFormatCode(t *testing.T) {
	cases := map[int]string{
		1:    "TKT-001",
		42:   "TKT-042",
		999:  "TKT-999",
		1000: "TKT-1000",
	}
	for n, want := range cases {
		if got := FormatCode(n); got != want {
			t.Fatalf("FormatCode(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestParseEquipmentType(t *testing.T) {
	got, ok := ParseEquipmentType("  printer ")
	if !ok || got != EquipmentPrinter {
		t.Fatalf("expected Printer, got %q ok=%v", got, ok)
	}
	if _, ok := ParseEquipmentType("Toaster"); ok {
		t.Fatalf("expected unknown equipment type to be rejected")
	}
}

func TestPriorityValid(t *testing.T) {
	for _, p := range []Priority{0, 4, -1} {
		if p.Valid() {
			t.Fatalf("priority %d should be invalid", p)
		}
	}
	for _, p := range []Priority{PriorityHigh, PriorityMedium, PriorityLow} {
		if !p.Valid() {
			t.Fatalf("priority %d should be valid", p)
		}
	}
	if PriorityMedium.Label() != "2-Medium" {
		t.Fatalf("unexpected label %q", PriorityMedium.Label())
	}
}

func TestDateOf(t *testing.T) {
	in := time.Date(2024, 3, 9, 17, 45, 12, 99, time.FixedZone("X", 3600))
	got := DateOf(in)
	want := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("DateOf = %v, want %v", got, want)
	}
}
