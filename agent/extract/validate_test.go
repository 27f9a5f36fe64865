package extract

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeOrderID(t *testing.T) {
	t.Parallel()

	got, err := NormalizeOrderID("abc123456")
	if err != nil {
		t.Fatalf("NormalizeOrderID() error = %v", err)
	}
	if got != "ABC123456" {
		t.Fatalf("NormalizeOrderID() = %q, want %q", got, "ABC123456")
	}

	got, err = NormalizeOrderID("  ord999  ")
	if err != nil {
		t.Fatalf("NormalizeOrderID() error = %v", err)
	}
	if got != "ORD999" {
		t.Fatalf("NormalizeOrderID() = %q, want %q", got, "ORD999")
	}
}

func TestNormalizeOrderIDRejectsShort(t *testing.T) {
	t.Parallel()

	if _, err := NormalizeOrderID("AB1"); err == nil {
		t.Fatal("expected error for 3-char order id")
	}
}

func TestNormalizeOrderIDRejectsEmpty(t *testing.T) {
	t.Parallel()

	if _, err := NormalizeOrderID("   "); !errors.Is(err, ErrEmptyOrderID) {
		t.Fatalf("expected ErrEmptyOrderID, got %v", err)
	}
}

func TestNormalizeOrderIDRejectsTooLongAndSymbols(t *testing.T) {
	t.Parallel()

	if _, err := NormalizeOrderID("ABCDEF1234567"); err == nil {
		t.Fatal("expected error for 13-char order id")
	}
	if _, err := NormalizeOrderID("ORD-12345"); err == nil {
		t.Fatal("expected error for order id with symbols")
	}
}

func TestNormalizeCategory(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Category
	}{
		{"shipping", CategoryShipping},
		{"SHIPPING", CategoryShipping},
		{"envío", CategoryShipping},
		{"envio", CategoryShipping},
		{"facturación", CategoryBilling},
		{"pago", CategoryBilling},
		{"técnico", CategoryTechnical},
		{"otro", CategoryOther},
		{"  Billing  ", CategoryBilling},
	}
	for _, tc := range cases {
		got, err := NormalizeCategory(tc.in)
		if err != nil {
			t.Fatalf("NormalizeCategory(%q) error = %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizeCategory(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeCategoryRejectsUnknown(t *testing.T) {
	t.Parallel()

	if _, err := NormalizeCategory("returns"); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestNormalizeUrgency(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Urgency
	}{
		{"low", UrgencyLow},
		{"HIGH", UrgencyHigh},
		{"urgente", UrgencyHigh},
		{"media", UrgencyMedium},
		{"baja", UrgencyLow},
		{"alta", UrgencyHigh},
	}
	for _, tc := range cases {
		got, err := NormalizeUrgency(tc.in)
		if err != nil {
			t.Fatalf("NormalizeUrgency(%q) error = %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizeUrgency(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeUrgencyRejectsUnknown(t *testing.T) {
	t.Parallel()

	if _, err := NormalizeUrgency("maybe"); !errors.Is(err, ErrInvalidUrgency) {
		t.Fatalf("expected ErrInvalidUrgency, got %v", err)
	}
}

func TestNormalizeDescription(t *testing.T) {
	t.Parallel()

	got, err := NormalizeDescription("  my package never arrived  ", 10)
	if err != nil {
		t.Fatalf("NormalizeDescription() error = %v", err)
	}
	if got != "my package never arrived" {
		t.Fatalf("NormalizeDescription() = %q", got)
	}

	if _, err := NormalizeDescription("too short", 10); err == nil {
		t.Fatal("expected error for short description")
	}
	if _, err := NormalizeDescription("   ", 10); !errors.Is(err, ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription, got %v", err)
	}
}

func TestNormalizeDescriptionDefaultMinimum(t *testing.T) {
	t.Parallel()

	if _, err := NormalizeDescription("short one", 0); err == nil {
		t.Fatal("expected default minimum of 10 to reject 9-char text")
	}
	long := strings.Repeat("x", 10)
	if _, err := NormalizeDescription(long, 0); err != nil {
		t.Fatalf("NormalizeDescription() error = %v", err)
	}
}
