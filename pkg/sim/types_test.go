package sim

import (
	"errors"
	"testing"
)

func TestIsZero(t *testing.T) {
	if !(Position{}).IsZero() {
		t.Error("empty Position should be zero")
	}
	if (Position{Heading: Float(180)}).IsZero() {
		t.Error("Position with heading should not be zero")
	}

	if !(Controls{}).IsZero() {
		t.Error("empty Controls should be zero")
	}
	if (Controls{Gear: GearPos(1)}).IsZero() {
		t.Error("Controls with gear should not be zero")
	}
}

func TestValidationErrorIsDistinct(t *testing.T) {
	var err error = &ValidationError{Op: "POSI", Reason: "aircraft out of range"}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatal("errors.As should match ValidationError")
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrMalformedResponse) {
		t.Error("validation errors must not match transport or decode errors")
	}
	if got := err.Error(); got != "POSI: aircraft out of range" {
		t.Errorf("Error() = %q", got)
	}
}

func TestHelpers(t *testing.T) {
	if *Float(1.5) != 1.5 {
		t.Error("Float should point at its argument")
	}
	if *GearPos(1) != 1 {
		t.Error("GearPos should point at its argument")
	}
}
