package command

import (
	"errors"
	"math"
	"testing"

	"pkt.systems/termclock/schema"
)

func TestParseNumberErrors(t *testing.T) {
	cases := []struct {
		arg  string
		want error
	}{
		{"", schema.ErrMissingArgument},
		{"abc", schema.ErrInvalidNumber},
		{"1e999", schema.ErrInvalidNumericInput},
		{"NaN", schema.ErrInvalidNumericInput},
		{"inf", schema.ErrInvalidNumericInput},
	}
	for _, tc := range cases {
		if _, err := parseNumber(tc.arg); !errors.Is(err, tc.want) {
			t.Fatalf("%q: expected %v, got %v", tc.arg, tc.want, err)
		}
	}
}

func TestSqrtAndLogDomains(t *testing.T) {
	if _, err := Sqrt("-4"); !errors.Is(err, schema.ErrNegativeRoot) {
		t.Fatalf("expected ErrNegativeRoot, got %v", err)
	}
	if v, err := Sqrt("0"); err != nil || v != 0 {
		t.Fatalf("expected sqrt(0)=0, got %v %v", v, err)
	}
	for _, arg := range []string{"0", "-1"} {
		if _, err := Ln(arg); !errors.Is(err, schema.ErrNonPositiveLog) {
			t.Fatalf("ln(%s): expected ErrNonPositiveLog, got %v", arg, err)
		}
		if _, err := Log10(arg); !errors.Is(err, schema.ErrNonPositiveLog) {
			t.Fatalf("log10(%s): expected ErrNonPositiveLog, got %v", arg, err)
		}
	}
}

func TestPowRequiresBothArguments(t *testing.T) {
	if _, err := Pow("2", ""); !errors.Is(err, schema.ErrMissingArgument) {
		t.Fatalf("expected ErrMissingArgument, got %v", err)
	}
	v, err := Pow("2", "0.5")
	if err != nil {
		t.Fatalf("Pow: %v", err)
	}
	if math.Abs(v-math.Sqrt2) > 1e-12 {
		t.Fatalf("unexpected 2^0.5 = %v", v)
	}
}

func TestTrigUsesDegrees(t *testing.T) {
	v, err := Trig("SIN", "30")
	if err != nil {
		t.Fatalf("Trig: %v", err)
	}
	if formatFloat(v) != "0.500000" {
		t.Fatalf("unexpected sin(30) = %s", formatFloat(v))
	}
	v, err = Trig("TAN", "45")
	if err != nil {
		t.Fatalf("Trig: %v", err)
	}
	if formatFloat(v) != "1.000000" {
		t.Fatalf("unexpected tan(45) = %s", formatFloat(v))
	}
}

func TestHexConversions(t *testing.T) {
	hex, err := DecToHex("4096")
	if err != nil || hex != "1000" {
		t.Fatalf("expected 1000, got %q %v", hex, err)
	}
	if _, err := DecToHex("12.5"); !errors.Is(err, schema.ErrInvalidDecimal) {
		t.Fatalf("expected ErrInvalidDecimal, got %v", err)
	}
	dec, err := HexToDec("0XfF")
	if err != nil || dec != 255 {
		t.Fatalf("expected 255, got %d %v", dec, err)
	}
	if _, err := HexToDec("0x"); !errors.Is(err, schema.ErrInvalidHex) {
		t.Fatalf("expected ErrInvalidHex, got %v", err)
	}
}
