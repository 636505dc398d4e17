package command

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"pkt.systems/termclock/schema"
)

// parseNumber parses a float argument. A missing argument, a malformed token
// and an out-of-range value are reported with distinct errors.
func parseNumber(arg string) (float64, error) {
	if arg == "" {
		return 0, schema.ErrMissingArgument
	}
	value, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, schema.ErrInvalidNumericInput
		}
		return 0, fmt.Errorf("%w '%s'", schema.ErrInvalidNumber, arg)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, schema.ErrInvalidNumericInput
	}
	return value, nil
}

func finite(value float64) (float64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, schema.ErrInvalidNumericInput
	}
	return value, nil
}

// Sqrt returns the square root of arg.
func Sqrt(arg string) (float64, error) {
	n, err := parseNumber(arg)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, schema.ErrNegativeRoot
	}
	return math.Sqrt(n), nil
}

// Pow returns base raised to exp.
func Pow(base, exp string) (float64, error) {
	if base == "" || exp == "" {
		return 0, fmt.Errorf("%w: two parameters required", schema.ErrMissingArgument)
	}
	b, err := parseNumber(base)
	if err != nil {
		return 0, err
	}
	e, err := parseNumber(exp)
	if err != nil {
		return 0, err
	}
	return finite(math.Pow(b, e))
}

// Ln returns the natural logarithm of arg.
func Ln(arg string) (float64, error) {
	n, err := parseNumber(arg)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, schema.ErrNonPositiveLog
	}
	return math.Log(n), nil
}

// Log10 returns the base-10 logarithm of arg.
func Log10(arg string) (float64, error) {
	n, err := parseNumber(arg)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, schema.ErrNonPositiveLog
	}
	return math.Log10(n), nil
}

// Trig applies SIN, COS or TAN to an angle given in degrees.
func Trig(name, arg string) (float64, error) {
	if arg == "" {
		return 0, fmt.Errorf("%w: angle in degrees required", schema.ErrMissingArgument)
	}
	deg, err := parseNumber(arg)
	if err != nil {
		return 0, err
	}
	rad := deg * math.Pi / 180
	switch name {
	case "SIN":
		return finite(math.Sin(rad))
	case "COS":
		return finite(math.Cos(rad))
	case "TAN":
		return finite(math.Tan(rad))
	default:
		return 0, fmt.Errorf("unknown function %q", name)
	}
}

// DecToHex converts a signed decimal integer to upper-case hex. Negative
// values are printed as 64-bit two's complement.
func DecToHex(arg string) (string, error) {
	if arg == "" {
		return "", fmt.Errorf("%w: decimal value required", schema.ErrMissingArgument)
	}
	value, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w '%s'", schema.ErrInvalidDecimal, arg)
	}
	return strings.ToUpper(strconv.FormatUint(uint64(value), 16)), nil
}

// HexToDec converts a hex string, with optional 0x prefix, to decimal.
func HexToDec(arg string) (int64, error) {
	if arg == "" {
		return 0, fmt.Errorf("%w: HEX value required", schema.ErrMissingArgument)
	}
	digits := arg
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		digits = digits[2:]
	}
	value, err := strconv.ParseInt(digits, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w '%s'", schema.ErrInvalidHex, arg)
	}
	return value, nil
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', 6, 64)
}
