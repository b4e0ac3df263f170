package buffer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatBool returns "true" or "false".
func FormatBool(v bool) string {
	return strconv.FormatBool(v)
}

// FormatInt returns the decimal form of v.
func FormatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

// FormatFloat32 returns the canonical form of a 32-bit float.
// See FormatFloat64.
func FormatFloat32(v float32) string {
	return formatFloat(float64(v), 32)
}

// FormatFloat64 returns the canonical form of a 64-bit float: "NaN",
// "Infinity", "-Infinity", "0.0", "-0.0"; plain decimal with at least one
// fractional digit when 1e-3 <= |v| < 1e7; scientific "d.dddE±n" otherwise.
// The digits are the shortest that parse back to v.
func FormatFloat64(v float64) string {
	return formatFloat(v, 64)
}

func formatFloat(v float64, bits int) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		if math.Signbit(v) {
			return "-0.0"
		}
		return "0.0"
	}

	if abs := math.Abs(v); abs >= 1e-3 && abs < 1e7 {
		s := strconv.FormatFloat(v, 'f', -1, bits)
		if !strings.ContainsRune(s, '.') {
			s += ".0"
		}
		return s
	}

	// strconv gives "1.234e-05"; rewrite the exponent as "E-5".
	s := strconv.FormatFloat(v, 'e', -1, bits)
	mant, exp, _ := strings.Cut(s, "e")
	if !strings.ContainsRune(mant, '.') {
		// Two significant digits are always printed, so take the closest
		// two-digit decimal. Only subnormals near the minimum differ from
		// the one-digit form with ".0" added (4.9E-324, not 5.0E-324).
		mant, exp, _ = strings.Cut(strconv.FormatFloat(v, 'e', 1, bits), "e")
	}
	e, err := strconv.Atoi(exp)
	if err != nil {
		return s
	}
	return mant + "E" + strconv.Itoa(e)
}

// FormatValue returns the canonical text of v as used by AppendValue:
// nil is "null", primitives use the Format functions, Stringers and
// errors render themselves, and anything else goes through fmt.Sprint.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return FormatBool(x)
	case int:
		return FormatInt(int64(x))
	case int8:
		return FormatInt(int64(x))
	case int16:
		return FormatInt(int64(x))
	case int32:
		return FormatInt(int64(x))
	case int64:
		return FormatInt(x)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case float32:
		return FormatFloat32(x)
	case float64:
		return FormatFloat64(x)
	case fmt.Stringer:
		if isNilStringer(x) {
			return "null"
		}
		return x.String()
	case error:
		return x.Error()
	}
	return fmt.Sprint(v)
}

// valueUnits converts v to code units. Character sequences and []uint16
// are taken as characters rather than formatted.
func valueUnits(v any) []uint16 {
	switch x := v.(type) {
	case []uint16:
		return x
	case CharSequence:
		return unitsOf(x)
	}
	return CharsOf(FormatValue(v))
}

func isNilStringer(s fmt.Stringer) bool {
	switch x := s.(type) {
	case *Buffer:
		return x == nil
	case *Snapshot:
		return x == nil
	}
	return false
}
