package interpreter

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies the dynamic type of a Value.
type Kind int

const (
	KindAbsent Kind = iota
	KindNumber
	KindString
	KindBoolean
)

var kindNames = map[Kind]string{
	KindAbsent:  "ausente",
	KindNumber:  "numero",
	KindString:  "cadena",
	KindBoolean: "booleano",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "desconocido"
}

// Value is a runtime value. The zero Value is Absent.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
}

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Boolean returns a boolean value.
func Boolean(b bool) Value { return Value{kind: KindBoolean, b: b} }

// Absent returns the value of statements that produce nothing.
func Absent() Value { return Value{} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// Float converts v to a number: booleans become 0 or 1, Absent becomes 0 and
// strings are parsed as decimal literals (blank strings are 0, anything else
// unparsable is NaN).
func (v Value) Float() float64 {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindBoolean:
		if v.b {
			return 1
		}
		return 0
	case KindString:
		return stringToNumber(v.str)
	}
	return 0
}

// Truthy reports whether v selects the then-branch of a conditional.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNumber:
		return v.num != 0 && !math.IsNaN(v.num)
	case KindString:
		return v.str != ""
	case KindBoolean:
		return v.b
	}
	return false
}

// String returns the textual form used by imprime and by string
// concatenation.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return FormatNumber(v.num)
	case KindString:
		return v.str
	case KindBoolean:
		if v.b {
			return "true"
		}
		return "false"
	}
	return ""
}

// Equal is strict identity: both sides must have the same kind and value.
// NaN is not equal to itself.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == other.num
	case KindString:
		return v.str == other.str
	case KindBoolean:
		return v.b == other.b
	}
	return true
}

// Native converts v into a plain Go value suitable for encoding/json.
// Non-finite numbers and Absent map to nil.
func (v Value) Native() interface{} {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return nil
		}
		return v.num
	case KindString:
		return v.str
	case KindBoolean:
		return v.b
	}
	return nil
}

// FormatNumber renders f the way results are shown to users: integral
// values without a fractional part, plain decimals between 1e-6 and 1e21,
// exponent notation outside that range.
//
// Examples:
//   - 24 -> "24"
//   - 0.5 -> "0.5"
//   - 1e21 -> "1e+21"
//   - 1e-7 -> "1e-7"
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	n, _ := strconv.Atoi(exp)
	if n < 0 {
		return mantissa + "e-" + strconv.Itoa(-n)
	}
	return mantissa + "e+" + strconv.Itoa(n)
}

var (
	decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
	hexLiteral     = regexp.MustCompile(`^0[xX][0-9a-fA-F]+$`)
)

func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if decimalLiteral.MatchString(s) {
		f, _ := strconv.ParseFloat(s, 64)
		return f
	}
	if hexLiteral.MatchString(s) {
		n, err := strconv.ParseUint(s[2:], 16, 64)
		if err == nil {
			return float64(n)
		}
	}
	return math.NaN()
}
