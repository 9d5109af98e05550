package codegen

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// pyStr returns s as a single-quoted Python string literal.
func pyStr(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\x%02x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// pyFloat returns f as a Python float literal. Integral values keep a
// trailing ".0" so every size and offset reads as a float.
func pyFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "float('nan')"
	case math.IsInf(f, 1):
		return "float('inf')"
	case math.IsInf(f, -1):
		return "-float('inf')"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".en") {
		s += ".0"
	}
	return s
}

// pyInt returns an integral value without a decimal point.
func pyInt(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func pyStrList(ss []string) string {
	parts := make([]string, len(ss))
	for i, s := range ss {
		parts[i] = pyStr(s)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func pyIntList(fs []float64) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = pyInt(f)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// column returns the expression selecting a column of df.
func column(name string) string { return "df[" + pyStr(name) + "]" }

// colorName is the palette color reference for series i.
func colorName(i int) string { return pyStr(fmt.Sprintf("C%d", i%10)) }

// shifted returns expr moved by off, written as "expr + off" or "expr - off".
func shifted(expr string, off float64) string {
	switch {
	case off > 0:
		return expr + " + " + pyFloat(off)
	case off < 0:
		return expr + " - " + pyFloat(-off)
	}
	return expr
}
