package emlisp

import (
	"fmt"
	"strconv"
	"strings"
)

// Write renders v as script-surface text, grounded on
// original_source/src/reader.cpp's runtime::write. Closures and extern
// values print as an opaque `#closure<...>`/`<...>` tag carrying their
// tagged value word in hex, since neither has a meaningful
// surface-syntax literal.
func (rt *Runtime) Write(v Value) string {
	var sb strings.Builder
	rt.writeTo(&sb, v)
	return sb.String()
}

func (rt *Runtime) writeTo(sb *strings.Builder, v Value) {
	switch v.Tag() {
	case TagNil:
		sb.WriteString("#n")
	case TagBool:
		if v == TRUE {
			sb.WriteString("#t")
		} else {
			sb.WriteString("#f")
		}
	case TagInt:
		sb.WriteString(strconv.FormatInt(v.Int(), 10))
	case TagFloat:
		sb.WriteString(strconv.FormatFloat(float64(v.Float()), 'g', -1, 32))
	case TagSymbol:
		sb.WriteString(rt.SymbolName(v))
	case TagString:
		sb.WriteByte('"')
		for _, c := range []byte(rt.String(v)) {
			switch c {
			case '\\', '"':
				sb.WriteByte('\\')
				sb.WriteByte(c)
			case '\n':
				sb.WriteString(`\n`)
			case '\t':
				sb.WriteString(`\t`)
			default:
				sb.WriteByte(c)
			}
		}
		sb.WriteByte('"')
	case TagFVec:
		sb.WriteString("#v(")
		n := rt.FVecLen(v)
		for i := 0; i < n; i++ {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.FormatFloat(float64(rt.FVecGet(v, i)), 'g', -1, 32))
		}
		sb.WriteByte(')')
	case TagPair:
		sb.WriteByte('(')
		rt.writeTo(sb, rt.Car(v))
		cur := rt.Cdr(v)
		for cur.Tag() == TagPair {
			sb.WriteByte(' ')
			rt.writeTo(sb, rt.Car(cur))
			cur = rt.Cdr(cur)
		}
		if cur != NIL {
			sb.WriteString(" . ")
			rt.writeTo(sb, cur)
		}
		sb.WriteByte(')')
	case TagClosure:
		fmt.Fprintf(sb, "#closure<%x>", uint64(v))
	case TagExtern:
		fmt.Fprintf(sb, "<%x>", uint64(v))
	}
}
