package script

import (
	"math"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"golang.org/x/text/unicode/norm"

	"github.com/dshills/charbuf/internal/engine/buffer"
)

// module implements the buf table.
type module struct {
	buf *buffer.Buffer
}

func newModule(b *buffer.Buffer) *module {
	return &module{buf: b}
}

func (m *module) table(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetFuncs(mod, map[string]lua.LGFunction{
		"text":            m.text,
		"len":             m.bufLen,
		"cap":             m.bufCap,
		"char_at":         m.charAt,
		"code_point_at":   m.codePointAt,
		"substring":       m.substring,
		"index_of":        m.indexOf,
		"last_index_of":   m.lastIndexOf,
		"append":          m.append,
		"append_char":     m.appendChar,
		"insert":          m.insert,
		"delete":          m.delete,
		"delete_char_at":  m.deleteCharAt,
		"replace":         m.replace,
		"set_char_at":     m.setCharAt,
		"set_length":      m.setLength,
		"reverse":         m.reverse,
		"ensure_capacity": m.ensureCapacity,
		"trim":            m.trim,
		"normalize":       m.normalize,
	})
	return mod
}

// check raises a Lua error for a failed buffer operation.
func check(L *lua.LState, op string, err error) {
	if err != nil {
		L.RaiseError("%s: %v", op, err)
	}
}

// text() -> string
func (m *module) text(L *lua.LState) int {
	L.Push(lua.LString(m.buf.String()))
	return 1
}

// len() -> number of code units
func (m *module) bufLen(L *lua.LState) int {
	L.Push(lua.LNumber(m.buf.Len()))
	return 1
}

// cap() -> capacity
func (m *module) bufCap(L *lua.LState) int {
	L.Push(lua.LNumber(m.buf.Cap()))
	return 1
}

// char_at(i) -> code unit
func (m *module) charAt(L *lua.LState) int {
	c, err := m.buf.CharAt(L.CheckInt(1))
	check(L, "char_at", err)
	L.Push(lua.LNumber(c))
	return 1
}

// code_point_at(i) -> code point
func (m *module) codePointAt(L *lua.LState) int {
	cp, err := m.buf.CodePointAt(L.CheckInt(1))
	check(L, "code_point_at", err)
	L.Push(lua.LNumber(cp))
	return 1
}

// substring(start [, end]) -> string
func (m *module) substring(L *lua.LState) int {
	start := L.CheckInt(1)
	var s string
	var err error
	if L.GetTop() >= 2 {
		s, err = m.buf.SubstringRange(start, L.CheckInt(2))
	} else {
		s, err = m.buf.Substring(start)
	}
	check(L, "substring", err)
	L.Push(lua.LString(s))
	return 1
}

// index_of(s [, from]) -> index or -1
func (m *module) indexOf(L *lua.LState) int {
	s := L.CheckString(1)
	if L.GetTop() >= 2 {
		L.Push(lua.LNumber(m.buf.IndexOfFrom(s, L.CheckInt(2))))
	} else {
		L.Push(lua.LNumber(m.buf.IndexOf(s)))
	}
	return 1
}

// last_index_of(s [, from]) -> index or -1
func (m *module) lastIndexOf(L *lua.LState) int {
	s := L.CheckString(1)
	if L.GetTop() >= 2 {
		L.Push(lua.LNumber(m.buf.LastIndexOfFrom(s, L.CheckInt(2))))
	} else {
		L.Push(lua.LNumber(m.buf.LastIndexOf(s)))
	}
	return 1
}

// append(v, ...) appends each argument in its canonical text form.
func (m *module) append(L *lua.LState) int {
	for i := 1; i <= L.GetTop(); i++ {
		m.buf.AppendValue(goValue(L.Get(i)))
	}
	return 0
}

// append_char(c) appends one code unit.
func (m *module) appendChar(L *lua.LState) int {
	m.buf.AppendChar(checkUnit(L, 1))
	return 0
}

// insert(offset, v) inserts v in its canonical text form.
func (m *module) insert(L *lua.LState) int {
	offset := L.CheckInt(1)
	check(L, "insert", m.buf.InsertValue(offset, goValue(L.CheckAny(2))))
	return 0
}

// delete(start, end)
func (m *module) delete(L *lua.LState) int {
	check(L, "delete", m.buf.Delete(L.CheckInt(1), L.CheckInt(2)))
	return 0
}

// delete_char_at(i)
func (m *module) deleteCharAt(L *lua.LState) int {
	check(L, "delete_char_at", m.buf.DeleteCharAt(L.CheckInt(1)))
	return 0
}

// replace(start, end, s)
func (m *module) replace(L *lua.LState) int {
	check(L, "replace", m.buf.Replace(L.CheckInt(1), L.CheckInt(2), L.CheckString(3)))
	return 0
}

// set_char_at(i, c)
func (m *module) setCharAt(L *lua.LState) int {
	check(L, "set_char_at", m.buf.SetCharAt(L.CheckInt(1), checkUnit(L, 2)))
	return 0
}

// set_length(n)
func (m *module) setLength(L *lua.LState) int {
	n := L.CheckInt(1)
	if n > buffer.MaxCapacity {
		L.ArgError(1, "length exceeds maximum capacity")
	}
	check(L, "set_length", m.buf.SetLength(n))
	return 0
}

// reverse()
func (m *module) reverse(L *lua.LState) int {
	m.buf.Reverse()
	return 0
}

// ensure_capacity(n)
func (m *module) ensureCapacity(L *lua.LState) int {
	n := L.CheckInt(1)
	if n > buffer.MaxCapacity {
		L.ArgError(1, "capacity exceeds maximum")
	}
	m.buf.EnsureCapacity(n)
	return 0
}

// trim() shrinks storage to the length.
func (m *module) trim(L *lua.LState) int {
	m.buf.TrimToSize()
	return 0
}

// normalize(form) with form one of NFC, NFD, NFKC, NFKD.
func (m *module) normalize(L *lua.LState) int {
	forms := map[string]norm.Form{
		"NFC":  norm.NFC,
		"NFD":  norm.NFD,
		"NFKC": norm.NFKC,
		"NFKD": norm.NFKD,
	}
	form, ok := forms[strings.ToUpper(L.CheckString(1))]
	if !ok {
		L.ArgError(1, "form must be NFC, NFD, NFKC or NFKD")
	}
	m.buf.Normalize(form)
	return 0
}

func checkUnit(L *lua.LState, n int) uint16 {
	c := L.CheckInt(n)
	if c < 0 || c > math.MaxUint16 {
		L.ArgError(n, "not a UTF-16 code unit")
	}
	return uint16(c)
}

// goValue maps a Lua value onto what buffer.FormatValue expects.
// Integral numbers format as integers, other numbers as float64.
func goValue(v lua.LValue) any {
	switch v := v.(type) {
	case lua.LString:
		return string(v)
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f)
		}
		return f
	case *lua.LNilType:
		return nil
	}
	return v.String()
}
