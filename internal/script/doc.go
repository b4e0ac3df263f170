// Package script runs Lua scripts that edit a buffer.
//
// A script sees one global table, buf, bound to the buffer being edited.
// Offsets are zero-based UTF-16 indexes, exactly as in the buffer package:
//
//	buf.insert(0, "say ")
//	buf.append("!", 42, true)
//	if buf.index_of("hello") >= 0 then buf.reverse() end
//
// Only the base, table, string and math libraries are opened. There is no
// file, os or package access. Execution stops when the context is done or
// the timeout expires.
package script
