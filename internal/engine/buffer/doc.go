// Package buffer provides a thread-safe, growable character buffer.
//
// A Buffer owns a contiguous array of UTF-16 code units and a logical
// length. Appends past the end of the array grow it to
// max(needed, 2*capacity+2), so repeated single-character appends run in
// amortized constant time.
//
// The buffer package provides:
//
//   - Append and insert for strings, characters, character arrays, other
//     character sequences, booleans, integers and floating point values
//   - Delete, replace, set-character, set-length and in-place reverse
//   - Code point aware reads over surrogate pairs
//   - A cached rendering returned by String until the next mutation
//   - A persisted form (Fields) and binary encoding compatible with gob
//
// Basic usage:
//
//	buf, _ := buffer.NewWithCapacity(16)
//	buf.AppendString("hello")
//	_ = buf.InsertString(0, "say ")
//	fmt.Println(buf.String()) // "say hello"
//
// Indexes:
//
// Every index, length and capacity is measured in UTF-16 code units. A
// character outside the Basic Multilingual Plane occupies two units (a
// surrogate pair). CharAt returns raw units; the CodePoint methods combine
// pairs.
//
// Thread Safety:
//
// Every Buffer method runs under a single exclusive lock owned by the
// instance. Reads take the same lock as writes because String fills the
// rendering cache. A Buffer appended to itself, or two buffers appended to
// each other from different goroutines, never deadlock: the source is
// copied before the destination lock is taken.
package buffer
