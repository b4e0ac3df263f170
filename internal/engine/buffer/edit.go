package buffer

import (
	"fmt"
	"io"
	"slices"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Append Operations
//
// Appends cannot fail on their arguments and return the buffer so calls
// chain. The variants that take a range, and AppendCodePoint, return an
// error instead.

// AppendString appends s.
func (b *Buffer) AppendString(s string) *Buffer {
	return b.append(CharsOf(s))
}

// AppendBool appends "true" or "false".
func (b *Buffer) AppendBool(v bool) *Buffer {
	return b.append(CharsOf(FormatBool(v)))
}

// AppendChar appends a single code unit.
func (b *Buffer) AppendChar(c uint16) *Buffer {
	return b.append([]uint16{c})
}

// AppendInt appends the decimal form of a 32-bit integer.
func (b *Buffer) AppendInt(v int32) *Buffer {
	return b.append(CharsOf(FormatInt(int64(v))))
}

// AppendInt64 appends the decimal form of a 64-bit integer.
func (b *Buffer) AppendInt64(v int64) *Buffer {
	return b.append(CharsOf(FormatInt(v)))
}

// AppendFloat32 appends the canonical form of v.
func (b *Buffer) AppendFloat32(v float32) *Buffer {
	return b.append(CharsOf(FormatFloat32(v)))
}

// AppendFloat64 appends the canonical form of v.
func (b *Buffer) AppendFloat64(v float64) *Buffer {
	return b.append(CharsOf(FormatFloat64(v)))
}

// AppendChars appends a copy of chars.
func (b *Buffer) AppendChars(chars []uint16) *Buffer {
	return b.append(chars)
}

// AppendSequence appends the content of seq. A nil seq appends "null".
// seq may be b itself.
func (b *Buffer) AppendSequence(seq CharSequence) *Buffer {
	return b.append(unitsOf(seq))
}

// AppendValue appends the canonical text of v (see FormatValue).
func (b *Buffer) AppendValue(v any) *Buffer {
	return b.append(valueUnits(v))
}

// AppendCharsRange appends chars[offset:offset+n].
func (b *Buffer) AppendCharsRange(chars []uint16, offset, n int) error {
	if err := checkRange("append", offset, offset+n, len(chars)); err != nil {
		return err
	}
	b.append(chars[offset : offset+n])
	return nil
}

// AppendSequenceRange appends seq[start:end].
func (b *Buffer) AppendSequenceRange(seq CharSequence, start, end int) error {
	units, err := rangeUnitsOf("append", seq, start, end)
	if err != nil {
		return err
	}
	b.append(units)
	return nil
}

// AppendCodePoint appends cp as one unit, or as a surrogate pair when it
// lies outside the Basic Multilingual Plane.
// Returns ErrInvalidArgument if cp is not in [0, 0x10FFFF].
func (b *Buffer) AppendCodePoint(cp rune) error {
	units, err := codePointUnits(cp)
	if err != nil {
		return err
	}
	b.append(units)
	return nil
}

func (b *Buffer) append(units []uint16) *Buffer {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.appendLocked(units)
	return b
}

func (b *Buffer) appendLocked(units []uint16) {
	b.ensureCapacityLocked(b.count + len(units))
	copy(b.value[b.count:], units)
	b.count += len(units)
	b.invalidate()
}

// Insert Operations
//
// Every insert fails with ErrIndexOutOfBounds, leaving the buffer
// unchanged, when offset is outside [0, Len()].

// InsertString inserts s at offset.
func (b *Buffer) InsertString(offset int, s string) error {
	return b.insert(offset, CharsOf(s))
}

// InsertBool inserts "true" or "false" at offset.
func (b *Buffer) InsertBool(offset int, v bool) error {
	return b.insert(offset, CharsOf(FormatBool(v)))
}

// InsertChar inserts a single code unit at offset.
func (b *Buffer) InsertChar(offset int, c uint16) error {
	return b.insert(offset, []uint16{c})
}

// InsertInt inserts the decimal form of a 32-bit integer at offset.
func (b *Buffer) InsertInt(offset int, v int32) error {
	return b.insert(offset, CharsOf(FormatInt(int64(v))))
}

// InsertInt64 inserts the decimal form of a 64-bit integer at offset.
func (b *Buffer) InsertInt64(offset int, v int64) error {
	return b.insert(offset, CharsOf(FormatInt(v)))
}

// InsertFloat32 inserts the canonical form of v at offset.
func (b *Buffer) InsertFloat32(offset int, v float32) error {
	return b.insert(offset, CharsOf(FormatFloat32(v)))
}

// InsertFloat64 inserts the canonical form of v at offset.
func (b *Buffer) InsertFloat64(offset int, v float64) error {
	return b.insert(offset, CharsOf(FormatFloat64(v)))
}

// InsertChars inserts a copy of chars at offset.
func (b *Buffer) InsertChars(offset int, chars []uint16) error {
	return b.insert(offset, chars)
}

// InsertCharsRange inserts chars[offset:offset+n] at index.
func (b *Buffer) InsertCharsRange(index int, chars []uint16, offset, n int) error {
	if err := checkRange("insert", offset, offset+n, len(chars)); err != nil {
		return err
	}
	return b.insert(index, chars[offset:offset+n])
}

// InsertSequence inserts the content of seq at offset. A nil seq inserts
// "null". seq may be b itself.
func (b *Buffer) InsertSequence(offset int, seq CharSequence) error {
	return b.insert(offset, unitsOf(seq))
}

// InsertSequenceRange inserts seq[start:end] at offset.
func (b *Buffer) InsertSequenceRange(offset int, seq CharSequence, start, end int) error {
	units, err := rangeUnitsOf("insert", seq, start, end)
	if err != nil {
		return err
	}
	return b.insert(offset, units)
}

// InsertValue inserts the canonical text of v (see FormatValue) at offset.
func (b *Buffer) InsertValue(offset int, v any) error {
	return b.insert(offset, valueUnits(v))
}

func (b *Buffer) insert(offset int, units []uint16) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := checkOffset("insert", offset, b.count); err != nil {
		return err
	}
	n := len(units)
	b.ensureCapacityLocked(b.count + n)
	copy(b.value[offset+n:], b.value[offset:b.count])
	copy(b.value[offset:], units)
	b.count += n
	b.invalidate()
	return nil
}

// Delete, Replace and In-Place Operations

// Delete removes [start, end). end is clamped to Len(); start must satisfy
// 0 <= start <= end.
func (b *Buffer) Delete(start, end int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	end, err := clampedRange("delete", start, end, b.count)
	if err != nil {
		return err
	}
	b.deleteLocked(start, end)
	return nil
}

// DeleteCharAt removes the unit at index.
func (b *Buffer) DeleteCharAt(index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := checkIndex("deleteCharAt", index, b.count); err != nil {
		return err
	}
	b.deleteLocked(index, index+1)
	return nil
}

func (b *Buffer) deleteLocked(start, end int) {
	if n := end - start; n > 0 {
		copy(b.value[start:], b.value[end:b.count])
		b.count -= n
	}
	b.invalidate()
}

// Replace replaces [start, end) with s, under the same range rule as
// Delete.
func (b *Buffer) Replace(start, end int, s string) error {
	units := CharsOf(s)

	b.mu.Lock()
	defer b.mu.Unlock()

	end, err := clampedRange("replace", start, end, b.count)
	if err != nil {
		return err
	}
	newCount := b.count + len(units) - (end - start)
	b.ensureCapacityLocked(newCount)
	copy(b.value[start+len(units):], b.value[end:b.count])
	copy(b.value[start:], units)
	b.count = newCount
	b.invalidate()
	return nil
}

// SetCharAt overwrites the unit at index.
func (b *Buffer) SetCharAt(index int, c uint16) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := checkIndex("setCharAt", index, b.count); err != nil {
		return err
	}
	b.value[index] = c
	b.invalidate()
	return nil
}

// Reverse reverses the buffer in place. Surrogate pairs stay in
// high-low order so each supplementary character survives intact.
func (b *Buffer) Reverse() *Buffer {
	b.mu.Lock()
	defer b.mu.Unlock()

	units := b.value[:b.count]
	slices.Reverse(units)
	for i := 0; i < len(units)-1; i++ {
		if isLow(units[i]) && isHigh(units[i+1]) {
			units[i], units[i+1] = units[i+1], units[i]
			i++
		}
	}
	b.invalidate()
	return b
}

// Normalize rewrites the content into the given Unicode normalization
// form. Unpaired surrogates are replaced by U+FFFD.
func (b *Buffer) Normalize(form norm.Form) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := form.String(string(utf16.Decode(b.value[:b.count])))
	b.count = 0
	b.appendLocked(CharsOf(s))
}

// Writer Interface

// Write appends p decoded as UTF-8. Invalid bytes become U+FFFD.
// It always returns len(p), nil.
func (b *Buffer) Write(p []byte) (int, error) {
	b.append(CharsOf(string(p)))
	return len(p), nil
}

// WriteString appends s. It always returns len(s), nil.
func (b *Buffer) WriteString(s string) (int, error) {
	b.append(CharsOf(s))
	return len(s), nil
}

// WriteRune appends r and returns its UTF-8 length.
func (b *Buffer) WriteRune(r rune) (int, error) {
	if !utf8.ValidRune(r) {
		r = utf8.RuneError
	}
	b.append(utf16.AppendRune(nil, r))
	return utf8.RuneLen(r), nil
}

// ReadFrom appends everything read from r, decoded as UTF-8.
func (b *Buffer) ReadFrom(r io.Reader) (int64, error) {
	// Read all content first so multi-byte sequences split across reads
	// decode correctly.
	data, err := io.ReadAll(r)
	if len(data) > 0 {
		b.append(CharsOf(string(data)))
	}
	return int64(len(data)), err
}

func codePointUnits(cp rune) ([]uint16, error) {
	switch {
	case cp < 0 || cp > utf8.MaxRune:
		return nil, fmt.Errorf("code point %#x: %w", cp, ErrInvalidArgument)
	case cp < 0x10000:
		return []uint16{uint16(cp)}, nil
	}
	r1, r2 := utf16.EncodeRune(cp)
	return []uint16{uint16(r1), uint16(r2)}, nil
}
