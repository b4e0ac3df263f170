package buffer

import (
	"slices"
	"unicode/utf16"
)

// Read Operations

// CharAt returns the code unit at index.
func (b *Buffer) CharAt(index int) (uint16, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := checkIndex("charAt", index, b.count); err != nil {
		return 0, err
	}
	return b.value[index], nil
}

// CodePointAt returns the code point starting at index. A surrogate pair
// is combined; an unpaired surrogate is returned as itself.
func (b *Buffer) CodePointAt(index int) (rune, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := checkIndex("codePointAt", index, b.count); err != nil {
		return 0, err
	}
	return codePointAt(b.value[:b.count], index), nil
}

// CodePointBefore returns the code point ending just before index.
// Valid indexes are 1 through Len().
func (b *Buffer) CodePointBefore(index int) (rune, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 1 || index > b.count {
		return 0, indexError("codePointBefore", index, b.count)
	}
	return codePointBefore(b.value[:b.count], index), nil
}

// CodePointCount returns the number of code points in [begin, end).
// Each surrogate pair counts once; unpaired surrogates count once each.
func (b *Buffer) CodePointCount(begin, end int) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := checkRange("codePointCount", begin, end, b.count); err != nil {
		return 0, err
	}
	return codePointCount(b.value[begin:end]), nil
}

// OffsetByCodePoints returns the index that is offset code points away
// from index. Negative offsets move backwards.
func (b *Buffer) OffsetByCodePoints(index, offset int) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := checkOffset("offsetByCodePoints", index, b.count); err != nil {
		return 0, err
	}

	units := b.value[:b.count]
	x := index
	if offset >= 0 {
		for i := 0; i < offset; i++ {
			if x >= len(units) {
				return 0, indexError("offsetByCodePoints", x, b.count)
			}
			x++
			if isHigh(units[x-1]) && x < len(units) && isLow(units[x]) {
				x++
			}
		}
		return x, nil
	}
	for i := offset; i < 0; i++ {
		if x <= 0 {
			return 0, indexError("offsetByCodePoints", x, b.count)
		}
		x--
		if isLow(units[x]) && x > 0 && isHigh(units[x-1]) {
			x--
		}
	}
	return x, nil
}

// GetChars copies units [srcBegin, srcEnd) into dst starting at dstBegin.
func (b *Buffer) GetChars(srcBegin, srcEnd int, dst []uint16, dstBegin int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := checkRange("getChars", srcBegin, srcEnd, b.count); err != nil {
		return err
	}
	n := srcEnd - srcBegin
	if dstBegin < 0 || dstBegin > len(dst) || n > len(dst)-dstBegin {
		return rangeError("getChars", dstBegin, dstBegin+n, len(dst))
	}
	copy(dst[dstBegin:], b.value[srcBegin:srcEnd])
	return nil
}

// Substring returns the content from start to the end of the buffer.
func (b *Buffer) Substring(start int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := checkRange("substring", start, b.count, b.count); err != nil {
		return "", err
	}
	return string(utf16.Decode(b.value[start:b.count])), nil
}

// SubstringRange returns the content in [start, end).
func (b *Buffer) SubstringRange(start, end int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := checkRange("substring", start, end, b.count); err != nil {
		return "", err
	}
	return string(utf16.Decode(b.value[start:end])), nil
}

// SubSequence returns an immutable copy of [start, end).
func (b *Buffer) SubSequence(start, end int) (*Snapshot, error) {
	units, err := b.rangeUnits("subSequence", start, end)
	if err != nil {
		return nil, err
	}
	return &Snapshot{units: units}, nil
}

// IndexOf returns the index of the first occurrence of s, or NotFound.
func (b *Buffer) IndexOf(s string) int {
	return b.IndexOfFrom(s, 0)
}

// IndexOfFrom returns the index of the first occurrence of s at or after
// from, or NotFound. A negative from searches the whole buffer.
func (b *Buffer) IndexOfFrom(s string, from int) int {
	needle := CharsOf(s)
	b.mu.Lock()
	defer b.mu.Unlock()
	return indexOf(b.value[:b.count], needle, from)
}

// LastIndexOf returns the index of the last occurrence of s, or NotFound.
func (b *Buffer) LastIndexOf(s string) int {
	needle := CharsOf(s)
	b.mu.Lock()
	defer b.mu.Unlock()
	return lastIndexOf(b.value[:b.count], needle, b.count)
}

// LastIndexOfFrom returns the index of the last occurrence of s that
// starts at or before from, or NotFound.
func (b *Buffer) LastIndexOfFrom(s string, from int) int {
	needle := CharsOf(s)
	b.mu.Lock()
	defer b.mu.Unlock()
	return lastIndexOf(b.value[:b.count], needle, from)
}

func isHigh(c uint16) bool { return c >= 0xD800 && c < 0xDC00 }
func isLow(c uint16) bool  { return c >= 0xDC00 && c < 0xE000 }

func codePointAt(units []uint16, i int) rune {
	c := units[i]
	if isHigh(c) && i+1 < len(units) && isLow(units[i+1]) {
		return utf16.DecodeRune(rune(c), rune(units[i+1]))
	}
	return rune(c)
}

func codePointBefore(units []uint16, i int) rune {
	c := units[i-1]
	if isLow(c) && i-2 >= 0 && isHigh(units[i-2]) {
		return utf16.DecodeRune(rune(units[i-2]), rune(c))
	}
	return rune(c)
}

func codePointCount(units []uint16) int {
	n := len(units)
	for i := 0; i < len(units)-1; i++ {
		if isHigh(units[i]) && isLow(units[i+1]) {
			n--
			i++
		}
	}
	return n
}

func indexOf(src, needle []uint16, from int) int {
	if from >= len(src) {
		if len(needle) == 0 {
			return len(src)
		}
		return NotFound
	}
	if from < 0 {
		from = 0
	}
	if len(needle) == 0 {
		return from
	}
	last := len(src) - len(needle)
	for i := from; i <= last; i++ {
		if src[i] == needle[0] && slices.Equal(src[i:i+len(needle)], needle) {
			return i
		}
	}
	return NotFound
}

func lastIndexOf(src, needle []uint16, from int) int {
	right := len(src) - len(needle)
	if from < 0 {
		return NotFound
	}
	if from > right {
		from = right
	}
	if from < 0 {
		return NotFound
	}
	if len(needle) == 0 {
		return from
	}
	for i := from; i >= 0; i-- {
		if src[i] == needle[0] && slices.Equal(src[i:i+len(needle)], needle) {
			return i
		}
	}
	return NotFound
}
