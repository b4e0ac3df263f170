package buffer

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// TextSummary holds aggregated metrics for the buffer content.
type TextSummary struct {
	// Chars is the UTF-16 code unit count (the buffer length).
	Chars int

	// CodePoints counts surrogate pairs once.
	CodePoints int

	// Graphemes is the number of user-perceived characters.
	Graphemes int

	// Bytes is the UTF-8 length of the rendering.
	Bytes int

	// Lines is the number of newline characters.
	Lines int

	// Width is the terminal display width of the rendering.
	Width int

	// Flags indicate text properties.
	Flags TextFlags
}

// TextFlags indicate text properties.
type TextFlags uint8

const (
	// FlagASCII indicates all characters are ASCII (< 128).
	FlagASCII TextFlags = 1 << iota

	// FlagHasNewlines indicates the text contains newline characters.
	FlagHasNewlines

	// FlagHasSurrogates indicates the content holds surrogate code units.
	FlagHasSurrogates
)

// Metrics summarizes the current content.
func (b *Buffer) Metrics() TextSummary {
	b.mu.Lock()
	units := make([]uint16, b.count)
	copy(units, b.value[:b.count])
	b.mu.Unlock()

	return summarize(units)
}

// Metrics summarizes the snapshot content.
func (s *Snapshot) Metrics() TextSummary {
	return summarize(s.units)
}

func summarize(units []uint16) TextSummary {
	text := string(utf16.Decode(units))
	sum := TextSummary{
		Chars:      len(units),
		CodePoints: codePointCount(units),
		Graphemes:  uniseg.GraphemeClusterCount(text),
		Bytes:      len(text),
		Lines:      strings.Count(text, "\n"),
		Width:      runewidth.StringWidth(text),
		Flags:      FlagASCII,
	}
	for _, c := range units {
		if c >= utf8.RuneSelf {
			sum.Flags &^= FlagASCII
		}
		if utf16.IsSurrogate(rune(c)) {
			sum.Flags |= FlagHasSurrogates
		}
	}
	if sum.Lines > 0 {
		sum.Flags |= FlagHasNewlines
	}
	return sum
}

// Has reports whether all bits of flag are set.
func (f TextFlags) Has(flag TextFlags) bool {
	return f&flag == flag
}
