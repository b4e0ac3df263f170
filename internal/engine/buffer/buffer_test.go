package buffer

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

const grin = "\U0001F600" // two code units: D83D DE00

func TestNew(t *testing.T) {
	b := New()

	if !b.IsEmpty() {
		t.Error("new buffer should be empty")
	}
	if b.Len() != 0 {
		t.Errorf("expected length 0, got %d", b.Len())
	}
	if b.Cap() != DefaultCapacity {
		t.Errorf("expected capacity %d, got %d", DefaultCapacity, b.Cap())
	}
}

func TestNewWithCapacity(t *testing.T) {
	b, err := NewWithCapacity(4)
	if err != nil {
		t.Fatalf("NewWithCapacity failed: %v", err)
	}
	if b.Cap() != 4 || b.Len() != 0 {
		t.Errorf("got cap=%d len=%d, want cap=4 len=0", b.Cap(), b.Len())
	}

	_, err = NewWithCapacity(-1)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestNewString(t *testing.T) {
	b := NewString("hello")

	if b.String() != "hello" {
		t.Errorf("expected hello, got %q", b.String())
	}
	if b.Cap() != 5+SeedSlack {
		t.Errorf("expected capacity %d, got %d", 5+SeedSlack, b.Cap())
	}
}

func TestNewSequence(t *testing.T) {
	src := NewString("seed")
	b := NewSequence(src)
	src.AppendString("!")

	if b.String() != "seed" {
		t.Errorf("expected seed, got %q", b.String())
	}
	if NewSequence(nil).String() != "null" {
		t.Error("nil sequence should seed \"null\"")
	}
}

func TestSayHello(t *testing.T) {
	b, err := NewWithCapacity(16)
	if err != nil {
		t.Fatal(err)
	}
	b.AppendString("hello")
	if err := b.InsertString(0, "say "); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if b.String() != "say hello" {
		t.Fatalf("expected %q, got %q", "say hello", b.String())
	}

	data, err := b.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	restored := New()
	if err := restored.UnmarshalBinary(data); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if restored.String() != "say hello" {
		t.Errorf("after round trip expected %q, got %q", "say hello", restored.String())
	}
	if restored.Cap() != b.Cap() {
		t.Errorf("capacity not preserved: got %d, want %d", restored.Cap(), b.Cap())
	}
}

func TestEnsureCapacity(t *testing.T) {
	tests := []struct {
		name    string
		initial int
		min     int
		want    int
	}{
		{"no-op below", 16, 10, 16},
		{"no-op equal", 16, 16, 16},
		{"doubling wins", 16, 17, 34},
		{"min wins", 16, 100, 100},
		{"zero grows to slack", 0, 1, 2},
		{"negative ignored", 16, -5, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := NewWithCapacity(tt.initial)
			b.EnsureCapacity(tt.min)
			if got := b.Cap(); got != tt.want {
				t.Errorf("capacity = %d, want %d", got, tt.want)
			}
			if b.Cap() < tt.initial {
				t.Error("capacity decreased")
			}
		})
	}
}

func TestAppendGrowth(t *testing.T) {
	b := New()
	b.AppendString(strings.Repeat("x", 17))

	if b.Cap() != 34 {
		t.Errorf("expected capacity 34 after overflow, got %d", b.Cap())
	}
	if b.Len() != 17 {
		t.Errorf("expected length 17, got %d", b.Len())
	}
}

func TestTrimToSize(t *testing.T) {
	b := NewString("hello")
	b.TrimToSize()

	if b.Cap() != 5 {
		t.Errorf("expected capacity 5, got %d", b.Cap())
	}
	if b.String() != "hello" {
		t.Errorf("trim lost content: %q", b.String())
	}

	b.TrimToSize()
	if b.Cap() != 5 {
		t.Errorf("second trim changed capacity to %d", b.Cap())
	}
}

func TestSetLength(t *testing.T) {
	b := NewString("hello")

	if err := b.SetLength(3); err != nil {
		t.Fatalf("SetLength(3) failed: %v", err)
	}
	if b.String() != "hel" {
		t.Errorf("expected hel, got %q", b.String())
	}

	if err := b.SetLength(7); err != nil {
		t.Fatalf("SetLength(7) failed: %v", err)
	}
	if b.Len() != 7 {
		t.Errorf("expected length 7, got %d", b.Len())
	}
	if b.String() != "hel\x00\x00\x00\x00" {
		t.Errorf("expected NUL fill, got %q", b.String())
	}
	if b.Cap() < 7 {
		t.Errorf("capacity %d below length", b.Cap())
	}

	err := b.SetLength(-1)
	if !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("expected ErrIndexOutOfBounds, got %v", err)
	}
}

func TestSetLengthGrows(t *testing.T) {
	b := NewString("abc")
	b.TrimToSize()

	if err := b.SetLength(7); err != nil {
		t.Fatal(err)
	}
	if b.Cap() != 8 {
		t.Errorf("expected capacity 8, got %d", b.Cap())
	}
}

func TestAppendCanonicalForms(t *testing.T) {
	tests := []struct {
		name   string
		append func(*Buffer)
		want   string
	}{
		{"bool", func(b *Buffer) { b.AppendBool(true) }, "true"},
		{"char", func(b *Buffer) { b.AppendChar('x') }, "x"},
		{"int", func(b *Buffer) { b.AppendInt(-42) }, "-42"},
		{"int64", func(b *Buffer) { b.AppendInt64(1 << 40) }, "1099511627776"},
		{"float32", func(b *Buffer) { b.AppendFloat32(1.5) }, "1.5"},
		{"float64 sci", func(b *Buffer) { b.AppendFloat64(1e10) }, "1.0E10"},
		{"float64 plain", func(b *Buffer) { b.AppendFloat64(100) }, "100.0"},
		{"chars", func(b *Buffer) { b.AppendChars([]uint16{'h', 'i'}) }, "hi"},
		{"sequence", func(b *Buffer) { b.AppendSequence(NewString("seq")) }, "seq"},
		{"nil sequence", func(b *Buffer) { b.AppendSequence(nil) }, "null"},
		{"nil value", func(b *Buffer) { b.AppendValue(nil) }, "null"},
		{"stringer value", func(b *Buffer) { b.AppendValue(NewString("s")) }, "s"},
		{"int value", func(b *Buffer) { b.AppendValue(7) }, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewString("pre:")
			before := b.String()
			tt.append(b)
			if got := b.String(); got != before+tt.want {
				t.Errorf("got %q, want %q", got, before+tt.want)
			}
		})
	}
}

func TestAppendTypedNilBuffer(t *testing.T) {
	var nb *Buffer
	b := New()
	b.AppendSequence(nb)

	if b.String() != "null" {
		t.Errorf("expected null, got %q", b.String())
	}
}

func TestAppendSelf(t *testing.T) {
	b := NewString("ab")
	b.AppendSequence(b)

	if b.String() != "abab" {
		t.Errorf("expected abab, got %q", b.String())
	}

	if err := b.InsertSequence(2, b); err != nil {
		t.Fatal(err)
	}
	if b.String() != "abababab" {
		t.Errorf("unexpected self insert result %q", b.String())
	}
}

func TestAppendRanges(t *testing.T) {
	b := New()

	if err := b.AppendCharsRange([]uint16{'a', 'b', 'c', 'd'}, 1, 2); err != nil {
		t.Fatal(err)
	}
	if err := b.AppendSequenceRange(NewString("wxyz"), 2, 4); err != nil {
		t.Fatal(err)
	}
	if b.String() != "bcyz" {
		t.Errorf("expected bcyz, got %q", b.String())
	}

	err := b.AppendCharsRange([]uint16{'a'}, 0, 2)
	if !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("expected ErrIndexOutOfBounds, got %v", err)
	}
	err = b.AppendSequenceRange(NewString("ab"), 2, 1)
	if !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("expected ErrIndexOutOfBounds, got %v", err)
	}
	if b.String() != "bcyz" {
		t.Errorf("failed append modified buffer: %q", b.String())
	}
}

func TestAppendCodePoint(t *testing.T) {
	b := New()

	if err := b.AppendCodePoint('A'); err != nil {
		t.Fatal(err)
	}
	if err := b.AppendCodePoint(0x1F600); err != nil {
		t.Fatal(err)
	}
	if b.Len() != 3 {
		t.Errorf("expected 3 units, got %d", b.Len())
	}
	if b.String() != "A"+grin {
		t.Errorf("got %q", b.String())
	}

	for _, cp := range []rune{-1, 0x110000} {
		if err := b.AppendCodePoint(cp); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("AppendCodePoint(%#x): expected ErrInvalidArgument, got %v", cp, err)
		}
	}
}

func TestInsert(t *testing.T) {
	b := NewString("Hello World")

	if err := b.InsertString(5, ","); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := b.InsertInt(0, 1); err != nil {
		t.Fatal(err)
	}
	if err := b.InsertBool(b.Len(), false); err != nil {
		t.Fatal(err)
	}
	if err := b.InsertChar(1, ' '); err != nil {
		t.Fatal(err)
	}
	if err := b.InsertFloat64(0, 0.5); err != nil {
		t.Fatal(err)
	}
	if err := b.InsertCharsRange(0, []uint16{'x', '>', 'y'}, 1, 1); err != nil {
		t.Fatal(err)
	}

	want := ">0.51 Hello, Worldfalse"
	if b.String() != want {
		t.Errorf("expected %q, got %q", want, b.String())
	}
}

func TestInsertOutOfRange(t *testing.T) {
	b := NewString("Hello")

	for _, offset := range []int{-1, 6, 100} {
		err := b.InsertString(offset, "X")
		if !errors.Is(err, ErrIndexOutOfBounds) {
			t.Errorf("offset %d: expected ErrIndexOutOfBounds, got %v", offset, err)
		}
	}
	if b.String() != "Hello" {
		t.Errorf("failed insert modified buffer: %q", b.String())
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		want       string
		wantErr    bool
	}{
		{"middle", 1, 3, "hlo", false},
		{"clamp end", 2, 100, "he", false},
		{"empty at end", 5, 10, "hello", false},
		{"empty", 2, 2, "hello", false},
		{"start after end", 3, 2, "hello", true},
		{"negative start", -1, 2, "hello", true},
		{"start past length", 6, 10, "hello", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewString("hello")
			err := b.Delete(tt.start, tt.end)
			if tt.wantErr {
				if !errors.Is(err, ErrIndexOutOfBounds) {
					t.Errorf("expected ErrIndexOutOfBounds, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if b.String() != tt.want {
				t.Errorf("got %q, want %q", b.String(), tt.want)
			}
		})
	}
}

func TestDeleteInsertRestores(t *testing.T) {
	original := "hello, wörld " + grin + "!"
	n := len(utf16.Encode([]rune(original)))

	for start := 0; start <= n; start++ {
		for end := start; end <= n; end++ {
			b := NewString(original)
			removed, err := b.SubSequence(start, end)
			if err != nil {
				t.Fatalf("SubSequence(%d, %d): %v", start, end, err)
			}
			if err := b.Delete(start, end); err != nil {
				t.Fatalf("Delete(%d, %d): %v", start, end, err)
			}
			if err := b.InsertSequence(start, removed); err != nil {
				t.Fatalf("InsertSequence(%d): %v", start, err)
			}
			if b.String() != original {
				t.Fatalf("delete/insert [%d,%d) gave %q", start, end, b.String())
			}
		}
	}
}

func TestDeleteCharAt(t *testing.T) {
	b := NewString("abc")

	if err := b.DeleteCharAt(1); err != nil {
		t.Fatal(err)
	}
	if b.String() != "ac" {
		t.Errorf("expected ac, got %q", b.String())
	}
	if err := b.DeleteCharAt(2); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("expected ErrIndexOutOfBounds, got %v", err)
	}
}

func TestReplace(t *testing.T) {
	b := NewString("hello world")

	if err := b.Replace(0, 5, "goodbye"); err != nil {
		t.Fatal(err)
	}
	if b.String() != "goodbye world" {
		t.Errorf("got %q", b.String())
	}

	if err := b.Replace(8, 100, "there"); err != nil {
		t.Fatal(err)
	}
	if b.String() != "goodbye there" {
		t.Errorf("got %q", b.String())
	}

	if err := b.Replace(0, 13, ""); err != nil {
		t.Fatal(err)
	}
	if !b.IsEmpty() {
		t.Errorf("expected empty, got %q", b.String())
	}

	if err := b.Replace(1, 2, "x"); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("expected ErrIndexOutOfBounds, got %v", err)
	}
}

func TestSetCharAt(t *testing.T) {
	b := NewString("cat")

	if err := b.SetCharAt(0, 'b'); err != nil {
		t.Fatal(err)
	}
	if b.String() != "bat" {
		t.Errorf("expected bat, got %q", b.String())
	}
	if err := b.SetCharAt(3, 'x'); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("expected ErrIndexOutOfBounds, got %v", err)
	}
}

func TestReverse(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"a", "a"},
		{"abc", "cba"},
		{"abc" + grin + "d", "d" + grin + "cba"},
		{grin + grin, grin + grin},
		{"été", "été"},
	}

	for _, tt := range tests {
		b := NewString(tt.in)
		b.Reverse()
		if b.String() != tt.want {
			t.Errorf("Reverse(%q) = %q, want %q", tt.in, b.String(), tt.want)
		}
		b.Reverse()
		if b.String() != tt.in {
			t.Errorf("double reverse of %q gave %q", tt.in, b.String())
		}
	}
}

func TestCharAt(t *testing.T) {
	b := NewString("abc")

	c, err := b.CharAt(1)
	if err != nil || c != 'b' {
		t.Errorf("CharAt(1) = %q, %v", c, err)
	}

	_, err = b.CharAt(3)
	var ie *IndexError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *IndexError, got %v", err)
	}
	if ie.Op != "charAt" || ie.Start != 3 || ie.Length != 3 {
		t.Errorf("unexpected error details: %+v", ie)
	}
}

func TestCodePoints(t *testing.T) {
	b := NewString("a" + grin + "b")

	cp, err := b.CodePointAt(1)
	if err != nil || cp != 0x1F600 {
		t.Errorf("CodePointAt(1) = %#x, %v", cp, err)
	}
	cp, _ = b.CodePointAt(2)
	if cp != 0xDE00 {
		t.Errorf("CodePointAt(2) = %#x, want low surrogate", cp)
	}

	cp, err = b.CodePointBefore(3)
	if err != nil || cp != 0x1F600 {
		t.Errorf("CodePointBefore(3) = %#x, %v", cp, err)
	}
	if _, err := b.CodePointBefore(0); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("CodePointBefore(0): expected ErrIndexOutOfBounds, got %v", err)
	}

	n, err := b.CodePointCount(0, b.Len())
	if err != nil || n != 3 {
		t.Errorf("CodePointCount = %d, %v; want 3", n, err)
	}
	n, _ = b.CodePointCount(2, 4)
	if n != 2 {
		t.Errorf("CodePointCount over split pair = %d, want 2", n)
	}
}

func TestOffsetByCodePoints(t *testing.T) {
	b := NewString("a" + grin + "b")

	tests := []struct {
		index, offset, want int
		wantErr             bool
	}{
		{0, 0, 0, false},
		{0, 1, 1, false},
		{0, 2, 3, false},
		{0, 3, 4, false},
		{0, 4, 0, true},
		{4, -1, 3, false},
		{3, -1, 1, false},
		{3, -3, 0, true},
		{5, 0, 0, true},
	}

	for _, tt := range tests {
		got, err := b.OffsetByCodePoints(tt.index, tt.offset)
		if tt.wantErr {
			if !errors.Is(err, ErrIndexOutOfBounds) {
				t.Errorf("OffsetByCodePoints(%d, %d): expected error, got %d", tt.index, tt.offset, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("OffsetByCodePoints(%d, %d) = %d, %v; want %d", tt.index, tt.offset, got, err, tt.want)
		}
	}
}

func TestGetChars(t *testing.T) {
	b := NewString("hello")
	dst := make([]uint16, 4)

	if err := b.GetChars(1, 4, dst, 1); err != nil {
		t.Fatal(err)
	}
	if Chars(dst).String() != "\x00ell" {
		t.Errorf("got %q", Chars(dst).String())
	}

	if err := b.GetChars(0, 5, dst, 0); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("short destination: expected ErrIndexOutOfBounds, got %v", err)
	}
	if err := b.GetChars(2, 6, dst, 0); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("source past length: expected ErrIndexOutOfBounds, got %v", err)
	}
}

func TestSubstring(t *testing.T) {
	b := NewString("hello world")

	s, err := b.Substring(6)
	if err != nil || s != "world" {
		t.Errorf("Substring(6) = %q, %v", s, err)
	}
	s, err = b.SubstringRange(0, 5)
	if err != nil || s != "hello" {
		t.Errorf("SubstringRange(0, 5) = %q, %v", s, err)
	}

	for _, r := range [][2]int{{-1, 2}, {3, 2}, {0, 12}} {
		if _, err := b.SubstringRange(r[0], r[1]); !errors.Is(err, ErrIndexOutOfBounds) {
			t.Errorf("SubstringRange(%d, %d): expected ErrIndexOutOfBounds, got %v", r[0], r[1], err)
		}
	}
	if _, err := b.Substring(12); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("Substring(12): expected ErrIndexOutOfBounds, got %v", err)
	}
}

func TestSubSequenceIsCopy(t *testing.T) {
	b := NewString("hello")
	sub, err := b.SubSequence(1, 4)
	if err != nil {
		t.Fatal(err)
	}
	_ = b.SetCharAt(1, 'a')

	if sub.String() != "ell" {
		t.Errorf("subsequence changed with buffer: %q", sub.String())
	}
	inner, err := sub.SubSequence(1, 2)
	if err != nil || inner.String() != "l" {
		t.Errorf("nested SubSequence = %v, %v", inner, err)
	}
}

func TestIndexOf(t *testing.T) {
	b := NewString("hello hello")

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"first", b.IndexOf("llo"), 2},
		{"from", b.IndexOfFrom("llo", 3), 8},
		{"from negative", b.IndexOfFrom("h", -5), 0},
		{"missing", b.IndexOf("xyz"), NotFound},
		{"empty", b.IndexOf(""), 0},
		{"empty past end", b.IndexOfFrom("", 100), 11},
		{"from past end", b.IndexOfFrom("h", 100), NotFound},
		{"last", b.LastIndexOf("llo"), 8},
		{"last from", b.LastIndexOfFrom("llo", 7), 2},
		{"last from negative", b.LastIndexOfFrom("h", -1), NotFound},
		{"last empty", b.LastIndexOf(""), 11},
		{"needle too long", b.LastIndexOf(strings.Repeat("h", 20)), NotFound},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, tt.got, tt.want)
		}
	}
}

func TestStringCache(t *testing.T) {
	b := NewString("abc")

	first := b.String()
	if !b.cached {
		t.Fatal("String should fill the cache")
	}
	if second := b.String(); second != first {
		t.Errorf("cached rendering differs: %q vs %q", second, first)
	}

	mutations := []func(){
		func() { b.AppendString("d") },
		func() { _ = b.InsertString(0, "z") },
		func() { _ = b.Delete(0, 1) },
		func() { _ = b.SetCharAt(0, 'A') },
		func() { _ = b.Replace(0, 1, "a") },
		func() { b.Reverse() },
		func() { _ = b.SetLength(2) },
	}
	for i, mutate := range mutations {
		_ = b.String()
		mutate()
		if b.cached {
			t.Errorf("mutation %d did not invalidate the cache", i)
		}
	}
	if b.String() != "dc" {
		t.Errorf("final content %q, want dc", b.String())
	}
}

func TestWriterInterface(t *testing.T) {
	b := New()
	fmt.Fprintf(b, "%d-%s", 7, "x")
	_, _ = b.WriteRune('é')
	_, _ = b.ReadFrom(strings.NewReader(" tail"))

	if b.String() != "7-xé tail" {
		t.Errorf("got %q", b.String())
	}
}

func TestNormalize(t *testing.T) {
	b := NewString("e\u0301")
	b.Normalize(norm.NFC)

	if b.Len() != 1 || b.String() != "é" {
		t.Errorf("NFC gave %q (len %d)", b.String(), b.Len())
	}
}

func TestEqualCompare(t *testing.T) {
	a := NewString("abc")
	b := NewString("abd")

	if !a.Equal(CharsOf("abc")) {
		t.Error("expected equal content")
	}
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Error("unexpected ordering")
	}
	if !a.Same(a) || a.Same(NewString("abc")) {
		t.Error("identity comparison wrong")
	}

	null := NewString("null")
	var none *Buffer
	if null.Equal(nil) || null.Equal(none) {
		t.Error("nil must not equal a buffer holding \"null\"")
	}
	if null.Compare(nil) != 1 || NewString("").Compare(nil) != 1 {
		t.Error("nil should sort before every buffer")
	}
	var _ Object = a
}

func TestMetrics(t *testing.T) {
	b := NewString("a" + grin + "\n")
	m := b.Metrics()

	if m.Chars != 4 || m.CodePoints != 3 || m.Graphemes != 3 || m.Lines != 1 {
		t.Errorf("unexpected metrics: %+v", m)
	}
	if m.Flags.Has(FlagASCII) {
		t.Error("content is not ASCII")
	}
	if !m.Flags.Has(FlagHasSurrogates | FlagHasNewlines) {
		t.Errorf("missing flags: %b", m.Flags)
	}

	if w := NewString("a" + grin).Metrics().Width; w != 3 {
		t.Errorf("width = %d, want 3", w)
	}
}

func TestConcurrentAppend(t *testing.T) {
	b := New()
	const workers = 8
	const perWorker = 500

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(letter byte) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				b.AppendString(string([]byte{letter, letter}))
			}
		}(byte('a' + w))
	}
	wg.Wait()

	if b.Len() != workers*perWorker*2 {
		t.Fatalf("expected length %d, got %d", workers*perWorker*2, b.Len())
	}

	s := b.String()
	for w := 0; w < workers; w++ {
		letter := string(rune('a' + w))
		if n := strings.Count(s, letter); n != perWorker*2 {
			t.Errorf("letter %s appears %d times, want %d", letter, n, perWorker*2)
		}
	}
	// Each append is atomic, so every pair stays adjacent.
	for i := 0; i < len(s); i += 2 {
		if s[i] != s[i+1] {
			t.Fatalf("interleaved append at %d: %q", i, s[i:i+2])
		}
	}
}

func TestConcurrentReadWrite(t *testing.T) {
	b := NewString("seed")
	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				b.AppendString("x")
				_ = b.Delete(0, 1)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if n := b.Len(); n < 4 || n > 8 {
					t.Errorf("observed length %d outside [4, 8]", n)
				}
				_ = b.String()
				_ = b.Metrics()
			}
		}()
	}
	wg.Wait()

	if b.Len() != 4 {
		t.Errorf("expected length 4, got %d", b.Len())
	}
}

func TestCrossAppendNoDeadlock(t *testing.T) {
	a := NewString("a")
	b := NewString("b")
	var wg sync.WaitGroup

	// Each append reads one unit of the other buffer under its lock, then
	// writes under its own.
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := a.AppendSequenceRange(b, 0, 1); err != nil {
				t.Error(err)
			}
		}()
		go func() {
			defer wg.Done()
			if err := b.AppendSequenceRange(a, 0, 1); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if a.Len() != 101 || b.Len() != 101 {
		t.Errorf("lengths %d and %d, want 101", a.Len(), b.Len())
	}
	if s := a.String(); strings.Trim(s[1:], "b") != "" {
		t.Errorf("a = %q, want a followed by b", s)
	}
}

