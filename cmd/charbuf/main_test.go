package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dshills/charbuf/internal/engine/persist"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func charbuf(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	// Keep a user config file out of the way.
	args = append([]string{"-config", filepath.Join(t.TempDir(), "none.toml")}, args...)
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestEncodeRender(t *testing.T) {
	dir := t.TempDir()

	for _, name := range persist.Names() {
		out := filepath.Join(dir, "hello"+persist.Extension(name))

		if r := charbuf(t, "say hello", "encode", "-", out); r.code != 0 {
			t.Fatalf("%s: encode exited %d: %s", name, r.code, r.stderr)
		}

		r := charbuf(t, "", "render", out)
		if r.code != 0 {
			t.Fatalf("%s: render exited %d: %s", name, r.code, r.stderr)
		}
		if r.stdout != "say hello" {
			t.Errorf("%s: render = %q, want %q", name, r.stdout, "say hello")
		}
	}
}

func TestEncodeUTF16(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	// "hé" as UTF-16LE with a byte order mark
	if err := os.WriteFile(in, []byte{0xFF, 0xFE, 'h', 0, 0xE9, 0}, 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.json")

	if r := charbuf(t, "", "encode", "-encoding", "utf-16le", "-trim", in, out); r.code != 0 {
		t.Fatalf("encode exited %d: %s", r.code, r.stderr)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if got := gjson.GetBytes(data, "value").Raw; got != "[104,233]" {
		t.Errorf("value = %s, want [104,233]", got)
	}
}

func TestEncodeFormatFlagBeatsExtension(t *testing.T) {
	out := filepath.Join(t.TempDir(), "buf.json")

	if r := charbuf(t, "x", "encode", "-format", "yaml", "-", out); r.code != 0 {
		t.Fatalf("encode exited %d: %s", r.code, r.stderr)
	}
	if _, err := persist.Load(out, persist.YAML); err != nil {
		t.Errorf("expected yaml content: %v", err)
	}
}

func TestRenderUnknownExtensionUsesFormat(t *testing.T) {
	out := filepath.Join(t.TempDir(), "buf.dat")

	if r := charbuf(t, "plain", "encode", "-format", "toml", "-", out); r.code != 0 {
		t.Fatalf("encode exited %d: %s", r.code, r.stderr)
	}
	if r := charbuf(t, "", "render", "-format", "toml", out); r.code != 0 || r.stdout != "plain" {
		t.Errorf("render = %q (exit %d): %s", r.stdout, r.code, r.stderr)
	}
	// The configured default is binary, which cannot read a toml file.
	if r := charbuf(t, "", "render", out); r.code != 1 {
		t.Errorf("render with default format exited %d, want 1", r.code)
	}
}

func TestInspect(t *testing.T) {
	out := filepath.Join(t.TempDir(), "buf.cbuf")
	if r := charbuf(t, "a\U0001F600\n", "encode", "-trim", "-", out); r.code != 0 {
		t.Fatalf("encode exited %d: %s", r.code, r.stderr)
	}

	r := charbuf(t, "", "inspect", "-json", out)
	if r.code != 0 {
		t.Fatalf("inspect exited %d: %s", r.code, r.stderr)
	}

	checks := map[string]int64{
		"length":     4,
		"capacity":   4,
		"codePoints": 3,
		"lines":      1,
		"width":      3,
	}
	for key, want := range checks {
		if got := gjson.Get(r.stdout, key).Int(); got != want {
			t.Errorf("%s = %d, want %d", key, got, want)
		}
	}
	if !gjson.Get(r.stdout, "surrogates").Bool() {
		t.Error("surrogates = false, want true")
	}
	if gjson.Get(r.stdout, "format").String() != "binary" {
		t.Errorf("format = %s", gjson.Get(r.stdout, "format").String())
	}

	r = charbuf(t, "", "inspect", out)
	if !strings.Contains(r.stdout, "capacity") {
		t.Errorf("table output missing capacity: %q", r.stdout)
	}
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, word := range []string{"one", "two", "three"} {
		path := filepath.Join(dir, word+".cbuf")
		if r := charbuf(t, word, "encode", "-", path); r.code != 0 {
			t.Fatalf("encode exited %d: %s", r.code, r.stderr)
		}
		files = append(files, path)
	}

	args := append([]string{"-workers", "2", "convert", "-to", "toml"}, files...)
	r := charbuf(t, "", args...)
	if r.code != 0 {
		t.Fatalf("convert exited %d: %s", r.code, r.stderr)
	}

	for _, word := range []string{"one", "two", "three"} {
		out := filepath.Join(dir, word+".toml")
		if !strings.Contains(r.stdout, out) {
			t.Errorf("output list missing %s", out)
		}
		b, err := persist.Load(out, persist.TOML)
		if err != nil {
			t.Fatalf("loading %s: %v", out, err)
		}
		if b.String() != word {
			t.Errorf("%s = %q, want %q", out, b.String(), word)
		}
	}
}

func TestConvertFailure(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"count":1}`), 0o644); err != nil {
		t.Fatal(err)
	}

	r := charbuf(t, "", "convert", "-to", "binary", bad)
	if r.code != 1 {
		t.Errorf("exit code = %d, want 1", r.code)
	}
	if !strings.Contains(r.stderr, "corrupt") {
		t.Errorf("stderr = %q", r.stderr)
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no command", nil, 2},
		{"unknown command", []string{"frobnicate"}, 2},
		{"bad flag", []string{"-nope"}, 2},
		{"help", []string{"-h"}, 0},
		{"version", []string{"-version"}, 0},
		{"encode arity", []string{"encode", "only-one"}, 1},
		{"bad format", []string{"render", "-format", "xml", "x.bin"}, 1},
		{"bad encoding", []string{"encode", "-encoding", "latin-1", "-", "x.cbuf"}, 1},
		{"bad log level", []string{"-log-level", "loud", "render", "x.bin"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if r := charbuf(t, "", tt.args...); r.code != tt.code {
				t.Errorf("exit code = %d, want %d (stderr %q)", r.code, tt.code, r.stderr)
			}
		})
	}
}

func TestEdit(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "buf.json")
	if r := charbuf(t, "hello", "encode", "-", in); r.code != 0 {
		t.Fatalf("encode exited %d: %s", r.code, r.stderr)
	}

	r := charbuf(t, "", "edit", "-e", `buf.insert(0, "say "); print(buf.len())`, in)
	if r.code != 0 {
		t.Fatalf("edit exited %d: %s", r.code, r.stderr)
	}
	if r.stdout != "9\n" {
		t.Errorf("script output = %q", r.stdout)
	}
	if r := charbuf(t, "", "render", in); r.stdout != "say hello" {
		t.Errorf("edited content = %q", r.stdout)
	}

	script := filepath.Join(dir, "rev.lua")
	if err := os.WriteFile(script, []byte("buf.reverse()\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "rev.yaml")
	if r := charbuf(t, "", "edit", "-script", script, "-o", out, in); r.code != 0 {
		t.Fatalf("edit exited %d: %s", r.code, r.stderr)
	}
	b, err := persist.Load(out, persist.YAML)
	if err != nil {
		t.Fatal(err)
	}
	if b.String() != "olleh yas" {
		t.Errorf("reversed = %q", b.String())
	}
}

func TestEditScriptErrorLeavesFile(t *testing.T) {
	in := filepath.Join(t.TempDir(), "buf.cbuf")
	if r := charbuf(t, "keep", "encode", "-", in); r.code != 0 {
		t.Fatalf("encode exited %d: %s", r.code, r.stderr)
	}

	r := charbuf(t, "", "edit", "-e", `buf.append("x"); error("stop")`, in)
	if r.code != 1 {
		t.Errorf("exit code = %d, want 1", r.code)
	}
	if r := charbuf(t, "", "render", in); r.stdout != "keep" {
		t.Errorf("content = %q, want unchanged", r.stdout)
	}

	if r := charbuf(t, "", "edit", in); r.code != 1 {
		t.Errorf("edit without a script: exit code = %d, want 1", r.code)
	}
}

func TestWatchStopsOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.toml")
	if r := charbuf(t, "watched", "encode", "-", path); r.code != 0 {
		t.Fatalf("encode exited %d: %s", r.code, r.stderr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var stdout, stderr syncBuffer
	done := make(chan int, 1)
	go func() {
		args := []string{"-config", filepath.Join(t.TempDir(), "none.toml"), "watch", path}
		done <- run(ctx, args, strings.NewReader(""), &stdout, &stderr)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(stdout.String(), "watched") {
		if time.Now().After(deadline) {
			t.Fatal("initial rendering not printed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case code := <-done:
		if code != 0 {
			t.Errorf("exit code = %d, want 0 (stderr %q)", code, stderr.String())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
