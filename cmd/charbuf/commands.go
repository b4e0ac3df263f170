package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/tidwall/sjson"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/charbuf/internal/config"
	"github.com/dshills/charbuf/internal/engine/buffer"
	"github.com/dshills/charbuf/internal/engine/persist"
	"github.com/dshills/charbuf/internal/log"
	"github.com/dshills/charbuf/internal/script"
)

func newFlagSet(name string, e *env) *flag.FlagSet {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(e.stderr)
	flags.Usage = func() {
		fmt.Fprintf(e.stderr, "Usage: charbuf %s\n", commands[name].usage)
		flags.PrintDefaults()
	}
	return flags
}

// formatFlag registers -format and applies it to the configuration after
// parsing.
func formatFlag(flags *flag.FlagSet) func(e *env) {
	format := flags.String("format", "", "Codec (binary, json, yaml, toml)")
	return func(e *env) {
		if *format != "" {
			_ = e.cfg.Set(config.PathCodecFormat, *format)
		}
	}
}

// loadBuffer reads a persisted buffer. The extension picks the codec;
// unknown extensions fall back to the configured format.
func loadBuffer(path, fallback string) (*buffer.Buffer, persist.Codec, error) {
	b, c, err := persist.LoadAuto(path)
	if !errors.Is(err, persist.ErrUnknownFormat) {
		return b, c, err
	}
	if c, err = persist.Lookup(fallback); err != nil {
		return nil, nil, err
	}
	if b, err = persist.Load(path, c); err != nil {
		return nil, nil, err
	}
	return b, c, nil
}

func runEncode(_ context.Context, e *env, args []string) error {
	flags := newFlagSet("encode", e)
	applyFormat := formatFlag(flags)
	enc := flags.String("encoding", "", "Input encoding (utf-8, utf-16le, utf-16be)")
	trim := flags.Bool("trim", false, "Trim storage to the text length before saving")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 2 {
		flags.Usage()
		return fmt.Errorf("encode needs an input and an output path")
	}
	in, out := flags.Arg(0), flags.Arg(1)

	applyFormat(e)
	if *enc != "" {
		_ = e.cfg.Set(config.PathInputEncoding, *enc)
	}
	// An output extension beats the configured default but not -format.
	if name, err := persist.FormatFromPath(out); err == nil && !flagSet(flags, "format") {
		_ = e.cfg.Set(config.PathCodecFormat, name)
	}
	s, err := e.settings()
	if err != nil {
		return err
	}
	c, err := persist.Lookup(s.Codec.Format)
	if err != nil {
		return err
	}

	var r io.Reader = e.stdin
	if in != "-" {
		f, err := os.Open(in)
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		r = f
	}

	b, err := readText(r, s.Input.Encoding)
	if err != nil {
		return err
	}
	if *trim {
		b.TrimToSize()
	}
	if err := persist.Save(out, c, b); err != nil {
		return err
	}

	log.Info("encoded buffer", "in", in, "out", out, "format", c.Name(), "length", b.Len(), "capacity", b.Cap())
	return nil
}

func runRender(_ context.Context, e *env, args []string) error {
	flags := newFlagSet("render", e)
	applyFormat := formatFlag(flags)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return fmt.Errorf("render needs one file")
	}
	applyFormat(e)
	s, err := e.settings()
	if err != nil {
		return err
	}

	b, _, err := loadBuffer(flags.Arg(0), s.Codec.Format)
	if err != nil {
		return err
	}
	_, err = io.WriteString(e.stdout, b.String())
	return err
}

func runInspect(_ context.Context, e *env, args []string) error {
	flags := newFlagSet("inspect", e)
	applyFormat := formatFlag(flags)
	asJSON := flags.Bool("json", false, "Print a JSON object")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return fmt.Errorf("inspect needs one file")
	}
	applyFormat(e)
	s, err := e.settings()
	if err != nil {
		return err
	}

	path := flags.Arg(0)
	b, c, err := loadBuffer(path, s.Codec.Format)
	if err != nil {
		return err
	}
	m := b.Metrics()

	report := []struct {
		key   string
		value any
	}{
		{"path", path},
		{"format", c.Name()},
		{"length", b.Len()},
		{"capacity", b.Cap()},
		{"codePoints", m.CodePoints},
		{"graphemes", m.Graphemes},
		{"bytes", m.Bytes},
		{"lines", m.Lines},
		{"width", m.Width},
		{"ascii", m.Flags.Has(buffer.FlagASCII)},
		{"surrogates", m.Flags.Has(buffer.FlagHasSurrogates)},
	}

	if *asJSON {
		doc := []byte(`{}`)
		for _, r := range report {
			if doc, err = sjson.SetBytes(doc, r.key, r.value); err != nil {
				return fmt.Errorf("encoding report: %w", err)
			}
		}
		_, err = fmt.Fprintf(e.stdout, "%s\n", doc)
		return err
	}

	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	for _, r := range report {
		fmt.Fprintf(tw, "%s\t%v\n", r.key, r.value)
	}
	return tw.Flush()
}

func runConvert(ctx context.Context, e *env, args []string) error {
	flags := newFlagSet("convert", e)
	to := flags.String("to", "", "Target codec (binary, json, yaml, toml)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return fmt.Errorf("convert needs at least one file")
	}
	if *to != "" {
		_ = e.cfg.Set(config.PathCodecFormat, *to)
	}
	s, err := e.settings()
	if err != nil {
		return err
	}
	target, err := persist.Lookup(s.Codec.Format)
	if err != nil {
		return err
	}

	files := flags.Args()
	outputs := make([]string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Workers)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, from, err := loadBuffer(path, s.Codec.Format)
			if err != nil {
				return err
			}
			out := strings.TrimSuffix(path, filepath.Ext(path)) + persist.Extension(target.Name())
			if err := persist.Save(out, target, b); err != nil {
				return err
			}
			log.Info("converted buffer", "from", path, "to", out, "source", from.Name(), "target", target.Name())
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("convert: %w", err)
	}

	for _, out := range outputs {
		fmt.Fprintln(e.stdout, out)
	}
	return nil
}

func flagSet(flags *flag.FlagSet, name string) bool {
	set := false
	flags.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func runEdit(ctx context.Context, e *env, args []string) error {
	flags := newFlagSet("edit", e)
	applyFormat := formatFlag(flags)
	code := flags.String("e", "", "Lua code to run")
	file := flags.String("script", "", "Lua file to run")
	out := flags.String("o", "", "Output path (default: edit in place)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 || (*code == "") == (*file == "") {
		flags.Usage()
		return fmt.Errorf("edit needs one file and exactly one of -e or -script")
	}
	applyFormat(e)
	s, err := e.settings()
	if err != nil {
		return err
	}

	name := "-e"
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			return fmt.Errorf("reading script: %w", err)
		}
		name, *code = *file, string(data)
	}

	path := flags.Arg(0)
	b, c, err := loadBuffer(path, s.Codec.Format)
	if err != nil {
		return err
	}

	runner := script.NewRunner(script.WithOutput(e.stdout))
	if err := runner.Run(ctx, b, name, *code); err != nil {
		return err
	}

	dest := path
	if *out != "" {
		dest = *out
		if n, err := persist.FormatFromPath(dest); err == nil {
			c, _ = persist.Lookup(n)
		}
	}
	if err := persist.Save(dest, c, b); err != nil {
		return err
	}
	log.Info("edited buffer", "path", path, "out", dest, "format", c.Name(), "length", b.Len())
	return nil
}

func runWatch(ctx context.Context, e *env, args []string) error {
	flags := newFlagSet("watch", e)
	applyFormat := formatFlag(flags)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return fmt.Errorf("watch needs one file")
	}
	applyFormat(e)
	s, err := e.settings()
	if err != nil {
		return err
	}

	path := flags.Arg(0)
	name, err := persist.FormatFromPath(path)
	if err != nil {
		name = s.Codec.Format
	}
	c, err := persist.Lookup(name)
	if err != nil {
		return err
	}

	return persist.Watch(ctx, path, c, func(b *buffer.Buffer, err error) {
		if err != nil {
			log.Warn("reload failed", "path", path, "error", err)
			return
		}
		fmt.Fprintln(e.stdout, b.String())
	})
}
