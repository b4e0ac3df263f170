package script

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/charbuf/internal/engine/buffer"
	"github.com/dshills/charbuf/internal/log"
)

// DefaultTimeout bounds one script execution.
const DefaultTimeout = 5 * time.Second

// Runner executes scripts. A Runner holds no Lua state between runs and
// is safe for concurrent use.
type Runner struct {
	timeout time.Duration
	output  io.Writer
}

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout sets the execution timeout. Zero or negative disables it.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithOutput sets where print writes. The default is stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.output = w
	}
}

// NewRunner creates a runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		timeout: DefaultTimeout,
		output:  os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes code against b. name labels the chunk in error messages.
// Edits made before a failure stay applied.
func (r *Runner) Run(ctx context.Context, b *buffer.Buffer, name, code string) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	L.SetContext(ctx)

	openSafeLibraries(L)
	L.SetGlobal("print", L.NewFunction(r.print))
	L.SetGlobal("buf", newModule(b).table(L))

	fn, err := L.LoadString(code)
	if err != nil {
		return fmt.Errorf("%w: compiling %s: %v", ErrScript, name, err)
	}

	start := time.Now()
	L.Push(fn)
	if err := r.call(L); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %s: %w", ErrScript, name, ctxErr)
		}
		return fmt.Errorf("%w: %s: %v", ErrScript, name, err)
	}

	log.Debug("script finished", "name", name, "elapsed", time.Since(start), "length", b.Len())
	return nil
}

// call runs the function on top of the stack with panic recovery.
func (r *Runner) call(L *lua.LState) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("lua panic: %v", p)
		}
	}()
	return L.PCall(0, lua.MultRet, nil)
}

// print writes its arguments tab-separated, like the base library print.
func (r *Runner) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, n)
	for i := 1; i <= n; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	fmt.Fprintln(r.output, strings.Join(parts, "\t"))
	return 0
}

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Not opened: io, os, debug, package, channel, coroutine.
	// The base library still carries file loaders.
	for _, name := range []string{"dofile", "loadfile", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}
