package log

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLogfmtHandlerEncodesRecord(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogfmtHandler(&buf, LvlInfo)
	err := h.Log(&Record{Time: time.Now(), Lvl: LvlInfo, Msg: "started", Ctx: []any{"port", 9000}})
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "msg=started") || !strings.Contains(out, "port=9000") {
		t.Fatalf("expected logfmt-encoded line, got %q", out)
	}
}

func TestLogfmtHandlerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogfmtHandler(&buf, LvlWarn)
	if err := h.Log(&Record{Lvl: LvlDebug, Msg: "noisy"}); err != nil {
		t.Fatalf("log: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected a debug record to be filtered out by a warn-level handler, got %q", buf.String())
	}
}

func TestLogfmtHandlerPassesAtOrAboveLevel(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogfmtHandler(&buf, LvlWarn)
	if err := h.Log(&Record{Lvl: LvlError, Msg: "bad"}); err != nil {
		t.Fatalf("log: %v", err)
	}
	if !strings.Contains(buf.String(), "msg=bad") {
		t.Fatalf("expected an error record to pass a warn-level handler, got %q", buf.String())
	}
}

func TestNewTermHandlerNonTTYIsPlain(t *testing.T) {
	var buf bytes.Buffer
	h := NewTermHandler(&buf, LvlInfo)
	if err := h.Log(&Record{Lvl: LvlInfo, Msg: "plain", Time: time.Now()}); err != nil {
		t.Fatalf("log: %v", err)
	}
	if !strings.Contains(buf.String(), "plain") {
		t.Fatalf("expected message text in non-tty output, got %q", buf.String())
	}
}
