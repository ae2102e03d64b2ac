package kv

import (
	"bytes"
	"testing"
)

func openTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := Open(t.TempDir(), DefaultConfig)
	if err != nil {
		t.Fatalf("open engine: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestPutGetDelete(t *testing.T) {
	e := openTestEngine(t)

	if err := e.Put(ColumnState, []byte("k1"), []byte("v1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	v, found, err := e.Get(ColumnState, []byte("k1"))
	if err != nil || !found {
		t.Fatalf("expected key to be found, err=%v found=%v", err, found)
	}
	if !bytes.Equal(v, []byte("v1")) {
		t.Fatalf("expected v1, got %s", v)
	}

	if err := e.Delete(ColumnState, []byte("k1")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, found, err = e.Get(ColumnState, []byte("k1"))
	if err != nil || found {
		t.Fatalf("expected key to be absent after delete, found=%v", found)
	}
}

func TestGetAbsentKey(t *testing.T) {
	e := openTestEngine(t)
	_, found, err := e.Get(ColumnBlocks, []byte("missing"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatalf("expected missing key to report not found")
	}
}

func TestColumnsDoNotCollide(t *testing.T) {
	e := openTestEngine(t)
	if err := e.Put(ColumnBlocks, []byte("shared"), []byte("blocks-value")); err != nil {
		t.Fatalf("put blocks: %v", err)
	}
	if err := e.Put(ColumnState, []byte("shared"), []byte("state-value")); err != nil {
		t.Fatalf("put state: %v", err)
	}
	v, _, err := e.Get(ColumnBlocks, []byte("shared"))
	if err != nil || !bytes.Equal(v, []byte("blocks-value")) {
		t.Fatalf("expected blocks column value to survive, got %s err=%v", v, err)
	}
	v, _, err = e.Get(ColumnState, []byte("shared"))
	if err != nil || !bytes.Equal(v, []byte("state-value")) {
		t.Fatalf("expected state column value to survive, got %s err=%v", v, err)
	}
}

func TestScanPrefixOrdering(t *testing.T) {
	e := openTestEngine(t)
	for _, k := range []string{"a:3", "a:1", "a:2", "b:1"} {
		if err := e.Put(ColumnIndices, []byte(k), []byte(k)); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	entries, err := e.ScanPrefix(ColumnIndices, []byte("a:"))
	if err != nil {
		t.Fatalf("scan prefix: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries under prefix a:, got %d", len(entries))
	}
	want := []string{"a:1", "a:2", "a:3"}
	for i, e := range entries {
		if string(e.Key) != want[i] {
			t.Fatalf("expected ascending order %v, got %s at index %d", want, e.Key, i)
		}
	}
}

func TestScanRangeHalfOpen(t *testing.T) {
	e := openTestEngine(t)
	for _, k := range []string{"k1", "k2", "k3", "k4"} {
		if err := e.Put(ColumnState, []byte(k), []byte(k)); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	entries, err := e.ScanRange(ColumnState, []byte("k1"), []byte("k3"))
	if err != nil {
		t.Fatalf("scan range: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected half-open range to return 2 entries, got %d", len(entries))
	}
	if string(entries[0].Key) != "k1" || string(entries[1].Key) != "k2" {
		t.Fatalf("unexpected range contents: %+v", entries)
	}
}

func TestCachedReadInvalidatedOnWrite(t *testing.T) {
	e := openTestEngine(t)
	if err := e.Put(ColumnState, []byte("cached"), []byte("v1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, _, err := e.Get(ColumnState, []byte("cached")); err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := e.Put(ColumnState, []byte("cached"), []byte("v2")); err != nil {
		t.Fatalf("put v2: %v", err)
	}
	v, _, err := e.Get(ColumnState, []byte("cached"))
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if !bytes.Equal(v, []byte("v2")) {
		t.Fatalf("expected cache to reflect overwritten value, got %s", v)
	}
}
