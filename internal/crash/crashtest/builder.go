// Package crashtest builds crash archive payloads for tests, including
// malformed ones the engine would never write.
package crashtest

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Builder appends wire-format fields in order. Nothing is validated.
type Builder struct {
	buf bytes.Buffer
}

func (b *Builder) Raw(p ...byte) *Builder {
	b.buf.Write(p)
	return b
}

func (b *Builder) I32(v int32) *Builder {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(v))
	b.buf.Write(tmp[:])
	return b
}

// String writes a counted string.
func (b *Builder) String(s string) *Builder {
	return b.I32(int32(len(s))).Raw([]byte(s)...)
}

func (b *Builder) Header(version [3]uint8, dir, name string, uncompressed, count int32) *Builder {
	return b.Raw(version[:]...).String(dir).String(name).I32(uncompressed).I32(count)
}

func (b *Builder) File(index int32, name string, data []byte) *Builder {
	return b.I32(index).String(name).I32(int32(len(data))).Raw(data...)
}

func (b *Builder) Bytes() []byte {
	return append([]byte(nil), b.buf.Bytes()...)
}

// ScenarioFiles are the embedded files of Scenario, in order.
var ScenarioFiles = []struct {
	Name string
	Data []byte
}{
	{"log.txt", []byte("hello")},
	{"dump.bin", []byte{0x01, 0x02, 0x03}},
}

// Scenario is a two-file archive: version 1.2.3, directory "ABC123", file
// name "Report", uncompressed size 100.
func Scenario() []byte {
	b := new(Builder).Header([3]uint8{1, 2, 3}, "ABC123", "Report", 100, int32(len(ScenarioFiles)))
	for i, f := range ScenarioFiles {
		b.File(int32(i), f.Name, f.Data)
	}
	return b.Bytes()
}

func Zlib(tb testing.TB, data []byte) []byte {
	tb.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		tb.Fatalf("zlib write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		tb.Fatalf("zlib close failed: %v", err)
	}
	return buf.Bytes()
}

func LZ4(tb testing.TB, data []byte) []byte {
	tb.Helper()
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		tb.Fatalf("lz4 write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		tb.Fatalf("lz4 close failed: %v", err)
	}
	return buf.Bytes()
}

func Zstd(tb testing.TB, data []byte) []byte {
	tb.Helper()
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		tb.Fatalf("zstd writer failed: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		tb.Fatalf("zstd write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		tb.Fatalf("zstd close failed: %v", err)
	}
	return buf.Bytes()
}
