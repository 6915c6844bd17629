package crash

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"testing"

	"duef/internal/crash/crashtest"
)

func mustDecode(t *testing.T, data []byte) *Archive {
	t.Helper()
	a, err := (&Decoder{}).Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return a
}

func TestDecodeScenario(t *testing.T) {
	a := mustDecode(t, crashtest.Scenario())

	h := a.Header
	if h.Version != [3]uint8{1, 2, 3} {
		t.Fatalf("version: got %v", h.Version)
	}
	if h.VersionString() != "1.2.3" {
		t.Fatalf("VersionString: got %q", h.VersionString())
	}
	if h.DirectoryName.String() != "ABC123" || h.FileName.String() != "Report" {
		t.Fatalf("names: got %q / %q", h.DirectoryName, h.FileName)
	}
	if h.UncompressedSize != 100 || h.FileCount != 2 {
		t.Fatalf("sizes: got uncompressed %d count %d", h.UncompressedSize, h.FileCount)
	}

	if len(a.Files) != int(h.FileCount) {
		t.Fatalf("files: got %d want %d", len(a.Files), h.FileCount)
	}
	for i, want := range crashtest.ScenarioFiles {
		f := a.Files[i]
		if int(f.Index) != i || f.Name.String() != want.Name {
			t.Fatalf("file %d: got index %d name %q", i, f.Index, f.Name)
		}
		if int(f.Size) != len(want.Data) || !bytes.Equal(f.Data, want.Data) {
			t.Fatalf("file %d data: got %v want %v", i, f.Data, want.Data)
		}
	}
	if string(a.Files[0].Data) != "hello" {
		t.Fatalf("first file should be the log, got %q", a.Files[0].Data)
	}
	if a.DataSize() != 8 {
		t.Fatalf("DataSize: got %d want 8", a.DataSize())
	}
}

func TestDecodeIdempotent(t *testing.T) {
	data := crashtest.Scenario()
	first := mustDecode(t, data)
	second := mustDecode(t, data)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("decoding twice differs:\n%+v\n%+v", first, second)
	}
	if &first.Files[0].Data[0] == &second.Files[0].Data[0] {
		t.Fatalf("archives share file buffers")
	}
}

func TestDecodeTruncatedAtEveryBoundary(t *testing.T) {
	data := crashtest.Scenario()
	for n := 0; n < len(data); n++ {
		a, err := (&Decoder{}).Decode(data[:n])
		if !errors.Is(err, ErrTruncatedInput) {
			t.Fatalf("prefix %d/%d: expected ErrTruncatedInput, got %v", n, len(data), err)
		}
		if a != nil {
			t.Fatalf("prefix %d/%d: got a partial archive", n, len(data))
		}
	}
}

func TestDecodeNegativeLengths(t *testing.T) {
	version := [3]uint8{4, 27, 0}
	padding := make([]byte, 64)

	tests := []struct {
		name string
		data []byte
	}{
		{
			name: "file count",
			data: new(crashtest.Builder).Header(version, "dir", "name", 0, -1).Raw(padding...).Bytes(),
		},
		{
			name: "directory name length",
			data: new(crashtest.Builder).Raw(version[:]...).I32(-1).Raw(padding...).Bytes(),
		},
		{
			name: "header file name length",
			data: new(crashtest.Builder).Raw(version[:]...).String("dir").I32(-7).Raw(padding...).Bytes(),
		},
		{
			name: "embedded file name length",
			data: new(crashtest.Builder).Header(version, "dir", "name", 0, 1).I32(0).I32(-3).I32(0).Bytes(),
		},
		{
			name: "embedded file size",
			data: new(crashtest.Builder).Header(version, "dir", "name", 0, 1).I32(0).String("x").I32(-5).Raw(padding...).Bytes(),
		},
		{
			name: "second file size",
			data: new(crashtest.Builder).Header(version, "dir", "name", 0, 2).
				File(0, "ok.log", []byte("fine")).
				I32(1).String("bad").I32(math.MinInt32).Raw(padding...).Bytes(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := (&Decoder{}).Decode(tt.data)
			if !errors.Is(err, ErrInvalidLength) {
				t.Fatalf("expected ErrInvalidLength, got %v", err)
			}
			if a != nil {
				t.Fatalf("got an archive alongside the error")
			}
		})
	}
}

func TestDecodeMissingFileRecord(t *testing.T) {
	b := new(crashtest.Builder).Header([3]uint8{1, 2, 3}, "ABC123", "Report", 100, 3)
	b.File(0, "log.txt", []byte("hello"))
	b.File(1, "dump.bin", []byte{1, 2, 3})

	a, err := (&Decoder{}).Decode(b.Bytes())
	if !errors.Is(err, ErrTruncatedInput) {
		t.Fatalf("expected ErrTruncatedInput, got %v", err)
	}
	if a != nil {
		t.Fatalf("got a partial archive with %d files", len(a.Files))
	}
}

func TestDecodeHugeFileCount(t *testing.T) {
	data := new(crashtest.Builder).Header([3]uint8{1, 0, 0}, "d", "f", 0, math.MaxInt32).
		File(0, "a", []byte("x")).Bytes()
	if _, err := (&Decoder{}).Decode(data); !errors.Is(err, ErrTruncatedInput) {
		t.Fatalf("expected ErrTruncatedInput, got %v", err)
	}
}

func TestDecodeNegativeNameBehindLargeCount(t *testing.T) {
	data := new(crashtest.Builder).Header([3]uint8{1, 0, 0}, "d", "f", 0, 2).
		I32(0).I32(-3).I32(0).Bytes()
	if _, err := (&Decoder{}).Decode(data); !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("expected ErrInvalidLength, got %v", err)
	}
}

func TestDecodeHugeFileSize(t *testing.T) {
	data := new(crashtest.Builder).Header([3]uint8{1, 0, 0}, "d", "f", 0, 1).
		I32(0).String("big.dmp").I32(math.MaxInt32).Raw(1, 2, 3).Bytes()
	if _, err := (&Decoder{}).Decode(data); !errors.Is(err, ErrTruncatedInput) {
		t.Fatalf("expected ErrTruncatedInput, got %v", err)
	}
}

func TestDecodeZeroFiles(t *testing.T) {
	data := new(crashtest.Builder).Header([3]uint8{0, 0, 1}, "UECC-Empty", "", 0, 0).Bytes()
	a := mustDecode(t, data)
	if len(a.Files) != 0 || a.Files == nil {
		t.Fatalf("expected an empty, non-nil file list, got %#v", a.Files)
	}
	if len(a.Header.FileName) != 0 {
		t.Fatalf("expected empty file name, got %q", a.Header.FileName)
	}
}

func TestDecodeKeepsNULBytes(t *testing.T) {
	name := "Crash\x00Context.runtime-xml"
	data := new(crashtest.Builder).Header([3]uint8{1, 2, 3}, "dir\x00", "f", 0, 1).
		File(0, name, []byte{0, 0, 0}).Bytes()
	a := mustDecode(t, data)
	if a.Header.DirectoryName.String() != "dir\x00" {
		t.Fatalf("directory name: got %q", a.Header.DirectoryName)
	}
	if a.Files[0].Name.String() != name {
		t.Fatalf("file name: got %q", a.Files[0].Name)
	}
}

func TestDecodeIgnoresTrailingBytes(t *testing.T) {
	data := append(crashtest.Scenario(), 0xde, 0xad, 0xbe, 0xef)
	a := mustDecode(t, data)
	if len(a.Files) != 2 {
		t.Fatalf("files: got %d want 2", len(a.Files))
	}
}

func TestDecodeIndexPolicy(t *testing.T) {
	data := new(crashtest.Builder).Header([3]uint8{1, 2, 3}, "dir", "f", 0, 2).
		File(0, "CrashContext.runtime-xml", []byte("<xml/>")).
		File(7, "UEMinidump.dmp", []byte{0x4d, 0x44}).Bytes()

	a, err := (&Decoder{}).Decode(data)
	if err != nil {
		t.Fatalf("permissive decode failed: %v", err)
	}
	if a.Files[1].Index != 7 {
		t.Fatalf("index should be kept as declared, got %d", a.Files[1].Index)
	}

	a, err = (&Decoder{StrictIndex: true}).Decode(data)
	if !errors.Is(err, ErrIndexMismatch) {
		t.Fatalf("strict decode expected ErrIndexMismatch, got %v", err)
	}
	if a != nil {
		t.Fatalf("strict decode returned an archive")
	}

	if _, err := (&Decoder{StrictIndex: true}).Decode(crashtest.Scenario()); err != nil {
		t.Fatalf("strict decode of sequential indices failed: %v", err)
	}
}

func TestDecodeRecordShapes(t *testing.T) {
	c := NewCursor(new(crashtest.Builder).String("UECC").File(3, "a.log", []byte("ab")).Bytes())

	s, err := DecodeCountedString(c)
	if err != nil || s.String() != "UECC" {
		t.Fatalf("DecodeCountedString: got %q, %v", s, err)
	}
	f, err := DecodeFile(c)
	if err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}
	if f.Index != 3 || f.Name.String() != "a.log" || f.Size != 2 || string(f.Data) != "ab" {
		t.Fatalf("DecodeFile: got %+v", f)
	}
	if c.Remaining() != 0 {
		t.Fatalf("expected cursor at end, %d bytes left", c.Remaining())
	}
}

func TestDecodeArchiveDefault(t *testing.T) {
	a, err := DecodeArchive(NewCursor(crashtest.Scenario()))
	if err != nil {
		t.Fatalf("DecodeArchive failed: %v", err)
	}
	if len(a.Files) != 2 {
		t.Fatalf("files: got %d want 2", len(a.Files))
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrTruncatedInput, "TruncatedInput"},
		{errors.New("other"), "Unknown"},
	}
	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.want {
			t.Fatalf("Kind(%v): got %q want %q", tt.err, got, tt.want)
		}
	}

	_, err := (&Decoder{}).Decode(crashtest.Scenario()[:10])
	if got := Kind(err); got != "TruncatedInput" {
		t.Fatalf("Kind of a wrapped decode error: got %q", got)
	}
}
