package crash

import "fmt"

// CountedString is a length-prefixed byte string as emitted by the engine.
// It carries no terminator and may contain NUL bytes.
type CountedString []byte

func (s CountedString) String() string { return string(s) }

// Header is the fixed preamble of a crash archive.
type Header struct {
	Version          [3]uint8
	DirectoryName    CountedString
	FileName         CountedString
	UncompressedSize int32
	FileCount        int32
}

// VersionString formats the version bytes as "major.minor.patch".
func (h *Header) VersionString() string {
	return fmt.Sprintf("%d.%d.%d", h.Version[0], h.Version[1], h.Version[2])
}

// File is one embedded file (crash log, minidump, context XML, ...).
type File struct {
	Index int32
	Name  CountedString
	Size  int32
	Data  []byte
}

// Archive is a fully decoded crash report. Files keeps the order the engine
// wrote them in and always holds exactly Header.FileCount entries.
type Archive struct {
	Header Header
	Files  []File
}

// DataSize returns the summed size of every embedded file.
func (a *Archive) DataSize() int64 {
	var n int64
	for i := range a.Files {
		n += int64(len(a.Files[i].Data))
	}
	return n
}
