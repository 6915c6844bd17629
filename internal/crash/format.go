package crash

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Format is the compression container wrapped around the archive payload.
// The engine writes zlib; lz4 and zstd frames show up when crash bundles are
// recompressed by collection tooling.
type Format int

const (
	FormatAuto Format = iota
	FormatZlib
	FormatLZ4
	FormatZstd
)

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatZlib:
		return "zlib"
	case FormatLZ4:
		return "lz4"
	case FormatZstd:
		return "zstd"
	}
	return "unknown"
}

// ParseFormat accepts the names printed by Format.String.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "zlib":
		return FormatZlib, nil
	case "lz4":
		return FormatLZ4, nil
	case "zstd":
		return FormatZstd, nil
	}
	return FormatAuto, fmt.Errorf("unknown compression format %q", s)
}

// magicLen is how many leading bytes DetectFormat looks at.
const magicLen = 4

var (
	magicBytesZstd = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicBytesLZ4  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// IsZlib reports whether header starts with a valid RFC 1950 CMF/FLG pair.
func IsZlib(header []byte) bool {
	if len(header) < 2 {
		return false
	}
	cmf, flg := header[0], header[1]
	return cmf&0x0f == 8 && cmf>>4 <= 7 && (uint16(cmf)<<8|uint16(flg))%31 == 0
}

// DetectFormat picks a container from the first bytes of the input. Anything
// that is not a zstd or lz4 frame is handed to zlib.
func DetectFormat(header []byte) Format {
	switch {
	case bytes.HasPrefix(header, magicBytesZstd):
		return FormatZstd
	case bytes.HasPrefix(header, magicBytesLZ4):
		return FormatLZ4
	}
	return FormatZlib
}

// isMagicPrefix reports whether a header shorter than magicLen could still
// grow into a zstd or lz4 frame magic.
func isMagicPrefix(header []byte) bool {
	return len(header) < magicLen &&
		(bytes.HasPrefix(magicBytesZstd, header) || bytes.HasPrefix(magicBytesLZ4, header))
}

// frameSource hands an lz4 frame its input. The frame ends with its own end
// mark (and content checksum when enabled), so the source running dry is
// always a truncation, even on a field boundary where io.ReadFull would
// report a clean io.EOF.
type frameSource struct {
	r io.Reader
}

func (s frameSource) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err == io.EOF {
		if n > 0 {
			return n, nil
		}
		err = io.ErrUnexpectedEOF
	}
	return n, err
}

// newInflater wraps src in the streaming decoder for f. Every decoder runs on
// the calling goroutine only.
func newInflater(f Format, src io.Reader) (io.ReadCloser, error) {
	switch f {
	case FormatZlib:
		return zlib.NewReader(src)
	case FormatLZ4:
		zr := lz4.NewReader(frameSource{r: src})
		if err := zr.Apply(lz4.ConcurrencyOption(1)); err != nil {
			return nil, err
		}
		return io.NopCloser(zr), nil
	case FormatZstd:
		zr, err := zstd.NewReader(src, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	}
	return nil, fmt.Errorf("no decoder for format %s", f)
}
