package crash

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"duef/internal/utils"
)

// chunkSize bounds both the compressed reads from the source and the
// decompressed chunks pulled from the inflater.
const chunkSize = 4096

// Decompressed is the single contiguous payload of a crash file.
type Decompressed struct {
	Data   []byte
	Size   int
	Format Format
}

// Decompressor inflates a compressed crash file into memory.
type Decompressor struct {
	// Format forces a container; FormatAuto sniffs the leading bytes.
	Format Format
	// MaxSize caps the decompressed size in bytes. Zero means no cap.
	MaxSize int64
	Log     *utils.Logger
}

// Decompress inflates r with automatic format detection and no size cap.
func Decompress(r io.Reader) (*Decompressed, error) {
	return (&Decompressor{}).Decompress(r)
}

// chunkSource feeds the inflater at most chunkSize bytes per read and
// remembers the first I/O fault so it is not mistaken for bad data.
type chunkSource struct {
	r     io.Reader
	err   error
	reads int
	total int64
}

func (s *chunkSource) Read(p []byte) (int, error) {
	if len(p) > chunkSize {
		p = p[:chunkSize]
	}
	n, err := s.r.Read(p)
	s.total += int64(n)
	if n > 0 {
		s.reads++
	}
	if err != nil && err != io.EOF && s.err == nil {
		s.err = err
	}
	return n, err
}

// Decompress reads r to the logical end of the compressed stream. Running out
// of input first is ErrTruncatedStream; anything the engine rejects is
// ErrCorruptStream. Bytes after the end of the stream are not read.
func (d *Decompressor) Decompress(r io.Reader) (*Decompressed, error) {
	src := &chunkSource{r: r}

	format := d.Format
	var in io.Reader = src
	if format == FormatAuto {
		header := make([]byte, magicLen)
		n, _ := io.ReadFull(src, header)
		if src.err != nil {
			return nil, d.classify(src.err, src)
		}
		header = header[:n]
		if isMagicPrefix(header) {
			return nil, d.classify(io.ErrUnexpectedEOF, src)
		}
		format = DetectFormat(header)
		if format == FormatZlib && len(header) >= 2 && !IsZlib(header) {
			return nil, fmt.Errorf("%w: unrecognized container header % x", ErrCorruptStream, header)
		}
		in = io.MultiReader(bytes.NewReader(header), src)
	}
	d.Log.Debug("Decompressor: reading %s stream", format)

	zr, err := newInflater(format, in)
	if err != nil {
		return nil, d.classify(err, src)
	}
	defer zr.Close()

	buf := make([]byte, 0, chunkSize)
	out := make([]byte, chunkSize)
	for {
		n, err := zr.Read(out)
		if n > 0 {
			if d.MaxSize > 0 && int64(len(buf)+n) > d.MaxSize {
				return nil, fmt.Errorf("%w: output exceeds limit of %s", ErrCorruptStream, humanize.IBytes(uint64(d.MaxSize)))
			}
			buf = appendChunk(buf, out[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, d.classify(err, src)
		}
	}

	d.Log.Debug("Decompressor: %s in %d reads -> %s (%d bytes)",
		humanize.Bytes(uint64(src.total)), src.reads, humanize.Bytes(uint64(len(buf))), len(buf))
	return &Decompressed{Data: buf, Size: len(buf), Format: format}, nil
}

// appendChunk appends chunk to buf, doubling the required capacity whenever
// the current one would overflow.
func appendChunk(buf, chunk []byte) []byte {
	if need := len(buf) + len(chunk); need > cap(buf) {
		grown := make([]byte, len(buf), need*2)
		copy(grown, buf)
		buf = grown
	}
	return append(buf, chunk...)
}

func (d *Decompressor) classify(err error, src *chunkSource) error {
	switch {
	case src.err != nil:
		return fmt.Errorf("%w: %w", ErrSourceUnreadable, src.err)
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return fmt.Errorf("%w: input ended after %d bytes", ErrTruncatedStream, src.total)
	}
	return fmt.Errorf("%w: %w", ErrCorruptStream, err)
}
