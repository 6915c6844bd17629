package crash

import "errors"

var (
	// ErrSourceUnreadable indicates the compressed input could not be opened or read.
	ErrSourceUnreadable = errors.New("source unreadable")
	// ErrCorruptStream indicates the decompression engine rejected the data.
	ErrCorruptStream = errors.New("corrupt stream")
	// ErrTruncatedStream indicates the input ended before the compressed stream did.
	ErrTruncatedStream = errors.New("truncated stream")
	// ErrTruncatedInput indicates a record needs more bytes than the buffer holds.
	ErrTruncatedInput = errors.New("truncated input")
	// ErrInvalidLength indicates a negative or impossible length or count field.
	ErrInvalidLength = errors.New("invalid length")
	// ErrIndexMismatch indicates an embedded file index differs from its position (strict mode only).
	ErrIndexMismatch = errors.New("file index mismatch")
	// ErrWriteFailed indicates one embedded file could not be written.
	ErrWriteFailed = errors.New("write failed")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrSourceUnreadable, "SourceUnreadable"},
	{ErrCorruptStream, "CorruptStream"},
	{ErrTruncatedStream, "TruncatedStream"},
	{ErrTruncatedInput, "TruncatedInput"},
	{ErrInvalidLength, "InvalidLength"},
	{ErrIndexMismatch, "IndexMismatch"},
	{ErrWriteFailed, "WriteFailed"},
}

// Kind names the failure class of err, or "Unknown" when it carries none of
// the package sentinels.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Unknown"
}
