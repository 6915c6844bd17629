package extract

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"duef/internal/config"
	"duef/internal/utils"
)

// FormatResult renders the line a run prints on stdout: the crash directory,
// or every resolved file path separated by spaces with whitespace-bearing
// paths quoted.
func FormatResult(r *Report, mode config.OutputMode) string {
	if mode == config.PrintFiles {
		paths := make([]string, 0, len(r.Files))
		for _, f := range r.Files {
			if f.Path == "" {
				continue
			}
			paths = append(paths, utils.QuotePath(f.Path))
		}
		return strings.Join(paths, " ")
	}
	return r.Directory
}

// Summary is a one-line human description of the report.
func Summary(r *Report) string {
	return fmt.Sprintf("%s: wrote %d of %d files (%s)",
		r.Archive.Header.DirectoryName, r.Written(), len(r.Files), humanize.Bytes(uint64(r.Archive.DataSize())))
}
