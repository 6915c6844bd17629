package extract

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"duef/internal/config"
	"duef/internal/crash"
	"duef/internal/utils"
)

// FileResult is the outcome of writing one embedded file.
type FileResult struct {
	Index int
	Name  string
	Path  string
	Size  int
	Err   error
}

// Report is what a successful extraction hands back: the decoded archive and
// one result per embedded file, in archive order.
type Report struct {
	Archive   *crash.Archive
	Directory string
	Files     []FileResult
}

// Written returns how many files were written without error.
func (r *Report) Written() int {
	n := 0
	for _, f := range r.Files {
		if f.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the files whose write failed.
func (r *Report) Failed() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}

// Extractor runs decompress, decode and write for one crash file.
type Extractor struct {
	Config config.Config
	Sink   Sink
	Log    *utils.Logger
}

// New returns an Extractor writing to cfg.OutputRoot on disk.
func New(cfg config.Config, log *utils.Logger) *Extractor {
	return &Extractor{
		Config: cfg,
		Sink:   NewDiskSink(cfg.OutputRoot, log),
		Log:    log,
	}
}

// Run opens path, inflates it and extracts the archive inside.
func (e *Extractor) Run(path string) (*Report, error) {
	e.Log.Debug("Extractor: Opening crash file %s", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(fmt.Errorf("%w: %w", crash.ErrSourceUnreadable, err), "open %s", path)
	}
	defer f.Close()

	d := &crash.Decompressor{
		Format:  e.Config.Format,
		MaxSize: e.Config.MaxSize,
		Log:     e.Log,
	}
	out, err := d.Decompress(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decompress %s", path)
	}
	e.Log.Debug("Decompression successful. Decompressed size: %s (%d bytes)", humanize.Bytes(uint64(out.Size)), out.Size)

	return e.Extract(out.Data)
}

// Extract decodes data and writes every embedded file through the sink. A
// decode failure aborts before anything is written; a failed write is
// recorded in the report and the remaining files are still written.
func (e *Extractor) Extract(data []byte) (*Report, error) {
	dec := &crash.Decoder{StrictIndex: e.Config.StrictIndex, Log: e.Log}
	a, err := dec.Decode(data)
	if err != nil {
		return nil, errors.Wrap(err, "decode crash archive")
	}

	h := &a.Header
	e.Log.Debug("File header version: %s", h.VersionString())
	e.Log.Debug("Directory name: %s", h.DirectoryName)
	e.Log.Debug("File name: %s", h.FileName)
	e.Log.Debug("Uncompressed size: %d bytes", h.UncompressedSize)
	e.Log.Debug("File count: %d", h.FileCount)
	if int(h.UncompressedSize) != len(data) {
		e.Log.Debug("Header uncompressed size %d differs from payload size %d", h.UncompressedSize, len(data))
	}

	report := &Report{Archive: a, Files: make([]FileResult, 0, len(a.Files))}
	dirName := h.DirectoryName.String()
	if dc, ok := e.Sink.(directoryCreator); ok {
		if dir, err := dc.CreateDirectory(dirName); err == nil {
			report.Directory = dir
		} else {
			e.Log.Warn("Cannot create crash directory: %v", err)
		}
	}

	e.Log.Debug("Files in the crash report:")
	for i := range a.Files {
		f := &a.Files[i]
		e.Log.Debug("- File %d: %s, size: %d bytes", i+1, f.Name, f.Size)
		report.Files = append(report.Files, e.writeFile(i, dirName, f))
	}

	if failed := len(report.Failed()); failed > 0 {
		e.Log.Warn("%d of %d files could not be written", failed, len(report.Files))
	} else {
		e.Log.Debug("All files written successfully (%s).", humanize.Bytes(uint64(a.DataSize())))
	}
	return report, nil
}

func (e *Extractor) writeFile(i int, dirName string, f *crash.File) FileResult {
	res := FileResult{Index: i, Name: f.Name.String(), Size: len(f.Data)}

	path, err := e.Sink.ResolvePath(dirName, res.Name)
	if err == nil {
		res.Path = path
		err = e.Sink.Write(path, f.Data)
	}
	if err != nil {
		res.Err = fmt.Errorf("%w: file %d (%s): %w", crash.ErrWriteFailed, i, res.Name, err)
		e.Log.Error("Error writing output file %s: %v", res.Name, err)
	}
	return res
}
