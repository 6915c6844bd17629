package extract

import (
	"os"
	"path/filepath"

	"duef/internal/utils"
)

// Sink decides where each embedded file goes and writes it there.
type Sink interface {
	ResolvePath(directoryName, fileName string) (string, error)
	Write(path string, data []byte) error
}

// directoryCreator is implemented by sinks that group a report's files
// under one directory. The directory exists even when the report holds no
// files.
type directoryCreator interface {
	CreateDirectory(directoryName string) (string, error)
}

// DiskSink writes files to <Root>/<directory name>/<file name>.
type DiskSink struct {
	Root string
	Log  *utils.Logger
}

func NewDiskSink(root string, log *utils.Logger) *DiskSink {
	return &DiskSink{Root: root, Log: log}
}

// CreateDirectory creates <Root>/<directoryName> and returns its path.
func (s *DiskSink) CreateDirectory(directoryName string) (string, error) {
	dir, err := utils.ResolveDirectoryPath(s.Root, directoryName)
	if err != nil {
		return "", err
	}
	if err := s.mkdir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

func (s *DiskSink) ResolvePath(directoryName, fileName string) (string, error) {
	return utils.ResolveFilePath(s.Root, directoryName, fileName)
}

func (s *DiskSink) Write(path string, data []byte) error {
	if err := s.mkdir(filepath.Dir(path)); err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}

func (s *DiskSink) mkdir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		s.Log.Debug("Creating directory: %s", dir)
	}
	return os.MkdirAll(dir, 0755)
}
