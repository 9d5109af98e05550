package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/graphypad/pkg/dataset"
	"github.com/matzehuels/graphypad/pkg/errors"
	dsio "github.com/matzehuels/graphypad/pkg/io"
)

// LoadFile reads a dataset from disk. ".json" files are dataset exports
// written by pkg/io; ".csv", ".txt" and ".xlsx" files are parsed as uploads.
func LoadFile(path string) (*dataset.Dataset, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "%s does not exist", path)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidFile, "%s is a directory", path)
	}
	if info.Size() > MaxUploadSize {
		return nil, errors.New(errors.ErrCodeInvalidFile, "%s is larger than %d MB", path, MaxUploadSize>>20)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Load(data, filepath.Base(path))
}

// Load decodes file content by the extension of filename.
func Load(data []byte, filename string) (*dataset.Dataset, error) {
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		return dsio.ReadJSON(bytes.NewReader(data))
	}
	if err := errors.ValidateUploadFilename(filename); err != nil {
		return nil, err
	}
	return dataset.Parse(data, filename)
}
