package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Validator checks that a file is a readable PDF within the size limit
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateFile validates the file in req. An invalid file is reported in the
// result, not as an error.
func (v *Validator) ValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	result := &PDFValidateFileResult{
		Path: req.Path,
	}

	info, err := v.checkFile(req.Path)
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // validation failures are part of the result
	}
	result.Size = info.Size()

	pages, err := v.pageCount(req.Path)
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // validation failures are part of the result
	}

	result.Valid = true
	result.Pages = pages
	return result, nil
}

// checkFile validates the file without parsing it
func (v *Validator) checkFile(filePath string) (os.FileInfo, error) {
	if filePath == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", filePath)
	}
	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return nil, fmt.Errorf("file is not a PDF: %s", filePath)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("file is empty: %s", filePath)
	}
	if info.Size() > v.maxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			info.Size(), v.maxFileSize)
	}
	return info, nil
}

// pageCount opens the file to confirm it parses
func (v *Validator) pageCount(filePath string) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid PDF file: %v", r)
		}
	}()

	f, reader, err := pdf.Open(filePath)
	if err != nil {
		if f != nil {
			f.Close()
		}
		return 0, fmt.Errorf("invalid PDF file: %w", err)
	}
	defer f.Close()

	return reader.NumPage(), nil
}
