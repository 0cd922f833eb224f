package orderfile

import "errors"

// Common order-file errors
var (
	// ErrEmptyFile is returned when the export file has no content
	ErrEmptyFile = errors.New("order file is empty")

	// ErrInvalidEncoding is returned when the file is not valid UTF-8
	ErrInvalidEncoding = errors.New("invalid file encoding")

	// ErrMissingHeader is returned when the file has no header row
	ErrMissingHeader = errors.New("order file missing header row")

	// ErrUnsupportedFormat is returned for file extensions the pipeline cannot read
	ErrUnsupportedFormat = errors.New("unsupported order file format")
)
