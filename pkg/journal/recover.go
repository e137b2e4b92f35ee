package journal

import (
	"errors"
	"io"
	"os"
	"time"
)

// Recover validates the journal at path and truncates everything after the
// last intact entry. A missing file is not an error.
func Recover(path string) (*RecoveryResult, error) {
	return scan(path, true)
}

// Verify reports what Recover would do without modifying the file.
func Verify(path string) (*RecoveryResult, error) {
	return scan(path, false)
}

func scan(path string, truncate bool) (*RecoveryResult, error) {
	start := time.Now()

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &RecoveryResult{RecoveryTime: time.Since(start)}, nil
		}
		return nil, err
	}

	result := &RecoveryResult{FileSizeBefore: info.Size()}

	reader, err := NewReader(ReaderConfig{FilePath: path})
	if err != nil {
		return nil, err
	}

	var lastValid int64
	var corrupt bool
	for {
		if _, err := reader.Next(); err != nil {
			if errors.Is(err, ErrCorruption) {
				corrupt = true
				break
			}
			if errors.Is(err, io.EOF) {
				break
			}
			reader.Close()
			return nil, err
		}
		result.EntriesValidated++
		lastValid = reader.Offset()
	}
	reader.Close()

	result.FileSizeAfter = result.FileSizeBefore
	if corrupt {
		result.BytesTruncated = result.FileSizeBefore - lastValid
		result.FileSizeAfter = lastValid
		if truncate {
			if err := os.Truncate(path, lastValid); err != nil {
				return nil, err
			}
		}
	}

	result.RecoveryTime = time.Since(start)
	return result, nil
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
