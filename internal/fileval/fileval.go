// Package fileval checks files before they are handed to a linter: files
// the diff names may be gone from the working tree, too large for the
// configured limit, or binary content.
package fileval

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// defaultReadLimit bounds the UTF-8 smoke check when no max size is set.
const defaultReadLimit = 1 << 20 // 1 MB

// NotAccessibleError is returned when the file cannot be read at all.
type NotAccessibleError struct {
	Path string
	Err  error
}

func (e *NotAccessibleError) Error() string {
	return fmt.Sprintf("%s: file not accessible: %v", e.Path, e.Err)
}

func (e *NotAccessibleError) Unwrap() error {
	return e.Err
}

// NotRegularFileError is returned for directories, sockets and the like.
type NotRegularFileError struct {
	Path string
	Mode fs.FileMode
}

func (e *NotRegularFileError) Error() string {
	return fmt.Sprintf("%s: not a regular file (%s)", e.Path, e.Mode.Type())
}

// FileTooLargeError is returned when a file exceeds the configured maximum size.
type FileTooLargeError struct {
	Path    string
	Size    int64
	MaxSize int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf(
		"%s: file too large (%d > %d bytes); raise [linter] max-file-size to check it",
		e.Path, e.Size, e.MaxSize,
	)
}

// NotUTF8Error is returned when a file does not appear to be valid UTF-8 text.
type NotUTF8Error struct {
	Path string
}

func (e *NotUTF8Error) Error() string {
	return e.Path + ": file does not appear to be valid UTF-8 text"
}

// ValidateFile runs the checks in order:
//  1. The file exists and can be stat'ed
//  2. It is a regular file (symlinks are followed)
//  3. Maximum size check (when maxSize > 0)
//  4. UTF-8 smoke check
func ValidateFile(path string, maxSize int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return &NotAccessibleError{Path: path, Err: err}
	}

	if !info.Mode().IsRegular() {
		return &NotRegularFileError{Path: path, Mode: info.Mode()}
	}

	if maxSize > 0 && info.Size() > maxSize {
		return &FileTooLargeError{Path: path, Size: info.Size(), MaxSize: maxSize}
	}

	readLimit := maxSize
	if readLimit <= 0 {
		readLimit = defaultReadLimit
	}
	ok, err := LooksUTF8(path, readLimit)
	if err != nil {
		return &NotAccessibleError{Path: path, Err: err}
	}
	if !ok {
		return &NotUTF8Error{Path: path}
	}
	return nil
}

// IsMissing reports whether err says the file does not exist.
func IsMissing(err error) bool {
	var nae *NotAccessibleError
	return errors.As(err, &nae) && errors.Is(nae.Err, fs.ErrNotExist)
}
