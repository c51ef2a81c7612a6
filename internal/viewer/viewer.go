// Package viewer hands files to the operating system's default handler,
// which is how the generated slip reaches a PDF viewer for review and
// printing.
package viewer

import (
	"fmt"

	"github.com/skratchdot/open-golang/open"
)

// OpenFailedError means no handler accepted the file. Non-fatal: the file
// exists on disk and the path is part of the message so the user can open
// it manually.
type OpenFailedError struct {
	Path string
	Err  error
}

func (e *OpenFailedError) Error() string {
	return fmt.Sprintf("failed to open %s with the default application: %v", e.Path, e.Err)
}

func (e *OpenFailedError) Unwrap() error { return e.Err }

// Open launches the default application for path. The file is never
// modified; opening twice is safe.
func Open(path string) error {
	if err := open.Run(path); err != nil {
		return &OpenFailedError{Path: path, Err: err}
	}
	return nil
}
