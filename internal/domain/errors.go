package domain

import "fmt"

// ParseError reports a page that did not contain an expected structural landmark.
// Err is usually a *markup.AnchorError.
type ParseError struct {
	URL  string
	Step string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s: %v", e.URL, e.Step, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NetworkError reports a transport failure fetching a page or starting a media stream
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// TransferError reports a failed media transfer. The file at Path may be left
// partially written.
type TransferError struct {
	URL  string
	Path string
	Err  error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer %s to %s: %v", e.URL, e.Path, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// FilesystemError reports a directory or file that could not be created or opened
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}
