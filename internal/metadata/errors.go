package metadata

import "fmt"

// ReadError wraps a decoding failure with the file it came from.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("could not parse %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// InvalidDocumentError means the data decoded fine but is not a torrent.
type InvalidDocumentError struct {
	Path   string
	Reason string
}

func (e *InvalidDocumentError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("not a valid torrent: %s", e.Reason)
	}
	return fmt.Sprintf("%s is not a valid torrent file: %s", e.Path, e.Reason)
}
