package archive

import (
	"errors"
	"fmt"
)

// ErrWaitTimeout is returned when an expected element never appears.
var ErrWaitTimeout = errors.New("timed out waiting for page element")

// ErrNoEntries is returned when the archive listing has no entry links.
//
// This typically occurs when:
//   - The month/year has no published entries
//   - The listing markup changed and the item selector no longer matches links
var ErrNoEntries = errors.New("no archive entries found")

// WaitError reports which element a page wait was blocked on.
//
// WaitError unwraps to the underlying cause, so callers can test for
// ErrWaitTimeout with errors.Is:
//
//	if errors.Is(err, archive.ErrWaitTimeout) {
//	    var we *archive.WaitError
//	    errors.As(err, &we)
//	    log.Printf("no %s on %s", we.Selector, we.URL)
//	}
type WaitError struct {
	Selector string
	URL      string
	Err      error
}

func (e *WaitError) Error() string {
	return fmt.Sprintf("wait for %q on %s: %v", e.Selector, e.URL, e.Err)
}

func (e *WaitError) Unwrap() error {
	return e.Err
}
