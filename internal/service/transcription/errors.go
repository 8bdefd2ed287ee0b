package transcription

import (
	"context"
	"errors"
	"fmt"
)

// Error kinds for pipeline failures. Handlers map ErrMissingInput to a
// 400 response and every other kind to a 500 with the wrapped upstream
// message.
var (
	ErrMissingInput      = errors.New("missing input")
	ErrTranscodeFailed   = errors.New("transcode failed")
	ErrStagingFailed     = errors.New("staging failed")
	ErrSubmissionFailed  = errors.New("submission failed")
	ErrRecognitionFailed = errors.New("recognition failed")
	ErrEmptyResult       = errors.New("empty result")
	ErrTimeout           = errors.New("timeout")
)

// wrapKind wraps err with the given kind, except that deadline expiry on
// an external call always surfaces as ErrTimeout.
func wrapKind(kind error, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", kind, err)
}
