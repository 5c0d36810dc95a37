package recorder

import (
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// maxMinutes is the longest request that fits in a time.Duration.
const maxMinutes = math.MaxInt64 / int64(time.Minute)

// CaptureRequest names what to record and for how long.
type CaptureRequest struct {
	Station string
	Minutes int
	Name    string
}

func (r CaptureRequest) Validate() error {
	if strings.TrimSpace(r.Station) == "" {
		return errors.Wrap(ErrInvalidRequest, "station is required")
	}
	if r.Minutes < 1 {
		return errors.Wrapf(ErrInvalidRequest, "duration must be a positive integer, got %d", r.Minutes)
	}
	if int64(r.Minutes) > maxMinutes {
		return errors.Wrapf(ErrInvalidRequest, "duration must be at most %d minutes, got %d", maxMinutes, r.Minutes)
	}
	return nil
}

// Duration is the requested capture length.
func (r CaptureRequest) Duration() time.Duration {
	return time.Duration(r.Minutes) * time.Minute
}
