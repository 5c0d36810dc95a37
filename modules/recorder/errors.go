package recorder

import (
	"github.com/pkg/errors"

	"github.com/zachfi/radiorec/pkg/settings"
	"github.com/zachfi/radiorec/pkg/shoutcast"
)

// Every failure aborts the recording. None of them is retried.
var (
	ErrInvalidRequest         = errors.New("invalid capture request")
	ErrSettingsNotFound       = settings.ErrNotFound
	ErrIncompleteRemote       = settings.ErrIncompleteRemote
	ErrUnknownStation         = settings.ErrUnknownStation
	ErrEmptyPlaylist          = shoutcast.ErrEmptyPlaylist
	ErrStreamUnreachable      = errors.New("stream unreachable")
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrCaptureInterrupted     = errors.New("capture interrupted")
	ErrSpoolWriteFailed       = errors.New("spool write failed")
	ErrUploadFailed           = errors.New("upload failed")
)
