package recorder

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/zachfi/radiorec/pkg/settings"
	"github.com/zachfi/radiorec/pkg/shoutcast"
)

// StreamOpener opens a stream URL, following playlist indirection.
type StreamOpener interface {
	Open(ctx context.Context, url string) (*shoutcast.Stream, error)
}

// ResolvedStream is a live stream handle and what the server declared about it.
type ResolvedStream struct {
	URL         string
	ContentType string
	Stream      *shoutcast.Stream
}

// StationResolver turns a station name into an open stream.
type StationResolver struct {
	settings *settings.Settings
	opener   StreamOpener
}

func NewStationResolver(s *settings.Settings, opener StreamOpener) *StationResolver {
	return &StationResolver{settings: s, opener: opener}
}

// Resolve looks the station up and opens its stream. The caller owns the
// returned stream and must close it.
func (r *StationResolver) Resolve(ctx context.Context, station string) (*ResolvedStream, error) {
	rawURL, err := r.settings.StreamURL(station)
	if err != nil {
		return nil, err
	}

	stream, err := r.opener.Open(ctx, rawURL)
	if err != nil {
		if errors.Is(err, ErrEmptyPlaylist) {
			return nil, errors.Wrap(err, rawURL)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrStreamUnreachable, rawURL, err)
	}

	return &ResolvedStream{
		URL:         stream.URL,
		ContentType: stream.ContentType,
		Stream:      stream,
	}, nil
}
