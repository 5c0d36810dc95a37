package shoutcast

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

const playlistExt = ".m3u"

var (
	// ErrEmptyPlaylist is returned when a playlist names no stream.
	ErrEmptyPlaylist = errors.New("playlist contains no stream URL")
	// ErrPlaylistTooLarge is returned for playlists over maxPlaylistSize bytes.
	ErrPlaylistTooLarge = errors.New("playlist too large")
)

// IsPlaylist reports whether rawURL points at an M3U playlist rather than a stream.
func IsPlaylist(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.HasSuffix(strings.ToLower(rawURL), playlistExt)
	}
	return strings.HasSuffix(strings.ToLower(u.Path), playlistExt)
}

// parseM3U returns the first line that is neither a comment nor empty, verbatim.
// A final line without a newline must be longer than one character.
func parseM3U(body io.Reader) (string, error) {
	r := bufio.NewReader(body)
	for {
		raw, err := r.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("failed to read playlist: %w", err)
		}

		line := strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r")
		// Skip comments and empty lines
		if len(raw) > 1 && line != "" && !strings.HasPrefix(line, "#") {
			return line, nil
		}

		if err == io.EOF {
			return "", ErrEmptyPlaylist
		}
	}
}

// ResolvePlaylist fetches an M3U playlist and returns the stream URL it names.
func (c *Client) ResolvePlaylist(ctx context.Context, playlistURL string) (string, error) {
	req, err := c.newRequest(ctx, playlistURL)
	if err != nil {
		return "", err
	}

	resp, err := c.playlist.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch playlist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("failed to fetch playlist: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPlaylistSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read playlist: %w", err)
	}
	if len(body) > maxPlaylistSize {
		return "", fmt.Errorf("%w: more than %d bytes", ErrPlaylistTooLarge, maxPlaylistSize)
	}

	return parseM3U(bytes.NewReader(body))
}
