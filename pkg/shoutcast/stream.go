package shoutcast

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultUserAgent      = "iTunes/12.9.2 (Macintosh; OS X 10.14.3) AppleWebKit/606.4.5"
	defaultConnectTimeout = 5 * time.Second
	playlistTimeout       = 10 * time.Second
	maxPlaylistSize       = 64 * 1024
)

// Config controls how streams are requested.
type Config struct {
	UserAgent      string
	ConnectTimeout time.Duration
}

// Client opens streams and resolves playlists.
type Client struct {
	cfg    Config
	logger *slog.Logger

	stream   *http.Client
	playlist *http.Client
}

// NewClient returns a Client. Zero config values fall back to defaults.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	// Timeout for establishing the connection.
	// We don't want for the stream to timeout while we're reading it, but
	// we do want a timeout for establishing the connection to the server.
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		ResponseHeaderTimeout: 2 * cfg.ConnectTimeout,
		DisableCompression:    true,
	}

	return &Client{
		cfg:      cfg,
		logger:   logger,
		stream:   &http.Client{Transport: transport},
		playlist: &http.Client{Transport: transport, Timeout: playlistTimeout},
	}
}

// Stream represents an open shoutcast stream.
type Stream struct {
	// The URL the audio is read from, after playlist resolution
	URL string

	// Content type declared by the server
	ContentType string

	// The name of the server
	Name string

	// What category the server falls under
	Genre string

	// The description of the stream
	Description string

	// Homepage of the server
	Homepage string

	// Bitrate of the server
	Bitrate int

	// The underlying data stream
	rc io.ReadCloser
}

// Open establishes a connection to a remote server.
// An .m3u URL is resolved to the stream it names first.
func (c *Client) Open(ctx context.Context, url string) (*Stream, error) {
	c.logger.Debug("opening", "url", url)

	if IsPlaylist(url) {
		resolved, err := c.ResolvePlaylist(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve playlist URL: %w", err)
		}
		c.logger.Debug("resolved playlist to stream URL", "url", resolved)
		url = resolved
	}

	req, err := c.newRequest(ctx, url)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Icy-MetaData", "0")

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, err
	}

	for k, v := range resp.Header {
		c.logger.Debug("HTTP header", "key", k, "value", v[0])
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var bitrate int
	if rawBitrate := resp.Header.Get("icy-br"); rawBitrate != "" {
		// Some servers send "128,128"; the bitrate is informational only.
		if b, err := strconv.Atoi(rawBitrate); err == nil {
			bitrate = b
		}
	}

	s := &Stream{
		URL:         url,
		ContentType: resp.Header.Get("Content-Type"),
		Name:        resp.Header.Get("icy-name"),
		Genre:       resp.Header.Get("icy-genre"),
		Description: resp.Header.Get("icy-description"),
		Homepage:    resp.Header.Get("icy-url"),
		Bitrate:     bitrate,
		rc:          resp.Body,
	}

	return s, nil
}

func (c *Client) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("accept", "*/*")
	req.Header.Add("user-agent", c.cfg.UserAgent)
	return req, nil
}

// Read implements the standard Read interface
func (s *Stream) Read(buf []byte) (int, error) {
	return s.rc.Read(buf)
}

// Close closes the stream
func (s *Stream) Close() error {
	return s.rc.Close()
}
