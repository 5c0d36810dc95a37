// Package webdav uploads recordings to a WebDAV server.
package webdav

import (
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/studio-b12/gowebdav"

	"github.com/zachfi/radiorec/pkg/settings"
)

// Client performs the two remote operations a recording needs: a connect
// handshake and a single upload. Retries are left to the caller.
type Client struct {
	dav       *gowebdav.Client
	transport *sizedTransport
	logger    *slog.Logger

	upload sync.Mutex
}

func New(remote settings.Remote, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	transport := &sizedTransport{base: http.DefaultTransport, size: -1}
	dav := gowebdav.NewClient(remote.URL, remote.User, remote.Password)
	dav.SetTransport(transport)

	return &Client{
		dav:       dav,
		transport: transport,
		logger:    logger.With("remote", remote.URL),
	}
}

// Connect checks that the server is reachable and accepts the credentials.
func (c *Client) Connect() error {
	if err := c.dav.Connect(); err != nil {
		return errors.Wrap(err, "failed to connect to webdav server")
	}
	c.logger.Debug("connected")
	return nil
}

// Upload writes the local file to remotePath.
func (c *Client) Upload(remotePath, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return errors.Wrap(err, "failed to open local file")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errors.Wrap(err, "failed to stat local file")
	}

	c.upload.Lock()
	defer c.upload.Unlock()

	c.transport.setSize(info.Size())
	defer c.transport.setSize(-1)

	if err := c.dav.WriteStream(remotePath, f, 0o644); err != nil {
		return errors.Wrapf(err, "failed to upload %s", remotePath)
	}

	c.logger.Debug("uploaded", "path", remotePath, "bytes", info.Size())
	return nil
}

// sizedTransport sets the Content-Length of the PUT for an upload in flight,
// so the body is not sent chunked.
type sizedTransport struct {
	base http.RoundTripper

	mu   sync.Mutex
	size int64 // -1 when no upload is in flight
}

func (t *sizedTransport) setSize(n int64) {
	t.mu.Lock()
	t.size = n
	t.mu.Unlock()
}

func (t *sizedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	size := t.size
	t.mu.Unlock()

	if req.Method != http.MethodPut || req.ContentLength > 0 || size < 0 {
		return t.base.RoundTrip(req)
	}

	sized := req.Clone(req.Context())
	sized.ContentLength = size
	if size == 0 {
		if req.Body != nil {
			req.Body.Close()
		}
		sized.Body = http.NoBody
	}

	return t.base.RoundTrip(sized)
}
