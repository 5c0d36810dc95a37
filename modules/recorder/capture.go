package recorder

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/valyala/bytebufferpool"
)

// minWriteBufSize and maxWriteBufSize clamp the configured write buffer.
const (
	minWriteBufSize = 4 * 1024        // 4 KiB
	maxWriteBufSize = 4 * 1024 * 1024 // 4 MiB
)

// Capture copies a stream into a spool until a wall-clock deadline passes.
type Capture struct {
	chunkSize    int
	writeBufSize int
	spoolDir     string
	logger       *slog.Logger

	now        func() time.Time
	newSpool   func(dir string) (*Spool, error)
	bufferPool *bytebufferpool.Pool
}

func NewCapture(cfg *Config, logger *slog.Logger) *Capture {
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	writeBufSize := cfg.WriteBufferSize
	if writeBufSize < minWriteBufSize {
		writeBufSize = minWriteBufSize
	}
	if writeBufSize > maxWriteBufSize {
		writeBufSize = maxWriteBufSize
	}

	return &Capture{
		chunkSize:    chunkSize,
		writeBufSize: writeBufSize,
		spoolDir:     cfg.SpoolDir,
		logger:       logger,
		now:          time.Now,
		newSpool:     createSpool,
		bufferPool:   &bytebufferpool.Pool{},
	}
}

// Record reads r in fixed chunks into a fresh spool until d has elapsed and
// returns the closed spool. The deadline is only checked between reads, so a
// recording may run past d by up to one chunk's transfer time but never ends
// before it. On error the spool has already been removed.
func (c *Capture) Record(r io.Reader, d time.Duration) (*Spool, error) {
	spool, err := c.newSpool(c.spoolDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSpoolWriteFailed, err)
	}
	c.logger.Info("spooling", "path", spool.Path())

	if err := c.fill(spool, r, d); err != nil {
		if rmErr := spool.Remove(); rmErr != nil {
			c.logger.Error("error removing spool", "err", rmErr, "path", spool.Path())
		}
		return nil, err
	}

	return spool, nil
}

func (c *Capture) fill(spool *Spool, r io.Reader, d time.Duration) error {
	wb := c.bufferPool.Get()
	defer c.bufferPool.Put(wb)

	flush := func() error {
		if wb.Len() == 0 {
			return nil
		}
		if _, err := spool.Write(wb.B); err != nil {
			return fmt.Errorf("%w: %w", ErrSpoolWriteFailed, err)
		}
		wb.Reset()
		return nil
	}

	chunk := make([]byte, c.chunkSize)
	start := c.now()
	deadline := start.Add(d)

	for c.now().Before(deadline) {
		n, readErr := r.Read(chunk)
		if n > 0 {
			_, _ = wb.Write(chunk[:n])
			if wb.Len() >= c.writeBufSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		if readErr != nil {
			// Keep what arrived so far in the spool until it is removed.
			_ = flush()
			if readErr == io.EOF {
				readErr = io.ErrUnexpectedEOF
			}
			return fmt.Errorf("%w after %s: %w", ErrCaptureInterrupted, c.now().Sub(start).Round(time.Second), readErr)
		}
	}

	if err := flush(); err != nil {
		return err
	}
	if err := spool.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrSpoolWriteFailed, err)
	}

	c.logger.Debug("capture complete", "bytes", spool.Size(), "elapsed", c.now().Sub(start))
	return nil
}
