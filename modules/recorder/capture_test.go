package recorder

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"
)

// steppingClock advances by step every time it is read.
type steppingClock struct {
	t    time.Time
	step time.Duration
}

func (c *steppingClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

// endlessReader returns size bytes of fill per read, forever.
type endlessReader struct {
	fill  byte
	reads int
}

func (r *endlessReader) Read(p []byte) (int, error) {
	r.reads++
	for i := range p {
		p[i] = r.fill
	}
	return len(p), nil
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("no space left on device") }
func (failingWriter) Sync() error                { return nil }
func (failingWriter) Close() error               { return nil }

func newTestCapture(t *testing.T, cfg Config) *Capture {
	t.Helper()
	cfg.SpoolDir = t.TempDir()
	return NewCapture(&cfg, slog.New(slog.DiscardHandler))
}

func TestCapture_Record(t *testing.T) {
	c := newTestCapture(t, Config{ChunkSize: 1024})
	clock := &steppingClock{t: time.Unix(0, 0), step: time.Second}
	c.now = clock.now

	r := &endlessReader{fill: 'a'}
	spool, err := c.Record(r, 10*time.Second)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	defer spool.Remove()

	b, err := os.ReadFile(spool.Path())
	if err != nil {
		t.Fatal(err)
	}
	if int64(len(b)) != spool.Size() {
		t.Errorf("expected %d bytes on disk, got %d", spool.Size(), len(b))
	}
	if len(b) != r.reads*1024 {
		t.Errorf("expected %d bytes, got %d", r.reads*1024, len(b))
	}
	if !bytes.Equal(b, bytes.Repeat([]byte("a"), len(b))) {
		t.Errorf("unexpected spool content")
	}
}

func TestCapture_DeadlineLowerBound(t *testing.T) {
	c := newTestCapture(t, Config{})

	d := 150 * time.Millisecond
	start := time.Now()
	r := readerFunc(func(p []byte) (int, error) {
		time.Sleep(time.Millisecond)
		return len(p), nil
	})
	spool, err := c.Record(r, d)
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	defer spool.Remove()

	if elapsed < d {
		t.Errorf("capture finished after %s, before the requested %s", elapsed, d)
	}
}

func TestCapture_ChunkSize(t *testing.T) {
	c := newTestCapture(t, Config{})
	clock := &steppingClock{t: time.Unix(0, 0), step: time.Second}
	c.now = clock.now

	var sizes []int
	r := readerFunc(func(p []byte) (int, error) {
		sizes = append(sizes, len(p))
		return len(p), nil
	})

	spool, err := c.Record(r, 5*time.Second)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	defer spool.Remove()

	if len(sizes) == 0 {
		t.Fatal("expected reads")
	}
	for _, n := range sizes {
		if n != defaultChunkSize {
			t.Errorf("expected chunk of %d bytes, got %d", defaultChunkSize, n)
		}
	}
}

type readerFunc func([]byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }

func TestCapture_Interrupted(t *testing.T) {
	for name, r := range map[string]io.Reader{
		"eof":   bytes.NewReader(bytes.Repeat([]byte("x"), 3000)),
		"error": readerFunc(func([]byte) (int, error) { return 0, errors.New("connection reset by peer") }),
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestCapture(t, Config{})
			clock := &steppingClock{t: time.Unix(0, 0), step: time.Second}
			c.now = clock.now

			var created string
			c.newSpool = func(dir string) (*Spool, error) {
				s, err := createSpool(dir)
				if s != nil {
					created = s.Path()
				}
				return s, err
			}

			spool, err := c.Record(r, time.Hour)
			if !errors.Is(err, ErrCaptureInterrupted) {
				t.Fatalf("expected ErrCaptureInterrupted, got %v", err)
			}
			if spool != nil {
				t.Errorf("expected no spool on failure")
			}
			if _, statErr := os.Stat(created); !os.IsNotExist(statErr) {
				t.Errorf("expected spool %s to be removed, stat err: %v", created, statErr)
			}
		})
	}
}

func TestCapture_SpoolWriteFailed(t *testing.T) {
	c := newTestCapture(t, Config{WriteBufferSize: minWriteBufSize})
	clock := &steppingClock{t: time.Unix(0, 0), step: time.Millisecond}
	c.now = clock.now

	var created string
	c.newSpool = func(dir string) (*Spool, error) {
		s, err := createSpool(dir)
		if err != nil {
			return nil, err
		}
		created = s.Path()
		file := s.f
		s.f = failingWriter{}
		_ = file.Close()
		return s, nil
	}

	_, err := c.Record(&endlessReader{}, time.Minute)
	if !errors.Is(err, ErrSpoolWriteFailed) {
		t.Fatalf("expected ErrSpoolWriteFailed, got %v", err)
	}
	if _, statErr := os.Stat(created); !os.IsNotExist(statErr) {
		t.Errorf("expected spool %s to be removed, stat err: %v", created, statErr)
	}
}
