package recorder

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

type spoolFile interface {
	io.Writer
	Sync() error
	Close() error
}

// Spool is the temporary file a capture writes into. It is never left behind:
// whoever holds it calls Remove on every exit path.
type Spool struct {
	path   string
	f      spoolFile
	size   int64
	closed bool
}

func createSpool(dir string) (*Spool, error) {
	f, err := os.CreateTemp(dir, "radiorec-*.spool")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create spool")
	}
	return &Spool{path: f.Name(), f: f}, nil
}

// Path is the local file name of the spool.
func (s *Spool) Path() string { return s.path }

// Size is the number of bytes written so far.
func (s *Spool) Size() int64 { return s.size }

func (s *Spool) Write(p []byte) (int, error) {
	n, err := s.f.Write(p)
	s.size += int64(n)
	return n, err
}

// Close syncs and closes the file. It is safe to call more than once.
func (s *Spool) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	syncErr := s.f.Sync()
	if err := s.f.Close(); err != nil {
		return err
	}
	return syncErr
}

// Remove closes the spool if needed and deletes it from disk.
func (s *Spool) Remove() error {
	if !s.closed {
		s.closed = true
		_ = s.f.Close()
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
