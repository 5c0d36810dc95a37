package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"testing"
	"time"

	"github.com/zachfi/radiorec/modules/recorder"
)

func testConfig(t *testing.T, settingsFile string, req recorder.CaptureRequest) Config {
	t.Helper()

	cfg := Config{}
	cfg.RegisterFlagsAndApplyDefaults("", flag.NewFlagSet(t.Name(), flag.PanicOnError))
	cfg.Recorder.SettingsFile = settingsFile
	cfg.Recorder.SpoolDir = t.TempDir()
	cfg.Recorder.Request = req

	return cfg
}

func writeSettings(t *testing.T, streamURL, davURL string) string {
	t.Helper()

	file := filepath.Join(t.TempDir(), "settings.ini")
	body := fmt.Sprintf("[STATIONS]\njazzfm = %s\n\n[WEBDAV]\nurl = %s\nremote_dir = /music\n", streamURL, davURL)
	if err := os.WriteFile(file, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return file
}

func newDAVServer(t *testing.T, uploads chan<- string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		case "MKCOL":
			w.WriteHeader(http.StatusCreated)
		case http.MethodPut:
			_, _ = io.Copy(io.Discard, r.Body)
			if uploads != nil {
				uploads <- r.URL.Path
			}
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(server.Close)

	return server
}

func TestApp_RunFailures(t *testing.T) {
	dav := newDAVServer(t, nil)
	settingsFile := writeSettings(t, "http://127.0.0.1:1/live", dav.URL)

	tests := []struct {
		name         string
		settingsFile string
		station      string
		want         error
	}{
		{
			name:         "settings not found",
			settingsFile: filepath.Join(t.TempDir(), "missing.ini"),
			station:      "jazzfm",
			want:         recorder.ErrSettingsNotFound,
		},
		{
			name:         "unknown station",
			settingsFile: settingsFile,
			station:      "rock",
			want:         recorder.ErrUnknownStation,
		},
		{
			name:         "stream unreachable",
			settingsFile: settingsFile,
			station:      "jazzfm",
			want:         recorder.ErrStreamUnreachable,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig(t, tc.settingsFile, recorder.CaptureRequest{Station: tc.station, Minutes: 1})

			a, err := New(cfg, slog.New(slog.DiscardHandler))
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}

			if err := a.Run(); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestApp_RunInvalidRequest(t *testing.T) {
	cfg := testConfig(t, "", recorder.CaptureRequest{Station: "jazzfm"})

	a, err := New(cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := a.Run(); !errors.Is(err, recorder.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestApp_RunSuccess(t *testing.T) {
	if testing.Short() {
		t.Skip("records for a full minute")
	}

	stream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			if _, err := w.Write(make([]byte, 2048)); err != nil {
				return
			}
			w.(http.Flusher).Flush()
			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
			}
		}
	}))
	t.Cleanup(stream.Close)

	uploads := make(chan string, 1)
	dav := newDAVServer(t, uploads)

	cfg := testConfig(t, writeSettings(t, stream.URL+"/live", dav.URL), recorder.CaptureRequest{Station: "jazzfm", Minutes: 1})

	a, err := New(cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := a.Run(); err != nil {
		t.Fatalf("expected a clean stop, got %v", err)
	}

	select {
	case p := <-uploads:
		if path.Dir(p) != "/music" || path.Ext(p) != ".mp3" {
			t.Errorf("unexpected upload path %s", p)
		}
	default:
		t.Fatal("expected an upload")
	}
}
