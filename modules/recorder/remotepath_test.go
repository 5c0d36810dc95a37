package recorder

import (
	"errors"
	"testing"
	"time"
)

func TestBuildRemotePath(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		station     string
		label       string
		contentType string
		base        string
		want        string
		guessed     bool
	}{
		{"with label", "jazzfm", "session1", "audio/mpeg", "/music", "/music/2024-01-01T00_00_00_jazzfm_session1.mp3", false},
		{"without label", "jazzfm", "", "audio/mpeg", "/music", "/music/2024-01-01T00_00_00_jazzfm.mp3", false},
		{"trailing slash", "jazzfm", "", "audio/mpeg", "/music/", "/music/2024-01-01T00_00_00_jazzfm.mp3", false},
		{"empty base", "jazzfm", "", "audio/mpeg", "", "/2024-01-01T00_00_00_jazzfm.mp3", false},
		{"ogg", "classic", "", "application/ogg", "/music", "/music/2024-01-01T00_00_00_classic.ogg", false},
		{"ogg audio", "classic", "", "audio/ogg", "/music", "/music/2024-01-01T00_00_00_classic.ogg", false},
		{"parameters", "jazzfm", "", "Audio/MPEG; charset=binary", "/music", "/music/2024-01-01T00_00_00_jazzfm.mp3", false},
		{"unknown", "jazzfm", "", "audio/aacp", "/music", "/music/2024-01-01T00_00_00_jazzfm.mp3", true},
		{"missing", "jazzfm", "", "", "/music", "/music/2024-01-01T00_00_00_jazzfm.mp3", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := BuildRemotePath(now, tc.station, tc.label, tc.contentType, tc.base)
			if err != nil {
				t.Fatalf("BuildRemotePath failed: %v", err)
			}
			if got.Path != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got.Path)
			}
			if got.Guessed != tc.guessed {
				t.Errorf("expected guessed=%v, got %v", tc.guessed, got.Guessed)
			}
		})
	}
}

func TestBuildRemotePath_Deterministic(t *testing.T) {
	now := time.Date(2024, 3, 9, 17, 5, 42, 999, time.UTC)

	a, errA := BuildRemotePath(now, "jazzfm", "x", "audio/mpeg", "/music")
	b, errB := BuildRemotePath(now, "jazzfm", "x", "audio/mpeg", "/music")
	if errA != nil || errB != nil {
		t.Fatalf("unexpected errors: %v, %v", errA, errB)
	}
	if a != b {
		t.Errorf("expected identical paths, got %v and %v", a, b)
	}
	if a.Path != "/music/2024-03-09T17_05_42_jazzfm_x.mp3" {
		t.Errorf("unexpected path %s", a.Path)
	}
}

func TestBuildRemotePath_Playlists(t *testing.T) {
	now := time.Now()
	for ct := range playlistTypes {
		_, err := BuildRemotePath(now, "jazzfm", "", ct, "/music")
		if !errors.Is(err, ErrUnsupportedContentType) {
			t.Errorf("%s: expected ErrUnsupportedContentType, got %v", ct, err)
		}
	}
}
