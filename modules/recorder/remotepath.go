package recorder

import (
	"mime"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	timestampLayout  = "2006-01-02T15_04_05"
	defaultExtension = "mp3"
)

var extensions = map[string]string{
	"audio/mpeg":      "mp3",
	"application/ogg": "ogg",
	"audio/ogg":       "ogg",
}

var playlistTypes = map[string]struct{}{
	"audio/x-mpegurl":               {},
	"audio/mpegurl":                 {},
	"application/x-mpegurl":         {},
	"application/vnd.apple.mpegurl": {},
	"audio/x-scpls":                 {},
	"application/pls+xml":           {},
}

// RemotePath is where a recording is uploaded.
type RemotePath struct {
	Path      string
	Extension string
	// Guessed is set when the content type was not recognised and the default
	// extension was used.
	Guessed bool
}

// BuildRemotePath names a recording as <base>/<timestamp>_<station>[_<label>].<ext>.
func BuildRemotePath(now time.Time, station, label, contentType, baseDir string) (RemotePath, error) {
	ext, known, err := extensionFor(contentType)
	if err != nil {
		return RemotePath{}, err
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(baseDir, "/"))
	b.WriteByte('/')
	b.WriteString(now.Format(timestampLayout))
	b.WriteByte('_')
	b.WriteString(station)
	if label != "" {
		b.WriteByte('_')
		b.WriteString(label)
	}
	b.WriteByte('.')
	b.WriteString(ext)

	return RemotePath{Path: b.String(), Extension: ext, Guessed: !known}, nil
}

func extensionFor(contentType string) (ext string, known bool, err error) {
	mediaType := strings.ToLower(strings.TrimSpace(contentType))
	if parsed, _, perr := mime.ParseMediaType(contentType); perr == nil {
		mediaType = parsed
	}

	if _, ok := playlistTypes[mediaType]; ok {
		return "", false, errors.Wrapf(ErrUnsupportedContentType, "%q is a playlist", contentType)
	}

	if ext, ok := extensions[mediaType]; ok {
		return ext, true, nil
	}

	return defaultExtension, false, nil
}
