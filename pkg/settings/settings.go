package settings

import (
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

const (
	stationsSection = "STATIONS"
	remoteSection   = "WEBDAV"

	// FileName is the settings file name looked up in every candidate directory.
	FileName = "settings.ini"
)

var (
	ErrNotFound         = errors.New("settings not found")
	ErrUnknownStation   = errors.New("unknown station")
	ErrIncompleteRemote = errors.New("incomplete WEBDAV section")
)

// Remote holds the connection parameters of the WebDAV server.
type Remote struct {
	URL      string
	User     string
	Password string
	Dir      string
}

// Validate reports whether enough of the remote section is present to attempt an upload.
func (r Remote) Validate() error {
	var missing []string
	if r.URL == "" {
		missing = append(missing, "url")
	}
	if r.Dir == "" {
		missing = append(missing, "remote_dir")
	}
	if len(missing) > 0 {
		return errors.Wrapf(ErrIncompleteRemote, "missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Settings is loaded once per invocation and is read-only afterwards.
type Settings struct {
	Stations map[string]string
	Remote   Remote
}

// Load reads an INI settings file. Station names are case folded.
func Load(path string) (*Settings, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		// Shoutcast URLs commonly end in ";".
		IgnoreInlineComment: true,
		InsensitiveKeys:     true,
	}, path)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return nil, errors.Wrap(ErrNotFound, path)
		}
		return nil, errors.Wrapf(err, "failed to parse settings file %s", path)
	}

	return fromFile(f), nil
}

func fromFile(f *ini.File) *Settings {
	s := &Settings{Stations: map[string]string{}}

	if sec, err := f.GetSection(stationsSection); err == nil {
		for _, k := range sec.Keys() {
			s.Stations[k.Name()] = k.String()
		}
	}

	if sec, err := f.GetSection(remoteSection); err == nil {
		s.Remote = Remote{
			URL:      sec.Key("url").String(),
			User:     sec.Key("user").String(),
			Password: sec.Key("password").String(),
			Dir:      sec.Key("remote_dir").String(),
		}
	}

	return s
}

// StreamURL returns the configured URL for a station.
func (s *Settings) StreamURL(station string) (string, error) {
	u, ok := s.Stations[strings.ToLower(station)]
	if !ok {
		return "", errors.Wrap(ErrUnknownStation, station)
	}
	return u, nil
}

// StationNames returns the configured station names in lexicographic order.
func (s *Settings) StationNames() []string {
	names := make([]string, 0, len(s.Stations))
	for name := range s.Stations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
