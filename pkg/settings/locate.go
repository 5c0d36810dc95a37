package settings

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
)

// SearchPolicy returns the directories searched for FileName, in order.
type SearchPolicy func() []string

// Platform describes the environment DefaultSearchPolicy derives candidates from.
type Platform struct {
	GOOS   string
	Getenv func(string) string
	ExeDir string
}

// CurrentPlatform describes the running process.
func CurrentPlatform() Platform {
	p := Platform{
		GOOS:   runtime.GOOS,
		Getenv: os.Getenv,
	}
	if exe, err := os.Executable(); err == nil {
		p.ExeDir = filepath.Dir(exe)
	}
	return p
}

// DefaultSearchPolicy tries the per-user config directory of the platform first,
// then the executable's directory and its settings/ subdirectory.
func DefaultSearchPolicy(p Platform) SearchPolicy {
	return func() []string {
		var dirs []string

		switch p.GOOS {
		case "linux":
			if home := p.Getenv("HOME"); home != "" {
				dirs = append(dirs, filepath.Join(home, ".config", "radiorec"))
			}
		case "windows":
			if local := p.Getenv("LOCALAPPDATA"); local != "" {
				dirs = append(dirs, filepath.Join(local, "radiorec"))
			}
		case "darwin":
			if home := p.Getenv("HOME"); home != "" {
				dirs = append(dirs, filepath.Join(home, "Library", "Application Support", "radiorec"))
			}
		}

		if p.ExeDir != "" {
			dirs = append(dirs, p.ExeDir, filepath.Join(p.ExeDir, "settings"))
		}

		return dirs
	}
}

// Locate returns the first existing settings file among the policy's directories.
func Locate(policy SearchPolicy) (string, error) {
	for _, dir := range policy() {
		name := filepath.Join(dir, FileName)
		info, err := os.Stat(name)
		if err != nil || info.IsDir() {
			continue
		}
		return name, nil
	}

	return "", ErrNotFound
}

// Find loads the settings from explicit when it is set, or from the first
// file the policy locates otherwise.
func Find(explicit string, policy SearchPolicy) (*Settings, error) {
	if explicit != "" {
		return Load(explicit)
	}

	name, err := Locate(policy)
	if err != nil {
		return nil, err
	}

	s, err := Load(name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load located settings")
	}
	return s, nil
}
