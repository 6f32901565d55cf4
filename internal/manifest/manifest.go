// Package manifest reads and writes the per-project xervo.toml file.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest file looked up in a project directory.
const FileName = "xervo.toml"

// Manifest binds a local directory to a project.
type Manifest struct {
	// Project is the project name or id.
	Project string `toml:"project"`

	// Exclude lists glob patterns, relative to the project directory,
	// left out of deploy archives.
	Exclude []string `toml:"exclude,omitempty"`

	// Dir is the directory holding the manifest.
	Dir string `toml:"-"`
}

// Load reads the manifest in dir. A missing file yields an empty
// manifest for dir.
func Load(dir string) (*Manifest, error) {
	m := &Manifest{Dir: dir}
	md, err := toml.DecodeFile(filepath.Join(dir, FileName), m)
	if errors.Is(err, fs.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", FileName, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", FileName, strings.Join(keys, ", "))
	}
	m.Project = strings.TrimSpace(m.Project)
	return m, nil
}

// Find loads the nearest manifest from start upwards. When none exists
// the empty manifest for start is returned.
func Find(start string) (*Manifest, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, err
	}
	for dir := abs; ; {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return Load(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return &Manifest{Dir: abs}, nil
		}
		dir = parent
	}
}

// Exists reports whether the manifest was read from disk.
func (m *Manifest) Exists() bool {
	_, err := os.Stat(m.Path())
	return err == nil
}

// Path returns the manifest file path.
func (m *Manifest) Path() string {
	return filepath.Join(m.Dir, FileName)
}

// Save writes the manifest to Dir.
func (m *Manifest) Save() error {
	f, err := os.Create(m.Path())
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(m); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", FileName, err)
	}
	return f.Close()
}
