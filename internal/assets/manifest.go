package assets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// Class is an asset kind. Its value doubles as the directory name under
// assets/ and the manifest key.
type Class string

const (
	Image Class = "png"
	Model Class = "stl"
)

// Classes lists every known asset class.
var Classes = []Class{Image, Model}

// FileName returns the conventional file name of id's asset of class c.
func (c Class) FileName(id string) string {
	return id + "." + string(c)
}

// Path returns the conventional relative path of fileName.
func (c Class) Path(fileName string) string {
	return "assets/" + string(c) + "/" + fileName
}

// ManifestPath is the manifest location relative to the asset root.
const ManifestPath = "assets/manifest.json"

// Manifest lists existing asset files per class.
type Manifest struct {
	PNG []string `json:"png"`
	STL []string `json:"stl"`
}

// Files returns the listing for class c.
func (m Manifest) Files(c Class) []string {
	switch c {
	case Image:
		return m.PNG
	case Model:
		return m.STL
	}
	return nil
}

// ParseManifest decodes a manifest. Missing keys are empty listings.
func ParseManifest(b []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return Manifest{}, fmt.Errorf("invalid manifest JSON: %w", err)
	}
	return m, nil
}

// BuildManifest scans root/assets/<class>/ for files with the class
// extension. Missing class directories yield empty listings.
func BuildManifest(root string) (Manifest, error) {
	var m Manifest
	for _, c := range Classes {
		dir := filepath.Join(root, "assets", string(c))
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Manifest{}, fmt.Errorf("cannot scan %s: %w", dir, err)
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), "."+string(c)) {
				continue
			}
			names = append(names, e.Name())
		}
		sort.Strings(names)
		switch c {
		case Image:
			m.PNG = names
		case Model:
			m.STL = names
		}
	}
	if m.PNG == nil {
		m.PNG = []string{}
	}
	if m.STL == nil {
		m.STL = []string{}
	}
	return m, nil
}

// WriteManifest writes m to root/assets/manifest.json. The file is replaced
// by rename while holding an exclusive lock next to it, so concurrent
// writers never interleave and readers never see a partial file.
func WriteManifest(root string, m Manifest, timeout time.Duration) error {
	path := filepath.Join(root, filepath.FromSlash(ManifestPath))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create assets dir: %w", err)
	}

	unlock, err := acquireLock(path+".lock", timeout)
	if err != nil {
		return err
	}
	defer unlock()

	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "manifest-*.json")
	if err != nil {
		return fmt.Errorf("cannot create temp manifest: %w", err)
	}
	if _, err := tmp.Write(append(b, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("cannot write temp manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("cannot install manifest %s: %w", path, err)
	}
	return nil
}

func acquireLock(lockPath string, timeout time.Duration) (func(), error) {
	l := flock.New(lockPath)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return func() {}, fmt.Errorf("cannot acquire manifest lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return func() {}, fmt.Errorf("another manifest write is in progress (lock: %s)", lockPath)
		}
		time.Sleep(100 * time.Millisecond)
	}
}
