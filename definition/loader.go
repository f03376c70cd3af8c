package definition

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kbukum/comprehend/errors"
)

var extensions = []string{".yaml", ".yml"}

// Loader loads definitions by name.
type Loader interface {
	Load(name string) (*Definition, error)
	List() ([]string, error)
}

// FileLoader loads definitions from YAML files on disk.
type FileLoader struct {
	dirs []string
}

// NewFileLoader creates a loader that searches the given directories, in
// order, for definition files.
func NewFileLoader(dirs ...string) *FileLoader {
	return &FileLoader{dirs: dirs}
}

// Load searches for {name}.yaml or {name}.yml in each directory and then
// in its immediate subdirectories. The first match wins.
func (l *FileLoader) Load(name string) (*Definition, error) {
	for _, dir := range l.dirs {
		for _, ext := range extensions {
			if d, err := loadIfExists(filepath.Join(dir, name+ext)); d != nil || err != nil {
				return d, err
			}
			matches, _ := filepath.Glob(filepath.Join(dir, "*", name+ext))
			for _, match := range matches {
				if d, err := loadIfExists(match); d != nil || err != nil {
					return d, err
				}
			}
		}
	}
	return nil, errors.NotFound("definition", name).WithDetail("dirs", l.dirs)
}

// List returns the names of all definition files found by Load, sorted
// and without duplicates.
func (l *FileLoader) List() ([]string, error) {
	var names []string
	for _, dir := range l.dirs {
		err := filepath.WalkDir(dir, func(path string, e fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if e.IsDir() {
				if depth(dir, path) > 1 {
					return filepath.SkipDir
				}
				return nil
			}
			ext := filepath.Ext(path)
			if slices.Contains(extensions, ext) {
				names = append(names, strings.TrimSuffix(e.Name(), ext))
			}
			return nil
		})
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("definition: listing %s: %w", dir, err)
		}
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// LoadFile reads and parses the definition at path.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("definition file", path)
		}
		return nil, fmt.Errorf("definition: reading %s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			return nil, appErr.WithDetail("path", path)
		}
		return nil, err
	}
	d.Source = path
	return d, nil
}

// Resolve loads ref as a file path if it names an existing file, and
// otherwise looks it up by name through l.
func Resolve(l Loader, ref string) (*Definition, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return LoadFile(ref)
	}
	return l.Load(ref)
}

// loadIfExists returns (nil, nil) when path does not exist, so the search
// continues; a file that exists but fails to parse is reported.
func loadIfExists(path string) (*Definition, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}
	return LoadFile(path)
}
