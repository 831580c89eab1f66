package media

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/pelletier/go-toml/v2"
)

//go:embed openers.toml
var openersTOML []byte

// OpenerDefinition describes how to invoke a link or image opener.
type OpenerDefinition struct {
	// Command is the executable; empty means the opener's own name.
	Command   string   `toml:"command,omitempty"`
	Platforms []string `toml:"platforms"`
	Args      []string `toml:"args"`
}

type openersFile struct {
	Types struct {
		Image TypeConfig `toml:"image"`
	} `toml:"types"`
	Openers map[string]OpenerDefinition `toml:"openers"`
}

// Registry maps opener names to their invocation.
type Registry struct {
	openers map[string]OpenerDefinition
	image   TypeConfig
	goos    string
	// lookPath is exec.LookPath, replaceable in tests.
	lookPath func(string) (string, error)
}

// NewRegistry loads the embedded opener table. A user file at
// ~/.config/desh/openers.toml overrides individual entries.
func NewRegistry() (*Registry, error) {
	r, err := parseRegistry(openersTOML)
	if err != nil {
		return nil, err
	}
	if home, err := os.UserHomeDir(); err == nil {
		r.merge(filepath.Join(home, ".config", "desh", "openers.toml"))
	}
	return r, nil
}

func parseRegistry(data []byte) (*Registry, error) {
	var f openersFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing openers.toml: %w", err)
	}
	if f.Openers == nil {
		f.Openers = make(map[string]OpenerDefinition)
	}
	return &Registry{
		openers:  f.Openers,
		image:    f.Types.Image,
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
	}, nil
}

func (r *Registry) merge(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var f openersFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return
	}
	for name, def := range f.Openers {
		r.openers[name] = def
	}
	if len(f.Types.Image.Extensions) > 0 {
		r.image = f.Types.Image
	}
}

func (r *Registry) executable(name string) string {
	if def, ok := r.openers[name]; ok && def.Command != "" {
		return def.Command
	}
	return name
}

// Supported reports whether an opener is usable on this platform. Unknown
// names are assumed portable.
func (r *Registry) Supported(name string) bool {
	def, ok := r.openers[name]
	if !ok || len(def.Platforms) == 0 {
		return true
	}
	for _, p := range def.Platforms {
		if p == r.goos {
			return true
		}
	}
	return false
}

// Available reports whether the opener is supported and installed.
func (r *Registry) Available(name string) bool {
	if name == "" || !r.Supported(name) {
		return false
	}
	_, err := r.lookPath(r.executable(name))
	return err == nil
}

// FindAvailable returns the first available opener from names.
func (r *Registry) FindAvailable(names []string) string {
	for _, name := range names {
		if r.Available(name) {
			return name
		}
	}
	return ""
}

// Command builds the command that opens url with the named opener.
func (r *Registry) Command(name, url string) (*exec.Cmd, error) {
	if name == "" {
		return nil, fmt.Errorf("no opener configured")
	}
	if !r.Supported(name) {
		return nil, fmt.Errorf("%s not supported on %s", name, r.goos)
	}
	def := r.openers[name]
	args := append(append([]string(nil), def.Args...), url)
	return exec.Command(r.executable(name), args...), nil
}
