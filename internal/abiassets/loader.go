// Package abiassets resolves named ABI resources. A configured assets
// directory is searched first, then the ABIs compiled into the binary.
package abiassets

import (
	"context"
	"embed"
	"io/fs"
	"path"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/spf13/afero"

	"github.com/quantumauth-io/token-session-client/internal/tokenerr"
)

//go:embed ABI/*.json
var embedded embed.FS

// Loader reads ABI JSON from an ordered list of filesystems.
type Loader struct {
	layers []afero.Fs
}

// Embedded returns the read-only filesystem of built-in ABIs.
func Embedded() afero.Fs {
	return afero.FromIOFS{FS: embedded}
}

// New searches dir (when non-empty) and then the embedded ABIs.
func New(dir string) *Loader {
	var layers []afero.Fs
	if strings.TrimSpace(dir) != "" {
		layers = append(layers, afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), dir)))
	}
	layers = append(layers, Embedded())
	return NewWithLayers(layers...)
}

func NewWithLayers(layers ...afero.Fs) *Loader {
	return &Loader{layers: layers}
}

// Load returns the ABI JSON text for name. ".json" is appended when the name
// has no extension.
func (l *Loader) Load(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", tokenerr.Provider(err, "load abi")
	}

	file := resourcePath(name)
	if file == "" {
		return "", tokenerr.AssetNotFound(name)
	}

	for _, layer := range l.layers {
		b, err := afero.ReadFile(layer, file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", tokenerr.Provider(err, "read abi "+file)
		}
		log.Info("abi loaded", "name", name, "file", file, "bytes", len(b))
		return string(b), nil
	}
	return "", tokenerr.AssetNotFound(name)
}

func resourcePath(name string) string {
	p := strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "" || p == "." {
		return ""
	}
	if path.Ext(p) == "" {
		p += ".json"
	}
	return p
}
