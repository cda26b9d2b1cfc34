// Package catalog loads the model catalog offered to clients. The catalog is
// a plain JSON file so deployments can change the model list without a code
// change; it is re-read on every load.
package catalog

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hupe1980/agora/logging"
)

// DefaultPath is the catalog location relative to the working directory.
const DefaultPath = "model_catalog.json"

// EnvPath is the environment variable overriding the catalog location.
const EnvPath = "MODEL_CATALOG_PATH"

// ModelSpec is one selectable model.
type ModelSpec struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Provider    string `json:"provider"`
}

// Catalog is the full list of selectable models.
type Catalog struct {
	Models []ModelSpec `json:"models"`
}

// ResolvePath picks the catalog file location. Resolution order: explicit
// path, then the MODEL_CATALOG_PATH environment variable, then DefaultPath.
func ResolvePath(explicit string) string {
	path := explicit
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	if path == "" {
		return DefaultPath
	}
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
	}
	return path
}

// Load reads the catalog at the resolved location. A missing or invalid file
// degrades to an empty catalog so the API keeps serving; the problem is
// logged, never propagated.
func Load(explicit string, logger logging.Logger) Catalog {
	path := ResolvePath(explicit)
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Error("model catalog file not found", "path", path)
		} else {
			logger.Error("model catalog file unreadable", "path", path, "error", err)
		}
		return Catalog{Models: []ModelSpec{}}
	}
	var c Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		logger.Error("invalid model catalog file", "path", path, "error", err)
		return Catalog{Models: []ModelSpec{}}
	}
	if !c.valid() {
		logger.Error("invalid model catalog file", "path", path, "error", "missing model fields")
		return Catalog{Models: []ModelSpec{}}
	}
	if c.Models == nil {
		c.Models = []ModelSpec{}
	}
	return c
}

func (c Catalog) valid() bool {
	for _, m := range c.Models {
		if m.ID == "" || m.DisplayName == "" || m.Provider == "" {
			return false
		}
	}
	return true
}
