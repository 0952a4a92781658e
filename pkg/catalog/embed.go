package catalog

import (
	"embed"
	"io/fs"
	"sync"
)

// Resume types shipped with the embedded catalog.
const (
	TypeFresher     = "FRESHER"
	TypeExperienced = "EXPERIENCED"
)

//go:embed schemas/*
var embeddedSchemas embed.FS

// EmbeddedFS returns the bundled resume-type forms. Callers may pass this
// filesystem to LoadFS to use the default catalog.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedSchemas, "schemas")
	if err != nil {
		// The embed directive guarantees the subpath exists.
		panic(err)
	}
	return sub
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default loads the embedded FRESHER and EXPERIENCED forms once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = LoadFS(EmbeddedFS())
	})
	return defaultCatalog, defaultErr
}

// MustDefault is Default for package-level wiring; it panics when the
// embedded catalog is malformed.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}
