package model

import (
	"path/filepath"
	"strings"
)

// File is the raw handle stored as the value of a file field.
type File struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType,omitempty"`
	Content     []byte `json:"-"`
}

// Extension returns the lower-cased extension of the file name, including
// the leading dot.
func (f *File) Extension() string {
	if f == nil {
		return ""
	}
	return strings.ToLower(filepath.Ext(f.Name))
}
