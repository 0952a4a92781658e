package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/goliatone/go-resumeform/pkg/model"
)

const megabyte = 1024 * 1024

// CheckFile applies a file field's accept and maxSize constraints. Accept may
// list extensions (".pdf") or media types ("application/pdf") separated by
// commas. When the handle carries content it is sniffed, and a detected type
// that contradicts the accepted extension is rejected as well.
func CheckFile(field model.Field, file *model.File) (string, bool) {
	if file == nil {
		return "", true
	}
	if accept := strings.TrimSpace(field.Accept); accept != "" {
		if msg, ok := checkAccept(accept, file); !ok {
			return msg, false
		}
	}
	if field.MaxSize > 0 && file.Size > field.MaxSize {
		return fmt.Sprintf("File size must be less than %dMB", Megabytes(field.MaxSize)), false
	}
	return "", true
}

// Megabytes rounds a byte count to whole megabytes.
func Megabytes(size int64) int64 {
	return int64(math.Round(float64(size) / megabyte))
}

// FormatSize renders a byte count in megabytes with two decimals.
func FormatSize(size int64) string {
	return fmt.Sprintf("%.2f MB", float64(size)/megabyte)
}

func checkAccept(accept string, file *model.File) (string, bool) {
	var detected *mimetype.MIME
	if len(file.Content) > 0 {
		detected = mimetype.Detect(file.Content)
	}

	for _, entry := range strings.Split(accept, ",") {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if strings.HasPrefix(entry, ".") {
			if file.Extension() != entry {
				continue
			}
			if detected != nil && detected.Extension() != "" && !sniffedAs(detected, entry) {
				return fmt.Sprintf("File content does not match %s (detected %s)", entry, detected.String()), false
			}
			return "", true
		}
		if strings.Contains(entry, "/") {
			if detected != nil && detected.Is(entry) {
				return "", true
			}
			if strings.EqualFold(strings.TrimSpace(file.ContentType), entry) {
				return "", true
			}
		}
	}
	return fmt.Sprintf("Please select a %s file", accept), false
}

// sniffedAs walks the detected type and its parents so a subtype still
// satisfies the extension of its family.
func sniffedAs(detected *mimetype.MIME, ext string) bool {
	for m := detected; m != nil; m = m.Parent() {
		if m.Extension() == ext {
			return true
		}
	}
	return false
}
