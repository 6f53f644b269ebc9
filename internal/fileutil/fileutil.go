package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// modelExtensions lists the file extensions the scanner treats as importable
// model files. Lowercase, with leading dot.
var modelExtensions = map[string]struct{}{
	".stl": {},
}

// IsModelFile reports whether the path carries a supported model extension.
func IsModelFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := modelExtensions[ext]
	return ok
}

// ModelExtensions returns the supported extensions in stable order.
func ModelExtensions() []string {
	exts := make([]string, 0, len(modelExtensions))
	for ext := range modelExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Fingerprint returns the hex SHA256 of the given bytes.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ExpandPath resolves a leading tilde and returns a cleaned absolute path.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
