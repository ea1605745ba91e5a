package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// SaveUploadedFile writes an uploaded document into a per-session directory
// under uploadDir and returns the destination path. The session directory
// scopes the file's lifetime to the session.
func SaveUploadedFile(uploadDir, sessionID, filename string, src io.Reader) (string, error) {
	dir := filepath.Join(uploadDir, SanitizeFilename(sessionID))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %v", err)
	}

	destPath := filepath.Join(dir, SanitizeFilename(filename))
	destFile, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %v", err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, src); err != nil {
		return "", fmt.Errorf("failed to copy file: %v", err)
	}

	return destPath, nil
}

// SanitizeFilename replaces path separators and other unsafe characters.
func SanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, name)
}

// RemoveSessionFiles deletes the session's upload directory.
func RemoveSessionFiles(uploadDir, sessionID string) error {
	return os.RemoveAll(filepath.Join(uploadDir, SanitizeFilename(sessionID)))
}
