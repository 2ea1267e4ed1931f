package scan

import (
	"os"
	"path/filepath"
	"strings"
)

type FileInfo struct {
	Path  string
	Mtime int64
	Size  int64
}

// ScanCards walks the card directory and returns every PNG file found.
// A missing directory is not an error; it just yields no cards.
func ScanCards(cardDir string) ([]FileInfo, error) {
	if _, err := os.Stat(cardDir); os.IsNotExist(err) {
		return nil, nil
	}

	var files []FileInfo
	err := filepath.Walk(cardDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			return nil
		}
		if strings.ToLower(filepath.Ext(path)) != ".png" {
			return nil
		}
		files = append(files, FileInfo{
			Path:  path,
			Mtime: info.ModTime().Unix(),
			Size:  info.Size(),
		})
		return nil
	})
	return files, err
}
