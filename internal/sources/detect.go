package sources

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
)

// Detect picks a reader for path by looking at the file name and, when that
// is not conclusive, the first bytes of its content.
func Detect(path string) (Reader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		if _, err := os.Stat(filepath.Join(path, PlacesDatabaseName)); err == nil {
			return NewFirefoxReader(path), nil
		}
		return nil, fmt.Errorf("%s: no %s in directory", path, PlacesDatabaseName)
	}

	name := strings.ToLower(filepath.Base(path))
	switch {
	case name == PlacesDatabaseName:
		return NewFirefoxReader(path), nil
	case strings.HasSuffix(name, ".yaml"), strings.HasSuffix(name, ".yml"):
		return NewHomepageReader(path), nil
	case strings.HasSuffix(name, ".html"), strings.HasSuffix(name, ".htm"):
		return NewHTMLReader(path), nil
	}

	head, err := readHead(path, 512)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(head)
	switch {
	case bytes.HasPrefix(trimmed, []byte("{")):
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if gjson.GetBytes(data, "roots").IsObject() {
			return NewChromiumReader(path), nil
		}
	case bytes.HasPrefix(bytes.ToUpper(trimmed), []byte("<!DOCTYPE NETSCAPE-BOOKMARK-FILE")):
		return NewHTMLReader(path), nil
	case bytes.HasPrefix(head, []byte("SQLite format 3")):
		return NewFirefoxReader(path), nil
	}
	return nil, fmt.Errorf("%s: unrecognized bookmarks format", path)
}

// ForSource returns the reader for an explicitly named format.
func ForSource(format, path string) (Reader, error) {
	switch strings.ToLower(format) {
	case "", "auto":
		return Detect(path)
	case "html", "netscape", "safari", "ddg", "duckduckgo":
		return NewHTMLReader(path), nil
	case "chromium", "chrome", "brave", "edge":
		return NewChromiumReader(path), nil
	case "firefox":
		return NewFirefoxReader(path), nil
	case "homepage":
		return NewHomepageReader(path), nil
	default:
		return nil, fmt.Errorf("unknown bookmarks format %q", format)
	}
}

func readHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := f.Read(buf)
	if err != nil && read == 0 {
		return nil, err
	}
	return buf[:read], nil
}
