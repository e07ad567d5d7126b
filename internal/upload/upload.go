// Package upload validates and stores uploaded images and cleans up the
// files they replace.
package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrEmptyFile         = errors.New("empty file")
)

// Shared default assets, served from the embedded static tree. These are
// sentinels: replacement and deletion must never remove them, and the
// check is an exact match so a user file named default.png is still
// deletable.
const (
	DefaultProfileImage = "/static/img/profiles/default.png"
	DefaultNewsImage    = "/static/img/news/default.jpg"
	DefaultBannerImage  = "/static/img/banners/default.png"
	DefaultThumbImage   = "/static/img/thumbnails/default.png"
)

var defaultAssets = map[string]bool{
	DefaultProfileImage: true,
	DefaultNewsImage:    true,
	DefaultBannerImage:  true,
	DefaultThumbImage:   true,
}

func IsDefaultAsset(url string) bool { return defaultAssets[url] }

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Saver writes uploads under Root. Files land in Root/<subdir>/<name> and
// are served at /img/<subdir>/<name>.
type Saver struct {
	Root string
}

// Save validates and persists one uploaded image, then removes the file
// previousURL pointed at (best effort, defaults excepted). The file is on
// disk before the returned path exists anywhere, so a caller that fails to
// persist the path leaves at worst an orphan file, never a dangling
// reference.
func (s *Saver) Save(r io.Reader, origName string, size int64, subdir, previousURL string) (string, error) {
	ext := strings.ToLower(filepath.Ext(origName))
	if !allowedExt[ext] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if size == 0 {
		return "", ErrEmptyFile
	}

	dir := filepath.Join(s.Root, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("write file: %w", err)
	}

	s.Remove(previousURL)
	return "/img/" + path.Join(subdir, name), nil
}

// Remove deletes the file behind a public /img/ URL. Default assets and
// URLs outside the upload tree are left alone, and deletion failures are
// swallowed: a stale file is harmless, a failed replacement is not.
func (s *Saver) Remove(url string) {
	if url == "" || IsDefaultAsset(url) {
		return
	}
	rel, ok := strings.CutPrefix(url, "/img/")
	if !ok {
		return
	}
	rel = filepath.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") {
		return
	}
	os.Remove(filepath.Join(s.Root, rel))
}
