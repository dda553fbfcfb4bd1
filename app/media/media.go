// Package media stores uploaded post images on disk.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MaxImageSize = 10 << 20 // 10 MB
	// PostsDir is where post images live, relative to the media root.
	PostsDir = "posts"
)

var (
	ErrTooLarge    = fmt.Errorf("file size exceeds maximum limit of %d MB", MaxImageSize/(1<<20))
	ErrInvalidType = errors.New("upload a valid image")
)

var validTypes = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Store saves images under Root.
type Store struct {
	Root string
	now  func() time.Time
}

func NewStore(root string) *Store {
	return &Store{Root: root, now: time.Now}
}

// Save validates an uploaded image and writes it under a fresh name. It
// returns the path relative to Root, which is what posts store.
func (s *Store) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > MaxImageSize {
		return "", ErrTooLarge
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !validTypes[ext] {
		return "", ErrInvalidType
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if !strings.HasPrefix(http.DetectContentType(head[:n]), "image/") {
		return "", ErrInvalidType
	}

	dir := filepath.Join(s.Root, PostsDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	filename := fmt.Sprintf("%s-%s%s", s.now().Format("20060102"), uuid.New().String(), ext)
	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	// Copy the sniffed head, then the rest, refusing anything past the limit.
	written, err := io.Copy(dst, io.LimitReader(io.MultiReader(bytes.NewReader(head[:n]), file), MaxImageSize+1))
	if err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if written > MaxImageSize {
		os.Remove(dst.Name())
		return "", ErrTooLarge
	}

	return PostsDir + "/" + filename, nil
}

// Delete removes a stored image. Missing files are not an error.
func (s *Store) Delete(rel string) error {
	if rel == "" {
		return nil
	}
	path := filepath.Join(s.Root, filepath.FromSlash(filepath.Clean("/"+rel)))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Handler serves stored images under prefix.
func (s *Store) Handler(prefix string) http.Handler {
	return http.StripPrefix(prefix, http.FileServer(http.Dir(s.Root)))
}
