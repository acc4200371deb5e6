package utils

import (
	"mime/multipart"
	"path/filepath"
	"sort"
	"strings"

	"github.com/facette/natsort"
	"github.com/google/uuid"
)

// UniqueStorageFilename generates a collision-free filename for an uploaded
// file: a random UUID plus the original extension, lowercased. The original
// name never reaches the disk, which also rules out traversal tricks.
func UniqueStorageFilename(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return uuid.NewString() + ext
}

// TitleFromFilename derives a default wallpaper title from the uploaded
// filename with the extension stripped.
func TitleFromFilename(originalName string) string {
	base := filepath.Base(originalName)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	title = strings.NewReplacer("_", " ", "-", " ").Replace(title)
	return strings.TrimSpace(title)
}

// SortFilesNaturally orders an upload batch by natural filename order, so
// "wallpaper-2.jpg" lands before "wallpaper-10.jpg".
func SortFilesNaturally(files []*multipart.FileHeader) {
	sort.SliceStable(files, func(i, j int) bool {
		return natsort.Compare(files[i].Filename, files[j].Filename)
	})
}
