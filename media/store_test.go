package media

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func newTestLocalStorage(t *testing.T) *LocalStorage {
	t.Helper()
	ls, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/media")
	if err != nil {
		t.Fatalf("Unexpected error creating storage: %v", err)
	}
	return ls
}

func TestLocalStorageSaveAndOpen(t *testing.T) {
	ls := newTestLocalStorage(t)

	key, err := ls.Save(AssetTypeWallpaper, "test.jpg", strings.NewReader("image bytes"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if key != "wallpapers/test.jpg" {
		t.Errorf("Expected key wallpapers/test.jpg, got %s", key)
	}

	reader, size, err := ls.Open(key)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(data) != "image bytes" {
		t.Errorf("Expected stored content to round-trip, got %q", data)
	}
	if size != int64(len("image bytes")) {
		t.Errorf("Expected size %d, got %d", len("image bytes"), size)
	}
}

func TestLocalStorageNamespaces(t *testing.T) {
	ls := newTestLocalStorage(t)

	cases := []struct {
		assetType AssetType
		want      string
	}{
		{AssetTypeWallpaper, "wallpapers/a.jpg"},
		{AssetTypeThumbnail, "wallpapers/thumbnails/a.jpg"},
		{AssetTypeCategory, "categories/a.jpg"},
		{AssetTypeAvatar, "avatars/a.jpg"},
	}
	for _, c := range cases {
		key, err := ls.Save(c.assetType, "a.jpg", strings.NewReader("x"))
		if err != nil {
			t.Fatalf("Unexpected error for %s: %v", c.assetType, err)
		}
		if key != c.want {
			t.Errorf("Expected key %s for %s, got %s", c.want, c.assetType, key)
		}
	}
}

func TestLocalStorageSaveRejectsBadFilenames(t *testing.T) {
	ls := newTestLocalStorage(t)

	for _, name := range []string{"", "a/b.jpg", "..\\evil.jpg"} {
		if _, err := ls.Save(AssetTypeWallpaper, name, strings.NewReader("x")); err == nil {
			t.Errorf("Expected error for filename %q", name)
		}
	}
}

func TestLocalStorageOpenMissing(t *testing.T) {
	ls := newTestLocalStorage(t)

	_, _, err := ls.Open("wallpapers/nope.jpg")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestLocalStorageTraversalGuard(t *testing.T) {
	ls := newTestLocalStorage(t)

	_, _, err := ls.Open("../../etc/passwd")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Expected access-denied error, got %v", err)
	}
}

func TestLocalStorageDelete(t *testing.T) {
	ls := newTestLocalStorage(t)

	key, err := ls.Save(AssetTypeWallpaper, "gone.jpg", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	t.Run("removes existing object", func(t *testing.T) {
		if err := ls.Delete(key); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		exists, err := ls.Exists(key)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if exists {
			t.Error("Expected object to be gone after delete")
		}
	})

	t.Run("missing object is not an error", func(t *testing.T) {
		if err := ls.Delete(key); err != nil {
			t.Errorf("Expected deleting a missing object to succeed, got %v", err)
		}
	})
}

func TestLocalStoragePublicURL(t *testing.T) {
	ls := newTestLocalStorage(t)

	got := ls.PublicURL("wallpapers/test.jpg")
	want := "http://localhost:8080/media/wallpapers/test.jpg"
	if got != want {
		t.Errorf("PublicURL = %s, want %s", got, want)
	}
}
