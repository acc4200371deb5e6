package media

import "testing"

func TestParseLocation(t *testing.T) {
	t.Run("http is external", func(t *testing.T) {
		loc := ParseLocation("http://images.example.com/a.jpg")
		if !loc.IsExternal() {
			t.Error("Expected http URL to be external")
		}
		if loc.URL != "http://images.example.com/a.jpg" {
			t.Errorf("Unexpected URL %s", loc.URL)
		}
	})

	t.Run("https is external", func(t *testing.T) {
		if !ParseLocation("https://images.example.com/a.jpg").IsExternal() {
			t.Error("Expected https URL to be external")
		}
	})

	t.Run("storage key is local", func(t *testing.T) {
		loc := ParseLocation("wallpapers/abc.jpg")
		if loc.IsExternal() {
			t.Error("Expected storage key to be local")
		}
		if loc.Key != "wallpapers/abc.jpg" {
			t.Errorf("Unexpected key %s", loc.Key)
		}
	})

	t.Run("scheme-like key stays local", func(t *testing.T) {
		if ParseLocation("httpd/logo.png").IsExternal() {
			t.Error("Expected httpd/logo.png to be local")
		}
	})
}

func TestLocationResolve(t *testing.T) {
	ls := newTestLocalStorage(t)

	t.Run("external passes through", func(t *testing.T) {
		got := ParseLocation("https://cdn.example.com/x.jpg").Resolve(ls)
		if got != "https://cdn.example.com/x.jpg" {
			t.Errorf("Expected external URL to pass through, got %s", got)
		}
	})

	t.Run("local goes through the store", func(t *testing.T) {
		got := ParseLocation("wallpapers/x.jpg").Resolve(ls)
		want := "http://localhost:8080/media/wallpapers/x.jpg"
		if got != want {
			t.Errorf("Resolve = %s, want %s", got, want)
		}
	})
}
