package media

import "strings"

type AssetType string

const (
	AssetTypeWallpaper AssetType = "wallpaper"
	AssetTypeThumbnail AssetType = "thumbnail"
	AssetTypeCategory  AssetType = "category"
	AssetTypeAvatar    AssetType = "avatar"
	AssetTypeUnknown   AssetType = "unknown"
)

// LocationKind distinguishes catalog paths that name a locally stored object
// from seeded rows whose path is already an absolute external URL.
type LocationKind int

const (
	LocationLocal LocationKind = iota
	LocationExternal
)

// Location is the tagged form of a stored image reference. All
// redirect-vs-stream and URL-resolution decisions go through it instead of
// prefix-sniffing strings at each call site.
type Location struct {
	Kind LocationKind
	Key  string // storage key, when Kind == LocationLocal
	URL  string // absolute URL, when Kind == LocationExternal
}

// ParseLocation classifies a stored path. Anything with an http or https
// scheme is treated as external; everything else is a storage key.
func ParseLocation(path string) Location {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return Location{Kind: LocationExternal, URL: path}
	}
	return Location{Kind: LocationLocal, Key: path}
}

// IsExternal reports whether the location points outside the media store.
func (l Location) IsExternal() bool {
	return l.Kind == LocationExternal
}

// Resolve returns the publicly fetchable URL for the location. External
// locations pass through unchanged; local keys go through the store.
func (l Location) Resolve(store Store) string {
	if l.IsExternal() {
		return l.URL
	}
	return store.PublicURL(l.Key)
}
