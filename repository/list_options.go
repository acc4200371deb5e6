package repository

// Audience selects the base predicate applied to a catalog listing.
type Audience int

const (
	// AudiencePublic shows active wallpapers only
	AudiencePublic Audience = iota
	// AudiencePremium shows active premium wallpapers only
	AudiencePremium
	// AudienceTrending shows active wallpapers created within the trending
	// window, ranked by popularity score
	AudienceTrending
	// AudienceAdmin applies no visibility predicate
	AudienceAdmin
)

// ListOptions drives the filtered, sorted, paginated catalog view. All
// filters are optional and combine with AND.
type ListOptions struct {
	Audience     Audience
	CategoryID   *uint
	Search       string // substring match against title, description, tags
	FeaturedOnly bool
	TrendingDays int    // only consulted for AudienceTrending; <=0 uses the default
	Sort         string // database sort key; unknown values fall back to default
	Page         int    // 1-based
	PerPage      int
}

// PageInfo is the pagination metadata returned alongside a page of items.
type PageInfo struct {
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
}

// WallpaperUpdate carries the administrative partial update; nil fields are
// left untouched.
type WallpaperUpdate struct {
	Title       *string
	Description *string
	CategoryID  *uint
	Tags        *string
	IsFeatured  *bool
	IsActive    *bool
	IsPremium   *bool
}
