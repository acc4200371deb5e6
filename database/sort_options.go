package database

const (
	SortPopular = "popular"
	SortName    = "name"
	SortNewest  = "newest"
	SortOldest  = "oldest"
)

const DefaultSortKey = SortNewest

// IsValidSortKey checks if a string is a valid catalog sort key
func IsValidSortKey(key string) bool {
	switch key {
	case SortPopular, SortName, SortNewest, SortOldest:
		return true
	default:
		return false
	}
}

// NormalizeSortKey maps unknown sort keys to the default rather than erroring
func NormalizeSortKey(key string) string {
	if IsValidSortKey(key) {
		return key
	}
	return DefaultSortKey
}
