package handlers

import "fmt"

// universalDefaultKey is the placeholder served for any category without an
// image and without a slug-specific default.
const universalDefaultKey = "defaults/category.jpg"

// categoryDefaultImages maps well-known category slugs to their bundled
// placeholder assets. The mapping is explicit and checked at startup rather
// than looked up dynamically by string at render time.
var categoryDefaultImages = map[string]string{
	"nature":    "defaults/nature.jpg",
	"abstract":  "defaults/abstract.jpg",
	"animals":   "defaults/animals.jpg",
	"cars":      "defaults/cars.jpg",
	"space":     "defaults/space.jpg",
	"gaming":    "defaults/gaming.jpg",
	"minimal":   "defaults/minimal.jpg",
	"cityscape": "defaults/cityscape.jpg",
}

var defaultImageBaseURL string

// ConfigureCategoryDefaults validates the default-image mapping and records
// the base URL used to resolve the bundled assets. Called once at startup.
func ConfigureCategoryDefaults(publicBaseURL string) error {
	if publicBaseURL == "" {
		return fmt.Errorf("public base URL is required for category default images")
	}
	if universalDefaultKey == "" {
		return fmt.Errorf("universal default category image is not configured")
	}
	for slug, key := range categoryDefaultImages {
		if key == "" {
			return fmt.Errorf("category default image for slug %q is empty", slug)
		}
	}
	defaultImageBaseURL = publicBaseURL
	return nil
}

// DefaultCategoryImage returns the placeholder image URL for a category
// slug, falling back to the universal default for unmapped slugs.
func DefaultCategoryImage(slug string) string {
	key, ok := categoryDefaultImages[slug]
	if !ok {
		key = universalDefaultKey
	}
	return defaultImageBaseURL + "/" + key
}
