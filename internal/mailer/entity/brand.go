package entity

import "strings"

// Brand is the app a traveler registered through. It selects the email variant.
type Brand string

const (
	BrandBridj Brand = "bridj"
	BrandJBird Brand = "jbird"
)

// DefaultBrand receives every traveler whose registering app is not recognized.
const DefaultBrand = BrandBridj

// BrandFromString normalizes a stored registering app value. Unknown and empty values
// map to DefaultBrand.
func BrandFromString(raw string) Brand {
	switch Brand(strings.ToLower(strings.TrimSpace(raw))) {
	case BrandJBird:
		return BrandJBird
	default:
		return DefaultBrand
	}
}

// Brands lists the recognized brands.
func Brands() []string {
	return []string{string(BrandBridj), string(BrandJBird)}
}

func (b Brand) String() string {
	return string(b)
}
