package catalog

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	coordsPattern  = regexp.MustCompile(`@(-?\d+\.\d+),(-?\d+\.\d+)`)
	placePattern   = regexp.MustCompile(`place/([^/?]+)`)
	spacePattern   = regexp.MustCompile(`\s+`)
	nonSlugPattern = regexp.MustCompile(`[^a-z0-9-]`)
	nonDigits      = regexp.MustCompile(`[^0-9]`)
)

const mapsEmbedBase = "https://www.google.com/maps?q="

// MapEmbedURL converts a shared maps link into an embeddable one
func MapEmbedURL(mapLink string) string {
	if mapLink == "" {
		return ""
	}

	if strings.Contains(mapLink, "/place/") || strings.Contains(mapLink, "/@") {
		if m := coordsPattern.FindStringSubmatch(mapLink); m != nil {
			return mapsEmbedBase + m[1] + "," + m[2] + "&output=embed"
		}
		if m := placePattern.FindStringSubmatch(mapLink); m != nil {
			name := strings.ReplaceAll(m[1], "+", " ")
			return mapsEmbedBase + encodeComponent(name) + "&output=embed"
		}
		return mapLink
	}

	if strings.Contains(mapLink, "output=embed") {
		return mapLink
	}
	if strings.Contains(mapLink, "?") {
		return mapLink + "&output=embed"
	}
	return mapLink + "?output=embed"
}

// Slug builds the path segment used for a branch page
func Slug(name string) string {
	s := strings.ToLower(name)
	s = spacePattern.ReplaceAllString(s, "-")
	return nonSlugPattern.ReplaceAllString(s, "")
}

// PhoneDigits strips everything but digits from a phone number
func PhoneDigits(phone string) string {
	return nonDigits.ReplaceAllString(phone, "")
}

func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
