package ontology

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// segments splits an identifier on underscores, spaces and hyphens.
func segments(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
}

// capitalize upper-cases the first rune of a segment and lower-cases the
// rest, so PERSON and person both become Person and fullName becomes
// Fullname.
func capitalize(seg string) string {
	r, size := utf8.DecodeRuneInString(seg)
	return string(unicode.ToUpper(r)) + strings.ToLower(seg[size:])
}

// PascalCase converts SOCIAL_MEDIA_PROFILE to SocialMediaProfile.
func PascalCase(name string) string {
	var sb strings.Builder
	for _, seg := range segments(name) {
		sb.WriteString(capitalize(seg))
	}
	return sb.String()
}

// CamelCase converts date_of_birth to dateOfBirth.
func CamelCase(name string) string {
	pascal := PascalCase(name)
	if pascal == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(pascal)
	return string(unicode.ToLower(r)) + pascal[size:]
}

// Label converts SOCIAL_MEDIA_PROFILE to "Social Media Profile".
func Label(name string) string {
	segs := segments(name)
	for i, seg := range segs {
		segs[i] = capitalize(seg)
	}
	return strings.Join(segs, " ")
}
