package speech

import "strings"

// NormalizeLocale lowercases a BCP 47 tag and folds underscores into
// hyphens, so en_US, en-us and EN-US all compare equal.
func NormalizeLocale(tag string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
}

// ResolveLocale finds the entry in supported equivalent to requested under
// normalized comparison and returns it in the platform's own spelling.
func ResolveLocale(requested string, supported []string) (string, bool) {
	want := NormalizeLocale(requested)
	if want == "" {
		return "", false
	}

	for _, tag := range supported {
		if NormalizeLocale(tag) == want {
			return tag, true
		}
	}

	return "", false
}

func containsLocale(tags []string, locale string) bool {
	want := NormalizeLocale(locale)
	for _, tag := range tags {
		if NormalizeLocale(tag) == want {
			return true
		}
	}
	return false
}
