package assets

import (
	"path"
	"strings"
)

// fallbackStem names files whose client-supplied name sanitizes to nothing.
const fallbackStem = "image"

// splitName reduces a client-supplied filename to a safe stem and a
// lower-cased extension including its dot. Directory components from either
// path convention are dropped, so the result never escapes the upload root.
func splitName(filename string) (stem, ext string) {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	rawExt := path.Ext(base)

	ext = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, strings.ToLower(rawExt))
	if ext != "" {
		ext = "." + ext
	}

	stem = sanitizeStem(strings.TrimSuffix(base, rawExt))
	if stem == "" {
		stem = fallbackStem
	}
	return stem, ext
}

// sanitizeStem keeps [A-Za-z0-9.-_], turns everything else into a single
// underscore, and strips leading dots and underscores so the name is never
// hidden or relative.
func sanitizeStem(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '.' || r == '-' || r == '_',
			r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		default:
			r = '_'
		}
		if r == '_' && strings.HasSuffix(b.String(), "_") {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Trim(strings.TrimLeft(b.String(), "._"), "_")
}
