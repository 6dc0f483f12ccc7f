// Package browser holds the state machine behind the object browser: prefix
// navigation, pagination, selection and dialogs, local naming, previews, the
// listing cache and the mutation orchestrator. Nothing here draws to the
// terminal; internal/tui renders it.
package browser

import "strings"

// Breadcrumb is one clickable segment of the current prefix
type Breadcrumb struct {
	Label  string
	Prefix string
}

// Segments splits prefix on "/" and drops empty parts
func Segments(prefix string) []string {
	parts := strings.Split(prefix, "/")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

// Join is the inverse of Segments: "" for no segments, else the segments
// joined by "/" with a trailing "/".
func Join(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	return strings.Join(segments, "/") + "/"
}

// Breadcrumbs returns one entry per segment, each pointing at the prefix
// ending in that segment.
func Breadcrumbs(prefix string) []Breadcrumb {
	segments := Segments(prefix)
	crumbs := make([]Breadcrumb, len(segments))
	for i, seg := range segments {
		crumbs[i] = Breadcrumb{
			Label:  seg,
			Prefix: Join(segments[:i+1]),
		}
	}
	return crumbs
}

// Parent returns the prefix one level up, or "" at the root
func Parent(prefix string) string {
	segments := Segments(prefix)
	if len(segments) <= 1 {
		return ""
	}
	return Join(segments[:len(segments)-1])
}

// IsFolderKey reports whether key names a synthetic folder
func IsFolderKey(key string) bool {
	return strings.HasSuffix(key, "/")
}

// EntryLabel is the text shown for key when listed under prefix
func EntryLabel(key, prefix string) string {
	label := strings.TrimPrefix(key, prefix)
	if IsFolderKey(key) {
		label = strings.TrimSuffix(label, "/")
	}
	return label
}
