package media

import (
	"context"
	"io"
	"strings"
)

// Kind distinguishes the two asset classes held by the media store.
type Kind string

const (
	KindVideo Kind = "video"
	KindImage Kind = "image"
)

// Store is the narrow contract with the external media store. Save uploads a
// blob and returns its public locator; Delete removes a blob by the public
// identifier derived from that locator.
type Store interface {
	Save(ctx context.Context, kind Kind, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, publicID string, kind Kind) error
}

// PublicIDFromLocator derives the media store's blob identifier from a
// stored locator: the final path segment, truncated at its first dot.
// Downstream blob keys depend on this derivation staying stable.
//
//	https://cdn.example/folder/abc123.mp4 -> abc123
//	https://cdn.example/x/y-z.9f.png     -> y-z
func PublicIDFromLocator(locator string) string {
	segments := strings.Split(locator, "/")
	last := segments[len(segments)-1]
	return strings.Split(last, ".")[0]
}
