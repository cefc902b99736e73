package storage

import (
	"context"
	"io"
	"regexp"
	"strings"
	"time"
)

// BlobRef points at one stored object. PublicID is the deletion handle.
type BlobRef struct {
	URL       string
	PublicID  string
	CreatedAt time.Time
}

// BlobStore is external object storage for attachment images. Delete must be
// idempotent: deleting an unknown or already-deleted handle is not an error,
// so cleanup paths can retry safely.
type BlobStore interface {
	Store(ctx context.Context, content io.Reader, contentType, folder string) (BlobRef, error)
	Delete(ctx context.Context, publicID string) error
	List(ctx context.Context, folder string) ([]BlobRef, error)
}

var versionSegment = regexp.MustCompile(`^v\d+$`)

// ExtractPublicID derives the deletion handle from a delivery URL. Records
// only keep URLs, so detach paths reverse the URL back to its public id.
func ExtractPublicID(url string) string {
	if url == "" {
		return ""
	}

	path := url
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}

	if _, after, found := strings.Cut(path, "/upload/"); found {
		path = after
	} else {
		// Not a recognizable delivery URL; fall back to the last two
		// path segments.
		segments := strings.Split(path, "/")
		if len(segments) >= 2 {
			path = strings.Join(segments[len(segments)-2:], "/")
		}
	}

	segments := strings.Split(path, "/")
	if len(segments) > 1 && versionSegment.MatchString(segments[0]) {
		segments = segments[1:]
	}
	path = strings.Join(segments, "/")

	if dot := strings.LastIndex(path, "."); dot > strings.LastIndex(path, "/") {
		path = path[:dot]
	}
	return path
}
