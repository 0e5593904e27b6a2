// Package recording resolves storage location strings reported by the
// media platform into bucket/key references and playback URLs.
package recording

import (
	"errors"
	"fmt"
	"strings"
)

const (
	directScheme = "s3://"

	// Markers used by the storage provider's console-style URLs. The S3
	// protocol path is not browsable; substituting the public-object path
	// yields a URL a browser can play.
	consoleMarker = "/storage/v1/s3/"
	publicMarker  = "/storage/v1/object/public/"
)

// ErrInvalidLocation reports a storage location string that matches none of
// the recognized formats. This is a configuration error: the caller must
// not retry.
var ErrInvalidLocation = errors.New("unrecognized recording location format")

// Reference identifies where a recording object lives.
type Reference struct {
	Bucket string
	Key    string
}

// Parse resolves a free-form location string into a Reference. It accepts
// direct s3://bucket/key paths and console URLs containing the
// /storage/v1/s3/ marker. Any other shape fails with ErrInvalidLocation.
func Parse(location string) (Reference, error) {
	switch {
	case strings.HasPrefix(location, directScheme):
		return split(strings.TrimPrefix(location, directScheme), location)
	case strings.Contains(location, consoleMarker):
		_, rest, _ := strings.Cut(location, consoleMarker)
		return split(rest, location)
	default:
		return Reference{}, fmt.Errorf("%w: %q", ErrInvalidLocation, location)
	}
}

func split(path, location string) (Reference, error) {
	bucket, key, found := strings.Cut(path, "/")
	if !found || bucket == "" || key == "" {
		return Reference{}, fmt.Errorf("%w: %q", ErrInvalidLocation, location)
	}
	return Reference{Bucket: bucket, Key: key}, nil
}

// PlaybackURL converts a console-style location into its public playback
// form by substituting the public-object marker. Locations without the
// console marker are returned unchanged.
func PlaybackURL(location string) string {
	return strings.Replace(location, consoleMarker, publicMarker, 1)
}

// PublicURL builds a playback URL for the reference from the configured
// storage endpoint. Endpoints ending in the S3 protocol path are rewritten
// to the public-object path; anything else gets bucket/key appended as-is.
func (r Reference) PublicURL(endpoint string) string {
	base := strings.TrimSuffix(endpoint, "/")
	if strings.HasSuffix(base, "/storage/v1/s3") {
		base = strings.TrimSuffix(base, "/s3") + "/object/public"
	}
	return base + "/" + r.Bucket + "/" + r.Key
}

// String renders the reference in direct-path form.
func (r Reference) String() string {
	return directScheme + r.Bucket + "/" + r.Key
}
