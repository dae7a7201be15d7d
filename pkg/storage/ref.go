package storage

import (
	"fmt"
	"strings"
)

const (
	SchemeS3    = "s3"
	SchemeAzure = "azblob"
)

// Ref is a parsed object reference of the form <scheme>://<bucket>/<key>.
type Ref struct {
	Scheme string
	Bucket string
	Key    string
}

// ParseRef splits a reference into scheme, bucket, and key.
// All three components must be non-empty.
func ParseRef(ref string) (Ref, error) {
	scheme, rest, ok := strings.Cut(ref, "://")
	if !ok || scheme == "" {
		return Ref{}, fmt.Errorf("%w: missing scheme in %q", ErrInvalidRef, ref)
	}

	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return Ref{}, fmt.Errorf("%w: expected %s://<bucket>/<key>, got %q", ErrInvalidRef, scheme, ref)
	}

	return Ref{Scheme: scheme, Bucket: bucket, Key: key}, nil
}

func (r Ref) String() string {
	return r.Scheme + "://" + r.Bucket + "/" + r.Key
}

func resolveKey(ref, scheme, bucket string) (string, error) {
	r, err := ParseRef(ref)
	if err != nil {
		return "", err
	}
	if r.Scheme != scheme {
		return "", fmt.Errorf("%w: scheme %q, want %q", ErrInvalidRef, r.Scheme, scheme)
	}
	if r.Bucket != bucket {
		return "", fmt.Errorf("%w: bucket %q, want %q", ErrInvalidRef, r.Bucket, bucket)
	}
	if err := validateKey(r.Key); err != nil {
		return "", err
	}
	return r.Key, nil
}
