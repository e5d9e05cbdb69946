// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage provides an S3-compatible object storage client for the
// images referenced by articles, albums and ads. Entities store object keys;
// this package turns keys into public URLs and uploads new images. It wraps
// the AWS SDK v2 and uses path-style access (required by CEPH/Hetzner).
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// localMediaPrefix serves keys when no object storage is configured.
const localMediaPrefix = "/media/"

// ErrUnsupportedType is returned by Upload for non-image content.
var ErrUnsupportedType = errors.New("unsupported image type")

// imageTypes maps accepted content types to the key extension.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Client wraps an S3 client for image operations on the public bucket.
type Client struct {
	s3        *s3.Client
	bucket    string
	endpoint  string
	publicURL string // optional CDN/direct URL for public files
}

// New creates an S3 storage client configured for path-style addressing.
// Returns (nil, nil) if endpoint or credentials are empty, allowing the app
// to start without storage.
func New(endpoint, region, accessKey, secretKey, bucket, publicURL string) (*Client, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}
	if bucket == "" {
		return nil, fmt.Errorf("storage: bucket name is required")
	}

	endpoint = strings.TrimRight(endpoint, "/")

	s3Client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &Client{
		s3:        s3Client,
		bucket:    bucket,
		endpoint:  endpoint,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// ImageKey returns a fresh object key under dir for an image of the given
// content type, e.g. "albums/3f2c....jpg".
func ImageKey(dir, contentType string) (string, error) {
	ext, ok := imageTypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
	return path.Join(dir, uuid.NewString()+ext), nil
}

// Upload stores an image with a public-read ACL so it can be served
// directly.
func (c *Client) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if _, ok := imageTypes[contentType]; !ok {
		return fmt.Errorf("s3 upload %s: %w: %q", key, ErrUnsupportedType, contentType)
	}
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		ACL:           s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// Delete removes an object from the bucket.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// FileURL returns the public URL for a key. Uses the configured public URL
// if set, otherwise builds a path-style URL. A nil Client serves keys from
// the local media prefix.
func (c *Client) FileURL(key string) string {
	escaped := escapeKey(key)
	switch {
	case c == nil:
		return localMediaPrefix + escaped
	case c.publicURL != "":
		return c.publicURL + "/" + escaped
	default:
		return c.endpoint + "/" + c.bucket + "/" + escaped
	}
}

// ExtractKey extracts the object key from a public file URL.
// Returns ("", false) if the URL doesn't belong to this storage.
func (c *Client) ExtractKey(rawURL string) (string, bool) {
	var prefixes []string
	if c == nil {
		prefixes = []string{localMediaPrefix}
	} else {
		if c.publicURL != "" {
			prefixes = append(prefixes, c.publicURL+"/")
		}
		prefixes = append(prefixes, c.endpoint+"/"+c.bucket+"/")
	}

	for _, prefix := range prefixes {
		if rest, ok := strings.CutPrefix(rawURL, prefix); ok && rest != "" {
			key, err := url.PathUnescape(rest)
			if err != nil {
				return "", false
			}
			return key, true
		}
	}
	return "", false
}

// Bucket returns the name of the public bucket.
func (c *Client) Bucket() string {
	return c.bucket
}

// escapeKey escapes each path segment of key, keeping the slashes.
func escapeKey(key string) string {
	segments := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
