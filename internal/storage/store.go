// Package storage lists and copies objects in the public archive buckets
// through an S3-compatible client.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"noaa-archive/internal/archive"
)

// ErrCopyDisabled is returned by CopyToUserBucket when no user bucket is
// configured.
var ErrCopyDisabled = errors.New("user bucket not configured")

// Config holds S3 client configuration
type Config struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	UserBucket    string
	NEXRADBucket  string
	GOESBucket    string
	PresignExpiry time.Duration
}

type objectClient interface {
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	CopyObject(ctx context.Context, dst minio.CopyDestOptions, src minio.CopySrcOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
}

// Store reads the public archive buckets and writes into the user bucket
type Store struct {
	client        objectClient
	buckets       map[archive.Kind]string
	userBucket    string
	presignExpiry time.Duration
}

// NewStore creates a minio-backed store. Empty credentials give anonymous
// access, which is enough for listing the public archives.
func NewStore(cfg Config) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	return newStore(client, cfg), nil
}

func newStore(client objectClient, cfg Config) *Store {
	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &Store{
		client: client,
		buckets: map[archive.Kind]string{
			archive.NEXRAD: cfg.NEXRADBucket,
			archive.GOES:   cfg.GOESBucket,
		},
		userBucket:    cfg.UserBucket,
		presignExpiry: expiry,
	}
}

// Bucket returns the public bucket of kind
func (s *Store) Bucket(kind archive.Kind) (string, error) {
	b, ok := s.buckets[kind]
	if !ok || b == "" {
		return "", fmt.Errorf("%w: %s", archive.ErrUnknownKind, kind)
	}
	return b, nil
}

// ListFiles returns the base names of objects directly under prefix, sorted
func (s *Store) ListFiles(ctx context.Context, kind archive.Kind, prefix string) ([]string, error) {
	var files []string
	err := s.list(ctx, kind, prefix, func(child string, isDir bool) {
		if !isDir && child != "" {
			files = append(files, child)
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ListPrefixes returns the child directory names directly under prefix,
// sorted and without trailing slashes
func (s *Store) ListPrefixes(ctx context.Context, kind archive.Kind, prefix string) ([]string, error) {
	var dirs []string
	err := s.list(ctx, kind, prefix, func(child string, isDir bool) {
		if isDir {
			dirs = append(dirs, strings.TrimSuffix(child, "/"))
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(dirs)
	return dirs, nil
}

func (s *Store) list(ctx context.Context, kind archive.Kind, prefix string, visit func(child string, isDir bool)) error {
	bucket, err := s.Bucket(kind)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for obj := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: false}) {
		if obj.Err != nil {
			return fmt.Errorf("list %s/%s: %w", bucket, prefix, obj.Err)
		}
		child := strings.TrimPrefix(obj.Key, prefix)
		visit(child, strings.HasSuffix(obj.Key, "/"))
	}
	return nil
}

// UserKey is the destination key of loc in the user bucket
func UserKey(loc archive.Location) string {
	return loc.Kind.String() + "/" + loc.Key()
}

// CopyToUserBucket server-side copies the archive object at loc into the
// user bucket and returns a presigned download URL for the copy.
func (s *Store) CopyToUserBucket(ctx context.Context, loc archive.Location) (string, error) {
	if s.userBucket == "" {
		return "", ErrCopyDisabled
	}
	bucket, err := s.Bucket(loc.Kind)
	if err != nil {
		return "", err
	}

	dst := minio.CopyDestOptions{Bucket: s.userBucket, Object: UserKey(loc)}
	src := minio.CopySrcOptions{Bucket: bucket, Object: loc.Key()}
	if _, err := s.client.CopyObject(ctx, dst, src); err != nil {
		return "", fmt.Errorf("copy %s/%s to %s: %w", bucket, loc.Key(), s.userBucket, err)
	}

	u, err := s.client.PresignedGetObject(ctx, s.userBucket, dst.Object, s.presignExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s/%s: %w", s.userBucket, dst.Object, err)
	}
	return u.String(), nil
}
