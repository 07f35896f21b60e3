// Package s3 implements the storage adapter over Amazon S3 or any
// S3-compatible blob store.
package s3

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/elfin-go/elfin/pkg/storage"
)

// Adapter presents one bucket prefix as a volume root.
//
// Blob storage has no real directories, so the adapter simulates them:
//   - a directory is a zero-byte marker object at "<path>/"
//   - listing uses ListObjectsV2 with a "/" delimiter; common prefixes
//     become child directories even when no marker object exists (keys
//     written by other tools imply their ancestors)
//   - removing a directory deletes every key under its prefix
//
// Object keys mirror the volume-relative path under an optional KeyPrefix,
// so the bucket stays human-inspectable.
//
// There is no atomic move in S3; Move is CopyObject followed by a delete
// of the source, per key.
type Adapter struct {
	client    *awss3.Client
	bucket    string
	keyPrefix string
}

// Config contains the settings for an S3-backed volume root.
type Config struct {
	// Client is the configured S3 client.
	Client *awss3.Client

	// Bucket is the bucket name. It must already exist.
	Bucket string

	// KeyPrefix optionally roots the volume under a sub-prefix of the
	// bucket, e.g. "files/". Normalized to end with "/" when non-empty.
	KeyPrefix string
}

// New creates an S3 adapter and verifies bucket access with a single
// cheap list call.
func New(ctx context.Context, cfg Config) (*Adapter, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("s3 adapter: client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 adapter: bucket is required")
	}

	prefix := cfg.KeyPrefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	a := &Adapter{client: cfg.Client, bucket: cfg.Bucket, keyPrefix: prefix}

	_, err := a.client.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
		Bucket:  aws.String(a.bucket),
		Prefix:  aws.String(a.keyPrefix),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("verify bucket %q: %v: %w", cfg.Bucket, err, storage.ErrStorageIO)
	}
	return a, nil
}

// Kind identifies this backend family.
func (a *Adapter) Kind() string { return "s3" }

// key maps a volume-relative path to an object key.
func (a *Adapter) key(rel string) string {
	return a.keyPrefix + rel
}

// dirPrefix is the listing prefix for a directory path ("" means root).
func (a *Adapter) dirPrefix(rel string) string {
	if rel == "" {
		return a.keyPrefix
	}
	return a.keyPrefix + rel + "/"
}

func (a *Adapter) DirExists(ctx context.Context, p string) (bool, error) {
	if p == "" {
		return true, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	// A marker object or any key under the prefix both count: keys
	// written by other tools imply their ancestor directories.
	out, err := a.client.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
		Bucket:  aws.String(a.bucket),
		Prefix:  aws.String(a.dirPrefix(p)),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, fmt.Errorf("list %q: %v: %w", p, err, storage.ErrStorageIO)
	}
	if len(out.Contents) > 0 {
		return true, nil
	}
	return a.headExists(ctx, a.key(p)+"/")
}

func (a *Adapter) MakeDir(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// One marker per ancestor so intermediate directories list correctly.
	for cur := p; cur != "" && cur != "."; cur = parentOf(cur) {
		_, err := a.client.PutObject(ctx, &awss3.PutObjectInput{
			Bucket: aws.String(a.bucket),
			Key:    aws.String(a.key(cur) + "/"),
			Body:   strings.NewReader(""),
		})
		if err != nil {
			return fmt.Errorf("mkdir %q: %v: %w", cur, err, storage.ErrStorageIO)
		}
	}
	return nil
}

func (a *Adapter) RemoveDir(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	keys, err := a.listAll(ctx, a.dirPrefix(p))
	if err != nil {
		return err
	}
	keys = append(keys, a.key(p)+"/")
	return a.deleteKeys(ctx, keys)
}

func (a *Adapter) List(ctx context.Context, p string) ([]storage.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := a.dirPrefix(p)
	var infos []storage.Info
	seen := make(map[string]bool)

	paginator := awss3.NewListObjectsV2Paginator(a.client, &awss3.ListObjectsV2Input{
		Bucket:    aws.String(a.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %q: %v: %w", p, err, storage.ErrStorageIO)
		}

		for _, cp := range page.CommonPrefixes {
			name := path.Base(strings.TrimSuffix(aws.ToString(cp.Prefix), "/"))
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			infos = append(infos, storage.Info{
				Name:   name,
				Dir:    true,
				Hidden: strings.HasPrefix(name, "."),
			})
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix || strings.HasSuffix(key, "/") {
				continue // the directory's own marker
			}
			name := path.Base(key)
			infos = append(infos, storage.Info{
				Name:   name,
				Size:   aws.ToInt64(obj.Size),
				MTime:  aws.ToTime(obj.LastModified),
				Hidden: strings.HasPrefix(name, "."),
			})
		}
	}
	return infos, nil
}

func (a *Adapter) DirMTime(ctx context.Context, p string) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	out, err := a.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(p) + "/"),
	})
	if err != nil {
		// Implied directories have no marker and therefore no timestamp.
		if isNotFound(err) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("head %q: %v: %w", p, err, storage.ErrStorageIO)
	}
	return aws.ToTime(out.LastModified), nil
}

// headExists reports whether an object exists at the exact key.
func (a *Adapter) headExists(ctx context.Context, key string) (bool, error) {
	_, err := a.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("head %q: %v: %w", key, err, storage.ErrStorageIO)
	}
	return true, nil
}

// listAll returns every key under prefix, across pages.
func (a *Adapter) listAll(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	paginator := awss3.NewListObjectsV2Paginator(a.client, &awss3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %q: %v: %w", prefix, err, storage.ErrStorageIO)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// deleteKeys removes keys in DeleteObjects batches of up to 1000.
func (a *Adapter) deleteKeys(ctx context.Context, keys []string) error {
	const batchSize = 1000

	for start := 0; start < len(keys); start += batchSize {
		end := start + batchSize
		if end > len(keys) {
			end = len(keys)
		}

		objects := make([]types.ObjectIdentifier, 0, end-start)
		for _, k := range keys[start:end] {
			objects = append(objects, types.ObjectIdentifier{Key: aws.String(k)})
		}

		_, err := a.client.DeleteObjects(ctx, &awss3.DeleteObjectsInput{
			Bucket: aws.String(a.bucket),
			Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("delete batch: %v: %w", err, storage.ErrStorageIO)
		}
	}
	return nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	return errors.As(err, &nf) || errors.As(err, &nsk)
}

func parentOf(p string) string {
	parent := path.Dir(p)
	if parent == "." || parent == "/" {
		return ""
	}
	return parent
}
