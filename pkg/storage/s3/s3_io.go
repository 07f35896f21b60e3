package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/elfin-go/elfin/pkg/storage"
)

func (a *Adapter) FileExists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return a.headExists(ctx, a.key(p))
}

func (a *Adapter) FileSize(ctx context.Context, p string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	out, err := a.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(p)),
	})
	if err != nil {
		return 0, fmt.Errorf("head %q: %v: %w", p, err, storage.ErrStorageIO)
	}
	return aws.ToInt64(out.ContentLength), nil
}

func (a *Adapter) FileMTime(ctx context.Context, p string) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	out, err := a.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(p)),
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("head %q: %v: %w", p, err, storage.ErrStorageIO)
	}
	return aws.ToTime(out.LastModified), nil
}

func (a *Adapter) OpenRead(ctx context.Context, p string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := a.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(p)),
	})
	if err != nil {
		return nil, fmt.Errorf("get %q: %v: %w", p, err, storage.ErrStorageIO)
	}
	return out.Body, nil
}

func (a *Adapter) CreateFile(ctx context.Context, p string) error {
	return a.WriteFile(ctx, p, strings.NewReader(""))
}

func (a *Adapter) WriteFile(ctx context.Context, p string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// PutObject wants a seekable body for signing; buffer the reader.
	// Files a browser file manager moves around fit in memory.
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read body for %q: %v: %w", p, err, storage.ErrStorageIO)
	}

	_, err = a.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(p)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("put %q: %v: %w", p, err, storage.ErrStorageIO)
	}
	return nil
}

func (a *Adapter) RemoveFile(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := a.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(p)),
	})
	if err != nil {
		return fmt.Errorf("delete %q: %v: %w", p, err, storage.ErrStorageIO)
	}
	return nil
}

func (a *Adapter) Copy(ctx context.Context, src, dst string, isDir bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !isDir {
		return a.copyObject(ctx, a.key(src), a.key(dst))
	}

	if err := a.MakeDir(ctx, dst); err != nil {
		return err
	}
	srcPrefix := a.dirPrefix(src)
	keys, err := a.listAll(ctx, srcPrefix)
	if err != nil {
		return err
	}
	dstPrefix := a.dirPrefix(dst)
	for _, key := range keys {
		if err := a.copyObject(ctx, key, dstPrefix+strings.TrimPrefix(key, srcPrefix)); err != nil {
			return err
		}
	}
	return nil
}

func (a *Adapter) Move(ctx context.Context, src, dst string, isDir bool) error {
	// S3 has no rename; copy first so a failure leaves the source intact.
	if err := a.Copy(ctx, src, dst, isDir); err != nil {
		return err
	}
	if isDir {
		return a.RemoveDir(ctx, src)
	}
	return a.RemoveFile(ctx, src)
}

func (a *Adapter) copyObject(ctx context.Context, srcKey, dstKey string) error {
	_, err := a.client.CopyObject(ctx, &awss3.CopyObjectInput{
		Bucket:     aws.String(a.bucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(a.bucket + "/" + srcKey),
	})
	if err != nil {
		return fmt.Errorf("copy %q to %q: %v: %w", srcKey, dstKey, err, storage.ErrStorageIO)
	}
	return nil
}
