package fileio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

// SplitGSPath splits gs://bucket/path/to/object into its bucket and object
// name.
func SplitGSPath(path string) (bucket, object string, err error) {
	pathParts := strings.SplitN(strings.TrimPrefix(path, "gs://"), "/", 2)
	if len(pathParts) != 2 || pathParts[0] == "" || pathParts[1] == "" {
		return "", "", fmt.Errorf("Tried to split your google storage path into 2 parts, but got %d: %v", len(pathParts), pathParts)
	}

	return pathParts[0], pathParts[1], nil
}

// MaybeOpenFromGoogleStorage opens path from Google Storage if it is a gs://
// path and a client was provided. Otherwise, path is opened from the local
// filesystem.
func MaybeOpenFromGoogleStorage(ctx context.Context, path string, client *storage.Client) (io.ReadCloser, error) {
	if client != nil && strings.HasPrefix(path, "gs://") {
		bucketName, pathName, err := SplitGSPath(path)
		if err != nil {
			return nil, pfx.Err(err)
		}

		rdr, err := client.Bucket(bucketName).Object(pathName).NewReader(ctx)
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
		}

		return rdr, nil
	}

	path, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}

	return os.Open(path)
}

// Exists reports whether path is present, either as a Google Storage object
// (gs:// paths, when client is non-nil) or on the local filesystem.
func Exists(ctx context.Context, path string, client *storage.Client) (bool, error) {
	if client != nil && strings.HasPrefix(path, "gs://") {
		bucketName, pathName, err := SplitGSPath(path)
		if err != nil {
			return false, pfx.Err(err)
		}

		// Make a hard call to get the object attributes
		_, err = client.Bucket(bucketName).Object(pathName).Attrs(ctx)
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		} else if err != nil {
			return false, pfx.Err(fmt.Errorf("%s: %w", path, err))
		}

		return true, nil
	}

	path, err := ExpandHome(path)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, pfx.Err(err)
	}

	return true, nil
}
