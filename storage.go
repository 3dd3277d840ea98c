package gridiou

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"google.golang.org/api/option"
)

// NewStorageClient returns a Google Storage client only if one of the paths
// points to Google Storage. Otherwise it returns nil, which the Open and
// Create helpers accept for local paths. If credentialsFile is set, it is used
// instead of the application default credentials.
func NewStorageClient(ctx context.Context, credentialsFile string, paths ...string) (*storage.Client, error) {
	needed := false
	for _, path := range paths {
		if IsGoogleStoragePath(path) {
			needed = true
			break
		}
	}
	if !needed {
		return nil, nil
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(ExpandHome(credentialsFile)))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, pfx.Err(err)
	}

	return client, nil
}

// IsGoogleStoragePath reports whether path is a gs:// URL.
func IsGoogleStoragePath(path string) bool {
	return strings.HasPrefix(path, "gs://")
}

// splitGoogleStoragePath detects the bucket and the path to the actual file.
func splitGoogleStoragePath(path string) (bucket, object string, err error) {
	pathParts := strings.SplitN(strings.TrimPrefix(path, "gs://"), "/", 2)
	if len(pathParts) != 2 || pathParts[0] == "" || pathParts[1] == "" {
		return "", "", fmt.Errorf("Tried to split your google storage path into a bucket and an object, but got %d parts: %v", len(pathParts), pathParts)
	}

	return pathParts[0], pathParts[1], nil
}

// MaybeOpenFromGoogleStorage opens path for reading. gs:// paths are read
// through client, which must be non-nil in that case; anything else is opened
// from the local filesystem after expanding ~.
func MaybeOpenFromGoogleStorage(ctx context.Context, path string, client *storage.Client) (io.ReadCloser, error) {
	if IsGoogleStoragePath(path) {
		if client == nil {
			return nil, fmt.Errorf("%s: a Google Storage client is required to read gs:// paths", path)
		}

		bucketName, pathName, err := splitGoogleStoragePath(path)
		if err != nil {
			return nil, err
		}

		rdr, err := client.Bucket(bucketName).Object(pathName).NewReader(ctx)
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("%s: %s", path, err))
		}

		return rdr, nil
	}

	f, err := os.Open(ExpandHome(path))
	if err != nil {
		return nil, pfx.Err(err)
	}

	return f, nil
}

// MaybeCreateInGoogleStorage opens path for writing, in the same manner as
// MaybeOpenFromGoogleStorage. For gs:// paths, the object is only committed
// once the returned writer is closed without error.
func MaybeCreateInGoogleStorage(ctx context.Context, path string, client *storage.Client) (io.WriteCloser, error) {
	if IsGoogleStoragePath(path) {
		if client == nil {
			return nil, fmt.Errorf("%s: a Google Storage client is required to write gs:// paths", path)
		}

		bucketName, pathName, err := splitGoogleStoragePath(path)
		if err != nil {
			return nil, err
		}

		return client.Bucket(bucketName).Object(pathName).NewWriter(ctx), nil
	}

	f, err := os.Create(ExpandHome(path))
	if err != nil {
		return nil, pfx.Err(err)
	}

	return f, nil
}
