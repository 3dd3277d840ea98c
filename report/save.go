package report

import (
	"context"

	"cloud.google.com/go/storage"
	"github.com/carbocation/gridiou"
	"github.com/carbocation/pfx"
)

// Save writes body to a local file or, for gs:// paths, to a Google Storage
// object through client.
func Save(ctx context.Context, path string, body []byte, client *storage.Client) error {
	w, err := gridiou.MaybeCreateInGoogleStorage(ctx, path, client)
	if err != nil {
		return err
	}

	if _, err := w.Write(body); err != nil {
		w.Close()
		return pfx.Err(err)
	}

	// For Google Storage, the upload is only finalized (and its errors only
	// surfaced) on Close
	return pfx.Err(w.Close())
}
