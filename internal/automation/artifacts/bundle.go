package artifacts

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
)

// Bundle zips the artifacts at sources into a single archive written to
// target. Sources that were never written are skipped and returned so the
// caller can log them.
func Bundle(ctx context.Context, store Store, target string, sources []string) (string, []string, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	var skipped []string
	for _, src := range sources {
		data, err := store.Read(ctx, src)
		if errors.Is(err, ErrNotFound) {
			skipped = append(skipped, src)
			continue
		}
		if err != nil {
			return "", skipped, err
		}
		w, err := zw.Create(path.Base(src))
		if err != nil {
			return "", skipped, fmt.Errorf("add %s to package: %w", src, err)
		}
		if _, err := w.Write(data); err != nil {
			return "", skipped, fmt.Errorf("add %s to package: %w", src, err)
		}
	}
	if err := zw.Close(); err != nil {
		return "", skipped, fmt.Errorf("close package: %w", err)
	}

	ref, err := store.Write(ctx, target, buf.Bytes())
	return ref, skipped, err
}
