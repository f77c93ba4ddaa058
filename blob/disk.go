// Package blob implements the external blob store contract on the local
// filesystem: bytes in, opaque refs out, refs resolvable to download URLs.
package blob

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"pairchat/errors"
)

// DiskStore writes blobs under a single root directory. The ref is a
// generated name carrying the sniffed extension; the declared MIME type is
// only a hint and never trusted over the detected one.
type DiskStore struct {
	root    string
	baseURL string
	log     *slog.Logger
}

func NewDiskStore(log *slog.Logger, root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blob root: %w", err)
	}
	return &DiskStore{root: root, baseURL: strings.TrimSuffix(baseURL, "/"), log: log}, nil
}

func (s *DiskStore) Store(ctx context.Context, data []byte, declaredMime string) (string, error) {
	detected := mimetype.Detect(data)
	if declaredMime != "" && !mimetype.EqualsAny(declaredMime, detected.String()) {
		s.log.Debug("declared MIME differs from detected",
			"declared", declaredMime, "detected", detected.String())
	}

	ref := uuid.NewString() + detected.Extension()
	if err := os.WriteFile(filepath.Join(s.root, ref), data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrUnavailable, err)
	}
	return ref, nil
}

// Resolve maps a ref to its download URL. Refs are validated against path
// traversal since they travel through client hands.
func (s *DiskStore) Resolve(ctx context.Context, ref string) (string, error) {
	if !validRef(ref) {
		return "", fmt.Errorf("blob %q: %w", ref, errors.ErrNotFound)
	}
	if _, err := os.Stat(filepath.Join(s.root, ref)); err != nil {
		return "", fmt.Errorf("blob %q: %w", ref, errors.ErrNotFound)
	}
	return s.baseURL + "/" + ref, nil
}

// Root exposes the directory for static file serving.
func (s *DiskStore) Root() string { return s.root }

func validRef(ref string) bool {
	return ref != "" &&
		!strings.Contains(ref, "/") &&
		!strings.Contains(ref, "\\") &&
		!strings.Contains(ref, "..")
}
