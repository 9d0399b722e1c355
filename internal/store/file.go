package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/seatlens/seatlens/pkg/errs"
)

// neverExpires is the modification time stamped on entries stored
// without a ttl, far enough out that the expiry check never trips.
var neverExpires = time.Unix(1<<40, 0)

// File stores rendered frames as PNG files under a directory tree,
// so CLI renders survive across invocations without a Redis instance.
// Fingerprints are hashed into a two-level layout to keep any single
// directory small, and each entry's expiry rides on its file
// modification time. It implements rendercache.Backing. Safe for
// concurrent use; writes go through a rename so readers never see a
// torn frame.
type File struct {
	dir    string
	logger *log.Logger
}

// NewFile opens (creating if needed) a frame store rooted at dir.
func NewFile(dir string, logger *log.Logger) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "create frame store at %s", dir)
	}
	return &File{dir: dir, logger: logger}, nil
}

// Dir returns the root of the store.
func (f *File) Dir() string { return f.dir }

// Get fetches the frame stored under fingerprint. Expired entries are
// removed and reported as a clean miss, as are entries whose file has
// gone missing.
func (f *File) Get(_ context.Context, fingerprint string) ([]byte, bool, error) {
	path := f.path(fingerprint)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errs.Wrap(errs.ErrCodeInternal, err, "stat frame %s", path)
	}
	if time.Now().After(info.ModTime()) {
		f.logger.Debug("expired frame removed", "path", path)
		os.Remove(path)
		return nil, false, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errs.Wrap(errs.ErrCodeInternal, err, "read frame %s", path)
	}
	return data, true, nil
}

// Set stores the frame under fingerprint with the given expiry,
// stamped on the file's modification time. ttl <= 0 stores without
// expiry.
func (f *File) Set(_ context.Context, fingerprint string, data []byte, ttl time.Duration) error {
	path := f.path(fingerprint)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "create frame dir for %s", path)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "write frame %s", path)
	}

	expiry := neverExpires
	if ttl > 0 {
		expiry = time.Now().Add(ttl)
	}
	if err := os.Chtimes(tmp, expiry, expiry); err != nil {
		os.Remove(tmp)
		return errs.Wrap(errs.ErrCodeInternal, err, "stamp expiry on %s", path)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errs.Wrap(errs.ErrCodeInternal, err, "store frame %s", path)
	}
	return nil
}

// Delete removes the frame stored under fingerprint. Deleting a
// missing entry is not an error.
func (f *File) Delete(_ context.Context, fingerprint string) error {
	err := os.Remove(f.path(fingerprint))
	if err != nil && !os.IsNotExist(err) {
		return errs.Wrap(errs.ErrCodeInternal, err, "delete frame")
	}
	return nil
}

// path maps a fingerprint to its on-disk location. The first hash
// byte fans entries out across subdirectories.
func (f *File) path(fingerprint string) string {
	sum := sha256.Sum256([]byte(fingerprint))
	name := hex.EncodeToString(sum[:])
	return filepath.Join(f.dir, name[:2], name[2:]+".png")
}
