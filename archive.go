package autoblog

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/eringen/autoblog/internal/metrics"
)

// Archive lists generated posts and bundles them for download.
type Archive struct {
	dir     string
	store   *Store
	metrics *metrics.Metrics
}

// NewArchive creates an Archive over the pages in cfg.OutputDir.
func NewArchive(cfg Config, store *Store) *Archive {
	return &Archive{dir: cfg.OutputDir, store: store, metrics: metrics.Global}
}

// List returns posts matching filter, newest first.
func (a *Archive) List(filter DownloadFilter) ([]BlogPost, error) {
	return a.store.ListPosts(filter)
}

// MarkDownloaded flags ids as downloaded.
func (a *Archive) MarkDownloaded(ids ...int64) error {
	return a.store.MarkDownloaded(ids...)
}

// Path returns the on-disk path of a generated page. Only the base name of
// filename is used.
func (a *Archive) Path(filename string) string {
	return filepath.Join(a.dir, filepath.Base(filename))
}

// Exists reports whether the page file for filename is on disk.
func (a *Archive) Exists(filename string) bool {
	info, err := os.Stat(a.Path(filename))
	return err == nil && info.Mode().IsRegular()
}

// BuildZip writes the named pages into an in-memory zip archive. Files that
// are not on disk are skipped. It returns the archive and the names that
// were included.
func (a *Archive) BuildZip(filenames []string) (*bytes.Buffer, []string, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	var included []string
	seen := make(map[string]bool)

	for _, name := range filenames {
		base := filepath.Base(name)
		if seen[base] {
			continue
		}
		ok, err := a.addFile(zw, base)
		if err != nil {
			zw.Close()
			return nil, nil, err
		}
		if ok {
			seen[base] = true
			included = append(included, base)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, nil, fmt.Errorf("close zip: %w", err)
	}
	return buf, included, nil
}

func (a *Archive) addFile(zw *zip.Writer, base string) (bool, error) {
	f, err := os.Open(filepath.Join(a.dir, base))
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("zip skipping missing file", "filename", base)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("open %s: %w", base, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", base, err)
	}
	if !info.Mode().IsRegular() {
		return false, nil
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return false, err
	}
	hdr.Name = base
	hdr.Method = zip.Deflate
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return false, fmt.Errorf("zip %s: %w", base, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return false, fmt.Errorf("zip %s: %w", base, err)
	}
	return true, nil
}

// Download bundles the pages of the given posts and marks those posts as
// downloaded. Unknown ids are ignored.
func (a *Archive) Download(ids []int64) (*bytes.Buffer, []string, error) {
	posts, err := a.store.GetPosts(ids)
	if err != nil {
		return nil, nil, err
	}
	filenames := make([]string, 0, len(posts))
	postIDs := make([]int64, 0, len(posts))
	for _, p := range posts {
		filenames = append(filenames, p.Filename)
		postIDs = append(postIDs, p.ID)
	}
	buf, included, err := a.BuildZip(filenames)
	if err != nil {
		return nil, nil, err
	}
	if err := a.store.MarkDownloaded(postIDs...); err != nil {
		return nil, nil, fmt.Errorf("mark downloaded: %w", err)
	}
	a.metrics.AddDownloads(len(postIDs))
	slog.Info("posts downloaded", "posts", len(postIDs), "files", len(included))
	return buf, included, nil
}
