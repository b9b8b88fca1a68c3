// Package backup archives the TourStream analytics journal together with the
// catalog data set and config file, and restores such archives.
package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/HerbHall/tourstream/internal/store"
)

// ErrUnsafePath is returned by Restore for entries that would escape the
// target directory.
var ErrUnsafePath = errors.New("unsafe path in archive")

// Sources are the files to archive. Empty paths are skipped. JournalPath must
// name a SQLite file, not an in-memory DSN.
type Sources struct {
	JournalPath string
	CatalogPath string
	ConfigPath  string
}

// DefaultName is the archive name used when no output path is given.
func DefaultName(now time.Time) string {
	return fmt.Sprintf("tourstream-backup-%s.tar.gz", now.Format("20060102-150405"))
}

// Backup writes a tar.gz archive of src to outputPath and returns the names of
// the archived entries. The journal is checkpointed first so the copied file
// holds every committed event.
func Backup(ctx context.Context, src Sources, outputPath string) ([]string, error) {
	var files []string
	if src.JournalPath != "" {
		if _, err := os.Stat(src.JournalPath); err != nil {
			return nil, fmt.Errorf("journal file not found: %w", err)
		}
		if err := checkpoint(ctx, src.JournalPath); err != nil {
			return nil, fmt.Errorf("journal checkpoint: %w", err)
		}
		files = append(files, src.JournalPath)
	}
	for _, p := range []string{src.CatalogPath, src.ConfigPath} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("source file not found: %w", err)
		}
		files = append(files, p)
	}
	if len(files) == 0 {
		return nil, errors.New("nothing to back up")
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	gw := gzip.NewWriter(out)
	tw := tar.NewWriter(gw)

	names := make([]string, 0, len(files))
	for _, f := range files {
		name := filepath.Base(f)
		if err := addFile(tw, f, name); err != nil {
			return nil, fmt.Errorf("adding %s to archive: %w", name, err)
		}
		names = append(names, name)
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("finishing archive: %w", err)
	}
	if err := gw.Close(); err != nil {
		return nil, fmt.Errorf("finishing archive: %w", err)
	}
	return names, out.Close()
}

// Restore extracts the archive at inputPath into targetDir. Existing files
// are left alone and reported as an error unless force is set.
func Restore(ctx context.Context, inputPath, targetDir string, force bool) ([]string, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer in.Close()

	gr, err := gzip.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	defer gr.Close()

	if err := os.MkdirAll(targetDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating target directory: %w", err)
	}

	var restored []string
	tr := tar.NewReader(gr)
	for {
		if err := ctx.Err(); err != nil {
			return restored, err
		}
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return restored, fmt.Errorf("reading archive entry: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if !filepath.IsLocal(hdr.Name) {
			return restored, fmt.Errorf("%w: %s", ErrUnsafePath, hdr.Name)
		}

		dst := filepath.Join(targetDir, hdr.Name)
		if !force {
			if _, err := os.Stat(dst); err == nil {
				return restored, fmt.Errorf("%s already exists (use force to overwrite)", dst)
			}
		}
		if err := extract(tr, dst, hdr.FileInfo().Mode().Perm()); err != nil {
			return restored, fmt.Errorf("restoring %s: %w", hdr.Name, err)
		}
		restored = append(restored, hdr.Name)
	}
	return restored, nil
}

func checkpoint(ctx context.Context, path string) error {
	s, err := store.New(path)
	if err != nil {
		return err
	}
	defer s.Close()

	_, err = s.DB().ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)")
	return err
}

func addFile(tw *tar.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = name

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err = io.Copy(tw, f)
	return err
}

func extract(r io.Reader, dst string, perm os.FileMode) error {
	if perm == 0 {
		perm = 0o640
	}
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
