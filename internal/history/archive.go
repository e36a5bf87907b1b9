package history

import (
	"archive/tar"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/figaid/internal/security"
)

// IndexName is the name of the history index inside an archive.
const IndexName = "history.json"

// MaxArchiveFileSize bounds each file extracted from an archive.
const MaxArchiveFileSize = 100 * 1024 * 1024

// Archive writes a tar.xz containing history.json and every capture file
// referenced by the store's entries. Missing capture files are skipped.
func (s *Store) Archive(w io.Writer, capturesDir string) error {
	entries := s.All()

	xzw, err := xz.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create xz writer: %w", err)
	}
	tw := tar.NewWriter(xzw)

	index, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := tw.WriteHeader(&tar.Header{
		Name: IndexName,
		Mode: 0o644,
		Size: int64(len(index)),
	}); err != nil {
		return fmt.Errorf("failed to write archive header: %w", err)
	}
	if _, err := tw.Write(index); err != nil {
		return fmt.Errorf("failed to write history index: %w", err)
	}

	seen := make(map[string]bool)
	for _, e := range entries {
		for _, name := range e.Files() {
			if seen[name] {
				continue
			}
			seen[name] = true
			if err := addFile(tw, capturesDir, name); err != nil {
				return err
			}
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to finalise tar archive: %w", err)
	}
	if err := xzw.Close(); err != nil {
		return fmt.Errorf("failed to finalise xz stream: %w", err)
	}
	return nil
}

func addFile(tw *tar.Writer, dir, name string) error {
	if err := security.ValidateFilePath(name, dir); err != nil {
		return fmt.Errorf("invalid capture %q: %w", name, err)
	}

	f, err := os.Open(filepath.Join(dir, name)) // #nosec G304 - validated against the captures directory
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open capture: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat capture: %w", err)
	}
	hdr, err := tar.FileInfoHeader(stat, "")
	if err != nil {
		return fmt.Errorf("failed to build header for %s: %w", name, err)
	}
	hdr.Name = "captures/" + name
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("failed to write archive header: %w", err)
	}
	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("failed to archive %s: %w", name, err)
	}
	return nil
}

// Extract unpacks an archive produced by Archive. Capture files are written
// into capturesDir and the decoded history index is returned.
func Extract(r io.Reader, capturesDir string) ([]Entry, error) {
	xzr, err := xz.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create xz reader: %w", err)
	}
	tr := tar.NewReader(xzr)

	if err := os.MkdirAll(capturesDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create captures directory: %w", err)
	}

	var entries []Entry
	foundIndex := false
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar archive: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		if header.Name == IndexName {
			if err := json.NewDecoder(security.NewLimitedReader(tr, MaxArchiveFileSize)).Decode(&entries); err != nil {
				return nil, fmt.Errorf("failed to decode history index: %w", err)
			}
			foundIndex = true
			continue
		}

		name := filepath.Base(header.Name)
		if err := security.ValidateFilePath(name, capturesDir); err != nil {
			return nil, fmt.Errorf("invalid archive entry %q: %w", header.Name, err)
		}
		if err := extractFile(tr, filepath.Join(capturesDir, name)); err != nil {
			return nil, err
		}
	}

	if !foundIndex {
		return nil, fmt.Errorf("archive has no %s", IndexName)
	}
	return entries, nil
}

func extractFile(r io.Reader, destPath string) error {
	out, err := os.Create(destPath) // #nosec G304 - destination validated by caller
	if err != nil {
		return fmt.Errorf("failed to create capture file: %w", err)
	}

	_, copyErr := io.Copy(out, security.NewLimitedReader(r, MaxArchiveFileSize))
	closeErr := out.Close()

	if copyErr != nil {
		return fmt.Errorf("failed to extract capture: %w", copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close capture file: %w", closeErr)
	}
	return nil
}

// Restore extracts an archive and appends its entries to the store.
func (s *Store) Restore(r io.Reader, capturesDir string) (int, error) {
	entries, err := Extract(r, capturesDir)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		s.Add(e)
	}
	return len(entries), nil
}
