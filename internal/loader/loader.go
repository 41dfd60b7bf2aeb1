// Package loader reads the document corpus from disk: recursive .txt
// discovery, charset detection with UTF-8 fallback, and stable document
// id assignment.
package loader

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding/htmlindex"

	derrors "github.com/doclens/doclens/internal/errors"
)

// Document is one loaded corpus file.
type Document struct {
	ID       string
	Filename string
	Path     string
	Text     string
	Encoding string
	Size     int64
}

// Warning records a file skipped during loading. Skips never fail the
// batch; the caller reports a summary.
type Warning struct {
	Path string
	Err  error
}

// LoadDir loads every .txt file under dir. Files sort by path before id
// assignment, so ids are stable across runs. A directory with no
// readable documents returns an empty slice and the accumulated
// warnings.
func LoadDir(dir string) ([]Document, []Warning, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".txt") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, derrors.Wrap(derrors.ErrCodeFileUnreadable, err)
	}
	sort.Strings(paths)

	slog.Info("scanning corpus", slog.String("dir", dir), slog.Int("files", len(paths)))

	var (
		docs     []Document
		warnings []Warning
	)
	for i, path := range paths {
		doc, err := loadFile(path, i)
		if err != nil {
			warnings = append(warnings, Warning{Path: path, Err: err})
			slog.Warn("skipping unreadable file",
				slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		docs = append(docs, doc)
	}

	slog.Info("corpus loaded",
		slog.Int("documents", len(docs)), slog.Int("skipped", len(warnings)))
	return docs, warnings, nil
}

// loadFile reads one file with charset detection. Decoding failures fall
// back to UTF-8 with replacement rather than skipping the file.
func loadFile(path string, ordinal int) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, derrors.Wrap(derrors.ErrCodeFileUnreadable, err)
	}

	text, encoding := decode(raw)

	return Document{
		ID:       DocID(ordinal),
		Filename: filepath.Base(path),
		Path:     path,
		Text:     text,
		Encoding: encoding,
		Size:     int64(len(raw)),
	}, nil
}

// DocID formats the stable document id for an ordinal.
func DocID(ordinal int) string {
	return fmt.Sprintf("doc_%06d", ordinal)
}

// decode converts raw bytes to a string using the best-guess charset.
func decode(raw []byte) (string, string) {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(raw)
	if err == nil && result != nil && result.Charset != "" {
		if enc, lookupErr := htmlindex.Get(strings.ToLower(result.Charset)); lookupErr == nil {
			if decoded, decodeErr := enc.NewDecoder().Bytes(raw); decodeErr == nil {
				return string(decoded), result.Charset
			}
		}
	}

	// Fallback: UTF-8 with replacement of invalid sequences.
	return strings.ToValidUTF8(string(raw), "�"), "utf-8"
}
