// Package project discovers module files under a root directory and loads
// the optional alias map spec.md §6 describes (`path-suffix -> {full IDs}`,
// used to resolve ambiguous require() targets).
package project

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Source is one discovered module: its opaque ID (slash-delimited path
// without extension, spec.md §2.3) and the absolute URL afs read it from.
type Source struct {
	ID  string
	URL string
}

// Walker discovers module sources under a root using afs, so local
// directories and remote-storage roots (s3://, gs://, ...) are both
// supported without a code path split.
type Walker struct {
	fs  afs.Service
	ext string
}

// New creates a Walker matching files with the given extension (".lua").
func New(ext string) *Walker {
	return &Walker{fs: afs.New(), ext: ext}
}

// Discover walks rootURL and returns every matching module source, ordered
// lexicographically by ID so downstream ingestion is deterministic
// (spec.md §8, "stable ordering").
func (w *Walker) Discover(ctx context.Context, rootURL string) ([]Source, error) {
	var sources []Source
	err := w.walk(ctx, rootURL, rootURL, &sources)
	if err != nil {
		return nil, fmt.Errorf("failed to walk project root %s: %w", rootURL, err)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].ID < sources[j].ID })
	return sources, nil
}

func (w *Walker) walk(ctx context.Context, rootURL, dirURL string, out *[]Source) error {
	objects, err := w.fs.List(ctx, dirURL)
	if err != nil {
		return err
	}
	for _, obj := range objects {
		if obj.URL() == dirURL || obj.Name() == "." {
			continue
		}
		if obj.IsDir() {
			if err := w.walk(ctx, rootURL, obj.URL(), out); err != nil {
				return err
			}
			continue
		}
		if !strings.HasSuffix(obj.Name(), w.ext) {
			continue
		}
		*out = append(*out, Source{ID: moduleID(rootURL, obj.URL(), w.ext), URL: obj.URL()})
	}
	return nil
}

// moduleID turns an absolute file URL into a slash-delimited, extension-less
// ID relative to the project root (spec.md §2.3).
func moduleID(rootURL, fileURL, ext string) string {
	rel := strings.TrimPrefix(fileURL, rootURL)
	rel = strings.TrimPrefix(rel, "/")
	rel = strings.TrimSuffix(rel, ext)
	return path.Clean(rel)
}

// Read downloads one module's source bytes.
func (w *Walker) Read(ctx context.Context, url string) ([]byte, error) {
	return w.fs.DownloadWithURL(ctx, url)
}

// AliasMap is the `path-suffix -> {full module IDs}` table spec.md §6
// describes for resolving ambiguous require() targets.
type AliasMap map[string][]string

// LoadAliases reads a YAML alias map from disk via the same Walker, so a
// remote project root can carry its alias file alongside it.
func LoadAliases(ctx context.Context, w *Walker, url string) (AliasMap, error) {
	raw, err := w.Read(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias map %s: %w", url, err)
	}
	var aliases AliasMap
	if err := yaml.Unmarshal(raw, &aliases); err != nil {
		return nil, fmt.Errorf("failed to parse alias map %s: %w", url, err)
	}
	return aliases, nil
}

// Resolve looks up a require() path suffix, returning the single matching
// full module ID. Zero or more-than-one matches is reported to the caller
// as the AmbiguousResolution case spec.md §7 describes.
func (a AliasMap) Resolve(suffix string) (string, bool) {
	ids := a[suffix]
	if len(ids) != 1 {
		return "", false
	}
	return ids[0], true
}
