// Package jsongen flattens the normalized content tree into the JSON index
// artifacts consumed by the search and browse layers. Generation is
// wholesale: artifacts are rebuilt from scratch, never merged.
package jsongen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/natefinch/atomic"

	"github.com/andrezz-b/salsa-prep/internal/notes"
)

var (
	infoColor    = color.New(color.FgHiWhite)
	skipColor    = color.New(color.FgHiBlack)
	successColor = color.New(color.FgHiGreen)
)

// contentDepth is the path-depth offset the group and default slug are
// derived from; content lives under paths like src/content/moves/<note>.md.
const contentDepth = 2

// ContentItem is one record in a generated index. Items are created fresh
// every run and never mutated afterwards.
type ContentItem struct {
	Group       string         `json:"group"`
	Slug        string         `json:"slug"`
	Frontmatter map[string]any `json:"frontmatter"`
	Content     string         `json:"content"`
}

// Generator builds moves.json, concepts.json, and the merged search.json.
type Generator struct {
	jsonDir     string
	movesDir    string
	conceptsDir string
}

func New(jsonDir, movesDir, conceptsDir string) *Generator {
	return &Generator{jsonDir: jsonDir, movesDir: movesDir, conceptsDir: conceptsDir}
}

func (g *Generator) artifacts() []string {
	return []string{
		filepath.Join(g.jsonDir, "moves.json"),
		filepath.Join(g.jsonDir, "concepts.json"),
		filepath.Join(g.jsonDir, "search.json"),
	}
}

// Generate rebuilds the index artifacts. When force is false and all
// artifacts are newer than every content file, generation is skipped.
func (g *Generator) Generate(force bool) error {
	if err := os.MkdirAll(g.jsonDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", g.jsonDir, err)
	}

	if !force && g.upToDate() {
		skipColor.Fprintln(os.Stderr, "JSONs are up to date, skipping generation")
		return nil
	}

	infoColor.Fprintln(os.Stderr, "generating JSON files")

	moves, err := collect(g.movesDir)
	if err != nil {
		return fmt.Errorf("collect %s: %w", g.movesDir, err)
	}
	concepts, err := collect(g.conceptsDir)
	if err != nil {
		return fmt.Errorf("collect %s: %w", g.conceptsDir, err)
	}

	outputs := g.artifacts()
	if err := writeJSON(outputs[0], moves); err != nil {
		return err
	}
	if err := writeJSON(outputs[1], concepts); err != nil {
		return err
	}
	if err := writeJSON(outputs[2], append(append([]ContentItem{}, moves...), concepts...)); err != nil {
		return err
	}

	successColor.Fprintf(os.Stderr, "JSON generation complete (%d moves, %d concepts)\n", len(moves), len(concepts))
	return nil
}

// upToDate reports whether every artifact exists and the oldest of them is
// newer than the newest content file.
func (g *Generator) upToDate() bool {
	var oldestOutput time.Time
	for _, artifact := range g.artifacts() {
		info, err := os.Stat(artifact)
		if err != nil {
			return false
		}
		if oldestOutput.IsZero() || info.ModTime().Before(oldestOutput) {
			oldestOutput = info.ModTime()
		}
	}

	latestContent := latestMtime(g.movesDir)
	if t := latestMtime(g.conceptsDir); t.After(latestContent) {
		latestContent = t
	}
	return !latestContent.After(oldestOutput)
}

func latestMtime(dir string) time.Time {
	var latest time.Time
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
		return nil
	})
	return latest
}

// collect walks a category directory and builds one ContentItem per note.
// Entries whose name starts with "-" are reserved and skipped; items
// without frontmatter or marked draft are filtered out.
func collect(dir string) ([]ContentItem, error) {
	items := []ContentItem{}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return items, nil
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), "-") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !hasContentExt(d.Name()) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		fm, body, err := notes.Parse(data)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if len(fm) == 0 || fm["draft"] == true {
			return nil
		}

		parts := strings.Split(filepath.ToSlash(path), "/")
		group := ""
		if len(parts) > contentDepth {
			group = parts[contentDepth]
		}
		itemSlug := defaultSlug(parts)
		if s, ok := fm["slug"].(string); ok && s != "" {
			itemSlug = s
		}

		items = append(items, ContentItem{
			Group:       group,
			Slug:        itemSlug,
			Frontmatter: fm,
			Content:     body,
		})
		return nil
	})
	return items, err
}

func hasContentExt(name string) bool {
	return strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".mdx")
}

func defaultSlug(parts []string) string {
	if len(parts) <= contentDepth {
		return ""
	}
	rel := strings.Join(parts[contentDepth:], "/")
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}

func writeJSON(path string, items []ContentItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
