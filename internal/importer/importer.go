// Package importer converts the raw vault into the normalized content set:
// it builds the global title index, resolves wiki-links and relation fields
// to slugs, normalizes frontmatter, and writes one output file per note.
package importer

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/andrezz-b/salsa-prep/internal/notes"
)

var (
	warnColor    = color.New(color.FgHiYellow)
	infoColor    = color.New(color.FgHiWhite)
	deletedColor = color.New(color.FgHiBlack)
)

func warnf(format string, args ...any) {
	warnColor.Fprintf(os.Stderr, format+"\n", args...)
}

// ErrMissingOutputPath is returned when a required output directory is not
// configured. It is the importer's only fatal configuration error.
var ErrMissingOutputPath = errors.New("missing output path")

var dateFields = []string{"created_date", "updated_date"}

// relationFields lists the frontmatter arrays whose titles resolve to
// slugs. Lookup is category-blind: any indexed title matches.
var relationFields = []string{"related_moves", "related_concepts", "setup_moves", "exit_moves"}

var numericFields = []string{"difficulty", "leader_difficulty", "follower_difficulty"}

// Importer runs the two-phase import over a synchronized checkout.
type Importer struct {
	movesSource    string
	conceptsSource string
	movesOut       string
	conceptsOut    string
}

// New builds an Importer reading from dataDir's Moves and Concepts folders.
// Both output paths are required.
func New(dataDir, movesOut, conceptsOut string) (*Importer, error) {
	if movesOut == "" || conceptsOut == "" {
		return nil, ErrMissingOutputPath
	}
	return &Importer{
		movesSource:    filepath.Join(dataDir, "Moves"),
		conceptsSource: filepath.Join(dataDir, "Concepts"),
		movesOut:       movesOut,
		conceptsOut:    conceptsOut,
	}, nil
}

func (imp *Importer) outDir(c Category) string {
	if c == CategoryMove {
		return imp.movesOut
	}
	return imp.conceptsOut
}

// Run processes the full note set. Phase 1 scans both category folders into
// the title index; phase 2 transforms every note in sorted-title order.
// Broken references and unparseable fields are warnings; Run fails only on
// infrastructure errors (unwritable output directories, scan failure).
func (imp *Importer) Run() error {
	for _, dir := range []string{imp.movesOut, imp.conceptsOut} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}

	idx := make(Index)
	if err := scanInto(idx, imp.movesSource, CategoryMove); err != nil {
		return fmt.Errorf("scan %s: %w", imp.movesSource, err)
	}
	if err := scanInto(idx, imp.conceptsSource, CategoryConcept); err != nil {
		return fmt.Errorf("scan %s: %w", imp.conceptsSource, err)
	}
	infoColor.Fprintf(os.Stderr, "found %d notes\n", len(idx))

	written := map[Category]map[string]bool{
		CategoryMove:    {},
		CategoryConcept: {},
	}
	for _, title := range idx.Titles() {
		note := idx[title]
		if err := imp.transform(note, idx); err != nil {
			warnf("skipping %s: %v", title, err)
			continue
		}
		written[note.Category][note.Slug] = true
	}

	imp.removeOrphans(imp.movesOut, written[CategoryMove])
	imp.removeOrphans(imp.conceptsOut, written[CategoryConcept])
	return nil
}

// transform runs phase 2 for a single note.
func (imp *Importer) transform(note Note, idx Index) error {
	data, err := os.ReadFile(note.SourcePath)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	raw, rest, err := notes.Parse(data)
	if err != nil {
		return fmt.Errorf("parse frontmatter: %w", err)
	}

	fm := map[string]any{"title": note.OriginalTitle}
	for key, value := range raw {
		fm[key] = value
	}

	for _, field := range dateFields {
		value, ok := fm[field]
		if !ok || value == nil {
			continue
		}
		if t, parsed := ParseVaultDate(value); parsed {
			fm[field] = t
		} else {
			warnf("failed to parse %s for %s: %v", field, note.OriginalTitle, value)
			delete(fm, field)
		}
	}

	for _, field := range relationFields {
		value, ok := fm[field]
		if !ok || value == nil {
			continue
		}
		fm[field] = resolveRelations(value, idx, note.OriginalTitle)
	}

	body, refs, brokenLinks := RewriteLinks(rest, idx)
	for _, text := range brokenLinks {
		warnf("broken link: [[%s]] in %s", text, note.OriginalTitle)
	}
	if len(refs.Moves) > 0 {
		fm["related_moves"] = mergeRefs(fm["related_moves"], refs.Moves, note.Slug)
	}
	if len(refs.Concepts) > 0 {
		fm["related_concepts"] = mergeRefs(fm["related_concepts"], refs.Concepts, note.Slug)
	}

	body = strings.ReplaceAll(body, "\t", "  ")

	for _, field := range numericFields {
		value, ok := fm[field]
		if !ok || value == nil {
			continue
		}
		coerced, numeric := coerceNumber(value)
		if !numeric {
			warnf("non-numeric %s for %s: %v", field, note.OriginalTitle, value)
		}
		fm[field] = coerced
	}

	out, err := encodeNote(CleanFrontmatter(fm), body)
	if err != nil {
		return fmt.Errorf("encode note: %w", err)
	}

	outPath := filepath.Join(imp.outDir(note.Category), note.Slug+".md")
	if err := atomic.WriteFile(outPath, bytes.NewReader(out)); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	return nil
}

// resolveRelations turns a raw relation list into a deduplicated, sorted
// slug list. Unresolvable titles are dropped with a warning.
func resolveRelations(raw any, idx Index, noteTitle string) []string {
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case string:
		items = []any{v}
	default:
		warnf("relation field in %s is not a list, dropping", noteTitle)
		return nil
	}

	set := make(map[string]struct{})
	for _, item := range NormalizeRelationItems(items) {
		title := item
		if strings.HasPrefix(title, "[[") && strings.HasSuffix(title, "]]") {
			title = title[2 : len(title)-2]
		}
		target, ok := idx[title]
		if !ok {
			warnf("relation not found: %s in %s", title, noteTitle)
			continue
		}
		set[target.Slug] = struct{}{}
	}
	return sortedKeys(set)
}

// mergeRefs unions implicit body references into an explicit relation list,
// never adding the note's own slug.
func mergeRefs(existing any, refs map[string]struct{}, selfSlug string) []string {
	set := make(map[string]struct{})
	if list, ok := existing.([]string); ok {
		for _, s := range list {
			set[s] = struct{}{}
		}
	}
	for s := range refs {
		if s != selfSlug {
			set[s] = struct{}{}
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// encodeNote serializes frontmatter and body back into a note file. Keys
// are emitted with title first and the rest sorted so output bytes are
// stable across runs.
func encodeNote(fm map[string]any, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")

	block, err := encodeFrontmatter(fm)
	if err != nil {
		return nil, err
	}
	buf.Write(block)
	buf.WriteString("---\n\n")

	body = strings.TrimLeft(body, "\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func encodeFrontmatter(fm map[string]any) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	appendEntry := func(key string) error {
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(fm[key]); err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			valueNode,
		)
		return nil
	}

	if _, ok := fm["title"]; ok {
		if err := appendEntry("title"); err != nil {
			return nil, err
		}
	}
	keys := make([]string, 0, len(fm))
	for key := range fm {
		if key != "title" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := appendEntry(key); err != nil {
			return nil, err
		}
	}
	return yaml.Marshal(doc)
}

// removeOrphans deletes output files whose slug was not produced by this
// run, so renamed or deleted notes do not linger on the site.
func (imp *Importer) removeOrphans(dir string, keep map[string]bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		noteSlug := strings.TrimSuffix(entry.Name(), ".md")
		if keep[noteSlug] {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			warnf("failed to remove orphan %s: %v", path, err)
			continue
		}
		deletedColor.Fprintf(os.Stderr, "removed orphan %s\n", path)
	}
}
