package importer

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	slug "github.com/goliatone/go-slug"
)

// Category classifies a note. Every note belongs to exactly one category.
type Category string

const (
	CategoryMove    Category = "move"
	CategoryConcept Category = "concept"
)

// LinkPath returns the site path a resolved link of this category points at.
func (c Category) LinkPath(noteSlug string) string {
	if c == CategoryMove {
		return "/moves/" + noteSlug
	}
	return "/concepts/" + noteSlug
}

// Note identifies a single source note discovered during the index scan.
type Note struct {
	OriginalTitle string
	Slug          string
	Category      Category
	SourcePath    string
}

// Index maps exact note titles to their records. It is built once per run,
// read-only afterwards, and discarded at the end of the run.
type Index map[string]Note

// Titles returns every indexed title in sorted order so per-note processing
// is deterministic regardless of map iteration order.
func (idx Index) Titles() []string {
	titles := make([]string, 0, len(idx))
	for title := range idx {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles
}

// Slugify derives a note's slug from its title. The derivation is
// deterministic and idempotent; collisions are not disambiguated.
func Slugify(title string) string {
	s, err := slug.Normalize(title)
	if err != nil || s == "" {
		return fallbackSlug(title)
	}
	return s
}

func fallbackSlug(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// scanInto walks dir for markdown notes and records them in idx. A missing
// directory means the category simply has no notes. Later entries win on
// title collisions, with a warning naming both sources.
func scanInto(idx Index, dir string, category Category) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		warnf("%s not found, no %s notes", dir, category)
		return nil
	}

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		title := strings.TrimSuffix(d.Name(), ".md")
		if prev, ok := idx[title]; ok {
			warnf("duplicate title %q (%s shadows %s)", title, path, prev.SourcePath)
		}
		idx[title] = Note{
			OriginalTitle: title,
			Slug:          Slugify(title),
			Category:      category,
			SourcePath:    path,
		}
		return nil
	})
}
