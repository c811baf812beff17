package importer

import (
	"fmt"
	"regexp"
	"strings"
)

var wikilinkRe = regexp.MustCompile(`\[\[([^\]]+)\]\]`)

// LinkRefs collects the slugs resolved from in-body links, per category.
type LinkRefs struct {
	Moves    map[string]struct{}
	Concepts map[string]struct{}
}

// RewriteLinks replaces [[Target]] and [[Target|Alias]] spans with markdown
// links to the target's category path and slug. Targets missing from the
// index are left untouched and reported as broken so the caller can warn.
// The function holds no external state: it returns the rewritten body, the
// resolved references, and the broken link texts.
func RewriteLinks(body string, idx Index) (string, LinkRefs, []string) {
	refs := LinkRefs{
		Moves:    make(map[string]struct{}),
		Concepts: make(map[string]struct{}),
	}
	var broken []string

	rewritten := wikilinkRe.ReplaceAllStringFunc(body, func(match string) string {
		inner := match[2 : len(match)-2]
		target, alias, hasAlias := strings.Cut(inner, "|")
		title := strings.TrimSpace(target)
		if hasAlias {
			alias = strings.TrimSpace(alias)
		} else {
			alias = title
		}

		note, ok := idx[title]
		if !ok {
			broken = append(broken, inner)
			return match
		}

		if note.Category == CategoryMove {
			refs.Moves[note.Slug] = struct{}{}
		} else {
			refs.Concepts[note.Slug] = struct{}{}
		}
		return fmt.Sprintf("[%s](%s)", alias, note.Category.LinkPath(note.Slug))
	})

	return rewritten, refs, broken
}
