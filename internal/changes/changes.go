// Package changes decides whether an import run is needed by comparing the
// checkout's current commit against the last imported one. Every failure
// mode degrades to "assume changed": redundant work is preferred over a
// silently skipped import.
package changes

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/fatih/color"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/andrezz-b/salsa-prep/internal/config"
)

var (
	warnColor = color.New(color.FgHiYellow)
	infoColor = color.New(color.FgHiWhite)
)

// Result reports the outcome of change detection. The caller owns cache
// persistence: when ShouldUpdateCache is set, it must write CurrentCommit
// only after any dependent import completed successfully.
type Result struct {
	HasChanges        bool
	CurrentCommit     string
	ShouldUpdateCache bool
}

// Detector compares the checkout against the commit cache file.
type Detector struct {
	cfg *config.Config
}

func NewDetector(cfg *config.Config) *Detector {
	return &Detector{cfg: cfg}
}

// Detect reports whether the checkout holds relevant changes since the last
// imported commit. Only files under one of folders count; pass an empty
// slice to treat any commit difference as a change. Files whose basename
// starts with an underscore are private and never count.
func (d *Detector) Detect(folders []string) Result {
	if _, err := os.Stat(d.cfg.DataDir); os.IsNotExist(err) {
		warnColor.Fprintf(os.Stderr, "%s not found\n", d.cfg.DataDir)
		return Result{HasChanges: true}
	}

	repo, err := git.PlainOpen(d.cfg.DataDir)
	if err != nil {
		warnColor.Fprintf(os.Stderr, "failed to open checkout, assuming changes: %v\n", err)
		return Result{HasChanges: true}
	}

	head, err := repo.Head()
	if err != nil {
		warnColor.Fprintf(os.Stderr, "failed to read current commit, assuming changes: %v\n", err)
		return Result{HasChanges: true}
	}
	current := head.Hash().String()

	last, ok := d.CachedCommit()
	if !ok {
		infoColor.Fprintln(os.Stderr, "no cache file found, first import")
		return Result{HasChanges: true, CurrentCommit: current, ShouldUpdateCache: true}
	}

	if last == current {
		return Result{HasChanges: false, CurrentCommit: current}
	}

	lastCommit, err := repo.CommitObject(plumbing.NewHash(last))
	if err != nil {
		// Shallow checkouts can lose the previously imported commit.
		infoColor.Fprintln(os.Stderr, "previous commit not in history, running full import")
		return Result{HasChanges: true, CurrentCommit: current, ShouldUpdateCache: true}
	}

	if len(folders) == 0 {
		return Result{HasChanges: true, CurrentCommit: current, ShouldUpdateCache: true}
	}

	currentCommit, err := repo.CommitObject(head.Hash())
	if err != nil {
		warnColor.Fprintf(os.Stderr, "failed to load current commit, assuming changes: %v\n", err)
		return Result{HasChanges: true, CurrentCommit: current, ShouldUpdateCache: true}
	}

	changed, err := changedFiles(lastCommit, currentCommit)
	if err != nil {
		warnColor.Fprintf(os.Stderr, "failed to diff commits, assuming changes: %v\n", err)
		return Result{HasChanges: true, CurrentCommit: current, ShouldUpdateCache: true}
	}

	for _, file := range changed {
		if relevant(file, folders) {
			return Result{HasChanges: true, CurrentCommit: current, ShouldUpdateCache: true}
		}
	}

	// The commit advanced but nothing we watch moved. Recording it anyway
	// keeps future diffs small.
	return Result{HasChanges: false, CurrentCommit: current, ShouldUpdateCache: true}
}

// changedFiles lists every path touched between two commits. Renames
// contribute both their old and new path.
func changedFiles(from, to *object.Commit) ([]string, error) {
	fromTree, err := from.Tree()
	if err != nil {
		return nil, fmt.Errorf("tree of %s: %w", from.Hash, err)
	}
	toTree, err := to.Tree()
	if err != nil {
		return nil, fmt.Errorf("tree of %s: %w", to.Hash, err)
	}

	diff, err := object.DiffTree(fromTree, toTree)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}

	var files []string
	for _, change := range diff {
		if change.From.Name != "" {
			files = append(files, change.From.Name)
		}
		if change.To.Name != "" && change.To.Name != change.From.Name {
			files = append(files, change.To.Name)
		}
	}
	return files, nil
}

func relevant(file string, folders []string) bool {
	if strings.HasPrefix(path.Base(file), "_") {
		return false
	}
	for _, folder := range folders {
		if strings.HasPrefix(file, folder+"/") {
			return true
		}
	}
	return false
}
