// Package gitsync keeps the local checkout of the notes repository in step
// with its remote. Updates are fetch + hard reset; when that fails the
// checkout is thrown away and re-cloned.
package gitsync

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"syscall"
	"time"

	"github.com/fatih/color"
	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/andrezz-b/salsa-prep/internal/config"
)

var (
	warnColor = color.New(color.FgHiYellow)
	dimColor  = color.New(color.FgHiBlack)
)

var tokenInURL = regexp.MustCompile(`https://[^@/]+@`)

// SanitizeURL masks any credential embedded in a remote URL before logging.
func SanitizeURL(url string) string {
	return tokenInURL.ReplaceAllString(url, "https://***@")
}

// Syncer clones or updates the notes checkout according to Config.
type Syncer struct {
	cfg *config.Config

	// sleep is swapped out in tests to avoid real backoff delays.
	sleep func(time.Duration)
}

func New(cfg *config.Config) *Syncer {
	return &Syncer{cfg: cfg, sleep: time.Sleep}
}

// Sync brings cfg.DataDir up to date with the remote branch. An existing
// checkout is fetched and hard-reset; if fetching keeps failing, or the
// directory is not a usable repository, it is removed and cloned fresh.
// Sync never touches the commit cache or the generated indexes.
func (s *Syncer) Sync() error {
	if _, err := os.Stat(s.cfg.DataDir); os.IsNotExist(err) {
		return s.clone()
	}

	repo, err := git.PlainOpen(s.cfg.DataDir)
	if err != nil {
		warnColor.Fprintf(os.Stderr, "%s is not a usable checkout (%v), re-cloning\n", s.cfg.DataDir, err)
		return s.clone()
	}

	if err := s.withRetry("fetch", func() error { return s.fetch(repo) }); err != nil {
		warnColor.Fprintf(os.Stderr, "fetch failed (%v), falling back to re-clone\n", err)
		return s.clone()
	}

	if err := s.resetToRemote(repo); err != nil {
		return fmt.Errorf("reset to remote tip: %w", err)
	}
	return nil
}

// remote returns the URL and auth method to use, preferring token-based
// HTTPS when a token is present in the environment.
func (s *Syncer) remote() (string, transport.AuthMethod) {
	if token := s.cfg.Token(); token != "" {
		return s.cfg.RepoHTTPS, &githttp.BasicAuth{
			Username: "x-access-token",
			Password: token,
		}
	}
	return s.cfg.RepoSSH, nil
}

func (s *Syncer) fetch(repo *git.Repository) error {
	_, auth := s.remote()
	refSpec := gitconfig.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/origin/%s", s.cfg.Branch, s.cfg.Branch))
	err := repo.Fetch(&git.FetchOptions{
		RemoteName: "origin",
		RefSpecs:   []gitconfig.RefSpec{refSpec},
		Depth:      s.cfg.CloneDepth,
		Force:      true,
		Auth:       auth,
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	return err
}

func (s *Syncer) resetToRemote(repo *git.Repository) error {
	ref, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", s.cfg.Branch), true)
	if err != nil {
		return fmt.Errorf("resolve origin/%s: %w", s.cfg.Branch, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	if err := wt.Reset(&git.ResetOptions{Mode: git.HardReset, Commit: ref.Hash()}); err != nil {
		return fmt.Errorf("hard reset: %w", err)
	}
	if err := wt.Clean(&git.CleanOptions{Dir: true}); err != nil {
		return fmt.Errorf("clean untracked files: %w", err)
	}
	return nil
}

func (s *Syncer) clone() error {
	if _, err := os.Stat(s.cfg.DataDir); err == nil {
		if err := s.removeCheckout(); err != nil {
			return fmt.Errorf("remove stale checkout %s: %w", s.cfg.DataDir, err)
		}
	}

	url, auth := s.remote()
	dimColor.Fprintf(os.Stderr, "cloning %s\n", SanitizeURL(url))

	err := s.withRetry("clone", func() error {
		_, err := git.PlainClone(s.cfg.DataDir, false, &git.CloneOptions{
			URL:           url,
			Auth:          auth,
			Depth:         s.cfg.CloneDepth,
			SingleBranch:  true,
			ReferenceName: plumbing.NewBranchReferenceName(s.cfg.Branch),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("clone %s: %w", SanitizeURL(url), err)
	}
	return nil
}

// removeCheckout deletes the checkout directory, retrying a bounded number
// of times when the failure looks like transient handle contention.
func (s *Syncer) removeCheckout() error {
	var err error
	for attempt := 1; attempt <= s.cfg.RemoveAttempts; attempt++ {
		err = os.RemoveAll(s.cfg.DataDir)
		if err == nil {
			return nil
		}
		if !transientRemoveErr(err) {
			return err
		}
		warnColor.Fprintf(os.Stderr, "removal attempt %d/%d failed: %v\n", attempt, s.cfg.RemoveAttempts, err)
		s.sleep(s.cfg.RemoveDelay)
	}
	return err
}

func transientRemoveErr(err error) bool {
	return errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.ENOTEMPTY) ||
		errors.Is(err, syscall.EACCES)
}

// withRetry runs fn up to cfg.RetryAttempts times, doubling the delay
// between attempts starting from cfg.RetryBaseDelay.
func (s *Syncer) withRetry(op string, fn func() error) error {
	delay := s.cfg.RetryBaseDelay
	var err error
	for attempt := 1; attempt <= s.cfg.RetryAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if attempt < s.cfg.RetryAttempts {
			warnColor.Fprintf(os.Stderr, "%s attempt %d/%d failed: %v (retrying in %s)\n", op, attempt, s.cfg.RetryAttempts, err, delay)
			s.sleep(delay)
			delay *= 2
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, s.cfg.RetryAttempts, err)
}
