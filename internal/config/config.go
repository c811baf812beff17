package config

import (
	"os"
	"time"
)

// Config holds the paths and tuning knobs for a pipeline run. All paths are
// relative to the working directory unless absolute.
type Config struct {
	// DataDir is the local checkout of the notes repository.
	DataDir string
	// CacheFile tracks the last fully imported commit.
	CacheFile string
	// JSONDir receives the generated index artifacts.
	JSONDir string
	// ContentMoves and ContentConcepts are the default normalized-output
	// directories the site build reads from.
	ContentMoves    string
	ContentConcepts string

	// Folders inside DataDir that contain content, watched for changes.
	Folders []string

	// RepoSSH is the remote URL used when no token is available.
	RepoSSH string
	// RepoHTTPS is the remote URL used with token authentication.
	RepoHTTPS string
	// TokenEnvVar names the environment variable holding the access token.
	TokenEnvVar string
	// Branch is the tracked remote branch.
	Branch string

	// RetryAttempts bounds fetch/clone retries.
	RetryAttempts int
	// RetryBaseDelay is the first backoff delay; it doubles per attempt.
	RetryBaseDelay time.Duration
	// RemoveAttempts bounds retries of checkout directory removal.
	RemoveAttempts int
	// RemoveDelay is the fixed sleep between removal attempts.
	RemoveDelay time.Duration
	// CloneDepth is the history depth for clones and fetches (0 = full).
	CloneDepth int
}

// Default returns the standard pipeline configuration.
func Default() *Config {
	return &Config{
		DataDir:         "obsidian-data",
		CacheFile:       ".import-cache",
		JSONDir:         ".json",
		ContentMoves:    "src/content/moves",
		ContentConcepts: "src/content/concepts",
		Folders:         []string{"Moves", "Concepts"},
		RepoSSH:         "git@github.com:andrezz-b/dtu-salsa-data.git",
		RepoHTTPS:       "https://github.com/andrezz-b/dtu-salsa-data.git",
		TokenEnvVar:     "DATA_REPO_TOKEN",
		Branch:          "main",
		RetryAttempts:   3,
		RetryBaseDelay:  time.Second,
		RemoveAttempts:  5,
		RemoveDelay:     200 * time.Millisecond,
		CloneDepth:      1,
	}
}

// Token returns the access token from the environment, or "" when unset.
func (c *Config) Token() string {
	return os.Getenv(c.TokenEnvVar)
}
