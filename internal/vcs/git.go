// SPDX-License-Identifier: MPL-2.0

// Package vcs is the version-control boundary. Project mutations are paired
// with commits here; module sources are cloned and pinned to exact commits.
// Internals of the underlying git implementation are opaque to the rest of
// the tool: only init, config, commit, ls-remote, and clone/checkout are
// exposed.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/go-git/go-git/v5/storage/memory"
)

// ErrRefNotFound is returned by LsRemote when the remote has no matching
// branch or tag.
var ErrRefNotFound = errors.New("ref not found at remote")

// Client performs git operations for one project directory.
type Client struct {
	dir  string
	auth transport.AuthMethod
}

// New creates a Client rooted at dir. Authentication for remote operations
// is configured from the environment (SSH keys, then access tokens).
func New(dir string) *Client {
	c := &Client{dir: dir}
	c.setupAuth()
	return c
}

// IsRepo reports whether dir is inside a git repository.
func (c *Client) IsRepo() bool {
	_, err := git.PlainOpenWithOptions(c.dir, &git.PlainOpenOptions{DetectDotGit: true})
	return err == nil
}

// Init creates a repository in dir and records the committer identity.
// The description, if any, is stored as the repository description.
func (c *Client) Init(name, email, description string) error {
	repo, err := git.PlainInit(c.dir, false)
	if err != nil {
		return fmt.Errorf("failed to initialize git repository: %w", err)
	}
	if description != "" {
		descPath := filepath.Join(c.dir, ".git", "description")
		_ = os.WriteFile(descPath, []byte(description+"\n"), 0o644)
	}
	return c.setIdentity(repo, name, email)
}

// GetConfig reads user.name or user.email, preferring the repository
// configuration and falling back to the global one. Missing values are
// returned as the empty string.
func (c *Client) GetConfig(key string) string {
	if repo, err := c.open(); err == nil {
		if cfg, err := repo.Config(); err == nil {
			if v := userConfigValue(cfg, key); v != "" {
				return v
			}
		}
	}
	if cfg, err := gitconfig.LoadConfig(gitconfig.GlobalScope); err == nil {
		return userConfigValue(cfg, key)
	}
	return ""
}

// SetConfig writes user.name or user.email into the repository config.
func (c *Client) SetConfig(key, value string) error {
	repo, err := c.open()
	if err != nil {
		return fmt.Errorf("not a git repository: %w", err)
	}
	cfg, err := repo.Config()
	if err != nil {
		return fmt.Errorf("reading git config: %w", err)
	}
	switch key {
	case "user.name":
		cfg.User.Name = value
	case "user.email":
		cfg.User.Email = value
	default:
		return fmt.Errorf("unsupported config key %q", key)
	}
	if err := repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("writing git config: %w", err)
	}
	return nil
}

// Commit stages the given paths (relative to the project directory) and
// creates one commit with the given message.
func (c *Client) Commit(message string, paths []string) error {
	repo, err := c.open()
	if err != nil {
		return fmt.Errorf("not a git repository: %w", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	for _, p := range paths {
		// Deleted files are staged through Add as well.
		if _, err := worktree.Add(p); err != nil {
			return fmt.Errorf("failed to stage %s: %w", p, err)
		}
	}

	name, email := c.committer(repo)
	_, err = worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: name, Email: email, When: time.Now()},
	})
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// LsRemote resolves a branch or tag name at a remote URL to a commit hash
// without cloning.
func (c *Client) LsRemote(ctx context.Context, url, ref string) (string, error) {
	remote := git.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})
	refs, err := remote.ListContext(ctx, &git.ListOptions{Auth: c.auth})
	if err != nil {
		return "", fmt.Errorf("failed to list refs at %s: %w", url, err)
	}

	wanted := []plumbing.ReferenceName{
		plumbing.ReferenceName(ref),
		plumbing.NewBranchReferenceName(ref),
		plumbing.NewTagReferenceName(ref),
	}
	if ref == "HEAD" {
		wanted = []plumbing.ReferenceName{plumbing.HEAD}
	}
	for _, r := range refs {
		for _, w := range wanted {
			if r.Name() == w {
				return r.Hash().String(), nil
			}
		}
	}
	return "", fmt.Errorf("%w: %q at %s", ErrRefNotFound, ref, url)
}

// CloneAt clones url into dest and checks out the exact commit.
func (c *Client) CloneAt(ctx context.Context, url, commit, dest string) error {
	repo, err := c.clone(ctx, url, dest)
	if err != nil {
		return err
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	err = worktree.Checkout(&git.CheckoutOptions{
		Hash:  plumbing.NewHash(commit),
		Force: true,
	})
	if err != nil {
		return fmt.Errorf("failed to checkout %s in %s: %w", commit, url, err)
	}
	return nil
}

// CloneDefault clones the default branch of url into dest and returns the
// HEAD commit hash.
func (c *Client) CloneDefault(ctx context.Context, url, dest string) (string, error) {
	repo, err := c.clone(ctx, url, dest)
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD of %s: %w", url, err)
	}
	return head.Hash().String(), nil
}

func (c *Client) clone(ctx context.Context, url, dest string) (*git.Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create parent directory: %w", err)
	}
	repo, err := git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{
		URL:  url,
		Auth: c.auth,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clone %s: %w", url, err)
	}
	return repo, nil
}

func (c *Client) open() (*git.Repository, error) {
	return git.PlainOpenWithOptions(c.dir, &git.PlainOpenOptions{DetectDotGit: true})
}

func (c *Client) setIdentity(repo *git.Repository, name, email string) error {
	cfg, err := repo.Config()
	if err != nil {
		return fmt.Errorf("reading git config: %w", err)
	}
	cfg.User.Name = name
	cfg.User.Email = email
	if err := repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("writing git config: %w", err)
	}
	return nil
}

// committer resolves the identity used for commits, falling back to a fixed
// identity when none is configured.
func (c *Client) committer(repo *git.Repository) (name, email string) {
	name, email = "polbuild", "polbuild@localhost"
	cfg, err := repo.Config()
	if err != nil {
		return name, email
	}
	if cfg.User.Name != "" {
		name = cfg.User.Name
	}
	if cfg.User.Email != "" {
		email = cfg.User.Email
	}
	return name, email
}

func userConfigValue(cfg *gitconfig.Config, key string) string {
	switch key {
	case "user.name":
		return cfg.User.Name
	case "user.email":
		return cfg.User.Email
	}
	return ""
}

// setupAuth configures authentication based on available credentials.
func (c *Client) setupAuth() {
	if sshAuth := trySSHAuth(); sshAuth != nil {
		c.auth = sshAuth
		return
	}
	if httpAuth := tryHTTPAuth(); httpAuth != nil {
		c.auth = httpAuth
	}
	// No authentication configured - public repositories still work.
}

// trySSHAuth attempts to configure SSH authentication from common key paths.
func trySSHAuth() transport.AuthMethod {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	keyPaths := []string{
		filepath.Join(homeDir, ".ssh", "id_ed25519"),
		filepath.Join(homeDir, ".ssh", "id_rsa"),
		filepath.Join(homeDir, ".ssh", "id_ecdsa"),
	}
	for _, keyPath := range keyPaths {
		if _, err := os.Stat(keyPath); err == nil {
			auth, err := ssh.NewPublicKeysFromFile("git", keyPath, "")
			if err == nil {
				return auth
			}
		}
	}
	return nil
}

// tryHTTPAuth attempts to configure HTTP token authentication.
func tryHTTPAuth() transport.AuthMethod {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return &http.BasicAuth{Username: "x-access-token", Password: token}
	}
	if token := os.Getenv("GIT_TOKEN"); token != "" {
		return &http.BasicAuth{Username: "git", Password: token}
	}
	return nil
}
