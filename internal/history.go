package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

const (
	historyDirName = ".history"
	DefaultBranch  = "main"
	DefaultAuthor  = "sonda"
	DefaultEmail   = "sonda@local"
)

// Commit is one recorded run in the results history.
type Commit struct {
	Hash      string
	Message   string
	Author    string
	Timestamp time.Time
}

// RunHistory is a git repository over the results directory. Every saved
// run becomes a commit, so the sequence of evaluations stays auditable
// even though identical configurations overwrite each other's files.
type RunHistory struct {
	repo       *git.Repository
	worktree   *git.Worktree
	resultsDir string
}

// OpenRunHistory opens the history of an initialized results directory.
func OpenRunHistory(resultsDir string) (*RunHistory, error) {
	gitDir := filepath.Join(resultsDir, historyDirName)
	if _, err := os.Stat(gitDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: run history not initialized in %s", ErrInvalidState, resultsDir)
	}

	fs := osfs.New(gitDir)
	storage := filesystem.NewStorage(fs, cache.NewObjectLRUDefault())
	wt := osfs.New(resultsDir)

	repo, err := git.Open(storage, wt)
	if err != nil {
		return nil, fmt.Errorf("open run history: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("get worktree: %w", err)
	}

	return &RunHistory{
		repo:       repo,
		worktree:   worktree,
		resultsDir: resultsDir,
	}, nil
}

// InitRunHistory creates the history repository inside the results
// directory and seeds it with an initial commit.
func InitRunHistory(resultsDir string) (*RunHistory, error) {
	gitDir := filepath.Join(resultsDir, historyDirName)
	if err := os.MkdirAll(gitDir, 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	fs := osfs.New(gitDir)
	storage := filesystem.NewStorage(fs, cache.NewObjectLRUDefault())
	wt := osfs.New(resultsDir)

	repo, err := git.Init(storage, wt)
	if err != nil {
		return nil, fmt.Errorf("init run history: %w", err)
	}

	cfg, err := repo.Config()
	if err != nil {
		return nil, fmt.Errorf("get config: %w", err)
	}
	cfg.Init.DefaultBranch = DefaultBranch
	if err := repo.SetConfig(cfg); err != nil {
		return nil, fmt.Errorf("set config: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("get worktree: %w", err)
	}

	marker := filepath.Join(resultsDir, ".sonda-results")
	if err := os.WriteFile(marker, []byte("sonda results directory\n"), 0644); err != nil {
		return nil, fmt.Errorf("write marker: %w", err)
	}
	if _, err := worktree.Add(".sonda-results"); err != nil {
		return nil, fmt.Errorf("stage marker: %w", err)
	}

	_, err = worktree.Commit("init: results history", &git.CommitOptions{
		Author: signature(),
	})
	if err != nil {
		return nil, fmt.Errorf("initial commit: %w", err)
	}

	return &RunHistory{
		repo:       repo,
		worktree:   worktree,
		resultsDir: resultsDir,
	}, nil
}

// EnsureRunHistory opens the history, initializing it first if needed.
func EnsureRunHistory(resultsDir string) (*RunHistory, error) {
	h, err := OpenRunHistory(resultsDir)
	if err == nil {
		return h, nil
	}
	return InitRunHistory(resultsDir)
}

// CommitRun stages the run's result file and commits it as "run: <id>".
func (h *RunHistory) CommitRun(ctx context.Context, identity string) (*Commit, error) {
	file := identity + ".csv"
	if _, err := os.Stat(filepath.Join(h.resultsDir, file)); err != nil {
		return nil, fmt.Errorf("%w: result file %s", ErrNotFound, file)
	}

	if _, err := h.worktree.Add(file); err != nil {
		return nil, fmt.Errorf("stage result: %w", err)
	}

	hash, err := h.worktree.Commit("run: "+identity, &git.CommitOptions{
		Author:            signature(),
		AllowEmptyCommits: true,
	})
	if err != nil {
		return nil, fmt.Errorf("commit run: %w", err)
	}

	commit, err := h.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("get commit: %w", err)
	}

	return toCommit(commit), nil
}

// Log returns up to limit commits, newest first; limit <= 0 means all.
func (h *RunHistory) Log(ctx context.Context, limit int) ([]*Commit, error) {
	iter, err := h.repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("get log: %w", err)
	}
	defer iter.Close()

	var commits []*Commit
	count := 0

	err = iter.ForEach(func(c *object.Commit) error {
		if limit > 0 && count >= limit {
			return io.EOF
		}
		commits = append(commits, toCommit(c))
		count++
		return nil
	})
	if err != nil && err != io.EOF {
		return nil, err
	}

	return commits, nil
}

// Show resolves a revision to its commit.
func (h *RunHistory) Show(ctx context.Context, ref string) (*Commit, error) {
	resolved, err := h.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %q: %v", ErrInvalidArgument, ref, err)
	}

	commit, err := h.repo.CommitObject(*resolved)
	if err != nil {
		return nil, fmt.Errorf("get commit: %w", err)
	}

	return toCommit(commit), nil
}

// Diff returns the patch between ref and HEAD.
func (h *RunHistory) Diff(ctx context.Context, ref string) (string, error) {
	head, err := h.repo.Head()
	if err != nil {
		return "", fmt.Errorf("get HEAD: %w", err)
	}

	headCommit, err := h.repo.CommitObject(head.Hash())
	if err != nil {
		return "", fmt.Errorf("get HEAD commit: %w", err)
	}

	resolved, err := h.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", fmt.Errorf("%w: resolve %q: %v", ErrInvalidArgument, ref, err)
	}

	targetCommit, err := h.repo.CommitObject(*resolved)
	if err != nil {
		return "", fmt.Errorf("get target commit: %w", err)
	}

	headTree, err := headCommit.Tree()
	if err != nil {
		return "", fmt.Errorf("get HEAD tree: %w", err)
	}

	targetTree, err := targetCommit.Tree()
	if err != nil {
		return "", fmt.Errorf("get target tree: %w", err)
	}

	changes, err := targetTree.Diff(headTree)
	if err != nil {
		return "", fmt.Errorf("diff trees: %w", err)
	}

	patch, err := changes.Patch()
	if err != nil {
		return "", fmt.Errorf("get patch: %w", err)
	}

	return patch.String(), nil
}

func signature() *object.Signature {
	return &object.Signature{
		Name:  DefaultAuthor,
		Email: DefaultEmail,
		When:  time.Now(),
	}
}

func toCommit(c *object.Commit) *Commit {
	return &Commit{
		Hash:      c.Hash.String(),
		Message:   strings.TrimSpace(c.Message),
		Author:    c.Author.Name,
		Timestamp: c.Author.When,
	}
}
