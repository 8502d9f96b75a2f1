// Package workspace snapshots the set of files the simulator works on and
// loads their content.
package workspace

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// DefaultExtensions is the stock allow-list of file types worth pretending
// to work on.
var DefaultExtensions = []string{".ts", ".js", ".json", ".md", ".txt", ".html", ".css", ".tsx", ".jsx"}

// skipDirs are directory names never worth descending into.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
}

// Scanner lists candidate files under Root. The listing taken at run start
// is the immutable snapshot the whole run works from.
type Scanner struct {
	Root       string
	Include    []string // glob patterns against the slash-separated relative path; empty means all
	Exclude    []string
	Extensions []string // allow-list; empty means DefaultExtensions
	UseGit     bool     // list tracked files from HEAD when Root is a repository
	MaxFiles   int      // 0 means unlimited
	Log        *slog.Logger
}

// ListFiles returns the sorted candidate snapshot.
func (s *Scanner) ListFiles(ctx context.Context) ([]string, error) {
	var rels []string
	var err error
	if s.UseGit {
		rels, err = s.gitList()
		if err != nil {
			if !errors.Is(err, git.ErrRepositoryNotExists) && !errors.Is(err, plumbing.ErrReferenceNotFound) {
				return nil, err
			}
			s.logger().Debug("git listing unavailable, walking instead", "root", s.Root, "err", err)
			rels = nil
		}
	}
	if rels == nil {
		rels, err = s.walk(ctx)
		if err != nil {
			return nil, err
		}
	}

	var out []string
	for _, rel := range rels {
		if !s.allowed(rel) {
			continue
		}
		out = append(out, filepath.Join(s.Root, filepath.FromSlash(rel)))
	}
	sort.Strings(out)
	if s.MaxFiles > 0 && len(out) > s.MaxFiles {
		out = out[:s.MaxFiles]
	}
	s.logger().Info("workspace snapshot", "root", s.Root, "files", len(out))
	return out, nil
}

// gitList returns the slash-separated relative paths tracked at HEAD.
func (s *Scanner) gitList() ([]string, error) {
	repo, err := git.PlainOpen(s.Root)
	if err != nil {
		return nil, err
	}
	head, err := repo.Head()
	if err != nil {
		return nil, err
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, err
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, err
	}
	var rels []string
	err = tree.Files().ForEach(func(f *object.File) error {
		rels = append(rels, f.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rels, nil
}

// walk returns the slash-separated relative paths found on disk.
func (s *Scanner) walk(ctx context.Context) ([]string, error) {
	var rels []string
	err := filepath.WalkDir(s.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if d.IsDir() {
			name := d.Name()
			if p != s.Root && (skipDirs[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(s.Root, p)
		if err != nil {
			return err
		}
		rels = append(rels, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rels, nil
}

// allowed applies the extension allow-list and the include/exclude globs to
// a slash-separated relative path.
func (s *Scanner) allowed(rel string) bool {
	exts := s.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	ext := strings.ToLower(path.Ext(rel))
	ok := false
	for _, e := range exts {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if ext == e {
			ok = true
			break
		}
	}
	if !ok {
		return false
	}

	if len(s.Include) > 0 {
		matched := false
		for _, pat := range s.Include {
			if globMatch(pat, rel) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, pat := range s.Exclude {
		if globMatch(pat, rel) {
			return false
		}
	}
	return true
}

// globMatch matches pat against the relative path and, as a convenience,
// against its base name, so "*.test.ts" excludes nested files too.
func globMatch(pat, rel string) bool {
	if m, err := path.Match(pat, rel); err == nil && m {
		return true
	}
	if m, err := path.Match(pat, path.Base(rel)); err == nil && m {
		return true
	}
	return false
}

func (s *Scanner) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}
