package bank

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"quizdeck/internal/question"
)

var bankExtensions = []string{".yml", ".yaml", ".json"}

// DirLoader serves banks from files laid out as <root>/[<subject>/]<bank>.yml.
type DirLoader struct {
	Root string
}

// Load reads and validates the bank file for ref.
func (l DirLoader) Load(ctx context.Context, ref Ref) (question.Bank, error) {
	if err := ctx.Err(); err != nil {
		return question.Bank{}, &TransportError{Op: "load " + ref.String(), Err: err}
	}
	if !validRef(ref) {
		return question.Bank{}, ErrNotFound
	}
	dir := l.Root
	if ref.SubjectID != "" {
		dir = filepath.Join(dir, ref.SubjectID)
	}
	for _, ext := range bankExtensions {
		path := filepath.Join(dir, ref.BankID+ext)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return question.Bank{}, &TransportError{Op: "stat " + path, Err: err}
		}
		loaded, err := question.LoadBank(path)
		if err != nil {
			return question.Bank{}, &TransportError{Op: "read " + path, Err: err}
		}
		loaded.ID = ref.BankID
		if ref.SubjectID != "" {
			loaded.Subject = ref.SubjectID
		}
		return loaded, nil
	}
	return question.Bank{}, ErrNotFound
}

// List walks the root and summarizes every bank file found one level deep.
// Files that fail to parse are skipped.
func (l DirLoader) List(ctx context.Context) ([]Summary, error) {
	var summaries []Summary
	err := filepath.WalkDir(l.Root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel, relErr := filepath.Rel(l.Root, path)
		if relErr != nil {
			return relErr
		}
		depth := len(strings.Split(rel, string(filepath.Separator)))
		if entry.IsDir() {
			if rel != "." && depth > 1 {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !isBankExtension(ext) {
			return nil
		}
		loaded, loadErr := question.LoadBank(path)
		if loadErr != nil {
			return nil
		}
		loaded.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if depth == 2 {
			loaded.Subject = filepath.Dir(rel)
		}
		summaries = append(summaries, summarize(loaded))
		return nil
	})
	if err != nil {
		return nil, &TransportError{Op: "list " + l.Root, Err: err}
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Subject != summaries[j].Subject {
			return summaries[i].Subject < summaries[j].Subject
		}
		return summaries[i].ID < summaries[j].ID
	})
	return summaries, nil
}

func isBankExtension(ext string) bool {
	for _, candidate := range bankExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}
