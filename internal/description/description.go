package description

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Genzer/todo.txt-des/internal/config"
	"github.com/Genzer/todo.txt-des/internal/todotxt"
)

var ErrNotFound = errors.New("not found")

// generateID is a seam so tests can force identifier collisions.
var generateID = GenerateID

// GenerateID returns a fresh identifier: the first 8 hex characters of a
// sha256 digest over a large random value. Uniqueness is probabilistic;
// NewID adds the on-disk collision check.
func GenerateID() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	sum := sha256.Sum256(b)
	return fmt.Sprintf("%x", sum[:])[:8]
}

// NewID returns an identifier no stored description is using yet.
func NewID(cfg *config.Config) (string, error) {
	dir, err := Dir(cfg)
	if err != nil {
		return "", err
	}
	id := generateID()
	for {
		if _, err := os.Stat(filepath.Join(dir, id+".txt")); err != nil {
			break // no file with this id, good
		}
		id = generateID()
	}
	return id, nil
}

// Dir returns the descriptions directory, creating it if absent.
func Dir(cfg *config.Config) (string, error) {
	dir := cfg.Path("descriptions")
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return "", fmt.Errorf("%s is not a directory", dir)
		}
		return dir, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create descriptions directory: %w", err)
	}
	return dir, nil
}

// Path resolves the file path for an identifier, creating the
// descriptions directory if needed.
func Path(cfg *config.Config, id string) (string, error) {
	dir, err := Dir(cfg)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, id+".txt"), nil
}

// Locate returns the path for an identifier, failing if no description
// is stored under it. Used to hand a file to the editor.
func Locate(cfg *config.Config, id string) (string, error) {
	p, err := Path(cfg, id)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("description %s %w", id, ErrNotFound)
		}
		return "", fmt.Errorf("cannot access description %s: %w", id, err)
	}
	return p, nil
}

// Read returns the stored text for an identifier.
func Read(cfg *config.Config, id string) (string, error) {
	p, err := Path(cfg, id)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("description %s %w", id, ErrNotFound)
		}
		return "", fmt.Errorf("cannot read description %s: %w", id, err)
	}
	return string(data), nil
}

// Write stores text under an identifier, overwriting any previous
// content. The write is direct, no temp file.
func Write(cfg *config.Config, id, text string) error {
	p, err := Path(cfg, id)
	if err != nil {
		return err
	}
	if err := os.WriteFile(p, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write description %s: %w", id, err)
	}
	return nil
}

// List returns the identifiers of all stored descriptions. A missing
// directory simply yields none.
func List(cfg *config.Config) ([]string, error) {
	entries, err := os.ReadDir(cfg.Path("descriptions"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot read descriptions directory: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".txt"))
	}
	return ids, nil
}

// CheckIntegrity cross-references task tags against stored descriptions.
// Dangling tags (show and edit would fail) and orphaned files (never
// cleaned up automatically) are both warnings. Structural problems with
// the store itself are config.CheckHealth's job, so a scan failure
// reports nothing here.
func CheckIntegrity(cfg *config.Config, tasks []todotxt.Task) []config.Issue {
	ids, err := List(cfg)
	if err != nil {
		return nil
	}

	existing := make(map[string]bool, len(ids))
	for _, id := range ids {
		existing[id] = true
	}

	var issues []config.Issue
	referenced := make(map[string]bool)
	for _, task := range tasks {
		if task.DescriptionID == "" {
			continue
		}
		referenced[task.DescriptionID] = true
		if !existing[task.DescriptionID] {
			issues = append(issues, config.Issue{
				Severity: "warning",
				Message:  fmt.Sprintf("task #%d: tag des:%s has no description file", task.Index, task.DescriptionID),
			})
		}
	}
	for _, id := range ids {
		if !referenced[id] {
			issues = append(issues, config.Issue{
				Severity: "warning",
				Message:  fmt.Sprintf("orphaned description %s.txt (no task references it)", id),
			})
		}
	}
	return issues
}
