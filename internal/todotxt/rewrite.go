package todotxt

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Retag rewrites the task file so the line at index carries exactly one
// `des:<id>` tag: any existing tags are stripped, trailing whitespace is
// trimmed, and the new tag is appended. Every other line is copied
// through byte for byte. The pre-rewrite content is kept in a `.bak`
// file beside the task file.
func Retag(file string, index int, id string) error {
	return rewrite(file, index, func(line string) string {
		return untagLine(line) + " des:" + id
	})
}

// Untag rewrites the task file so the line at index carries no tag.
// The description file the tag pointed at is not touched.
func Untag(file string, index int) error {
	return rewrite(file, index, untagLine)
}

func untagLine(line string) string {
	line = tagPattern.ReplaceAllString(line, "")
	return strings.TrimRight(line, " \t")
}

// rewrite applies transform to the target line and replaces the file
// atomically via a temp file. It validates the index before writing
// anything: a missing target leaves no backup and no changes behind.
func rewrite(file string, index int, transform func(string) string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("cannot read task file: %w", err)
	}

	lines := splitLines(data)
	if index < 1 || index > len(lines) {
		return fmt.Errorf("task #%d %w in %s", index, ErrNotFound, file)
	}

	// The backup and the replacement both inherit the source file's mode.
	perm := fs.FileMode(0644)
	if info, err := os.Stat(file); err == nil {
		perm = info.Mode().Perm()
	}

	if err := os.WriteFile(file+".bak", data, perm); err != nil {
		return fmt.Errorf("cannot write backup: %w", err)
	}

	var buf bytes.Buffer
	for i, raw := range lines {
		if i+1 != index {
			buf.WriteString(raw)
			continue
		}
		content, term := splitTerminator(raw)
		buf.WriteString(transform(content))
		buf.WriteString(term)
	}

	tmp := filepath.Join(filepath.Dir(file), fmt.Sprintf(".tmp-%d", time.Now().UnixNano()))
	if err := os.WriteFile(tmp, buf.Bytes(), perm); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("cannot write task file: %w", err)
	}
	if err := os.Rename(tmp, file); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("cannot replace task file: %w", err)
	}
	return nil
}

// splitLines splits data into lines that keep their terminators, so
// untouched lines round-trip exactly.
func splitLines(data []byte) []string {
	var lines []string
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			lines = append(lines, string(data))
			break
		}
		lines = append(lines, string(data[:i+1]))
		data = data[i+1:]
	}
	return lines
}

func splitTerminator(raw string) (content, term string) {
	if strings.HasSuffix(raw, "\r\n") {
		return raw[:len(raw)-2], "\r\n"
	}
	if strings.HasSuffix(raw, "\n") {
		return raw[:len(raw)-1], "\n"
	}
	return raw, ""
}
