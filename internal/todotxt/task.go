package todotxt

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
)

// Task is one line of the task file, identified by its 1-based position.
// It is rebuilt from the file on every lookup and never persisted.
type Task struct {
	Index         int
	Text          string
	DescriptionID string
}

var ErrNotFound = errors.New("not found")

var tagPattern = regexp.MustCompile(`des:([a-zA-Z0-9]+)`)

// maxLineBytes bounds a single task line when streaming the file, well
// past the default Scanner cap so lookups accept any line the rewriter
// handles.
const maxLineBytes = 1 << 20

// ParseDescriptionID extracts the description identifier from a task line.
// The first `des:<id>` tag wins; a bare `des:` with no identifier is not a
// match.
func ParseDescriptionID(line string) (string, bool) {
	m := tagPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Find returns the task at the given 1-based index, streaming the file
// rather than reading it whole. The returned text excludes the line
// terminator. An index past the last line fails with ErrNotFound.
func Find(file string, index int) (Task, error) {
	f, err := os.Open(file)
	if err != nil {
		return Task{}, fmt.Errorf("cannot read task file: %w", err)
	}
	defer f.Close()

	n := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		n++
		if n == index {
			line := scanner.Text()
			id, _ := ParseDescriptionID(line)
			return Task{Index: index, Text: line, DescriptionID: id}, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return Task{}, fmt.Errorf("cannot read task file: %w", err)
	}
	return Task{}, fmt.Errorf("task #%d %w in %s", index, ErrNotFound, file)
}

// List returns every task in the file, in order.
func List(file string) ([]Task, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("cannot read task file: %w", err)
	}
	defer f.Close()

	var tasks []Task
	n := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		n++
		line := scanner.Text()
		id, _ := ParseDescriptionID(line)
		tasks = append(tasks, Task{Index: n, Text: line, DescriptionID: id})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read task file: %w", err)
	}
	return tasks, nil
}
