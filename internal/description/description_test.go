package description

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/Genzer/todo.txt-des/internal/config"
	"github.com/Genzer/todo.txt-des/internal/todotxt"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	tmp := t.TempDir()
	return &config.Config{TodoDir: tmp, TodoFile: filepath.Join(tmp, "todo.txt")}
}

func TestGenerateID_Format(t *testing.T) {
	format := regexp.MustCompile(`^[0-9a-f]{8}$`)
	for i := 0; i < 20; i++ {
		id := GenerateID()
		if !format.MatchString(id) {
			t.Fatalf("expected 8 lowercase hex characters, got %q", id)
		}
	}
}

func TestGenerateID_Varies(t *testing.T) {
	if GenerateID() == GenerateID() {
		t.Error("two generated identifiers should not collide")
	}
}

func TestNewID_SkipsExisting(t *testing.T) {
	cfg := testConfig(t)
	dir, err := Dir(cfg)
	if err != nil {
		t.Fatalf("Dir failed: %v", err)
	}
	os.WriteFile(filepath.Join(dir, "11111111.txt"), []byte("taken"), 0644)

	ids := []string{"11111111", "11111111", "22222222"}
	orig := generateID
	generateID = func() string {
		id := ids[0]
		if len(ids) > 1 {
			ids = ids[1:]
		}
		return id
	}
	defer func() { generateID = orig }()

	id, err := NewID(cfg)
	if err != nil {
		t.Fatalf("NewID failed: %v", err)
	}
	if id != "22222222" {
		t.Errorf("expected the collision to be skipped, got %q", id)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	cfg := testConfig(t)

	text := "multi\nline\ntext"
	if err := Write(cfg, "ab12cd34", text); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := Read(cfg, "ab12cd34")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got != text {
		t.Errorf("Read = %q, want %q", got, text)
	}
}

func TestWrite_Overwrites(t *testing.T) {
	cfg := testConfig(t)

	Write(cfg, "ab12cd34", "first")
	if err := Write(cfg, "ab12cd34", "second"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, _ := Read(cfg, "ab12cd34")
	if got != "second" {
		t.Errorf("expected overwrite, got %q", got)
	}
}

func TestRead_Missing(t *testing.T) {
	cfg := testConfig(t)
	if _, err := Read(cfg, "00000000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDir_CreatesDirectory(t *testing.T) {
	cfg := testConfig(t)

	dir, err := Dir(cfg)
	if err != nil {
		t.Fatalf("Dir failed: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Error("expected descriptions directory to exist")
	}
}

func TestDir_NotADirectory(t *testing.T) {
	cfg := testConfig(t)
	os.WriteFile(cfg.Path("descriptions"), []byte("a file"), 0644)

	if _, err := Dir(cfg); err == nil {
		t.Fatal("expected error when the descriptions path is a file")
	}
}

func TestLocate(t *testing.T) {
	cfg := testConfig(t)

	if _, err := Locate(cfg, "ab12cd34"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound before write, got %v", err)
	}

	Write(cfg, "ab12cd34", "text")
	p, err := Locate(cfg, "ab12cd34")
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if _, err := os.Stat(p); err != nil {
		t.Errorf("Locate returned a missing path: %v", err)
	}
}

func TestList(t *testing.T) {
	cfg := testConfig(t)

	ids, err := List(cfg)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected no ids before the directory exists, got %v", ids)
	}

	Write(cfg, "aaaa1111", "one")
	Write(cfg, "bbbb2222", "two")
	os.WriteFile(cfg.Path("descriptions", "notes.md"), []byte("skip me"), 0644)

	ids, err = List(cfg)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %v", ids)
	}
	want := map[string]bool{"aaaa1111": true, "bbbb2222": true}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("unexpected id %q", id)
		}
	}
}

func TestCheckIntegrity(t *testing.T) {
	cfg := testConfig(t)
	Write(cfg, "aaaa1111", "referenced")
	Write(cfg, "bbbb2222", "orphan")

	tasks := []todotxt.Task{
		{Index: 1, Text: "a des:aaaa1111", DescriptionID: "aaaa1111"},
		{Index: 2, Text: "b des:dead9999", DescriptionID: "dead9999"},
		{Index: 3, Text: "c"},
	}

	issues := CheckIntegrity(cfg, tasks)
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %v", issues)
	}
	for _, issue := range issues {
		if issue.Severity != "warning" {
			t.Errorf("integrity findings are warnings, got %q", issue.Severity)
		}
		if strings.Contains(issue.Message, "aaaa1111") {
			t.Errorf("healthy pair should not be reported: %s", issue.Message)
		}
	}
	if !strings.Contains(issues[0].Message, "task #2") || !strings.Contains(issues[0].Message, "dead9999") {
		t.Errorf("expected a dangling tag warning for task #2, got %q", issues[0].Message)
	}
	if !strings.Contains(issues[1].Message, "bbbb2222") {
		t.Errorf("expected an orphan warning for bbbb2222, got %q", issues[1].Message)
	}
}

func TestCheckIntegrity_Clean(t *testing.T) {
	cfg := testConfig(t)
	Write(cfg, "aaaa1111", "text")

	tasks := []todotxt.Task{{Index: 1, Text: "a des:aaaa1111", DescriptionID: "aaaa1111"}}
	if issues := CheckIntegrity(cfg, tasks); len(issues) != 0 {
		t.Errorf("expected no issues, got %v", issues)
	}
}

func TestCheckIntegrity_NoDirectory(t *testing.T) {
	cfg := testConfig(t)

	tasks := []todotxt.Task{{Index: 1, Text: "a des:ab12cd34", DescriptionID: "ab12cd34"}}
	issues := CheckIntegrity(cfg, tasks)
	if len(issues) != 1 {
		t.Fatalf("expected the tag to dangle without a store, got %v", issues)
	}
	if !strings.Contains(issues[0].Message, "ab12cd34") {
		t.Errorf("unexpected message %q", issues[0].Message)
	}
}
