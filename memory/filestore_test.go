package memory_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/tailored-agentic-units/deskagent/memory"
)

func writeDoc(t *testing.T, root, key, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFileStore_List(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		root  func(t *testing.T) string
		want  []string
	}{
		{
			name: "missing root",
			root: func(t *testing.T) string { return filepath.Join(t.TempDir(), "knowledge") },
			want: []string{},
		},
		{
			name: "empty root",
			root: func(t *testing.T) string { return t.TempDir() },
			want: []string{},
		},
		{
			name: "namespaces",
			root: func(t *testing.T) string { return t.TempDir() },
			files: []string{
				"transcripts/0193a.md",
				"memory/prefs.md",
				"reference/tutorial.md",
				"reference/windows/shortcuts.md",
			},
			want: []string{
				"memory/prefs.md",
				"reference/tutorial.md",
				"reference/windows/shortcuts.md",
				"transcripts/0193a.md",
			},
		},
		{
			name: "hidden entries",
			root: func(t *testing.T) string { return t.TempDir() },
			files: []string{
				"memory/prefs.md",
				"memory/.save-123",
				".git/config",
			},
			want: []string{"memory/prefs.md"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := tt.root(t)
			for _, f := range tt.files {
				writeDoc(t, root, f, "x")
			}

			keys, err := memory.NewFileStore(root).List(context.Background())
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if !slices.Equal(keys, tt.want) {
				t.Errorf("got %v, want %v", keys, tt.want)
			}
		})
	}
}

func TestFileStore_Load(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "reference/tutorial.md", "Win+E opens File Explorer")
	writeDoc(t, root, "memory/prefs.md", "Save to drive D")
	store := memory.NewFileStore(root)

	entries, err := store.Load(context.Background(), "memory/prefs.md", "reference/tutorial.md")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Key != "memory/prefs.md" || string(entries[0].Value) != "Save to drive D" {
		t.Errorf("entries[0] = %s %q", entries[0].Key, entries[0].Value)
	}
	if string(entries[1].Value) != "Win+E opens File Explorer" {
		t.Errorf("entries[1] = %q", entries[1].Value)
	}
}

func TestFileStore_Load_Errors(t *testing.T) {
	store := memory.NewFileStore(t.TempDir())

	tests := []struct {
		key  string
		want error
	}{
		{"reference/missing.md", memory.ErrKeyNotFound},
		{"../outside.md", memory.ErrInvalidKey},
		{"/etc/passwd", memory.ErrInvalidKey},
		{`reference\tutorial.md`, memory.ErrInvalidKey},
		{"", memory.ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			_, err := store.Load(context.Background(), tt.key)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFileStore_Save(t *testing.T) {
	root := filepath.Join(t.TempDir(), "knowledge")
	store := memory.NewFileStore(root)
	ctx := context.Background()

	err := store.Save(ctx,
		memory.Entry{Key: "transcripts/a.md", Value: []byte("# Session a")},
		memory.Entry{Key: "transcripts/b.md", Value: []byte("# Session b")},
	)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.Save(ctx, memory.Entry{Key: "transcripts/a.md", Value: []byte("# Session a, resumed")}); err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "transcripts", "a.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# Session a, resumed" {
		t.Errorf("got %q", data)
	}

	keys, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(keys, []string{"transcripts/a.md", "transcripts/b.md"}) {
		t.Errorf("temporary files left behind: %v", keys)
	}
}

func TestFileStore_Save_RejectsEscape(t *testing.T) {
	parent := t.TempDir()
	store := memory.NewFileStore(filepath.Join(parent, "knowledge"))

	err := store.Save(context.Background(), memory.Entry{Key: "../escaped.md", Value: []byte("x")})
	if !errors.Is(err, memory.ErrInvalidKey) {
		t.Fatalf("got %v, want ErrInvalidKey", err)
	}
	if _, err := os.Stat(filepath.Join(parent, "escaped.md")); !os.IsNotExist(err) {
		t.Error("file written outside the root")
	}
}

func TestCleanKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"reference/tutorial.md", "reference/tutorial.md", true},
		{"reference/./windows//disks.md", "reference/windows/disks.md", true},
		{"reference/../memory/prefs.md", "memory/prefs.md", true},
		{"..", "", false},
		{"../x", "", false},
		{".", "", false},
		{"/abs", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := memory.CleanKey(tt.in)
			if tt.ok != (err == nil) {
				t.Fatalf("CleanKey(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
