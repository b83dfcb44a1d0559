// Package filesystem implements the file and folder management tools.
package filesystem

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/tailored-agentic-units/deskagent/tools"
)

// MaxReadChars caps the characters returned by ReadTextFile.
const MaxReadChars = 10000

// TruncationMarker is appended to any read that was cut short.
const TruncationMarker = "\n[...content truncated...]"

const timeLayout = "2006-01-02 15:04:05"

// ErrSameFile reports a copy whose source and destination are one file.
var ErrSameFile = errors.New("source and destination are the same file")

// Files performs filesystem operations for the agent. Every method reports
// faults as error results naming the path involved.
type Files struct {
	home    string
	profile string
}

// Option configures Files.
type Option func(*Files)

// WithHome overrides the home directory used to find the desktop.
func WithHome(dir string) Option {
	return func(f *Files) { f.home = dir }
}

// WithProfile overrides the USERPROFILE fallback used to find the desktop.
func WithProfile(dir string) Option {
	return func(f *Files) { f.profile = dir }
}

// New returns Files rooted at the current user's home directory.
func New(opts ...Option) *Files {
	f := &Files{profile: os.Getenv("USERPROFILE")}
	if home, err := os.UserHomeDir(); err == nil {
		f.home = home
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Files) CreateFolder(path string) tools.Result {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return tools.Failure("failed to create folder '%s': %v", path, err)
	}
	return tools.Textf("Folder '%s' created", path)
}

// DeleteFolder removes an empty folder, or the whole tree when recursive is
// set. A non-empty folder is left untouched without recursive.
func (f *Files) DeleteFolder(path string, recursive bool) tools.Result {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return tools.Failure("'%s' is not a valid folder", path)
	}

	if recursive {
		if err := os.RemoveAll(path); err != nil {
			return tools.Failure("failed to delete folder '%s': %v", path, err)
		}
		return tools.Textf("Folder '%s' and all of its contents deleted", path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return tools.Failure("failed to read folder '%s': %v", path, err)
	}
	if len(entries) > 0 {
		return tools.Failure("folder '%s' is not empty; set recursive=true to delete its contents", path)
	}
	if err := os.Remove(path); err != nil {
		return tools.Failure("failed to delete folder '%s': %v", path, err)
	}
	return tools.Textf("Empty folder '%s' deleted", path)
}

func (f *Files) DeleteFile(path string) tools.Result {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return tools.Failure("'%s' is not a valid file", path)
	}
	if err := os.Remove(path); err != nil {
		return tools.Failure("failed to delete file '%s': %v", path, err)
	}
	return tools.Textf("File '%s' deleted", path)
}

// CopyFile copies a regular file, keeping its mode and modification time.
// An existing directory as dst receives the file under its own name.
func (f *Files) CopyFile(src, dst string) tools.Result {
	info, err := os.Stat(src)
	if err != nil || !info.Mode().IsRegular() {
		return tools.Failure("source '%s' is not a valid file", src)
	}
	dst = intoDir(src, dst)
	if err := copyFile(src, dst, info); err != nil {
		return tools.Failure("failed to copy '%s' to '%s': %v", src, dst, err)
	}
	return tools.Textf("Copied '%s' to '%s'", src, dst)
}

// MoveFile renames src to dst. When a rename is impossible, such as across
// volumes, a regular file is copied and the source removed. An existing
// directory as dst receives src under its own name.
func (f *Files) MoveFile(src, dst string) tools.Result {
	info, err := os.Stat(src)
	if err != nil {
		return tools.Failure("source '%s' does not exist", src)
	}
	dst = intoDir(src, dst)
	if same, err := sameFile(info, dst); err == nil && same {
		return tools.Failure("cannot move '%s' onto itself", src)
	}
	if err := ensureParent(dst); err != nil {
		return tools.Failure("failed to create destination folder for '%s': %v", dst, err)
	}

	if err := os.Rename(src, dst); err != nil {
		if !info.Mode().IsRegular() {
			return tools.Failure("failed to move '%s' to '%s': %v", src, dst, err)
		}
		if err := copyFile(src, dst, info); err != nil {
			return tools.Failure("failed to move '%s' to '%s': %v", src, dst, err)
		}
		if err := os.Remove(src); err != nil {
			return tools.Failure("copied '%s' to '%s' but could not remove the source: %v", src, dst, err)
		}
	}
	return tools.Textf("Moved '%s' to '%s'", src, dst)
}

// ListDirectory lists folders and files with human-readable sizes. Names
// starting with a dot are skipped unless showHidden is set.
func (f *Files) ListDirectory(path string, showHidden bool) tools.Result {
	entries, err := os.ReadDir(path)
	if err != nil {
		return tools.Failure("'%s' is not a valid directory", path)
	}

	var lines []string
	for _, e := range entries {
		if !showHidden && strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if e.IsDir() {
			lines = append(lines, "[DIR] "+e.Name())
			continue
		}
		size := "unknown size"
		if info, err := e.Info(); err == nil {
			size = humanize.IBytes(uint64(info.Size()))
		}
		lines = append(lines, fmt.Sprintf("[FILE] %s - %s", e.Name(), size))
	}

	if len(lines) == 0 {
		return tools.Textf("Directory '%s' is empty", path)
	}
	return tools.Textf("Contents of directory '%s' (%d items):\n%s", path, len(lines), strings.Join(lines, "\n"))
}

func (f *Files) CreateTextFile(path, content string) tools.Result {
	if err := ensureParent(path); err != nil {
		return tools.Failure("failed to create folder for '%s': %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return tools.Failure("failed to create text file '%s': %v", path, err)
	}
	return tools.Textf("Text file '%s' created", path)
}

// ReadTextFile returns the file's text, at most maxLines lines when maxLines
// is positive and never more than MaxReadChars characters.
func (f *Files) ReadTextFile(path string, maxLines int) tools.Result {
	content, err := ReadText(path, maxLines)
	if err != nil {
		return tools.Failure("%v", err)
	}
	return tools.Textf("Contents of '%s':\n%s", path, content)
}

// ReadText applies the ReadTextFile limits and returns the bare content.
// Reading stops at the limits, so only the returned part of the file is
// loaded.
func ReadText(path string, maxLines int) (string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("'%s' is not a valid file", path)
	}
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to read '%s': %w", path, err)
	}
	defer file.Close()

	r := bufio.NewReader(file)
	var b strings.Builder
	chars, lines := 0, 0
	for {
		if chars == MaxReadChars || (maxLines > 0 && lines == maxLines) {
			if _, err := r.Peek(1); err == nil {
				b.WriteString(TruncationMarker)
			}
			return b.String(), nil
		}

		ch, size, err := r.ReadRune()
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to read '%s': %w", path, err)
		}
		if ch == utf8.RuneError && size == 1 {
			return "", fmt.Errorf("cannot read '%s': it looks like a binary file", path)
		}

		b.WriteRune(ch)
		chars++
		if ch == '\n' {
			lines++
		}
	}
}

func (f *Files) GetFileInfo(path string) tools.Result {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return tools.Failure("'%s' is not a valid file", path)
	}

	t := timesOf(info)
	readOnly := "no"
	if info.Mode().Perm()&0o200 == 0 {
		readOnly = "yes"
	}

	return tools.Textf(
		"File info for '%s':\nSize: %s (%d bytes)\nCreated: %s\nModified: %s\nAccessed: %s\nRead-only: %s",
		path,
		humanize.IBytes(uint64(info.Size())), info.Size(),
		t.created.Format(timeLayout),
		info.ModTime().Format(timeLayout),
		t.accessed.Format(timeLayout),
		readOnly,
	)
}

func (f *Files) CheckFileExists(path string) tools.Result {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return tools.Textf("'%s' does not exist", path)
		}
		return tools.Failure("failed to check '%s': %v", path, err)
	}
	return tools.Textf("'%s' exists", path)
}

func (f *Files) GetFileSize(path string) tools.Result {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return tools.Failure("'%s' is not a valid file", path)
	}
	return tools.Textf("Size of '%s': %d bytes", path, info.Size())
}

// GetDesktopPath probes ~/Desktop, then ~/桌面, then %USERPROFILE%/Desktop.
func (f *Files) GetDesktopPath() tools.Result {
	candidates := []string{
		filepath.Join(f.home, "Desktop"),
		filepath.Join(f.home, "桌面"),
	}
	if f.profile != "" {
		candidates = append(candidates, filepath.Join(f.profile, "Desktop"))
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return tools.Textf("The current user's desktop path is: %s", c)
		}
	}
	return tools.Failure("could not find the desktop folder; tried: %s", strings.Join(candidates, ", "))
}

func ensureParent(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// intoDir places src inside dst when dst is an existing directory.
func intoDir(src, dst string) string {
	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		return filepath.Join(dst, filepath.Base(src))
	}
	return dst
}

// sameFile reports whether dst already names the file described by info.
func sameFile(info os.FileInfo, dst string) (bool, error) {
	dstInfo, err := os.Stat(dst)
	if err != nil {
		return false, err
	}
	return os.SameFile(info, dstInfo), nil
}

func copyFile(src, dst string, info os.FileInfo) error {
	if same, err := sameFile(info, dst); err == nil && same {
		return ErrSameFile
	}
	if err := ensureParent(dst); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
