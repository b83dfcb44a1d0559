// Package system implements the operating system introspection tools.
// Inventory commands run through a Runner so their output parsing can be
// exercised without Windows.
package system

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/tailored-agentic-units/deskagent/tools"
)

const (
	defaultProcessCount = 20
	defaultMaxResults   = 50
)

// windowsTools maps the accepted tool names to the programs they launch.
var windowsTools = map[string]string{
	"taskmanager":  "taskmgr",
	"controlpanel": "control",
	"fileexplorer": "explorer",
	"cmd":          "cmd",
	"powershell":   "powershell",
	"systeminfo":   "msinfo32",
	"diskmgmt":     "diskmgmt.msc",
	"device":       "devmgmt.msc",
}

// System answers questions about the host.
type System struct {
	runner Runner
	goos   string
}

// Option configures System.
type Option func(*System)

// WithRunner replaces the command runner.
func WithRunner(r Runner) Option {
	return func(s *System) { s.runner = r }
}

// WithOS overrides the reported operating system, which selects the default
// search root.
func WithOS(goos string) Option {
	return func(s *System) { s.goos = goos }
}

// New returns a System that runs commands with os/exec.
func New(opts ...Option) *System {
	s := &System{runner: ExecRunner{}, goos: runtime.GOOS}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Info reports host, user, CPU, and memory. Fields that cannot be read are
// shown as unavailable rather than failing the call.
func (s *System) Info(ctx context.Context) tools.Result {
	host, err := os.Hostname()
	if err != nil {
		host = "unavailable"
	}
	user := firstNonEmpty(os.Getenv("USERNAME"), os.Getenv("USER"), "unavailable")

	cpu := "unavailable"
	if out, err := s.runner.Output(ctx, "wmic", "cpu", "get", "name"); err == nil {
		if v, ok := firstValue(out); ok {
			cpu = v
		}
	}

	memory := "unavailable"
	if out, err := s.runner.Output(ctx, "wmic", "OS", "get", "TotalVisibleMemorySize"); err == nil {
		if v, ok := firstValue(out); ok {
			if kb, err := strconv.ParseInt(v, 10, 64); err == nil {
				memory = fmt.Sprintf("%.2f GB", round(float64(kb)/1024/1024, 2))
			}
		}
	}

	return tools.Textf(
		"System info:\nOS: %s/%s\nComputer name: %s\nUser: %s\nProcessor: %s\nMemory: %s",
		s.goos, runtime.GOARCH, host, user, cpu, memory,
	)
}

// Processes lists the maxCount processes using the most memory.
func (s *System) Processes(ctx context.Context, maxCount int) tools.Result {
	if maxCount <= 0 {
		maxCount = defaultProcessCount
	}
	out, err := s.runner.Output(ctx, "wmic", "process", "get", "Name,ProcessId,WorkingSetSize")
	if err != nil {
		return tools.Failure("failed to list processes: %v", err)
	}

	procs := parseProcesses(out)
	if len(procs) > maxCount {
		procs = procs[:maxCount]
	}

	lines := make([]string, len(procs))
	for i, p := range procs {
		lines[i] = fmt.Sprintf("Process: %s, PID: %s, Memory: %.2f MB", p.name, p.pid, round(float64(p.memory)/1024/1024, 2))
	}
	return tools.Textf("Running processes (%d):\n%s", len(procs), strings.Join(lines, "\n"))
}

// DiskSpace reports capacity and usage per logical drive.
func (s *System) DiskSpace(ctx context.Context) tools.Result {
	out, err := s.runner.Output(ctx, "wmic", "logicaldisk", "get", "DeviceID,FreeSpace,Size")
	if err != nil {
		return tools.Failure("failed to check disk space: %v", err)
	}
	disks := parseDisks(out)
	if len(disks) == 0 {
		return tools.Text("No drives with media were reported")
	}

	lines := make([]string, len(disks))
	for i, d := range disks {
		lines[i] = formatDisk(d)
	}
	return tools.Textf("Disk usage:\n%s", strings.Join(lines, "\n"))
}

// FindFile walks root and returns paths whose base name matches the glob
// pattern, stopping after maxResults matches.
func (s *System) FindFile(ctx context.Context, pattern, root string, maxResults int) tools.Result {
	if root == "" {
		root = s.defaultSearchRoot()
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return tools.Failure("invalid file name pattern '%s': %v", pattern, err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return tools.Failure("search path '%s' does not exist or is not a folder", root)
	}

	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if ok, _ := filepath.Match(pattern, d.Name()); ok && !d.IsDir() {
			found = append(found, path)
			if len(found) >= maxResults {
				return fs.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		return tools.Failure("search under '%s' stopped: %v", root, err)
	}

	if len(found) == 0 {
		return tools.Textf("No files matching '%s' under '%s'", pattern, root)
	}
	return tools.Textf("Found %d matching files:\n%s", len(found), strings.Join(found, "\n"))
}

func (s *System) WindowsVersion(ctx context.Context) tools.Result {
	out, err := s.runner.Output(ctx, "systeminfo")
	if err != nil {
		return tools.Failure("failed to read Windows version: %v", err)
	}
	lines := versionLines(out)
	if len(lines) == 0 {
		return tools.Failure("systeminfo reported no version information")
	}
	return tools.Textf("Windows version:\n%s", strings.Join(lines, "\n"))
}

// OpenTool launches a Windows administration tool without waiting for it.
func (s *System) OpenTool(name string) tools.Result {
	program, ok := windowsTools[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return tools.Failure("unsupported tool '%s'; supported tools: %s", name, strings.Join(ToolNames(), ", "))
	}

	var err error
	if strings.HasSuffix(program, ".msc") {
		err = s.runner.Start("mmc", program)
	} else {
		err = s.runner.Start(program)
	}
	if err != nil {
		return tools.Failure("failed to open %s: %v", name, err)
	}
	return tools.Textf("Opened %s", name)
}

// ToolNames lists the names OpenTool accepts, sorted.
func ToolNames() []string {
	names := make([]string, 0, len(windowsTools))
	for n := range windowsTools {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func (s *System) defaultSearchRoot() string {
	if s.goos == "windows" {
		return `C:\`
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "/"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
