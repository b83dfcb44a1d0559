package system_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/deskagent/tools/system"
)

type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	started [][]string
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) (string, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	if err, ok := f.errs[key]; ok {
		return "", err
	}
	out, ok := f.outputs[key]
	if !ok {
		return "", errors.New("command not found: " + key)
	}
	return out, nil
}

func (f *fakeRunner) Start(name string, args ...string) error {
	f.started = append(f.started, append([]string{name}, args...))
	return nil
}

const processOutput = "Name                 ProcessId  WorkingSetSize  \r\n" +
	"System Idle Process  0          8192            \r\n" +
	"chrome.exe           4120       524288000       \r\n" +
	"Code Helper.exe      5000       104857600       \r\n" +
	"\r\n"

const diskOutput = "DeviceID  FreeSpace     Size          \r\n" +
	"C:        107374182400  536870912000  \r\n" +
	"D:                                    \r\n"

func TestProcesses_SortedByMemory(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"wmic process get Name,ProcessId,WorkingSetSize": processOutput,
	}}
	sys := system.New(system.WithRunner(runner))

	r := sys.Processes(context.Background(), 2)
	require.False(t, r.IsError, r.Content)

	lines := strings.Split(r.Content, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Running processes (2):", lines[0])
	assert.Equal(t, "Process: chrome.exe, PID: 4120, Memory: 500.00 MB", lines[1])
	assert.Equal(t, "Process: Code Helper.exe, PID: 5000, Memory: 100.00 MB", lines[2])
}

func TestProcesses_CommandFailure(t *testing.T) {
	sys := system.New(system.WithRunner(&fakeRunner{}))
	r := sys.Processes(context.Background(), 0)
	assert.True(t, r.IsError)
}

func TestDiskSpace(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"wmic logicaldisk get DeviceID,FreeSpace,Size": diskOutput,
	}}
	r := system.New(system.WithRunner(runner)).DiskSpace(context.Background())

	require.False(t, r.IsError, r.Content)
	assert.Contains(t, r.Content, "Drive C: total 500.00 GB, used 400.00 GB, free 100.00 GB (80.0%)")
	assert.NotContains(t, r.Content, "Drive D:")
}

func TestDiskSpace_TinyDrive(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"wmic logicaldisk get DeviceID,FreeSpace,Size": "DeviceID  FreeSpace  Size     \r\n" +
			"E:        1048576    4194304  \r\n",
	}}
	r := system.New(system.WithRunner(runner)).DiskSpace(context.Background())

	require.False(t, r.IsError, r.Content)
	assert.Contains(t, r.Content, "Drive E: total 0.00 GB, used 0.00 GB, free 0.00 GB (75.0%)")
	assert.NotContains(t, r.Content, "NaN")
}

func TestInfo_DegradesWhenCommandsFail(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"wmic OS get TotalVisibleMemorySize": "TotalVisibleMemorySize\r\n16651232\r\n",
	}}
	r := system.New(system.WithRunner(runner)).Info(context.Background())

	require.False(t, r.IsError)
	assert.Contains(t, r.Content, "Processor: unavailable")
	assert.Contains(t, r.Content, "Memory: 15.88 GB")
}

func TestWindowsVersion(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"systeminfo": "Host Name:   DESK\r\nOS Name:     Microsoft Windows 11 Pro\r\n" +
			"OS Version:  10.0.22631 N/A Build 22631\r\nSystem Type: x64-based PC\r\n" +
			"Hotfix(s):   3 Hotfix(s) Installed.\r\n",
	}}
	r := system.New(system.WithRunner(runner)).WindowsVersion(context.Background())

	require.False(t, r.IsError)
	assert.Contains(t, r.Content, "OS Name:     Microsoft Windows 11 Pro")
	assert.Contains(t, r.Content, "Hotfix(s):")
	assert.NotContains(t, r.Content, "Host Name")
}

func TestOpenTool(t *testing.T) {
	runner := &fakeRunner{}
	sys := system.New(system.WithRunner(runner))

	assert.False(t, sys.OpenTool("TaskManager").IsError)
	assert.False(t, sys.OpenTool("diskmgmt").IsError)
	assert.Equal(t, [][]string{{"taskmgr"}, {"mmc", "diskmgmt.msc"}}, runner.started)

	r := sys.OpenTool("regedit")
	assert.True(t, r.IsError)
	assert.Contains(t, r.Content, "taskmanager")
	assert.Len(t, runner.started, 2)
}

func TestFindFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b"), 0o755))
	for _, p := range []string{"one.txt", "a/two.txt", "a/b/three.txt", "a/b/skip.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, p), nil, 0o644))
	}
	sys := system.New()

	r := sys.FindFile(context.Background(), "*.txt", root, 0)
	require.False(t, r.IsError, r.Content)
	assert.Contains(t, r.Content, "Found 3 matching files")
	assert.NotContains(t, r.Content, "skip.md")

	limited := sys.FindFile(context.Background(), "*.txt", root, 1)
	assert.Contains(t, limited.Content, "Found 1 matching files")

	none := sys.FindFile(context.Background(), "*.pdf", root, 0)
	assert.False(t, none.IsError)
	assert.Contains(t, none.Content, "No files matching")

	missing := sys.FindFile(context.Background(), "*.txt", filepath.Join(root, "nope"), 0)
	assert.True(t, missing.IsError)
	assert.Contains(t, missing.Content, filepath.Join(root, "nope"))
}

func TestEntries_DefaultsFromHandler(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"wmic process get Name,ProcessId,WorkingSetSize": processOutput,
	}}
	sys := system.New(system.WithRunner(runner))

	for _, e := range sys.Entries() {
		if e.Tool.Name != "get_running_processes" {
			continue
		}
		r, err := e.Handler(context.Background(), json.RawMessage(`{}`))
		require.NoError(t, err)
		assert.Contains(t, r.Content, "Running processes (3):")
		return
	}
	t.Fatal("get_running_processes not in catalogue")
}
