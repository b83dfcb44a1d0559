package system

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

type process struct {
	name   string
	pid    string
	memory int64
}

type disk struct {
	device string
	free   int64
	size   int64
}

// dataLines splits wmic output into non-blank rows below the header.
func dataLines(out string) []string {
	var lines []string
	for i, line := range strings.Split(strings.ReplaceAll(out, "\r", ""), "\n") {
		line = strings.TrimSpace(line)
		if i == 0 || line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// parseProcesses reads "Name ProcessId WorkingSetSize" rows. Names may
// contain spaces, so the last two fields are the numbers.
func parseProcesses(out string) []process {
	var procs []process
	for _, line := range dataLines(out) {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		mem, err := strconv.ParseInt(fields[len(fields)-1], 10, 64)
		if err != nil {
			continue
		}
		procs = append(procs, process{
			name:   strings.Join(fields[:len(fields)-2], " "),
			pid:    fields[len(fields)-2],
			memory: mem,
		})
	}
	slices.SortStableFunc(procs, func(a, b process) int {
		return cmp.Compare(b.memory, a.memory)
	})
	return procs
}

// parseDisks reads "DeviceID FreeSpace Size" rows. Drives without media
// report no sizes and are skipped.
func parseDisks(out string) []disk {
	var disks []disk
	for _, line := range dataLines(out) {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		free, err1 := strconv.ParseInt(fields[1], 10, 64)
		size, err2 := strconv.ParseInt(fields[2], 10, 64)
		if err1 != nil || err2 != nil || size <= 0 {
			continue
		}
		disks = append(disks, disk{device: fields[0], free: free, size: size})
	}
	return disks
}

// firstValue returns the first data row of single-column wmic output.
func firstValue(out string) (string, bool) {
	lines := dataLines(out)
	if len(lines) == 0 {
		return "", false
	}
	return lines[0], true
}

// versionLines picks the OS identification lines out of systeminfo output.
func versionLines(out string) []string {
	keys := []string{"OS Name", "OS Version", "System Type", "Hotfix(s)"}
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(out, "\r", ""), "\n") {
		for _, k := range keys {
			if strings.Contains(line, k) {
				lines = append(lines, strings.TrimSpace(line))
				break
			}
		}
	}
	return lines
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func gb(bytes int64) float64 {
	return round(float64(bytes)/(1<<30), 2)
}

func formatDisk(d disk) string {
	total := gb(d.size)
	free := gb(d.free)
	used := round(total-free, 2)
	percent := round(float64(d.size-d.free)/float64(d.size)*100, 1)
	return fmt.Sprintf("Drive %s total %.2f GB, used %.2f GB, free %.2f GB (%.1f%%)", d.device, total, used, free, percent)
}
