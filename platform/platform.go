// Package platform gathers descriptive host facts for reports. Every
// probe degrades to the Unavailable sentinel instead of failing, so
// Gather never returns an error.
package platform

import (
	"context"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Unavailable marks a fact that could not be determined.
const Unavailable = "unavailable"

// Kind is the closed set of platforms with distinct probe commands.
type Kind string

const (
	Linux   Kind = "linux"
	MacOS   Kind = "macos"
	Windows Kind = "windows"
	Unknown Kind = "unknown"
)

// KindOf maps a GOOS string to a Kind.
func KindOf(goos string) Kind {
	switch goos {
	case "linux":
		return Linux
	case "darwin":
		return MacOS
	case "windows":
		return Windows
	}
	return Unknown
}

// Info is the host metadata record attached to reports. Consumers treat
// it as opaque payload.
type Info struct {
	PlatformVersion string `json:"platformVersion"`
	RuntimeVersion  string `json:"runtimeVersion"`
	CoreCount       int    `json:"coreCount"`
	OS              Kind   `json:"os"`
	Memory          string `json:"memory"`
	CPU             string `json:"cpu"`
}

// Runner runs an external command and returns its combined stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct {
	timeout time.Duration
}

func (e *execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return exec.CommandContext(ctx, name, args...).Output()
}

// Gather probes the host once. Each probe is bounded by a short timeout
// and never retried; a failed probe leaves its field Unavailable.
func Gather(ctx context.Context) *Info {
	return GatherWith(ctx, &execRunner{timeout: 2 * time.Second}, runtime.GOOS)
}

// GatherWith is Gather with an explicit runner and GOOS, for tests.
func GatherWith(ctx context.Context, r Runner, goos string) *Info {
	info := &Info{
		PlatformVersion: Unavailable,
		RuntimeVersion:  runtime.Version(),
		CoreCount:       runtime.NumCPU(),
		OS:              KindOf(goos),
		Memory:          Unavailable,
		CPU:             Unavailable,
	}
	switch info.OS {
	case MacOS:
		if out, err := r.Run(ctx, "sysctl", "-n", "hw.memsize"); err == nil {
			if b, err := strconv.ParseUint(strings.TrimSpace(string(out)), 10, 64); err == nil {
				info.Memory = humanize.IBytes(b)
			}
		}
		if out, err := r.Run(ctx, "sysctl", "-n", "machdep.cpu.brand_string"); err == nil {
			if s := strings.TrimSpace(string(out)); s != "" {
				info.CPU = s
			}
		}
		if out, err := r.Run(ctx, "sw_vers", "-productVersion"); err == nil {
			if s := strings.TrimSpace(string(out)); s != "" {
				info.PlatformVersion = "macOS " + s
			}
		}
	case Linux:
		if out, err := r.Run(ctx, "cat", "/proc/meminfo"); err == nil {
			if b, ok := parseMemInfo(string(out)); ok {
				info.Memory = humanize.IBytes(b)
			}
		}
		if out, err := r.Run(ctx, "cat", "/proc/cpuinfo"); err == nil {
			if s, ok := parseCPUInfo(string(out)); ok {
				info.CPU = s
			}
		}
		if out, err := r.Run(ctx, "cat", "/etc/os-release"); err == nil {
			if s, ok := parseOSRelease(string(out)); ok {
				info.PlatformVersion = s
			}
		}
	case Windows:
		if out, err := r.Run(ctx, "wmic", "computersystem", "get", "TotalPhysicalMemory"); err == nil {
			if b, ok := parseWmicValue(string(out)); ok {
				if n, err := strconv.ParseUint(b, 10, 64); err == nil {
					info.Memory = humanize.IBytes(n)
				}
			}
		}
		if out, err := r.Run(ctx, "wmic", "cpu", "get", "Name"); err == nil {
			if s, ok := parseWmicValue(string(out)); ok {
				info.CPU = s
			}
		}
		if out, err := r.Run(ctx, "cmd", "/c", "ver"); err == nil {
			if s := strings.TrimSpace(string(out)); s != "" {
				info.PlatformVersion = s
			}
		}
	}
	return info
}

// parseMemInfo extracts MemTotal from /proc/meminfo, in bytes.
func parseMemInfo(s string) (uint64, bool) {
	for _, line := range strings.Split(s, "\n") {
		if !strings.HasPrefix(line, "MemTotal:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0, false
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0, false
		}
		return kb * 1024, true
	}
	return 0, false
}

// parseCPUInfo extracts the first "model name" from /proc/cpuinfo.
func parseCPUInfo(s string) (string, bool) {
	for _, line := range strings.Split(s, "\n") {
		if !strings.HasPrefix(line, "model name") {
			continue
		}
		_, value, found := strings.Cut(line, ":")
		if !found {
			return "", false
		}
		value = strings.TrimSpace(value)
		return value, value != ""
	}
	return "", false
}

// parseOSRelease extracts PRETTY_NAME from /etc/os-release.
func parseOSRelease(s string) (string, bool) {
	for _, line := range strings.Split(s, "\n") {
		if !strings.HasPrefix(line, "PRETTY_NAME=") {
			continue
		}
		value := strings.TrimPrefix(line, "PRETTY_NAME=")
		value = strings.Trim(strings.TrimSpace(value), `"`)
		return value, value != ""
	}
	return "", false
}

// parseWmicValue returns the first non-header line of wmic output.
func parseWmicValue(s string) (string, bool) {
	lines := strings.Split(strings.ReplaceAll(s, "\r", ""), "\n")
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line != "" {
			return line, true
		}
	}
	return "", false
}
