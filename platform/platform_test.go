package platform

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"
)

// fakeRunner maps "name arg1 arg2" to canned output.
type fakeRunner struct {
	out map[string]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	out, ok := f.out[key]
	if !ok {
		return nil, errors.New("command failed")
	}
	return []byte(out), nil
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		goos string
		want Kind
	}{
		{"linux", Linux},
		{"darwin", MacOS},
		{"windows", Windows},
		{"freebsd", Unknown},
		{"", Unknown},
	}
	for _, tt := range tests {
		if got := KindOf(tt.goos); got != tt.want {
			t.Errorf("KindOf(%q) = %q, want %q", tt.goos, got, tt.want)
		}
	}
}

func TestGatherMacOS(t *testing.T) {
	r := &fakeRunner{out: map[string]string{
		"sysctl -n hw.memsize":               "17179869184\n",
		"sysctl -n machdep.cpu.brand_string": "Apple M2\n",
		"sw_vers -productVersion":            "14.4.1\n",
	}}
	info := GatherWith(context.Background(), r, "darwin")
	if info.OS != MacOS {
		t.Errorf("OS = %q, want %q", info.OS, MacOS)
	}
	if info.Memory != "16 GiB" {
		t.Errorf("Memory = %q, want %q", info.Memory, "16 GiB")
	}
	if info.CPU != "Apple M2" {
		t.Errorf("CPU = %q, want %q", info.CPU, "Apple M2")
	}
	if info.PlatformVersion != "macOS 14.4.1" {
		t.Errorf("PlatformVersion = %q, want %q", info.PlatformVersion, "macOS 14.4.1")
	}
	if info.CoreCount != runtime.NumCPU() {
		t.Errorf("CoreCount = %d, want %d", info.CoreCount, runtime.NumCPU())
	}
	if info.RuntimeVersion != runtime.Version() {
		t.Errorf("RuntimeVersion = %q, want %q", info.RuntimeVersion, runtime.Version())
	}
}

func TestGatherLinux(t *testing.T) {
	meminfo := "MemTotal:       16384000 kB\nMemFree:         1024000 kB\n"
	cpuinfo := "processor\t: 0\nmodel name\t: AMD EPYC 7763 64-Core Processor\n"
	osRelease := "NAME=\"Debian GNU/Linux\"\nPRETTY_NAME=\"Debian GNU/Linux 12 (bookworm)\"\n"
	r := &fakeRunner{out: map[string]string{
		"cat /proc/meminfo":   meminfo,
		"cat /proc/cpuinfo":   cpuinfo,
		"cat /etc/os-release": osRelease,
	}}
	info := GatherWith(context.Background(), r, "linux")
	if info.Memory == Unavailable {
		t.Error("Memory = unavailable, want a formatted size")
	}
	if info.CPU != "AMD EPYC 7763 64-Core Processor" {
		t.Errorf("CPU = %q", info.CPU)
	}
	if info.PlatformVersion != "Debian GNU/Linux 12 (bookworm)" {
		t.Errorf("PlatformVersion = %q", info.PlatformVersion)
	}
}

func TestGatherWindows(t *testing.T) {
	r := &fakeRunner{out: map[string]string{
		"wmic computersystem get TotalPhysicalMemory": "TotalPhysicalMemory\r\n34359738368\r\n",
		"wmic cpu get Name":                           "Name\r\nIntel(R) Core(TM) i7-9700K\r\n",
		"cmd /c ver":                                  "\nMicrosoft Windows [Version 10.0.19045]\n",
	}}
	info := GatherWith(context.Background(), r, "windows")
	if info.Memory != "32 GiB" {
		t.Errorf("Memory = %q, want %q", info.Memory, "32 GiB")
	}
	if info.CPU != "Intel(R) Core(TM) i7-9700K" {
		t.Errorf("CPU = %q", info.CPU)
	}
	if info.PlatformVersion != "Microsoft Windows [Version 10.0.19045]" {
		t.Errorf("PlatformVersion = %q", info.PlatformVersion)
	}
}

func TestGatherDegradesToUnavailable(t *testing.T) {
	// every command fails, every probed field must degrade
	r := &fakeRunner{out: map[string]string{}}
	for _, goos := range []string{"darwin", "linux", "windows"} {
		info := GatherWith(context.Background(), r, goos)
		if info.Memory != Unavailable || info.CPU != Unavailable || info.PlatformVersion != Unavailable {
			t.Errorf("GOOS %s: probed fields = %q %q %q, want all %q",
				goos, info.Memory, info.CPU, info.PlatformVersion, Unavailable)
		}
	}
}

func TestGatherUnknownPlatform(t *testing.T) {
	// no runner call may happen on an unknown platform
	info := GatherWith(context.Background(), panicRunner{}, "plan9")
	if info.OS != Unknown {
		t.Errorf("OS = %q, want %q", info.OS, Unknown)
	}
	if info.Memory != Unavailable || info.CPU != Unavailable || info.PlatformVersion != Unavailable {
		t.Error("unknown platform must leave every probed field unavailable")
	}
}

type panicRunner struct{}

func (panicRunner) Run(context.Context, string, ...string) ([]byte, error) {
	panic("probe on unknown platform")
}

func TestParseMemInfo(t *testing.T) {
	tests := []struct {
		in     string
		want   uint64
		wantOK bool
	}{
		{"MemTotal:       8192 kB\n", 8192 * 1024, true},
		{"MemFree:        8192 kB\n", 0, false},
		{"MemTotal: garbage kB\n", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseMemInfo(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("parseMemInfo(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseOSRelease(t *testing.T) {
	in := fmt.Sprintf("ID=ubuntu\nPRETTY_NAME=%q\n", "Ubuntu 24.04 LTS")
	got, ok := parseOSRelease(in)
	if !ok || got != "Ubuntu 24.04 LTS" {
		t.Errorf("parseOSRelease = (%q, %v)", got, ok)
	}
	if _, ok := parseOSRelease("ID=ubuntu\n"); ok {
		t.Error("parseOSRelease without PRETTY_NAME = ok, want miss")
	}
}
