package sysquery

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"

	"pkt.systems/termclock/internal/version"
)

// Hostname reports the host name.
func Hostname(context.Context, string) (string, error) {
	name, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("hostname: %w", err)
	}
	return name, nil
}

// Whoami reports the current user as host\user.
func Whoami(context.Context, string) (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("current user: %w", err)
	}
	name, err := os.Hostname()
	if err != nil || name == "" {
		return u.Username, nil
	}
	return strings.ToLower(name) + `\` + u.Username, nil
}

// Uptime reports how long the host has been running.
func Uptime(ctx context.Context, _ string) (string, error) {
	secs, err := host.UptimeWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("uptime: %w", err)
	}
	return "System uptime: " + formatUptime(time.Duration(secs)*time.Second), nil
}

func formatUptime(d time.Duration) string {
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int(d / time.Minute)
	d -= time.Duration(minutes) * time.Minute
	seconds := int(d / time.Second)
	return fmt.Sprintf("%d day(s), %02d:%02d:%02d", days, hours, minutes, seconds)
}

// SystemInfo summarises the host, CPU, memory and load.
func SystemInfo(ctx context.Context, _ string) (string, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("host info: %w", err)
	}
	var b strings.Builder
	row := func(label, value string) {
		fmt.Fprintf(&b, "%-27s%s\n", label+":", value)
	}
	row("Host Name", info.Hostname)
	row("OS Name", strings.TrimSpace(info.Platform+" "+info.PlatformVersion))
	row("OS Kernel", info.KernelVersion+" ("+info.KernelArch+")")
	row("System Boot Time", time.Unix(int64(info.BootTime), 0).Format("02.01.2006, 15:04:05"))
	row("System Uptime", formatUptime(time.Duration(info.Uptime)*time.Second))
	if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 {
		row("Processor(s)", fmt.Sprintf("%d logical, %s", runtime.NumCPU(), strings.TrimSpace(cpus[0].ModelName)))
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		row("Total Physical Memory", formatMB(vm.Total))
		row("Available Physical Memory", formatMB(vm.Available))
	}
	if avg, err := load.AvgWithContext(ctx); err == nil && avg != nil {
		row("Load Average", fmt.Sprintf("%.2f, %.2f, %.2f", avg.Load1, avg.Load5, avg.Load15))
	}
	row("Processes", fmt.Sprintf("%d", info.Procs))
	return strings.TrimRight(b.String(), "\n"), nil
}

func formatMB(bytes uint64) string {
	return fmt.Sprintf("%d MB", bytes/(1<<20))
}

// Tasklist lists running processes by PID.
type Tasklist struct {
	Max int
}

type taskRow struct {
	pid  int32
	name string
	rss  uint64
}

// Run prints the process table.
func (t Tasklist) Run(ctx context.Context, _ string) (string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("list processes: %w", err)
	}
	rows := make([]taskRow, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		row := taskRow{pid: p.Pid, name: name}
		if mi, err := p.MemoryInfoWithContext(ctx); err == nil && mi != nil {
			row.rss = mi.RSS
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].pid < rows[j].pid })
	var b strings.Builder
	fmt.Fprintf(&b, "%-25s %8s %12s\n", "Image Name", "PID", "Mem Usage")
	fmt.Fprintf(&b, "%s %s %s\n", strings.Repeat("=", 25), strings.Repeat("=", 8), strings.Repeat("=", 12))
	limit := len(rows)
	if t.Max > 0 && limit > t.Max {
		limit = t.Max
	}
	for _, row := range rows[:limit] {
		fmt.Fprintf(&b, "%-25s %8d %10d K\n", truncate(row.name, 25), row.pid, row.rss/1024)
	}
	if limit < len(rows) {
		fmt.Fprintf(&b, "... %d more\n", len(rows)-limit)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Ver reports the build version and the running kernel.
func Ver(context.Context, string) (string, error) {
	lines := []string{version.Build()}
	var uts unix.Utsname
	if err := unix.Uname(&uts); err == nil {
		lines = append(lines, fmt.Sprintf("%s %s (%s)", unix.ByteSliceToString(uts.Sysname[:]), unix.ByteSliceToString(uts.Release[:]), runtime.GOARCH))
	}
	return strings.Join(lines, "\n"), nil
}
