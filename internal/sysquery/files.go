package sysquery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
	"golang.org/x/sys/unix"

	"pkt.systems/termclock/schema"
)

// Files answers DIR, TYPE and VOL relative to Dir.
type Files struct {
	Dir      string
	MaxBytes int64
}

func (f Files) dir() string {
	if f.Dir == "" {
		return "."
	}
	return f.Dir
}

// List prints a DOS-style listing of Dir, directories first.
func (f Files) List(context.Context, string) (string, error) {
	dir := f.dir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read directory: %w", err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})
	var b strings.Builder
	fmt.Fprintf(&b, " Directory of %s\n\n", dir)
	var files, dirs int
	var total int64
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		stamp := info.ModTime().Format("02.01.2006  15:04")
		if entry.IsDir() {
			dirs++
			fmt.Fprintf(&b, "%s    <DIR>          %s\n", stamp, entry.Name())
			continue
		}
		files++
		total += info.Size()
		fmt.Fprintf(&b, "%s    %14d %s\n", stamp, info.Size(), entry.Name())
	}
	fmt.Fprintf(&b, "%16d File(s) %14d bytes\n", files, total)
	fmt.Fprintf(&b, "%16d Dir(s)", dirs)
	return b.String(), nil
}

// Type prints the contents of a text file, truncated at MaxBytes.
func (f Files) Type(_ context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", schema.ErrMissingArgument
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.dir(), path)
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", schema.ErrFileNotFound, name)
		}
		return "", fmt.Errorf("open %s: %w", name, err)
	}
	defer func() { _ = file.Close() }()
	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", name, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", name)
	}
	limit := f.MaxBytes
	if limit <= 0 {
		limit = defaultTypeMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(file, limit))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	text := strings.ReplaceAll(string(data), "\t", "    ")
	if info.Size() > limit {
		text += fmt.Sprintf("\n[truncated after %d bytes]", limit)
	}
	return text, nil
}

// Vol reports the volume holding Dir and its free space.
func (f Files) Vol(ctx context.Context, _ string) (string, error) {
	dir := f.dir()
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return "", fmt.Errorf("statfs %s: %w", dir, err)
	}
	label, mount := volumeFor(ctx, dir)
	free := uint64(st.Bavail) * uint64(st.Bsize)
	size := uint64(st.Blocks) * uint64(st.Bsize)
	var b strings.Builder
	if label == "" {
		fmt.Fprintf(&b, " Volume in drive %s has no label\n", mount)
	} else {
		fmt.Fprintf(&b, " Volume in drive %s is %s\n", mount, label)
	}
	fmt.Fprintf(&b, " Volume Serial Number is %04X-%04X\n", uint32(st.Fsid.Val[0])&0xffff, uint32(st.Fsid.Val[1])&0xffff)
	fmt.Fprintf(&b, " %d bytes total\n", size)
	fmt.Fprintf(&b, " %d bytes free", free)
	return b.String(), nil
}

// volumeFor returns the device and mount point with the longest prefix match for dir.
func volumeFor(ctx context.Context, dir string) (string, string) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	parts, err := disk.PartitionsWithContext(ctx, true)
	if err != nil {
		return "", "/"
	}
	best := disk.PartitionStat{Mountpoint: "/"}
	for _, part := range parts {
		mp := part.Mountpoint
		if mp == "" || !withinMount(abs, mp) {
			continue
		}
		if len(mp) >= len(best.Mountpoint) {
			best = part
		}
	}
	return best.Device, best.Mountpoint
}

func withinMount(path, mount string) bool {
	if mount == "/" {
		return true
	}
	return path == mount || strings.HasPrefix(path, strings.TrimSuffix(mount, "/")+"/")
}
