// Package status reports usage of the filesystems the cleaner cares about.
package status

import (
	"context"
	"fmt"
	"sort"

	"github.com/shirou/gopsutil/v4/disk"
)

// DefaultMounts are the mount points shown in the dashboard header.
var DefaultMounts = []string{"/", "/home"}

// DiskUsage is a snapshot of one mounted filesystem.
type DiskUsage struct {
	Name        string  `json:"name"`
	MountPoint  string  `json:"mount_point"`
	FSType      string  `json:"fs_type"`
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Available   uint64  `json:"available"`
	UsedPercent float64 `json:"used_percent"`
}

// CollectDisks returns usage for every partition mounted at one of mounts,
// sorted by mount point. Partitions whose usage cannot be read are skipped.
func CollectDisks(ctx context.Context, mounts []string) ([]DiskUsage, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list partitions: %w", err)
	}

	var out []DiskUsage
	for _, p := range selectMounts(parts, mounts) {
		u, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			continue
		}
		out = append(out, fromUsage(p, u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MountPoint < out[j].MountPoint })
	return out, nil
}

// selectMounts keeps the first partition seen for each wanted mount point.
func selectMounts(parts []disk.PartitionStat, mounts []string) []disk.PartitionStat {
	want := make(map[string]bool, len(mounts))
	for _, m := range mounts {
		want[m] = true
	}
	seen := make(map[string]bool)
	var out []disk.PartitionStat
	for _, p := range parts {
		if !want[p.Mountpoint] || seen[p.Mountpoint] {
			continue
		}
		seen[p.Mountpoint] = true
		out = append(out, p)
	}
	return out
}

// fromUsage derives used space as total minus what is available to the
// user, so reserved blocks count as used.
func fromUsage(p disk.PartitionStat, u *disk.UsageStat) DiskUsage {
	d := DiskUsage{
		Name:       p.Device,
		MountPoint: p.Mountpoint,
		FSType:     p.Fstype,
		Total:      u.Total,
		Available:  u.Free,
	}
	if u.Total > u.Free {
		d.Used = u.Total - u.Free
	}
	if d.Total > 0 {
		d.UsedPercent = float64(d.Used) / float64(d.Total) * 100
	}
	return d
}
