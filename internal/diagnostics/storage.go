// Package diagnostics implements the on-demand connectivity and capacity
// checks surfaced by the admin panel. Probes never return errors to the
// caller: failures are encoded in the status objects so the endpoints
// stay observable even when the probed target is down.
package diagnostics

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v4/disk"
)

// StorageStatus reports the health of the cloud storage path.
type StorageStatus struct {
	Path         string   `json:"path"`
	ResolvedPath string   `json:"resolved_path"`
	Available    bool     `json:"available"`
	Detail       string   `json:"detail"`
	FreeGB       *float64 `json:"free_gb"`
	TotalGB      *float64 `json:"total_gb"`
}

// ComputeStorageStatus creates the directory tree if missing and queries
// free/total space. Failures are captured in Detail, never returned.
func ComputeStorageStatus(path string) StorageStatus {
	status := StorageStatus{Path: path}

	expanded := expandHome(path)
	if err := os.MkdirAll(expanded, 0755); err != nil {
		status.Detail = err.Error()
		return status
	}

	resolved, err := filepath.Abs(expanded)
	if err != nil {
		status.Detail = err.Error()
		return status
	}

	usage, err := disk.Usage(resolved)
	if err != nil {
		status.Detail = err.Error()
		return status
	}

	free := roundGB(usage.Free)
	total := roundGB(usage.Total)
	status.ResolvedPath = resolved
	status.Available = true
	status.FreeGB = &free
	status.TotalGB = &total
	return status
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}

func roundGB(bytes uint64) float64 {
	return math.Round(float64(bytes)/(1<<30)*100) / 100
}

// StorageMonitor caches the most recent storage status in memory.
// Updates are whole-object replacements; staleness is tolerable.
type StorageMonitor struct {
	mu     sync.Mutex
	status StorageStatus
}

func NewStorageMonitor() *StorageMonitor {
	return &StorageMonitor{}
}

// Update recomputes the status for path and caches it.
func (m *StorageMonitor) Update(path string) StorageStatus {
	status := ComputeStorageStatus(path)
	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
	return status
}

// Current returns the cached status.
func (m *StorageMonitor) Current() StorageStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}
