package renderer

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
)

// ViewportStats is a point-in-time view of the accumulation engine
type ViewportStats struct {
	Width, Height  int
	Generation     uint64
	CurrentSamples int     // Samples accepted since the last reset
	FramesMerged   int64   // Frames merged since the last reset
	Pending        int     // Frames waiting in the queue
	MinDensity     int32   // Fewest samples of any pixel
	MaxDensity     int32   // Most samples of any pixel
	AverageDensity float64 // Mean samples per pixel

	DroppedDirty   int64 // Offered while the viewport was dirty
	DroppedStale   int64 // Rendered under an older generation
	DroppedSize    int64 // Rendered at another resolution
	DroppedBacklog int64 // Offered while the queue was full

	WorkersSpawned int64
	WorkersJoined  int64
	Workers        []WorkerStats
}

// Stats collects the viewport and worker counters
func (v *Viewport) Stats() ViewportStats {
	v.mu.Lock()
	stats := ViewportStats{
		Width:        v.camera.Width,
		Height:       v.camera.Height,
		FramesMerged: v.merged,
	}
	if len(v.density) > 0 {
		stats.MinDensity = v.density[0].Load()
		var total int64
		for i := range v.density {
			d := v.density[i].Load()
			stats.MinDensity = min(stats.MinDensity, d)
			stats.MaxDensity = max(stats.MaxDensity, d)
			total += int64(d)
		}
		stats.AverageDensity = float64(total) / float64(len(v.density))
	}
	v.mu.Unlock()

	stats.Generation = v.generation.Load()
	stats.CurrentSamples = int(v.currentSamples.Load())
	stats.Pending = len(v.frames)
	stats.DroppedDirty = v.droppedDirty.Load()
	stats.DroppedStale = v.droppedStale.Load()
	stats.DroppedSize = v.droppedSize.Load()
	stats.DroppedBacklog = v.droppedBacklog.Load()
	stats.WorkersSpawned = v.pool.Spawned()
	stats.WorkersJoined = v.pool.Joined()

	for _, worker := range v.pool.Workers() {
		stats.Workers = append(stats.Workers, worker.Stats())
	}
	return stats
}

// FramesDropped returns the total of every drop counter
func (s ViewportStats) FramesDropped() int64 {
	return s.DroppedDirty + s.DroppedStale + s.DroppedSize + s.DroppedBacklog
}

// FormatStats builds a tabular representation of viewport and worker statistics.
func FormatStats(stats ViewportStats) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Viewport", "Value"})
	table.Append([]string{"Resolution", fmt.Sprintf("%dx%d", stats.Width, stats.Height)})
	table.Append([]string{"Generation", fmt.Sprintf("%d", stats.Generation)})
	table.Append([]string{"Samples", fmt.Sprintf("%d", stats.CurrentSamples)})
	table.Append([]string{"Frames merged", fmt.Sprintf("%d", stats.FramesMerged)})
	table.Append([]string{"Frames pending", fmt.Sprintf("%d", stats.Pending)})
	table.Append([]string{"Density min/avg/max", fmt.Sprintf("%d / %.1f / %d", stats.MinDensity, stats.AverageDensity, stats.MaxDensity)})
	table.Append([]string{"Dropped (dirty)", fmt.Sprintf("%d", stats.DroppedDirty)})
	table.Append([]string{"Dropped (stale)", fmt.Sprintf("%d", stats.DroppedStale)})
	table.Append([]string{"Dropped (size)", fmt.Sprintf("%d", stats.DroppedSize)})
	table.Append([]string{"Dropped (backlog)", fmt.Sprintf("%d", stats.DroppedBacklog)})
	table.Append([]string{"Workers spawned/joined", fmt.Sprintf("%d / %d", stats.WorkersSpawned, stats.WorkersJoined)})
	table.Render()

	if len(stats.Workers) == 0 {
		return buf.String()
	}

	workers := tablewriter.NewWriter(&buf)
	workers.SetAutoFormatHeaders(false)
	workers.SetAutoWrapText(false)
	workers.SetHeader([]string{"Worker", "Alive", "Delivered", "Refused", "Cancelled", "Resized", "Too few px", "Waits"})
	var delivered, cancelled int64
	for _, w := range stats.Workers {
		workers.Append([]string{
			fmt.Sprintf("%d", w.ID),
			fmt.Sprintf("%t", w.Alive),
			fmt.Sprintf("%d", w.Delivered),
			fmt.Sprintf("%d", w.Refused),
			fmt.Sprintf("%d", w.Cancelled),
			fmt.Sprintf("%d", w.Resized),
			fmt.Sprintf("%d", w.TooFewPixels),
			fmt.Sprintf("%d", w.Waits),
		})
		delivered += w.Delivered
		cancelled += w.Cancelled
	}
	workers.SetFooter([]string{"", "TOTAL", fmt.Sprintf("%d", delivered), "", fmt.Sprintf("%d", cancelled), "", "", ""})
	workers.Render()

	return buf.String()
}
