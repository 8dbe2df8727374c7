package cmd

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
)

var renderFlags struct {
	viewportFlags
	duration time.Duration
	samples  float64
	interval time.Duration
	out      string
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a scene headlessly and save it as PNG",
	Long: `Render a scene progressively for a fixed duration, or until the average
number of samples per pixel reaches --samples, then write the image to a PNG file
and print viewport statistics.`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderFlags.register(renderCmd)
	flags := renderCmd.Flags()
	flags.DurationVar(&renderFlags.duration, "duration", 10*time.Second, "Maximum render time")
	flags.Float64Var(&renderFlags.samples, "samples", 0, "Stop once pixels average this many samples, 0 renders for the full duration")
	flags.DurationVar(&renderFlags.interval, "interval", 2*time.Millisecond, "Delay between frame merges")
	flags.StringVar(&renderFlags.out, "out", "", "Output file, defaults to output/<scene>/render_<timestamp>.png")
}

func runRender(cmd *cobra.Command, args []string) error {
	viewport, err := renderFlags.newViewport(nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), renderFlags.duration)
	defer cancel()

	startTime := time.Now()
	done := make(chan struct{})
	go func() {
		defer close(done)
		viewport.Run(ctx, renderFlags.interval)
	}()

	waitForSamples(ctx, cancel, viewport, renderFlags.samples)
	<-done

	stats := viewport.Stats()
	logger.Noticef("Render finished in %v: %.1f samples per pixel", time.Since(startTime).Round(time.Millisecond), stats.AverageDensity)

	filename := renderFlags.out
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = filepath.Join("output", renderFlags.scene, fmt.Sprintf("render_%s.png", timestamp))
	}
	if err := savePNG(filename, viewport); err != nil {
		return err
	}
	logger.Noticef("Render saved as %s", filename)

	fmt.Fprint(cmd.OutOrStdout(), renderer.FormatStats(stats))
	return nil
}

// waitForSamples logs progress every second and cancels once the average
// density reaches target. It returns when ctx is done.
func waitForSamples(ctx context.Context, cancel context.CancelFunc, viewport *renderer.Viewport, target float64) {
	progress := time.NewTicker(time.Second)
	defer progress.Stop()
	check := time.NewTicker(10 * time.Millisecond)
	defer check.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-progress.C:
			stats := viewport.Stats()
			logger.Noticef("%.1f samples per pixel, %d frames merged, %d dropped",
				stats.AverageDensity, stats.FramesMerged, stats.FramesDropped())
		case <-check.C:
			if target > 0 && viewport.Stats().AverageDensity >= target {
				cancel()
			}
		}
	}
}

func savePNG(filename string, viewport *renderer.Viewport) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, viewport.Image()); err != nil {
		return fmt.Errorf("saving PNG: %w", err)
	}
	return nil
}
