package cmd

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/faceforge/faceforge/internal/detect"
	"github.com/faceforge/faceforge/internal/pipeline"
	"github.com/faceforge/faceforge/internal/types"
	"github.com/faceforge/faceforge/internal/worker"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Composite an identity overlay onto every frame in a directory",
	Long: `Batch composites one identity onto all PNG/JPEG frames in a directory
using a parallel worker pool, writing results under the output directory
with the same file names.`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().String("input-dir", "", "Directory of input frames (PNG or JPEG)")
	batchCmd.Flags().String("output-dir", "output", "Directory for composited PNGs")
	batchCmd.Flags().String("identity", "", "Target identity id")
	batchCmd.Flags().String("expression", "", "Expression id (default: identity's preferred)")
	batchCmd.Flags().String("quality", types.QualityMedium, "Quality level (low, medium, high)")
	batchCmd.Flags().String("blend", types.BlendNormal, "Blend mode (normal, multiply, overlay)")
	batchCmd.Flags().Float64("feather", 0.3, "Mask feather amount (0 hard edge, 1 full falloff)")
	batchCmd.Flags().Bool("color-match", true, "Harmonize the composited region's tone")
	batchCmd.Flags().IntP("workers", "w", 0, "Number of parallel workers (default: number of CPUs)")
	batchCmd.Flags().Bool("progress", true, "Show progress bar")
	batchCmd.Flags().Bool("allow-failures", false, "Exit zero even if some frames fail")
	batchCmd.Flags().Int("overlay-size", 256, "Procedural overlay size in pixels")
	batchCmd.Flags().Int64("seed", 1337, "Deterministic seed for procedural overlays")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"batch.input_dir", "input-dir"},
		{"batch.output_dir", "output-dir"},
		{"batch.identity", "identity"},
		{"batch.expression", "expression"},
		{"batch.quality", "quality"},
		{"batch.blend", "blend"},
		{"batch.feather", "feather"},
		{"batch.color_match", "color-match"},
		{"batch.workers", "workers"},
		{"batch.progress", "progress"},
		{"batch.allow_failures", "allow-failures"},
		{"batch.overlay_size", "overlay-size"},
		{"batch.seed", "seed"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, batchCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

// frameRunner composites one frame per task. The overlay is resolved once
// and shared read-only across workers.
type frameRunner struct {
	proc    *pipeline.Processor
	overlay image.Image
	cfg     types.BlendConfig
}

func (r *frameRunner) Run(ctx context.Context, task worker.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	frame, err := readImage(task.InputPath)
	if err != nil {
		return err
	}

	detection, err := detect.Detect(frame)
	if err != nil {
		return err
	}

	result := r.proc.Process(frame, detection.Region, detection.Landmarks, r.overlay, r.cfg)
	if !result.Success {
		return result.Err
	}

	return savePNG(task.OutputPath, result.Image)
}

func runBatch(cmd *cobra.Command, args []string) error {
	inputDir := viper.GetString("batch.input_dir")
	outputDir := viper.GetString("batch.output_dir")
	identityID := viper.GetString("batch.identity")
	expressionID := viper.GetString("batch.expression")
	workers := viper.GetInt("batch.workers")
	showProgress := viper.GetBool("batch.progress")
	allowFailures := viper.GetBool("batch.allow_failures")
	overlaySize := viper.GetInt("batch.overlay_size")
	seed := viper.GetInt64("batch.seed")

	cfg := types.BlendConfig{
		Quality:       viper.GetString("batch.quality"),
		BlendMode:     viper.GetString("batch.blend"),
		FeatherAmount: viper.GetFloat64("batch.feather"),
		ColorMatch:    viper.GetBool("batch.color_match"),
	}

	if logger == nil {
		initLogging()
	}

	if inputDir == "" {
		return fmt.Errorf("--input-dir is required")
	}
	if identityID == "" {
		return fmt.Errorf("--identity is required")
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	tasks, err := collectFrameTasks(inputDir, outputDir)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return fmt.Errorf("no PNG or JPEG frames found in %s", inputDir)
	}

	store, err := openGallery()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	overlay, err := resolveOverlay(store, identityID, expressionID, "", overlaySize, seed)
	if err != nil {
		return fmt.Errorf("failed to resolve overlay: %w", err)
	}

	logger.Info("Starting batch composite",
		"input_dir", inputDir,
		"output_dir", outputDir,
		"identity", identityID,
		"frames", len(tasks),
		"workers", workers,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Warn("Interrupt received, cancelling batch")
		cancel()
	}()

	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.NewOptions(len(tasks),
			progressbar.OptionSetDescription("Compositing"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
		)
	}

	pool := worker.New(worker.Config{
		Workers: workers,
		Runner: &frameRunner{
			proc:    pipeline.NewProcessor(logger),
			overlay: overlay,
			cfg:     cfg,
		},
		OnProgress: func(completed, total, failed int) {
			if bar != nil {
				_ = bar.Set(completed)
			}
		},
	})

	results := pool.Run(ctx, tasks)
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}

	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
			logger.Error("Frame failed", "input", result.Task.InputPath, "error", result.Err)
		}
	}

	logger.Info("Batch complete",
		"frames", len(tasks),
		"failed", failed,
		"output_dir", outputDir,
	)

	if failed > 0 && !allowFailures {
		return fmt.Errorf("%d of %d frames failed", failed, len(tasks))
	}
	return nil
}

// collectFrameTasks pairs each PNG/JPEG in inputDir with its output path.
// Outputs are always PNG regardless of the input format.
func collectFrameTasks(inputDir, outputDir string) ([]worker.Task, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input dir: %w", err)
	}

	var tasks []worker.Task
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch strings.ToLower(filepath.Ext(name)) {
		case ".png", ".jpg", ".jpeg":
		default:
			continue
		}

		base := strings.TrimSuffix(name, filepath.Ext(name))
		tasks = append(tasks, worker.Task{
			InputPath:  filepath.Join(inputDir, name),
			OutputPath: filepath.Join(outputDir, base+".png"),
		})
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].InputPath < tasks[j].InputPath })
	return tasks, nil
}
