package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/faceforge/faceforge/internal/detect"
	"github.com/faceforge/faceforge/internal/identity"
	"github.com/faceforge/faceforge/internal/pipeline"
	"github.com/faceforge/faceforge/internal/types"
)

var compositeCmd = &cobra.Command{
	Use:   "composite",
	Short: "Composite an identity overlay onto a single frame",
	Long: `Composite detects the face region in the input frame, resolves the
overlay for the requested identity, and writes the composited PNG.`,
	RunE: runComposite,
}

func init() {
	rootCmd.AddCommand(compositeCmd)

	compositeCmd.Flags().StringP("input", "i", "", "Input frame (PNG or JPEG)")
	compositeCmd.Flags().StringP("output", "o", "", "Output PNG path")
	compositeCmd.Flags().String("overlay", "", "Overlay PNG path (overrides gallery/procedural)")
	compositeCmd.Flags().String("identity", "", "Target identity id (einstein, monalisa, cleopatra, shakespeare, frida)")
	compositeCmd.Flags().String("expression", "", "Expression id (neutral, smile, open; default: identity's preferred)")
	compositeCmd.Flags().String("quality", types.QualityMedium, "Quality level (low, medium, high)")
	compositeCmd.Flags().String("blend", types.BlendNormal, "Blend mode (normal, multiply, overlay)")
	compositeCmd.Flags().Float64("feather", 0.3, "Mask feather amount (0 hard edge, 1 full falloff)")
	compositeCmd.Flags().Bool("color-match", true, "Harmonize the composited region's tone")
	compositeCmd.Flags().Int("overlay-size", 256, "Procedural overlay size in pixels")
	compositeCmd.Flags().Int64("seed", 1337, "Deterministic seed for procedural overlays")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"composite.input", "input"},
		{"composite.output", "output"},
		{"composite.overlay", "overlay"},
		{"composite.identity", "identity"},
		{"composite.expression", "expression"},
		{"composite.quality", "quality"},
		{"composite.blend", "blend"},
		{"composite.feather", "feather"},
		{"composite.color_match", "color-match"},
		{"composite.overlay_size", "overlay-size"},
		{"composite.seed", "seed"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, compositeCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runComposite(cmd *cobra.Command, args []string) error {
	input := viper.GetString("composite.input")
	output := viper.GetString("composite.output")
	overlayPath := viper.GetString("composite.overlay")
	identityID := viper.GetString("composite.identity")
	expressionID := viper.GetString("composite.expression")
	overlaySize := viper.GetInt("composite.overlay_size")
	seed := viper.GetInt64("composite.seed")

	cfg := types.BlendConfig{
		Quality:       viper.GetString("composite.quality"),
		BlendMode:     viper.GetString("composite.blend"),
		FeatherAmount: viper.GetFloat64("composite.feather"),
		ColorMatch:    viper.GetBool("composite.color_match"),
	}

	if logger == nil {
		initLogging()
	}

	if input == "" || output == "" {
		return fmt.Errorf("--input and --output are required")
	}
	if identityID == "" && overlayPath == "" {
		return fmt.Errorf("--identity is required (or provide --overlay)")
	}
	if identityID != "" {
		if _, known := identity.Lookup(identityID); !known {
			logger.Warn("unknown identity, using neutral style", "identity", identityID)
		}
	}

	frame, err := readImage(input)
	if err != nil {
		return err
	}

	detection, err := detect.Detect(frame)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	store, err := openGallery()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	overlay, err := resolveOverlay(store, identityID, expressionID, overlayPath, overlaySize, seed)
	if err != nil {
		return fmt.Errorf("failed to resolve overlay: %w", err)
	}

	proc := pipeline.NewProcessor(logger)
	result := proc.Process(frame, detection.Region, detection.Landmarks, overlay, cfg)
	if !result.Success {
		return fmt.Errorf("composite failed: %w", result.Err)
	}

	if err := savePNG(output, result.Image); err != nil {
		return err
	}

	logger.Info("Frame composited",
		"input", input,
		"output", output,
		"identity", identityID,
		"region", detection.Region.Rect().String(),
		"confidence", detection.Confidence,
		"elapsed", result.ProcessingTime,
	)
	return nil
}
