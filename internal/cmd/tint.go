package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/faceforge/faceforge/internal/identity"
	"github.com/faceforge/faceforge/internal/pipeline"
)

var tintCmd = &cobra.Command{
	Use:   "tint",
	Short: "Apply an identity's whole-frame tint to a frame",
	Long: `Tint is the simplified stylization path: the identity's fixed RGB
tint applied to every pixel, with no detection or compositing.`,
	RunE: runTint,
}

func init() {
	rootCmd.AddCommand(tintCmd)

	tintCmd.Flags().StringP("input", "i", "", "Input frame (PNG or JPEG)")
	tintCmd.Flags().StringP("output", "o", "", "Output PNG path")
	tintCmd.Flags().String("identity", "", "Target identity id")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"tint.input", "input"},
		{"tint.output", "output"},
		{"tint.identity", "identity"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, tintCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runTint(cmd *cobra.Command, args []string) error {
	input := viper.GetString("tint.input")
	output := viper.GetString("tint.output")
	identityID := viper.GetString("tint.identity")

	if logger == nil {
		initLogging()
	}

	if input == "" || output == "" || identityID == "" {
		return fmt.Errorf("--input, --output and --identity are required")
	}
	if _, known := identity.Lookup(identityID); !known {
		logger.Warn("unknown identity, tint is a no-op", "identity", identityID)
	}

	frame, err := readImage(input)
	if err != nil {
		return err
	}

	proc := pipeline.NewProcessor(logger)
	result := proc.Tint(frame, identityID)
	if !result.Success {
		return fmt.Errorf("tint failed: %w", result.Err)
	}

	if err := savePNG(output, result.Image); err != nil {
		return err
	}

	logger.Info("Frame tinted",
		"input", input,
		"output", output,
		"identity", identityID,
		"elapsed", result.ProcessingTime,
	)
	return nil
}
