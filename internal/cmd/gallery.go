package cmd

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/faceforge/faceforge/internal/gallery"
	"github.com/faceforge/faceforge/internal/identity"
)

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Manage the overlay gallery store",
}

var galleryGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate procedural overlays for every identity and expression",
	RunE:  runGalleryGenerate,
}

var galleryImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import an overlay PNG into the store",
	RunE:  runGalleryImport,
}

var galleryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List overlays in the store",
	RunE:  runGalleryList,
}

func init() {
	rootCmd.AddCommand(galleryCmd)
	galleryCmd.AddCommand(galleryGenerateCmd)
	galleryCmd.AddCommand(galleryImportCmd)
	galleryCmd.AddCommand(galleryListCmd)

	galleryGenerateCmd.Flags().Int("size", 256, "Overlay size in pixels")
	galleryGenerateCmd.Flags().Int64("seed", 1337, "Deterministic generation seed")

	galleryImportCmd.Flags().String("identity", "", "Identity id for the overlay")
	galleryImportCmd.Flags().String("expression", gallery.ExpressionNeutral, "Expression id for the overlay")
	galleryImportCmd.Flags().String("file", "", "Overlay PNG file to import")

	bindFlags := []struct {
		key  string
		cmd  *cobra.Command
		flag string
	}{
		{"gallery.size", galleryGenerateCmd, "size"},
		{"gallery.seed", galleryGenerateCmd, "seed"},
		{"gallery.identity", galleryImportCmd, "identity"},
		{"gallery.expression", galleryImportCmd, "expression"},
		{"gallery.file", galleryImportCmd, "file"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, bf.cmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

// requireGallery opens the store configured by --gallery, which gallery
// subcommands cannot do without.
func requireGallery() (*gallery.Store, error) {
	store, err := openGallery()
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("--gallery is required")
	}
	return store, nil
}

func runGalleryGenerate(cmd *cobra.Command, args []string) error {
	size := viper.GetInt("gallery.size")
	seed := viper.GetInt64("gallery.seed")

	if logger == nil {
		initLogging()
	}

	store, err := requireGallery()
	if err != nil {
		return err
	}
	defer store.Close()

	expressions := []string{
		gallery.ExpressionNeutral,
		gallery.ExpressionSmile,
		gallery.ExpressionOpen,
	}

	ids := identity.IDs()
	sort.Strings(ids)

	count := 0
	for _, id := range ids {
		style, _ := identity.Lookup(id)
		for _, expression := range expressions {
			img, err := gallery.Generate(style, expression, size, seed)
			if err != nil {
				return fmt.Errorf("failed to generate %s/%s: %w", id, expression, err)
			}

			var buf bytes.Buffer
			if err := png.Encode(&buf, img); err != nil {
				return fmt.Errorf("failed to encode %s/%s: %w", id, expression, err)
			}
			if err := store.Put(id, expression, buf.Bytes()); err != nil {
				return err
			}
			count++
		}
	}

	logger.Info("Gallery generated",
		"overlays", count,
		"identities", len(ids),
		"size", size,
		"seed", seed,
	)
	return nil
}

func runGalleryImport(cmd *cobra.Command, args []string) error {
	identityID := viper.GetString("gallery.identity")
	expressionID := viper.GetString("gallery.expression")
	file := viper.GetString("gallery.file")

	if logger == nil {
		initLogging()
	}

	if identityID == "" || file == "" {
		return fmt.Errorf("--identity and --file are required")
	}

	// Decode first so corrupt files are rejected before they hit the store.
	img, err := gallery.LoadOverlay(file)
	if err != nil {
		return err
	}

	store, err := requireGallery()
	if err != nil {
		return err
	}
	defer store.Close()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to re-encode overlay: %w", err)
	}
	if err := store.Put(identityID, expressionID, buf.Bytes()); err != nil {
		return err
	}

	logger.Info("Overlay imported",
		"identity", identityID,
		"expression", expressionID,
		"file", file,
		"bytes", buf.Len(),
	)
	return nil
}

func runGalleryList(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	store, err := requireGallery()
	if err != nil {
		return err
	}
	defer store.Close()

	keys, err := store.Keys()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		fmt.Fprintln(os.Stdout, "gallery is empty")
		return nil
	}

	for _, key := range keys {
		fmt.Fprintf(os.Stdout, "%s/%s\n", key.IdentityID, key.ExpressionID)
	}
	return nil
}
