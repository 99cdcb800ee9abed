package cmd

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/faceforge/faceforge/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the compositing pipeline over HTTP",
	Long: `Serve exposes the pipeline as an HTTP API: POST a frame to
/composite or /tint and get the processed PNG back.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address (host:port)")
	serveCmd.Flags().Int("max-concurrent", runtime.NumCPU(), "Max concurrent composites (default: number of CPUs)")
	serveCmd.Flags().Int("overlay-size", 256, "Procedural overlay size in pixels")
	serveCmd.Flags().Int64("seed", 1337, "Deterministic seed for procedural overlays")

	mustBind := func(key string, name string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}

	mustBind("serve.addr", "addr")
	mustBind("serve.max_concurrent", "max-concurrent")
	mustBind("serve.overlay_size", "overlay-size")
	mustBind("serve.seed", "seed")
}

func runServe(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	addr := viper.GetString("serve.addr")
	maxConcurrent := viper.GetInt("serve.max_concurrent")
	overlaySize := viper.GetInt("serve.overlay_size")
	seed := viper.GetInt64("serve.seed")
	galleryPath := viper.GetString("gallery_path")

	store, err := openGallery()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	srv := server.New(server.Config{
		OverlaySize:   overlaySize,
		Seed:          seed,
		MaxConcurrent: maxConcurrent,
	}, store, logger)

	logger.Info("composite server listening",
		"addr", addr,
		"gallery", galleryPath,
		"max_concurrent", maxConcurrent,
		"overlay_size", overlaySize,
	)

	httpSrv := &http.Server{Addr: addr, Handler: srv.Handler(), ReadHeaderTimeout: 5 * time.Second}
	return httpSrv.ListenAndServe()
}
