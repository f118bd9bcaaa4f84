// Command tracery runs seed-point object segmentation and tracking over a
// rendered frame sequence. It takes a single JSON configuration argument
// and reports to the host over stdout: INFO: lines for status,
// PROGRESS:n/total during long phases, DONE on success and ERROR:message
// on failure. Results land in <output_dir>/results.json.
package main

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"github.com/supertracery/tracery-go/tracery"
)

func main() {
	if len(os.Args) < 2 {
		fail("No configuration provided. Pass JSON as first argument.")
	}

	cfg, err := tracery.ParseRunConfig([]byte(os.Args[1]))
	if err != nil {
		fail(err.Error())
	}

	infoLog := log.New(os.Stdout, "INFO:", 0)
	infoLog.Printf("tracery starting in '%s' mode", cfg.Mode)

	progress := func(done, total int) {
		fmt.Printf("PROGRESS:%d/%d\n", done, total)
	}

	var model *tracery.ModelSource
	if cfg.ModelCommand != "" {
		model = tracery.NewModelSource(cfg.ModelCommand, progress, infoLog)
		defer model.Close()
	}
	fallback := tracery.NewFallbackSource(progress)
	source := tracery.SelectSource(model, fallback)

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		fail("can't create output dir: " + err.Error())
	}

	switch cfg.Mode {
	case tracery.ModeSegmentOnly:
		runSegmentOnly(cfg, source, infoLog)
	default:
		runSegmentAndTrack(cfg, source, progress, infoLog)
	}
	fmt.Println("DONE")
}

func runSegmentAndTrack(cfg *tracery.RunConfig, source tracery.MaskSource, progress tracery.ProgressFunc, infoLog *log.Logger) {
	pipeline := tracery.NewPipeline(source, cfg)
	pipeline.Progress = progress
	pipeline.Logger = infoLog

	results, err := pipeline.Run()
	if err != nil {
		fail(err.Error())
	}

	outPath := filepath.Join(cfg.OutputDir, "results.json")
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		fail(err.Error())
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		fail("can't write results: " + err.Error())
	}
	infoLog.Printf("Results written to %s", outPath)
}

// runSegmentOnly segments the first frame and saves each object's mask as
// a 0/255 grayscale PNG, for the host's preview overlay.
func runSegmentOnly(cfg *tracery.RunConfig, source tracery.MaskSource, infoLog *log.Logger) {
	paths, err := tracery.DiscoverFrames(cfg.FramesDir)
	if err != nil {
		fail(err.Error())
	}
	first, err := tracery.LoadFrame(paths[0], 0)
	if err != nil {
		fail(err.Error())
	}

	masks, err := source.SegmentFirstFrame(first, cfg.ClickPoints)
	if err != nil {
		fail(err.Error())
	}

	for id, mask := range masks {
		img := image.NewGray(image.Rect(0, 0, mask.W, mask.H))
		for y := 0; y < mask.H; y++ {
			for x := 0; x < mask.W; x++ {
				if mask.At(x, y) != 0 {
					img.SetGray(x, y, color.Gray{Y: 255})
				}
			}
		}
		maskPath := filepath.Join(cfg.OutputDir, fmt.Sprintf("mask_%d.png", id))
		if err := writePNG(maskPath, img); err != nil {
			fail(err.Error())
		}
	}
	infoLog.Printf("Segmentation complete, %d masks saved", len(masks))
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func fail(msg string) {
	fmt.Printf("ERROR:%s\n", msg)
	os.Exit(1)
}
