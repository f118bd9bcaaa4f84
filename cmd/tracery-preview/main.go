// Command tracery-preview is a persistent stdin/stdout process for
// interactive segmentation preview. It loads one frame at startup, prints
// READY, then answers line-JSON point queries until QUIT or stdin closes:
//
//	{"x": 320, "y": 240}
//	{"bbox": [x1,y1,x2,y2], "polygon": [[x,y],...], "score": 0.92, "centroid": [cx,cy]}
//
// When a learned-model sidecar is configured and comes up it answers the
// queries; otherwise the deterministic flood-fill segmenter does.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/supertracery/tracery-go/tracery"
)

func main() {
	modelCommand := flag.String("model", "", "learned-model sidecar command (optional)")
	flag.Parse()

	if flag.NArg() < 1 {
		fail("No frame path provided")
	}
	framePath := flag.Arg(0)

	frame, err := tracery.LoadFrame(framePath, 0)
	if err != nil {
		fail(err.Error())
	}

	infoLog := log.New(os.Stdout, "INFO:", 0)

	var segmenter tracery.PointSegmenter = tracery.NewFallbackSource(nil)
	if *modelCommand != "" {
		model := tracery.NewModelSource(*modelCommand, nil, infoLog)
		if model.Available() {
			segmenter = model
			defer model.Close()
		}
	}

	fmt.Println("READY")

	server := tracery.NewPreviewServer(frame, segmenter)
	if err := server.Serve(os.Stdin, os.Stdout); err != nil {
		fail(err.Error())
	}
}

func fail(msg string) {
	fmt.Printf("ERROR:%s\n", msg)
	os.Exit(1)
}
