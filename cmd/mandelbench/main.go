// Command mandelbench renders the Mandelbrot set once per execution
// strategy and reports how long the escape-iteration pass took on each.
//
// Three renders run: single-threaded CPU, multi-threaded CPU, and GPU
// device offload. Each strategy tints its output a different primary color
// so the images identify themselves. If no usable GPU is present the
// device render still completes, producing a black image and a diagnostic
// on stderr.
//
// Output:
//
//	mandel_sequential.png    — single-threaded CPU render
//	mandel_parallelmap.png   — multi-threaded CPU render
//	mandel_deviceoffload.png — GPU render (black on device failure)
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/mandelbench"
)

var strategies = []mandelbench.Strategy{
	mandelbench.Sequential,
	mandelbench.ParallelMap,
	mandelbench.DeviceOffload,
}

func main() {
	var (
		size    = flag.Int("size", 800, "viewport edge length in pixels")
		viewArg = flag.String("view", "entire", "region to render: entire or spike")
		outDir  = flag.String("out", ".", "directory for the output PNGs")
		workers = flag.Int("workers", 0, "workers for the parallel strategy (0 = GOMAXPROCS)")
		runs    = flag.Int("runs", 1, "renders per strategy; the last one is reported")
		verbose = flag.Bool("v", false, "debug logging to stderr")
	)
	flag.Parse()

	if *verbose {
		mandelbench.SetLogger(slog.New(slog.NewTextHandler(os.Stderr,
			&slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	view, err := parseView(*viewArg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}
	if *runs < 1 {
		*runs = 1
	}

	fmt.Printf("Mandelbrot benchmark: %dx%d px, %s view\n\n", *size, *size, view)

	// One session per strategy, all completions funneled through a single
	// channel so progress can be reported as the renders finish.
	total := len(strategies) * *runs
	completed := make(chan *mandelbench.Outcome, total)
	sessions := make([]*mandelbench.Session, 0, len(strategies))
	for _, strat := range strategies {
		s, err := mandelbench.NewSession(strat, *size,
			mandelbench.WithWorkers(*workers),
			mandelbench.WithOnComplete(func(o *mandelbench.Outcome) {
				completed <- o
			}),
			mandelbench.WithOnDiagnostic(func(d mandelbench.BackendDiagnostic) {
				fmt.Fprintf(os.Stderr, "device offload failed: backend=%s code=%d: %s\n",
					d.Backend, d.Code, d.Message)
				if d.Log != "" {
					fmt.Fprintln(os.Stderr, d.Log)
				}
			}),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", strat, err)
			os.Exit(1)
		}
		defer s.Close()
		sessions = append(sessions, s)
	}

	for _, s := range sessions {
		for i := 0; i < *runs; i++ {
			s.Render(view)
		}
	}
	for i := 0; i < total; i++ {
		<-completed
		fmt.Printf("\rrendered %d/%d", i+1, total)
	}
	fmt.Print("\r              \r")

	failed := false
	for _, s := range sessions {
		if err := report(s, *size, *outDir); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", s.Strategy(), err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func parseView(s string) (mandelbench.View, error) {
	switch strings.ToLower(s) {
	case "entire", "entireset":
		return mandelbench.ViewEntireSet, nil
	case "spike", "leftspike":
		return mandelbench.ViewLeftSpike, nil
	}
	return 0, fmt.Errorf("unknown view %q (want entire or spike)", s)
}

// report prints the session's last outcome and writes the labeled PNG.
func report(s *mandelbench.Session, size int, outDir string) error {
	out := s.Outcome()
	if out == nil {
		return fmt.Errorf("no outcome published")
	}

	ns := out.Elapsed.Nanoseconds()
	fmt.Printf("%s\n  %d ns   %.4f ms   %.4f s\n\n",
		out.Label, ns, float64(ns)/1e6, out.Elapsed.Seconds())

	img := out.Image.ToImage()
	drawLabel(img, fmt.Sprintf("%s\n%dx%d px\n%d ns\n%.4f ms\n%.4f s",
		out.Label, size, size, ns, float64(ns)/1e6, out.Elapsed.Seconds()))

	name := fmt.Sprintf("mandel_%s.png", strings.ToLower(out.Strategy.String()))
	return savePNG(img, filepath.Join(outDir, name))
}
