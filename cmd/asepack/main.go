// Command asepack decodes Aseprite files and packs each one into an atlas.
//
// Every sheet is written either as a PNG atlas next to a YAML manifest in the
// -out directory, or into the bbolt resource file given with -res.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/retroblast-engine/aseanim/aseprite"
	"github.com/retroblast-engine/aseanim/asset"
	"github.com/retroblast-engine/aseanim/atlas"
	"github.com/retroblast-engine/aseanim/store"
	"golang.org/x/sync/errgroup"
)

var (
	outDir       string
	resourcePath string
	tagList      string
	strategyName string
	padding      int
	maxSize      int
	dedupe       bool
	scale        int
	workers      int
	verbose      bool
)

func parseFlags() {
	flag.StringVar(&outDir, "out", ".",
		"Directory to write PNG atlases and YAML manifests to.")
	flag.StringVar(&resourcePath, "res", "",
		"Resource file to store sheets in instead of -out.")
	flag.StringVar(&tagList, "tags", "",
		"Comma-separated resource tags for every sheet (with -res).")
	flag.StringVar(&strategyName, "strategy", atlas.Grid.String(),
		"Packing strategy: grid, strip or skyline.")
	flag.IntVar(&padding, "padding", 0, "Transparent pixels between regions.")
	flag.IntVar(&maxSize, "max-size", atlas.DefaultMaxSize, "Largest atlas side in pixels.")
	flag.BoolVar(&dedupe, "dedupe", false, "Store identical frames once.")
	flag.IntVar(&scale, "scale", 1, "Integer upscale of the atlas.")
	flag.IntVar(&workers, "j", runtime.NumCPU(), "Files decoded in parallel.")
	flag.BoolVar(&verbose, "v", false, "Log the header of every file.")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: asepack [flags] file-or-dir...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
}

func main() {
	parseFlags()
	log.SetFlags(0)

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(flag.Args()); err != nil {
		log.Fatalf("asepack: %v", err)
	}
}

func run(args []string) error {
	strategy, err := atlas.ParseStrategy(strategyName)
	if err != nil {
		return err
	}
	opts := []atlas.Option{
		atlas.WithStrategy(strategy),
		atlas.WithPadding(padding),
		atlas.WithMaxSize(maxSize),
		atlas.WithDedupe(dedupe),
	}

	inputs, err := collectInputs(args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no %s files found", strings.Join(asset.Extensions, " or "))
	}

	var out output
	if resourcePath != "" {
		s, err := store.Open(resourcePath)
		if err != nil {
			return err
		}
		defer s.Close()
		out = &storeOutput{store: s, tags: splitTags(tagList)}
	} else {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return err
		}
		out = &dirOutput{dir: outDir}
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(max(workers, 1))
	for _, path := range inputs {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			return pack(path, out, opts)
		})
	}
	return g.Wait()
}

func pack(path string, out output, opts []atlas.Option) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if verbose {
		if h, err := aseprite.ReadHeader(data); err == nil {
			log.Printf("asepack: %s: %s", path, headerSummary(h))
		}
	}
	a, err := asset.Load(data, opts...)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for _, w := range a.Warnings {
		log.Printf("asepack: %s: %s", path, w)
	}
	if scale > 1 {
		a.Layout = a.Layout.Scale(scale)
	}

	name := sheetName(path)
	if err := out.write(name, a); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	size := a.Layout.Image.Bounds().Size()
	log.Printf("asepack: %s -> %s: %d frames, %d regions, %dx%d",
		path, name, a.Info.FrameCount(), len(a.Layout.Regions), size.X, size.Y)
	return nil
}

// headerSummary describes the canvas and color mode of a file.
func headerSummary(h aseprite.Header) string {
	return fmt.Sprintf("%dx%d %s, %d colors, pixel ratio %s, %d frames",
		h.Width, h.Height, h.ColorDepthDescription(), h.NumberOfColors(), h.PixelRatio(), h.FrameCount)
}

// collectInputs expands directories to the sprite files below them. Files
// named explicitly are kept whatever their extension.
func collectInputs(args []string) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			inputs = append(inputs, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && asset.Supported(path) {
				inputs = append(inputs, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(inputs)
	return inputs, nil
}

// sheetName is the file name of path without its extension.
func sheetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func splitTags(list string) []string {
	var tags []string
	for _, tag := range strings.Split(list, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

type output interface {
	write(name string, a *asset.Asset) error
}

// dirOutput writes <name>.png and <name>.yml.
type dirOutput struct {
	dir string
}

func (o *dirOutput) write(name string, a *asset.Asset) error {
	imageName := name + ".png"

	f, err := os.Create(filepath.Join(o.dir, imageName))
	if err != nil {
		return err
	}
	if err := png.Encode(f, a.Layout.Image); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	manifest, err := a.Manifest(name, imageName).Bytes()
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(o.dir, name+".yml"), manifest, 0644)
}

type storeOutput struct {
	store *store.Store
	tags  []string
}

func (o *storeOutput) write(name string, a *asset.Asset) error {
	return o.store.Put(name, a, o.tags...)
}
