// Command aseview plays an Aseprite file in a window.
//
// Usage:
//
//	aseview -config viewer.yml
//	aseview -file hero.aseprite
//
// Space pauses, Tab cycles through the tags, and the arrow keys step through
// frames while paused. With watch enabled the sprite is reloaded whenever it
// is saved.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/retroblast-engine/aseanim/asset"
	"github.com/retroblast-engine/aseanim/ebitensprite"
	"github.com/retroblast-engine/aseanim/internal/viewer"
	"github.com/retroblast-engine/aseanim/internal/watch"
)

var (
	configPath = flag.String("config", "", "Viewer configuration file.")
	filePath   = flag.String("file", "", "Sprite to show, overrides the configured file.")
	verbose    = flag.Bool("verbose", false, "Verbose logging.")
)

var background = color.RGBA{50, 50, 50, 255}

// Game shows one sprite.
type Game struct {
	config  *viewer.Config
	lib     *asset.Library
	sprite  *ebitensprite.Sprite
	tags    []string // "" first, then the file's tags
	watcher *watch.Watcher
	path    string // Sprite path on disk, matched against watch events
}

func NewGame(config *viewer.Config) (*Game, error) {
	opts, err := config.Atlas.Options()
	if err != nil {
		return nil, err
	}

	g := &Game{
		config: config,
		lib:    asset.NewLibrary(os.DirFS(config.Dir), log.Default(), opts...),
		path:   filepath.Clean(filepath.Join(config.Dir, config.File)),
	}

	a, err := g.lib.Get(filepath.ToSlash(config.File))
	if err != nil {
		return nil, err
	}
	g.show(a, config.Tag)

	if config.Watch {
		g.watcher, err = watch.New(filepath.Dir(g.path))
		if err != nil {
			return nil, fmt.Errorf("watch: %w", err)
		}
	}
	return g, nil
}

func (g *Game) show(a *asset.Asset, tag string) {
	g.sprite = ebitensprite.NewSheet(a).NewSprite(tag, log.Default())
	g.tags = append([]string{""}, a.Info.TagNames()...)
}

func (g *Game) Close() error {
	if g.watcher == nil {
		return nil
	}
	return g.watcher.Close()
}

// reload drains pending watch events and swaps in the new sprite. A sprite
// that fails to load keeps the previous one on screen.
func (g *Game) reload() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			if filepath.Clean(name) != g.path {
				continue
			}
			a, err := g.lib.Reload(filepath.ToSlash(g.config.File))
			if err != nil {
				log.Printf("aseview: reload %s: %v", g.config.File, err)
				continue
			}
			g.show(a, g.sprite.Player().Tag())
			log.Printf("aseview: reloaded %s", g.config.File)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			log.Printf("aseview: watch: %v", err)
		default:
			return
		}
	}
}

func (g *Game) Update() error {
	g.reload()

	p := g.sprite.Player()
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		p.Toggle()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		next := 0
		for i, tag := range g.tags {
			if tag == p.Tag() {
				next = (i + 1) % len(g.tags)
			}
		}
		p.SetTag(g.tags[next])
		if *verbose {
			log.Printf("aseview: tag %q", g.tags[next])
		}
	}
	if !p.Playing() {
		if inpututil.IsKeyJustPressed(ebiten.KeyRight) {
			p.SetFrame(p.Frame() + 1)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyLeft) {
			p.SetFrame(p.Frame() - 1)
		}
	}

	g.sprite.Update(ebitensprite.Tick())
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	img := g.sprite.Image()
	size := img.Bounds().Size()
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	scale := g.config.Scale

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate((float64(sw)-float64(size.X)*scale)/2, (float64(sh)-float64(size.Y)*scale)/2)
	g.sprite.Draw(screen, op)

	p := g.sprite.Player()
	tag := p.Tag()
	if tag == "" {
		tag = "(all)"
	}
	state := "playing"
	if !p.Playing() {
		state = "paused"
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf("%s\ntag: %s\nframe: %d (%v)\n%s  TPS: %.1f",
		g.config.File, tag, p.Frame(), p.FrameDuration(), state, ebiten.ActualTPS()))
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func main() {
	flag.Parse()

	if *verbose {
		log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	}

	config, err := viewer.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("aseview: %v", err)
	}
	if *filePath != "" {
		config.Dir, config.File = filepath.Split(*filePath)
		if config.Dir == "" {
			config.Dir = "."
		}
	}
	if err := config.Validate(); err != nil {
		log.Fatalf("aseview: %v", err)
	}

	game, err := NewGame(config)
	if err != nil {
		log.Fatalf("aseview: %v", err)
	}
	defer game.Close()

	ebiten.SetWindowSize(config.Window.Width, config.Window.Height)
	ebiten.SetWindowTitle(config.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(config.TPS)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
