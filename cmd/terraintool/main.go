// terraintool is a CLI utility for inspecting heightmaps and content packs.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/vandals/internal/content"
	"github.com/Faultbox/vandals/internal/terrain"
	"github.com/Faultbox/vandals/pkg/heightmap"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "bake":
		cmdBake(args)
	case "probe":
		cmdProbe(args)
	case "check":
		cmdCheck(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`terraintool - cylinder terrain utility

Usage:
  terraintool <command> [options]

Commands:
  info <image>                 Show heightmap size, elevation stats and derived length
  bake <image> <out.obj>       Build the terrain mesh and write it as OBJ
  probe <image> x y z          Show the texel, surface radius and resistance at a point
  check <content dir>          Load and validate a content pack

Map options (info, bake, probe):
  --inner R     inner radius (default 10)
  --outer R     outer radius (default 15)
  --length L    axial length (default: derived from the image aspect)
  --density D   terrain density (default 1)
  --channel C   alpha, red, green, blue or luma (default alpha)
  --wrap M      vertical wrap: clamp or repeat (default clamp)

Examples:
  terraintool info maps/ring.png --channel red
  terraintool bake maps/ring.png ring.obj --inner 10 --outer 15
  terraintool probe maps/ring.png 0 9 0
  terraintool check ./content`)
}

type mapFlags struct {
	inner, outer, length, density float64
	channel, wrap                 string
}

func newMapFlags(name string) (*flag.FlagSet, *mapFlags) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	mf := &mapFlags{}
	fs.Float64Var(&mf.inner, "inner", 10, "Inner radius")
	fs.Float64Var(&mf.outer, "outer", 15, "Outer radius")
	fs.Float64Var(&mf.length, "length", 0, "Axial length (0 = derive)")
	fs.Float64Var(&mf.density, "density", 1, "Terrain density")
	fs.StringVar(&mf.channel, "channel", "alpha", "Elevation channel")
	fs.StringVar(&mf.wrap, "wrap", "clamp", "Vertical wrap mode")
	return fs, mf
}

// parseInterleaved accepts flags before, between and after positionals.
func parseInterleaved(fs *flag.FlagSet, args []string) []string {
	var positional []string
	for {
		fs.Parse(args)
		args = fs.Args()
		if len(args) == 0 {
			return positional
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func (mf *mapFlags) params() terrain.MapParams {
	return terrain.MapParams{
		RadiusInner: float32(mf.inner),
		RadiusOuter: float32(mf.outer),
		Length:      float32(mf.length),
		Density:     float32(mf.density),
	}
}

func (mf *mapFlags) load(path string) *heightmap.HeightMap {
	ch, err := heightmap.ParseChannel(mf.channel)
	if err != nil {
		fatal(err)
	}
	wrap, err := heightmap.ParseWrapMode(mf.wrap)
	if err != nil {
		fatal(err)
	}
	hm, err := heightmap.Load(path, ch)
	if err != nil {
		fatal(err)
	}
	return hm.WithWrap(wrap)
}

func (mf *mapFlags) body(path string) *terrain.Body {
	b, err := terrain.NewBody(mf.params(), mf.load(path))
	if err != nil {
		fatal(err)
	}
	return b
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func cmdInfo(args []string) {
	fs, mf := newMapFlags("info")
	pos := parseInterleaved(fs, args)
	if len(pos) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: terraintool info <image> [map options]")
		os.Exit(1)
	}

	b := mf.body(pos[0])
	hm := b.HeightMap
	stats := hm.Stats()

	fmt.Printf("Image:    %s\n", pos[0])
	fmt.Printf("Size:     %dx%d (channel %s, wrap %s)\n", hm.Width(), hm.Height(), mf.channel, hm.Wrap())
	fmt.Printf("Height:   min %d, max %d, mean %.2f\n", stats.Min, stats.Max, stats.Mean)
	fmt.Printf("Radius:   %.3f .. %.3f (avg %.3f)\n", b.Params.RadiusInner, b.Params.RadiusOuter, b.Params.AverageRadius())
	fmt.Printf("Surface:  %.3f .. %.3f\n", b.Params.RadiusAt(stats.Min), b.Params.RadiusAt(stats.Max))
	fmt.Printf("Length:   %.3f\n", b.Params.Length)
	fmt.Printf("Mass:     %.1f\n", b.Mass())
}

func cmdBake(args []string) {
	fs, mf := newMapFlags("bake")
	pos := parseInterleaved(fs, args)
	if len(pos) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: terraintool bake <image> <out.obj> [map options]")
		os.Exit(1)
	}

	b := mf.body(pos[0])
	mesh, err := b.Mesh()
	if err != nil {
		fatal(err)
	}

	outputPath := pos[1]
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		fatal(err)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		fatal(err)
	}
	if err := mesh.WriteOBJ(f); err != nil {
		f.Close()
		fatal(err)
	}
	if err := f.Close(); err != nil {
		fatal(err)
	}

	fmt.Printf("Baked: %s (%d vertices, %d triangles)\n", outputPath, len(mesh.Vertices), mesh.TriangleCount())
	fmt.Printf("Bounds: %v .. %v\n", mesh.Bounds.Min, mesh.Bounds.Max)
}

func cmdProbe(args []string) {
	fs, mf := newMapFlags("probe")
	pos := parseInterleaved(fs, args)
	if len(pos) < 4 {
		fmt.Fprintln(os.Stderr, "Usage: terraintool probe <image> x y z [map options]")
		os.Exit(1)
	}

	var p mgl32.Vec3
	for i := 0; i < 3; i++ {
		if _, err := fmt.Sscan(pos[i+1], &p[i]); err != nil {
			fatal(fmt.Errorf("coordinate %q: %w", pos[i+1], err))
		}
	}

	b := mf.body(pos[0])
	col, row := b.Texel(p)
	fmt.Printf("Point:      %v\n", p)
	fmt.Printf("Texel:      col %d, row %d (height %d)\n", col, row, b.HeightMap.At(col, row))
	fmt.Printf("Surface:    %.3f\n", b.ExpectedRadius(p))
	fmt.Printf("Resistance: %v\n", b.Resistance(p))
}

func cmdCheck(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: terraintool check <content dir>")
		os.Exit(1)
	}
	if err := checkPack(args[0]); err != nil {
		fatal(err)
	}
	fmt.Println("\nContent OK")
}

func checkPack(dir string) error {
	pack, err := content.LoadDir(dir)
	if err != nil {
		return err
	}
	defer pack.Assets().Close()

	fmt.Printf("Levels: %v\n", pack.LevelIDs())
	fmt.Printf("Cars:   %v\n", pack.CarIDs())

	if err := pack.Validate(); err != nil {
		return fmt.Errorf("content problems:\n%w", err)
	}

	for _, id := range pack.LevelIDs() {
		level, _ := pack.Level(id)
		hm, err := pack.HeightMap(level)
		if err != nil {
			return err
		}
		b, err := terrain.NewBody(level.HeightMap.Params(), hm)
		if err != nil {
			return fmt.Errorf("level %q: %w", id, err)
		}
		fmt.Printf("  %-16s %dx%d  length %.2f  mass %.1f  objects %d\n",
			id, hm.Width(), hm.Height(), b.Params.Length, b.Mass(), len(level.Objects))
	}
	return nil
}
