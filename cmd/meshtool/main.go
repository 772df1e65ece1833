// meshtool is a CLI utility for inspecting meshes and driving the
// image-to-mesh conversion service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"time"

	"github.com/Faultbox/relive/internal/config"
	"github.com/Faultbox/relive/internal/convert"
	"github.com/Faultbox/relive/internal/engine/normalize"
	"github.com/Faultbox/relive/internal/loader"
	"github.com/Faultbox/relive/internal/logger"
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
	case "upload":
		cmdUpload(args)
	case "generate", "gen":
		cmdGenerate(args)
	case "init-config":
		cmdInitConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - mesh inspection and conversion utility

Usage:
  meshtool <command> [options]

Commands:
  info <mesh.obj|url>                       Show parts, materials and bounds
  upload [-prompt text] [-out dir] <image>  Convert an image to a mesh
  generate [-style s] [-out dir] <prompt>   Generate a mesh from a prompt
  init-config [path]                        Write the default config file

Examples:
  meshtool info models/room.obj
  meshtool upload -prompt "a cozy attic" photo.jpg
  meshtool generate -style lowpoly "a red lantern"`)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func setup(debug bool) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fatalf("%v", err)
	}
	level := "warn"
	if debug {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		fatalf("%v", err)
	}
	return cfg
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	debug := fs.Bool("v", false, "Verbose logging")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool info <mesh.obj|url>")
		os.Exit(1)
	}
	cfg := setup(*debug)
	defer logger.Sync()

	lc := loader.DefaultConfig()
	lc.UserAgent = cfg.Loader.UserAgent
	ld := loader.New(lc, logger.Named("loader"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	desc, err := ld.Load(ctx, fs.Arg(0), nil)
	if err != nil {
		fatalf("%v", err)
	}

	fmt.Printf("Mesh:      %s\n", desc.Source)
	if desc.MaterialLib != "" {
		fmt.Printf("Materials: %s\n", desc.MaterialLib)
	}
	fmt.Printf("Parts:     %d\n", len(desc.Parts))
	fmt.Printf("Triangles: %d\n", desc.TriangleCount())

	box := normalize.Bounds(desc)
	if box.Min[0] <= box.Max[0] {
		size := [3]float64{box.Max[0] - box.Min[0], box.Max[1] - box.Min[1], box.Max[2] - box.Min[2]}
		fmt.Printf("Bounds:    [%.3f %.3f %.3f] - [%.3f %.3f %.3f]\n",
			box.Min[0], box.Min[1], box.Min[2], box.Max[0], box.Max[1], box.Max[2])
		fmt.Printf("Size:      %.3f x %.3f x %.3f\n", size[0], size[1], size[2])
	}
	fmt.Println()

	parts := append(desc.Parts[:0:0], desc.Parts...)
	sort.Slice(parts, func(i, j int) bool {
		return parts[i].Geometry.TriangleCount() > parts[j].Geometry.TriangleCount()
	})
	fmt.Println("Parts by size:")
	for _, p := range parts {
		mat := "(default)"
		if p.Material != nil && !p.NeedsDefaultMaterial {
			mat = p.Material.Name
			if p.Material.Texture != nil {
				b := p.Material.Texture.Bounds()
				mat += fmt.Sprintf(" [%dx%d texture]", b.Dx(), b.Dy())
			}
		}
		fmt.Printf("  %-20s %8d tris  %s\n", p.Name, p.Geometry.TriangleCount(), mat)
	}
}

func newClient(cfg *config.Config, service string) *convert.Client {
	if service == "" {
		service = cfg.Service.BaseURL
	}
	c, err := convert.NewClient(service, cfg.Service.Timeout, logger.Named("convert"))
	if err != nil {
		fatalf("%v", err)
	}
	return c
}

func stage(bundle []byte, out string) {
	if out == "" {
		out = filepath.Join(os.TempDir(), fmt.Sprintf("relive-%d", time.Now().UnixNano()))
	}
	url, err := convert.Stage(bundle, out)
	if err != nil {
		fatalf("staging bundle: %v", err)
	}
	fmt.Printf("Staged %d bytes\n", len(bundle))
	fmt.Printf("Open with: relive -mesh %s\n", url)
}

func cmdUpload(args []string) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	prompt := fs.String("prompt", "", "Scene description sent with the image")
	out := fs.String("out", "", "Directory to stage the mesh in (default: a temp dir)")
	service := fs.String("service", "", "Conversion service URL (default: from config)")
	debug := fs.Bool("v", false, "Verbose logging")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool upload [-prompt text] [-out dir] <image>")
		os.Exit(1)
	}
	cfg := setup(*debug)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Fprintf(os.Stderr, "Uploading %s...\n", fs.Arg(0))
	bundle, err := newClient(cfg, *service).Upload(ctx, fs.Arg(0), *prompt)
	if err != nil {
		fatalf("%v", err)
	}
	stage(bundle, *out)
}

func cmdGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	style := fs.String("style", "realistic", "Rendering style")
	out := fs.String("out", "", "Directory to stage the mesh in (default: a temp dir)")
	service := fs.String("service", "", "Conversion service URL (default: from config)")
	debug := fs.Bool("v", false, "Verbose logging")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool generate [-style s] [-out dir] <prompt>")
		os.Exit(1)
	}
	cfg := setup(*debug)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Fprintln(os.Stderr, "Generating...")
	bundle, err := newClient(cfg, *service).Generate(ctx, fs.Arg(0), *style)
	if err != nil {
		fatalf("%v", err)
	}
	stage(bundle, *out)
}

func cmdInitConfig(args []string) {
	cfg := config.Default()
	path := filepath.Join(config.ConfigDir(), "config.yaml")
	if len(args) > 0 {
		path = args[0]
	}
	if _, statErr := os.Stat(path); statErr == nil {
		fatalf("%s already exists", path)
	}
	if err := cfg.SaveTo(path); err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("Wrote %s\n", path)
}
