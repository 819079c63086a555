// meshc imports Wavefront OBJ meshes into renderer-ready indexed geometry.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/yuravashuk/GPF/internal/config"
	"github.com/yuravashuk/GPF/internal/importer"
	"github.com/yuravashuk/GPF/internal/logger"
	"github.com/yuravashuk/GPF/internal/manifest"
)

func main() {
	flag.Usage = printUsage

	// Parse CLI flags first
	config.ParseFlags()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	logger.Sugar.Debugf("Config: %+v", cfg)

	command := flag.Arg(0)
	args := flag.Args()[1:]

	var code int
	switch command {
	case "import":
		code = cmdImport(cfg, args)
	case "info":
		code = cmdInfo(args)
	case "watch":
		code = cmdWatch(cfg, args)
	case "config":
		code = cmdConfig(cfg, args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		code = 1
	}

	logger.Sync()
	os.Exit(code)
}

func printUsage() {
	fmt.Println(`meshc - OBJ mesh importer

Usage:
  meshc [global options] <command> [options]

Commands:
  import [-o out.gmsh] [-manifest] <file.obj>  Import and write compiled geometry
  info <file.gmsh>                            Show compiled geometry information
  watch [-manifest] <file.obj>                Re-import whenever the mesh changes
  config [-save]                              Print (or save) the effective config

Global options:
  -config <path>      Config file (default ./meshc.yaml, then user config dir)
  -debug              Enable debug logging
  -tangents <mode>    overwrite, legacy or accumulate
  -encoding <label>   Encoding of names in source files, e.g. euc-kr
  -out-dir <dir>      Directory for compiled geometry
  -log-file <path>    Also write logs to this file

Examples:
  meshc import models/crate.obj
  meshc -tangents accumulate import -o build/crate.gmsh -manifest models/crate.obj
  meshc info build/crate.gmsh`)
}

func cmdImport(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	out := fs.String("o", "", "Output file (default <name>.gmsh in out-dir or next to the source)")
	withManifest := fs.Bool("manifest", cfg.Output.Manifest, "Also write a TOML manifest")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshc import [-o out.gmsh] [-manifest] <file.obj>")
		return 1
	}

	im := importer.New(cfg, logger.Named("importer"))
	res, err := im.ImportFile(fs.Arg(0))
	if err != nil {
		logger.Error("import failed", zap.Error(err))
		return 1
	}

	path := *out
	if path == "" {
		path = importer.OutputPath(res.Source, cfg.Output.Dir)
	}
	if err := write(res, path, *withManifest); err != nil {
		logger.Error("write failed", zap.Error(err))
		return 1
	}

	fmt.Printf("%s -> %s (%d vertices, %d triangles, %d warnings)\n",
		res.Source, path, res.Geometry.VertexCount, res.Geometry.TriangleCount(), len(res.Diagnostics.Warnings))
	return 0
}

func write(res *importer.Result, path string, withManifest bool) error {
	if err := importer.WriteGeometry(path, res.Geometry); err != nil {
		return err
	}
	if withManifest {
		if err := manifest.Write(manifest.PathFor(path), manifest.FromResult(res, path)); err != nil {
			return err
		}
	}
	return nil
}

func cmdInfo(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshc info <file.gmsh>")
		return 1
	}

	g, err := importer.ReadGeometry(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Printf("Geometry:  %s\n", args[0])
	fmt.Printf("ID:        %s\n", g.ID)
	fmt.Printf("Name:      %s\n", g.Name)
	fmt.Printf("Vertices:  %d\n", g.VertexCount)
	fmt.Printf("Indices:   %d (%d triangles)\n", g.IndexCount, g.TriangleCount())
	if g.Bounds.IsEmpty() {
		fmt.Println("Bounds:    empty")
	} else {
		fmt.Printf("Bounds:    min %v max %v\n", g.Bounds.Min.Array(), g.Bounds.Max.Array())
		fmt.Printf("Center:    %v\n", g.Bounds.Center.Array())
		fmt.Printf("Size:      %v\n", g.Bounds.Dimensions.Array())
	}

	names := make([]string, 0, len(g.Materials))
	for name := range g.Materials {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("Materials: %d\n", len(names))
	for _, name := range names {
		m := g.Materials[name]
		fmt.Printf("  %s\n", name)
		for _, slot := range m.Textures() {
			fmt.Printf("    %-12s %s\n", slot.Slot, slot.Name)
		}
	}
	return 0
}

func cmdWatch(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	withManifest := fs.Bool("manifest", cfg.Output.Manifest, "Also write a TOML manifest")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshc watch [-manifest] <file.obj>")
		return 1
	}
	source := fs.Arg(0)
	path := importer.OutputPath(source, cfg.Output.Dir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.Named("watch")
	log.Info("watching", zap.String("source", source), zap.String("output", path))

	im := importer.New(cfg, logger.Named("importer"))
	err := im.Watch(ctx, source, importer.DefaultSettle, func(res *importer.Result, err error) {
		if err != nil {
			log.Error("import failed", zap.Error(err))
			return
		}
		if err := write(res, path, *withManifest); err != nil {
			log.Error("write failed", zap.Error(err))
			return
		}
		log.Info("updated", zap.String("output", path), zap.Uint32("vertices", res.Geometry.VertexCount))
	})
	if err != nil {
		log.Error("watch failed", zap.Error(err))
		return 1
	}
	return 0
}

func cmdConfig(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	save := fs.Bool("save", false, "Write the effective config to the user config directory")
	fs.Parse(args)

	if *save {
		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Printf("saved to %s\n", config.ConfigDir())
		return 0
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	os.Stdout.Write(data)
	return 0
}
