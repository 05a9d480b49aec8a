// valktool is a CLI utility for inspecting and importing Valkyria Chronicles
// model, archive and placement containers.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/BlenderCN-Org/import-valkyria/internal/assets"
	"github.com/BlenderCN-Org/import-valkyria/internal/config"
	"github.com/BlenderCN-Org/import-valkyria/internal/logger"
	"github.com/BlenderCN-Org/import-valkyria/internal/scene"
	"github.com/BlenderCN-Org/import-valkyria/pkg/formats"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "info":
		err = cmdInfo(args)
	case "import", "i":
		err = cmdImport(cfg, args)
	case "skeleton", "sk":
		err = cmdSkeleton(cfg, args)
	case "extract", "x":
		err = cmdExtract(cfg, args)
	case "save-config":
		err = cmdSaveConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`valktool - Valkyria Chronicles asset utility

Usage:
  valktool [flags] <command> [args]

Commands:
  info <file>              Show container schema and sections
  import <file>...         Resolve files and write scene documents
  skeleton <file>          Print solved joints per unit
  extract <file> [output]  Write texture images to directory
  save-config [path]       Write the effective config (default: user config dir)

Flags:
  -config <path>           Config file
  -debug                   Enable debug logging
  -pose-file <name>        Pose archive next to each file
  -no-pose                 Do not apply poses
  -shape-key-model <n>     Model index shape keys apply to
  -out <dir>               Output directory for import

Examples:
  valktool info VALCA01AD.HMD
  valktool -out ./scenes import *.MLX
  valktool extract MAP01.MXE ./textures`)
}

func importOptions(cfg *config.Config) scene.Options {
	opts := scene.DefaultOptions()
	opts.PoseFile = cfg.PosePath()
	opts.ShapeKeyModel = cfg.Import.ShapeKeyModel
	return opts
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: valktool info <file>")
	}

	resolver := assets.NewResolver(formats.YAMLDecoder{})
	c, err := resolver.Open(args[0])
	if err != nil {
		return err
	}

	schema := assets.Classify(c)
	fmt.Printf("File:     %s\n", c.Path)
	fmt.Printf("Schema:   %s\n", schema)
	fmt.Printf("Root:     %v\n", schema.IsRoot())
	fmt.Printf("Sections: %d\n", len(c.Children))

	// Count by schema
	counts := make(map[formats.Schema]int)
	for _, child := range c.Children {
		counts[child.Schema]++
	}
	type schemaStat struct {
		schema formats.Schema
		count  int
	}
	var stats []schemaStat
	for s, n := range counts {
		stats = append(stats, schemaStat{s, n})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].count != stats[j].count {
			return stats[i].count > stats[j].count
		}
		return stats[i].schema < stats[j].schema
	})
	for _, s := range stats {
		fmt.Printf("  %-6s %d\n", s.schema, s.count)
	}

	if c.Model != nil {
		for i, u := range c.Model.Units {
			fmt.Printf("  unit %d: %d bones, %d meshes, %d materials\n",
				i, len(u.Bones), len(u.Meshes), len(u.Materials))
		}
	}
	return nil
}

func cmdImport(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: valktool import <file>...")
	}

	if cfg.Output.Dir != "" {
		if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	opts := importOptions(cfg)

	var errs error
	imported := 0
	for _, path := range args {
		if err := importFile(path, cfg.Output.Dir, opts); err != nil {
			logger.Error("import failed", zap.String("file", path), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		imported++
	}

	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "\n(%d of %d files imported)\n", imported, len(args))
	}
	return errs
}

func importFile(path, outDir string, opts scene.Options) error {
	s, err := scene.Import(path, opts)
	if err != nil {
		return err
	}

	rec := scene.NewRecorder(s.Name, s.Schema)
	if err := scene.Build(s, rec); err != nil {
		return fmt.Errorf("building scene: %w", err)
	}
	data, err := rec.Marshal()
	if err != nil {
		return fmt.Errorf("encoding scene: %w", err)
	}

	if outDir == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	outPath := filepath.Join(outDir, s.Name+".scene.yaml")
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	fmt.Printf("Wrote: %s (%d objects)\n", outPath, len(rec.Doc.Objects))
	return nil
}

func cmdSkeleton(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: valktool skeleton <file>")
	}

	opts := importOptions(cfg)
	opts.PoseFile = ""
	s, err := scene.Import(args[0], opts)
	if err != nil {
		return err
	}

	for _, g := range s.Models {
		for _, u := range g.Units {
			fmt.Printf("%s/%s: %d joints\n", g.Name, u.Name(), len(u.Joints))
			for i, j := range u.Joints {
				parent := "-"
				if j.HasParent() {
					parent = u.Joints[j.Parent].Name
				}
				fmt.Printf("  %3d %-8s parent=%-8s head=(%.3f, %.3f, %.3f) tail=(%.3f, %.3f, %.3f)\n",
					i, j.Name, parent,
					j.Head.X, j.Head.Y, j.Head.Z,
					j.Tail.X, j.Tail.Y, j.Tail.Z)
			}
		}
	}
	return nil
}

func cmdExtract(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: valktool extract <file> [output_dir]")
	}
	outputDir := "."
	if len(args) > 1 {
		outputDir = args[1]
	}

	opts := importOptions(cfg)
	opts.PoseFile = ""
	s, err := scene.Import(args[0], opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	written := make(map[string]bool)
	for _, pack := range s.Packs {
		for _, img := range pack.Images {
			name := filepath.Base(img.Filename)
			key := strings.ToLower(name)
			if written[key] {
				continue
			}
			written[key] = true

			outPath := filepath.Join(outputDir, name)
			if err := os.WriteFile(outPath, img.Data, 0644); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			fmt.Printf("Extracted: %s (%d bytes)\n", outPath, len(img.Data))
		}
	}
	fmt.Fprintf(os.Stderr, "\n(%d images extracted)\n", len(written))
	return nil
}

func cmdSaveConfig(cfg *config.Config, args []string) error {
	if len(args) > 0 {
		if err := cfg.SaveTo(args[0]); err != nil {
			return err
		}
		fmt.Printf("Wrote: %s\n", args[0])
		return nil
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Printf("Wrote: %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	return nil
}
