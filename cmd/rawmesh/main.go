// rawmesh exports scenes described by an object manifest into the
// renderer's scene and mesh files.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Faultbox/rawmesh/internal/config"
	"github.com/Faultbox/rawmesh/internal/host/objscene"
	"github.com/Faultbox/rawmesh/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "scene":
		cmdScene(args)
	case "mesh":
		cmdMesh(args)
	case "watch":
		cmdWatch(args)
	case "info":
		cmdInfo(args)
	case "dump":
		cmdDump(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`rawmesh - scene and mesh exporter

Usage:
  rawmesh <command> [options]

Commands:
  scene <manifest.yaml> <out.scene>          Export a scene and its meshes
  mesh <manifest.yaml> <object> <out.mesh>   Export one object's mesh
  watch <manifest.yaml> <out.scene>          Re-export the scene on change
  info <file.mesh>                           Show mesh header
  dump <file.mesh|file.scene>                Print file contents

Export options:
  -config <path>    Config file (.yaml or .toml)
  -out <dir>        Mesh output directory (default: next to the scene)
  -format <1|2>     Mesh format version
  -policy <name>    Vertex merge policy: dedup or flat
  -no-uvs           Export without UV channels
  -debug            Enable debug logging
  -log-file <path>  Also log to a rotated file

Examples:
  rawmesh scene level.yaml build/level.scene
  rawmesh scene -policy flat -out build/meshes level.yaml build/level.scene
  rawmesh mesh level.yaml Crate.001 crate.mesh
  rawmesh dump build/level.scene`)
}

// setup parses export flags, loads config and starts logging.
func setup(name string, args []string, nargs int, usage string) (*config.Config, []string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	fs.Parse(args)

	if fs.NArg() < nargs {
		fmt.Fprintln(os.Stderr, "Usage: rawmesh "+usage)
		os.Exit(1)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg, fs.Args()
}

func buildOptions(cfg *config.Config) objscene.BuildOptions {
	return objscene.BuildOptions{
		IncludeUVs:  cfg.Export.UVChannelLimit() > 0,
		Triangulate: cfg.Export.Triangulate,
	}
}

func fail(err error) {
	logger.Sync()
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
