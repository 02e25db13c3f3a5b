// blokgen generates Go data models from entity schema files.
//
// Usage:
//
//	blokgen -schema taskboard.yaml [-out taskboard_gen.go] [-pkg taskboard]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/velosovictor/frontblok-crud/pkg/blokgen"
	"github.com/velosovictor/frontblok-crud/pkg/schema"
)

const version = "0.1.0"

func main() {
	schemaFile := flag.String("schema", "", "Path to entity schema file (required)")
	outFile := flag.String("out", "", "Output Go file (default: stdout)")
	pkg := flag.String("pkg", "datamodels", "Package name for generated code")
	modulePath := flag.String("module", "github.com/velosovictor/frontblok-crud", "Module import path for the crud package")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("blokgen %s\n", version)
		os.Exit(0)
	}

	if *schemaFile == "" {
		fmt.Fprintln(os.Stderr, "error: -schema flag is required")
		flag.Usage()
		os.Exit(1)
	}

	f, err := os.Open(*schemaFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	cfg, err := schema.LoadConfiguration(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var w *os.File
	if *outFile != "" {
		w, err = os.Create(*outFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error creating output: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = w.Close() }()
	} else {
		w = os.Stdout
	}

	rcfg := blokgen.RenderConfig{
		PackageName: *pkg,
		ModulePath:  *modulePath,
	}

	if err := blokgen.Render(w, cfg, rcfg); err != nil {
		fmt.Fprintf(os.Stderr, "error rendering: %v\n", err)
		os.Exit(1)
	}
}
