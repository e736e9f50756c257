// extract-raw pulls the same documentation metadata as extract-symbols but
// writes the raw passthrough document: three named arrays (functions, types,
// enum_options) with fields preserved as the engine sent them.
//
// Usage: extract-raw [-port N] [-out path]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ekaya-inc/metadoc/pkg/config"
	"github.com/ekaya-inc/metadoc/pkg/discovery"
	"github.com/ekaya-inc/metadoc/pkg/metadata"
	"github.com/ekaya-inc/metadoc/pkg/services"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	port := flag.Int("port", cfg.Port, "engine port (0 = auto-detect)")
	out := flag.String("out", cfg.OutputPath, "output file path")
	flag.Parse()
	cfg.Port = *port
	cfg.OutputPath = *out

	logConfig := zap.NewDevelopmentConfig()
	logger, _ := logConfig.Build()
	defer logger.Sync()

	resolver := discovery.NewPortResolver(cfg.ProcessName, logger)
	svc := services.NewExtractionService(cfg, resolver, services.EngineClientFactory, metadata.ProjectionRaw, logger)

	summary, err := svc.Run(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "extract-raw: %v\n", err)
		return 1
	}

	fmt.Printf("Extracted %d functions, %d types, %d enum options from %s to %s\n",
		summary.FunctionCount, summary.TypeCount, summary.EnumCount,
		summary.Catalog, summary.OutputPath)
	return 0
}
