package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/metadoc/pkg/adapters/engine"
	"github.com/ekaya-inc/metadoc/pkg/apperrors"
	"github.com/ekaya-inc/metadoc/pkg/config"
	"github.com/ekaya-inc/metadoc/pkg/discovery"
	"github.com/ekaya-inc/metadoc/pkg/metadata"
	"github.com/ekaya-inc/metadoc/pkg/output"
)

// QueryClient is the query-execution collaborator of an extraction run.
type QueryClient interface {
	Query(ctx context.Context, queryText string) (*engine.Result, error)
	Execute(ctx context.Context, command string) error
	Close() error
}

// ClientFactory opens a QueryClient for a resolved endpoint.
type ClientFactory func(ctx context.Context, endpoint string, logger *zap.Logger) (QueryClient, error)

// EngineClientFactory opens a real engine connection. Tests substitute fakes.
func EngineClientFactory(ctx context.Context, endpoint string, logger *zap.Logger) (QueryClient, error) {
	return engine.NewClient(ctx, endpoint, logger)
}

// Summary reports what an extraction run produced. In the raw projection
// EnumCount counts option records rather than enum groups.
type Summary struct {
	Catalog       string
	Endpoint      string
	FunctionCount int
	TypeCount     int
	EnumCount     int
	OutputPath    string
}

// ExtractionService runs the full discover → query → normalize → write
// pipeline. One run per invocation; no state is kept between runs.
type ExtractionService interface {
	Run(ctx context.Context) (*Summary, error)
}

type extractionService struct {
	cfg        *config.Config
	resolver   discovery.PortResolver
	newClient  ClientFactory
	normalizer *metadata.Normalizer
	projection metadata.Projection
	write      func(document any, path string) error
	logger     *zap.Logger
}

// NewExtractionService creates an extraction service fixed to one projection.
func NewExtractionService(
	cfg *config.Config,
	resolver discovery.PortResolver,
	newClient ClientFactory,
	projection metadata.Projection,
	logger *zap.Logger,
) ExtractionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &extractionService{
		cfg:        cfg,
		resolver:   resolver,
		newClient:  newClient,
		normalizer: metadata.NewNormalizer(logger),
		projection: projection,
		write:      output.Write,
		logger:     logger,
	}
}

// Run executes one extraction. The output file is written only after every
// query and the normalization succeed; there is no partial-output mode.
func (s *extractionService) Run(ctx context.Context) (*Summary, error) {
	logger := s.logger.With(zap.String("run_id", uuid.NewString()))

	port, err := s.resolver.Resolve(ctx, s.cfg.Port)
	if err != nil {
		return nil, err
	}
	endpoint := s.cfg.Endpoint(port)
	logger.Info("resolved engine endpoint", zap.String("endpoint", endpoint))

	client, err := s.newClient(ctx, endpoint, logger)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	catalog, err := s.lookupCatalog(ctx, client)
	if err != nil {
		return nil, err
	}
	logger.Info("discovered catalog", zap.String("catalog", catalog))

	// The documentation tables are calculated; refresh so they reflect the
	// currently open document. No catalog refresh means no usable data.
	if err := client.Execute(ctx, metadata.RefreshCommand(catalog)); err != nil {
		return nil, fmt.Errorf("refresh catalog %q: %w", catalog, err)
	}

	functions, err := client.Query(ctx, metadata.FunctionsQuery)
	if err != nil {
		return nil, fmt.Errorf("query functions: %w", err)
	}
	types, err := client.Query(ctx, metadata.TypesQuery)
	if err != nil {
		return nil, fmt.Errorf("query types: %w", err)
	}
	enums, err := client.Query(ctx, metadata.EnumsQuery)
	if err != nil {
		return nil, fmt.Errorf("query enums: %w", err)
	}

	in := metadata.Input{
		Functions: functions.Rows,
		Types:     types.Rows,
		Enums:     enums.Rows,
	}

	summary := &Summary{
		Catalog:    catalog,
		Endpoint:   endpoint,
		OutputPath: s.cfg.OutputPath,
	}

	var document any
	switch s.projection {
	case metadata.ProjectionRaw:
		rawDoc, err := s.normalizer.Raw(in)
		if err != nil {
			return nil, err
		}
		document = rawDoc
		summary.FunctionCount = len(rawDoc.Functions)
		summary.TypeCount = len(rawDoc.Types)
		summary.EnumCount = len(rawDoc.EnumOptions)
	default:
		symbols, err := s.normalizer.Standard(in)
		if err != nil {
			return nil, err
		}
		document = symbols
		for _, symbol := range symbols {
			switch symbol.(type) {
			case metadata.FunctionSymbol:
				summary.FunctionCount++
			case metadata.TypeSymbol:
				summary.TypeCount++
			case metadata.EnumSymbol:
				summary.EnumCount++
			}
		}
	}

	if err := s.write(document, s.cfg.OutputPath); err != nil {
		return nil, err
	}

	logger.Info("extraction complete",
		zap.String("catalog", catalog),
		zap.Int("functions", summary.FunctionCount),
		zap.Int("types", summary.TypeCount),
		zap.Int("enums", summary.EnumCount),
		zap.String("output", summary.OutputPath))

	return summary, nil
}

func (s *extractionService) lookupCatalog(ctx context.Context, client QueryClient) (string, error) {
	result, err := client.Query(ctx, metadata.CatalogQuery)
	if err != nil {
		return "", fmt.Errorf("lookup catalog: %w", err)
	}
	for _, raw := range result.Rows {
		if name := metadata.NewRow(raw).String(metadata.CatalogNameColumn); name != "" {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: engine returned no catalogs", apperrors.ErrQueryFailed)
}
