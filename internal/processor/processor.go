// Package processor is the batch entry point of the audit pipeline. It
// runs detection and parsing over a batch of export files, hands the
// parsed map to cross-validation, and attaches the system-level analyses.
package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/griddock/stationscope/internal/crossval"
	"github.com/griddock/stationscope/internal/detect"
	"github.com/griddock/stationscope/internal/export"
	"github.com/griddock/stationscope/internal/insight"
	"github.com/griddock/stationscope/internal/metrics"
	"github.com/griddock/stationscope/pkg/models"
)

// InputFile is one raw export file of a batch: the original file name plus
// its full content as UTF-8 text.
type InputFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// BatchMetadata summarizes a batch run.
type BatchMetadata struct {
	TotalFiles     int                 `json:"total_files"`
	ProcessedFiles int                 `json:"processed_files"`
	FailedFiles    int                 `json:"failed_files"`
	Architecture   models.Architecture `json:"architecture"`
}

// BatchResult is everything produced from one batch of export files.
// Per-file collections preserve the input order of the batch.
type BatchResult struct {
	RunID              uuid.UUID                    `json:"run_id"`
	ProcessedFileNames []string                     `json:"processed_file_names"`
	Files              map[string]models.ParsedFile `json:"files"`
	Devices            []models.ParsedFile          `json:"devices"`
	Resources          []models.ParsedFile          `json:"resources"`
	Networks           []models.ParsedFile          `json:"networks"`
	Errors             []string                     `json:"errors"`
	ValidationWarnings []string                     `json:"validation_warnings"`
	CrossValidatedData *models.CrossValidatedData   `json:"cross_validated_data"`
	Insights           *models.InsightReport        `json:"insights"`
	Metadata           BatchMetadata                `json:"metadata"`
}

// Processor runs audit batches. Stateless; one instance serves all batches.
type Processor struct {
	logger   *zap.Logger
	n2       *export.N2Parser
	bacnet   *export.BACnetParser
	resource *export.ResourceParser
	platform *export.PlatformParser
	network  *export.NetworkParser
	crossval *crossval.Validator
}

// New creates a Processor with all parsers wired.
func New(logger *zap.Logger) *Processor {
	return &Processor{
		logger:   logger,
		n2:       export.NewN2Parser(logger),
		bacnet:   export.NewBACnetParser(logger),
		resource: export.NewResourceParser(logger),
		platform: export.NewPlatformParser(logger),
		network:  export.NewNetworkParser(logger),
		crossval: crossval.New(logger),
	}
}

// ProcessFiles runs one batch end to end: detect, parse, cross-validate,
// analyze. A file that fails detection or parsing becomes an entry in
// Errors and the batch continues; ctx cancellation stops between files.
func (p *Processor) ProcessFiles(ctx context.Context, files []InputFile) (*BatchResult, error) {
	start := time.Now()
	result := &BatchResult{
		RunID:              uuid.New(),
		ProcessedFileNames: []string{},
		Files:              make(map[string]models.ParsedFile, len(files)),
		Errors:             []string{},
		ValidationWarnings: []string{},
	}
	result.Metadata.TotalFiles = len(files)

	log := p.logger.With(zap.String("run_id", result.RunID.String()))
	log.Info("processing batch", zap.Int("files", len(files)))

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("batch %s aborted: %w", result.RunID, err)
		}
		p.processFile(log, result, file)
	}

	result.CrossValidatedData = p.crossval.CrossValidate(result.Files)
	result.Metadata.Architecture = result.CrossValidatedData.Architecture
	recordConsistency(result.CrossValidatedData.CrossValidation)

	result.Insights = insight.BuildReport(log, result.CrossValidatedData)
	result.ValidationWarnings = append(result.ValidationWarnings,
		result.CrossValidatedData.ValidationWarnings...)

	metrics.BatchesProcessed.Inc()
	metrics.BatchDuration.Observe(time.Since(start).Seconds())
	log.Info("batch complete",
		zap.Int("processed", result.Metadata.ProcessedFiles),
		zap.Int("failed", result.Metadata.FailedFiles),
		zap.String("architecture", string(result.Metadata.Architecture)))
	return result, nil
}

func (p *Processor) processFile(log *zap.Logger, result *BatchResult, file InputFile) {
	det := detect.DetectFormat(file.Name, file.Content)
	if det.Type == models.FormatUnknown {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s: format could not be determined", file.Name))
		result.Metadata.FailedFiles++
		metrics.FilesProcessed.WithLabelValues(string(models.FormatUnknown), "unknown").Inc()
		log.Warn("file format unknown", zap.String("file", file.Name))
		return
	}

	parsed, err := p.parse(det.Type, file)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", file.Name, err))
		result.Metadata.FailedFiles++
		metrics.FilesProcessed.WithLabelValues(string(det.Type), "error").Inc()
		log.Warn("file parse failed",
			zap.String("file", file.Name),
			zap.String("format", string(det.Type)),
			zap.Error(err))
		return
	}

	result.Files[file.Name] = parsed
	result.ProcessedFileNames = append(result.ProcessedFileNames, file.Name)
	result.Metadata.ProcessedFiles++
	metrics.FilesProcessed.WithLabelValues(string(det.Type), "ok").Inc()

	switch {
	case parsed.N2 != nil:
		result.Devices = append(result.Devices, parsed)
		metrics.DevicesDiscovered.WithLabelValues("n2").Add(float64(len(parsed.N2.Devices)))
	case parsed.BACnet != nil:
		result.Devices = append(result.Devices, parsed)
		metrics.DevicesDiscovered.WithLabelValues("bacnet").Add(float64(len(parsed.BACnet.Devices)))
	case parsed.Resource != nil:
		result.Resources = append(result.Resources, parsed)
	case parsed.Network != nil:
		result.Networks = append(result.Networks, parsed)
	}
}

// parse dispatches to the format's parser and wraps the result in the
// tagged ParsedFile union.
func (p *Processor) parse(format models.Format, file InputFile) (models.ParsedFile, error) {
	parsed := models.ParsedFile{FileName: file.Name, Format: format}
	var err error
	switch format {
	case models.FormatN2:
		parsed.N2, err = p.n2.Parse(file.Content)
	case models.FormatBACnet:
		parsed.BACnet, err = p.bacnet.Parse(file.Content)
	case models.FormatResource:
		parsed.Resource, err = p.resource.Parse(file.Content)
	case models.FormatPlatform:
		parsed.Platform, err = p.platform.Parse(file.Content)
	case models.FormatNiagaraNetwork:
		parsed.Network, err = p.network.Parse(file.Content)
	case models.FormatModbus, models.FormatLON:
		// Recognized but carry no row parser; the file name alone feeds
		// cross-validation.
	default:
		err = fmt.Errorf("no parser for format %q", format)
	}
	if err != nil {
		return models.ParsedFile{}, err
	}
	return parsed, nil
}

func recordConsistency(flags models.CrossValidationFlags) {
	if !flags.VersionConsistency {
		metrics.ConsistencyFailures.WithLabelValues("version").Inc()
	}
	if !flags.DeviceCountConsistency {
		metrics.ConsistencyFailures.WithLabelValues("device_count").Inc()
	}
	if !flags.NetworkTopologyConsistency {
		metrics.ConsistencyFailures.WithLabelValues("network_topology").Inc()
	}
	if !flags.CapacityConsistency {
		metrics.ConsistencyFailures.WithLabelValues("capacity").Inc()
	}
}
