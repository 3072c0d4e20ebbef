package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/griddock/stationscope/internal/processor"
	"github.com/griddock/stationscope/pkg/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleBatch() *processor.BatchResult {
	parsed := models.ParsedFile{
		FileName: "Store1_N2xport.csv",
		Format:   models.FormatN2,
		N2: &models.N2Result{
			Devices: []models.N2Device{
				{Name: "VAV-101", Address: 1, Status: []string{models.StatusOK}, Type: "VND"},
			},
			Summary: models.N2Summary{Total: 1, OK: 1},
		},
	}
	return &processor.BatchResult{
		RunID:              uuid.New(),
		ProcessedFileNames: []string{parsed.FileName},
		Files:              map[string]models.ParsedFile{parsed.FileName: parsed},
		Devices:            []models.ParsedFile{parsed},
		Errors:             []string{},
		ValidationWarnings: []string{},
		Metadata: processor.BatchMetadata{
			TotalFiles:     1,
			ProcessedFiles: 1,
			Architecture:   models.ArchitectureSingleJACE,
		},
	}
}

func TestSaveBatchRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	batch := sampleBatch()

	if err := s.SaveBatch(ctx, batch); err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}

	got, err := s.GetRun(ctx, batch.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.RunID != batch.RunID {
		t.Errorf("RunID = %s, want %s", got.RunID, batch.RunID)
	}
	if got.Metadata.Architecture != models.ArchitectureSingleJACE {
		t.Errorf("Architecture = %q", got.Metadata.Architecture)
	}
	file, ok := got.Files["Store1_N2xport.csv"]
	if !ok {
		t.Fatalf("Files = %v", got.Files)
	}
	if file.N2 == nil || len(file.N2.Devices) != 1 || file.N2.Devices[0].Name != "VAV-101" {
		t.Errorf("parsed payload did not survive the round trip: %+v", file)
	}
}

func TestGetRunFiles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	batch := sampleBatch()

	if err := s.SaveBatch(ctx, batch); err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}

	recs, err := s.GetRunFiles(ctx, batch.RunID)
	if err != nil {
		t.Fatalf("GetRunFiles: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	rec := recs[0]
	if rec.DatasetType != string(models.FormatN2) || rec.TargetLocation != "Store1_N2xport.csv" {
		t.Errorf("record key = %s/%s", rec.DatasetType, rec.TargetLocation)
	}
	if rec.Payload.N2 == nil || rec.Payload.N2.Summary.Total != 1 {
		t.Errorf("payload = %+v", rec.Payload)
	}
}

func TestSaveParsedFileUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	batch := sampleBatch()
	if err := s.SaveBatch(ctx, batch); err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}

	rec := ParsedFileRecord{
		RunID:          batch.RunID,
		DatasetType:    string(models.FormatN2),
		TargetLocation: "Store1_N2xport.csv",
		Payload: models.ParsedFile{
			FileName: "Store1_N2xport.csv",
			Format:   models.FormatN2,
			N2:       &models.N2Result{Summary: models.N2Summary{Total: 7}},
		},
	}
	if err := s.SaveParsedFile(ctx, rec); err != nil {
		t.Fatalf("SaveParsedFile: %v", err)
	}

	recs, err := s.GetRunFiles(ctx, batch.RunID)
	if err != nil {
		t.Fatalf("GetRunFiles: %v", err)
	}
	if len(recs) != 1 || recs[0].Payload.N2.Summary.Total != 7 {
		t.Errorf("upsert did not replace the payload: %+v", recs)
	}
}

func TestGetRunNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetRun(context.Background(), uuid.New())
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("err = %v, want ErrRunNotFound", err)
	}
}

func TestListRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, second := sampleBatch(), sampleBatch()
	if err := s.SaveBatch(ctx, first); err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}
	if err := s.SaveBatch(ctx, second); err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}

	runs, err := s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	for _, run := range runs {
		if run.TotalFiles != 1 || run.ProcessedFiles != 1 {
			t.Errorf("run summary = %+v", run)
		}
	}
}

func TestMigrateIdempotent(t *testing.T) {
	s := newTestStore(t)

	// New already ran the migrations; running them again must be a no-op.
	if err := s.Migrate(context.Background(), auditMigrations); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}
