package processor

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/griddock/stationscope/pkg/models"
)

const n2Sample = `Name,Status,Address,Controller Type
VAV-101,{ok},1,VND
VAV-102,{down},2,VND
AHU-1,{ok},3,DX9100
`

const resourceSample = `Name,Value
cpu.usage,45%
heap.used,300 MB
heap.max,800 MB
globalCapacity.devices,"10 (Limit: 100)"
version.niagara,4.12.1.16
`

func TestProcessFilesBatch(t *testing.T) {
	p := New(zap.NewNop())

	result, err := p.ProcessFiles(context.Background(), []InputFile{
		{Name: "Store1_N2xport.csv", Content: n2Sample},
		{Name: "Store1_ResourceExport.csv", Content: resourceSample},
		{Name: "notes.txt", Content: "hello world"},
	})
	if err != nil {
		t.Fatalf("ProcessFiles: %v", err)
	}

	if result.RunID == uuid.Nil {
		t.Error("RunID not assigned")
	}
	want := []string{"Store1_N2xport.csv", "Store1_ResourceExport.csv"}
	if len(result.ProcessedFileNames) != len(want) {
		t.Fatalf("ProcessedFileNames = %v, want %v", result.ProcessedFileNames, want)
	}
	for i := range want {
		if result.ProcessedFileNames[i] != want[i] {
			t.Errorf("ProcessedFileNames = %v, want %v", result.ProcessedFileNames, want)
			break
		}
	}

	if len(result.Devices) != 1 || len(result.Resources) != 1 || len(result.Networks) != 0 {
		t.Errorf("collections = %d devices, %d resources, %d networks",
			len(result.Devices), len(result.Resources), len(result.Networks))
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "notes.txt") {
		t.Errorf("Errors = %v, want one naming notes.txt", result.Errors)
	}

	m := result.Metadata
	if m.TotalFiles != 3 || m.ProcessedFiles != 2 || m.FailedFiles != 1 {
		t.Errorf("Metadata = %+v", m)
	}
	if m.Architecture != models.ArchitectureSingleJACE {
		t.Errorf("Architecture = %q, want %q", m.Architecture, models.ArchitectureSingleJACE)
	}

	if result.CrossValidatedData == nil {
		t.Fatal("CrossValidatedData is nil")
	}
	jace, ok := result.CrossValidatedData.JACEs["Store1"]
	if !ok {
		t.Fatalf("JACE Store1 missing: %v", result.CrossValidatedData.JACEs)
	}
	if jace.Drivers.N2 == nil || len(jace.Drivers.N2.Devices) != 3 {
		t.Error("N2 driver export not attributed to Store1")
	}
	if jace.Resources == nil {
		t.Error("resource export not attributed to Store1")
	}

	if result.Insights == nil || result.Insights.Health == nil {
		t.Fatal("Insights missing")
	}
}

func TestProcessFilesParseFailureContinues(t *testing.T) {
	p := New(zap.NewNop())

	// Headers present but every row invalid: a fatal parse error for that
	// file, not for the batch.
	badN2 := "Name,Status,Address,Controller Type\n,{down},7,VND\n"
	result, err := p.ProcessFiles(context.Background(), []InputFile{
		{Name: "Store1_N2xport.csv", Content: badN2},
		{Name: "Store1_ResourceExport.csv", Content: resourceSample},
	})
	if err != nil {
		t.Fatalf("ProcessFiles: %v", err)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Store1_N2xport.csv") {
		t.Fatalf("Errors = %v", result.Errors)
	}
	if result.Metadata.ProcessedFiles != 1 || result.Metadata.FailedFiles != 1 {
		t.Errorf("Metadata = %+v", result.Metadata)
	}
	if len(result.Resources) != 1 {
		t.Error("surviving file was not processed")
	}
}

func TestProcessFilesEmptyBatch(t *testing.T) {
	p := New(zap.NewNop())

	result, err := p.ProcessFiles(context.Background(), nil)
	if err != nil {
		t.Fatalf("ProcessFiles: %v", err)
	}
	if result.Metadata.TotalFiles != 0 {
		t.Errorf("TotalFiles = %d", result.Metadata.TotalFiles)
	}
	if result.CrossValidatedData == nil || result.Insights == nil {
		t.Error("empty batch did not produce an assembled result")
	}
}

func TestProcessFilesCanceledContext(t *testing.T) {
	p := New(zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.ProcessFiles(ctx, []InputFile{
		{Name: "Store1_N2xport.csv", Content: n2Sample},
	})
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
}
