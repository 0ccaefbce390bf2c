package logviewer

import (
	"context"
	"testing"
	"time"

	"github.com/akave-ai/logviewer/internal/model"
)

func TestSQLiteSourceSinkAndQueries(t *testing.T) {
	src, err := OpenSQLiteSource(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer src.Close()

	for _, l := range []string{
		line(base, "info", "started", `"component":"server","port":8080`),
		line(base.Add(time.Second), "error", "boom", `"error":"bad"`),
		line(base.Add(2*time.Second), "warn", "slow", ""),
		"garbage",
	} {
		if _, err := src.Write([]byte(l)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	if !src.CanHandleLargeLogs() {
		t.Fatalf("sqlite source should handle large logs")
	}

	v := newViewer(t, src)
	ctx := context.Background()
	period := model.LogTimePeriod{StartTime: base.Add(-time.Minute), EndTime: base.Add(time.Minute)}

	counts, err := v.GetLogLevelCounts(ctx, period)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts["Information"] != 1 || counts["Error"] != 1 || counts["Warning"] != 1 || counts["Debug"] != 0 {
		t.Fatalf("unexpected counts: %v", counts)
	}

	page, err := v.GetLogs(ctx, period, model.LogQuery{FilterExpression: "component:server", OrderDirection: model.Descending})
	if err != nil {
		t.Fatalf("get logs: %v", err)
	}
	if page.TotalItems != 1 || page.Items[0].Properties["port"] != float64(8080) {
		t.Fatalf("unexpected page: %+v", page)
	}

	n, err := v.GetNumberOfErrors(ctx, period)
	if err != nil || n != 1 {
		t.Fatalf("GetNumberOfErrors = %d, %v", n, err)
	}
}

func TestRegistryCreatesRegisteredSources(t *testing.T) {
	names := GlobalRegistry.ListRegistered()
	if len(names) != 2 || names[0] != "jsonfile" || names[1] != "sqlite" {
		t.Fatalf("unexpected registered sources: %v", names)
	}
	src, err := GlobalRegistry.Create("jsonfile", SourceConfig{Dir: t.TempDir(), FilePrefix: "app"})
	if err != nil {
		t.Fatalf("create jsonfile: %v", err)
	}
	if _, ok := src.(*JSONFileSource); !ok {
		t.Fatalf("expected *JSONFileSource, got %T", src)
	}
	if _, err := GlobalRegistry.Create("jsonfile", SourceConfig{}); err == nil {
		t.Fatalf("expected error without a directory")
	}
	if _, err := GlobalRegistry.Create("elastic", SourceConfig{}); err == nil {
		t.Fatalf("expected error for unknown source")
	}
}
