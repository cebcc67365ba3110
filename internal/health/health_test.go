package health

import (
	"context"
	"errors"
	"testing"
)

func TestStatusOKWithoutProbes(t *testing.T) {
	svc := &Service{}
	report := svc.Status(context.Background())
	if report.Status != "ok" {
		t.Fatalf("status = %q", report.Status)
	}
}

func TestStatusDegradedWhenProbeFails(t *testing.T) {
	svc := &Service{
		ModelProbe:   func(ctx context.Context) error { return errors.New("timeout") },
		StorageProbe: func(ctx context.Context) error { return nil },
	}
	report := svc.Status(context.Background())
	if report.Status != "degraded" {
		t.Fatalf("status = %q", report.Status)
	}
	if report.ServiceStatus.ModelService != "unreachable" {
		t.Fatalf("model status = %q", report.ServiceStatus.ModelService)
	}
	if report.ServiceStatus.Storage != "ok" {
		t.Fatalf("storage status = %q", report.ServiceStatus.Storage)
	}
}
