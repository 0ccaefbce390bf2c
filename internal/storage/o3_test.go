package storage

import (
	"context"
	"testing"

	"github.com/akave-ai/logviewer/internal/config"
)

func TestNewO3ClientNeedsEndpointAndBucket(t *testing.T) {
	for _, cfg := range []*config.O3Config{nil, {Bucket: "logs"}, {Endpoint: "http://localhost:9000"}} {
		c, err := NewO3Client(cfg)
		if err != nil || c != nil {
			t.Errorf("NewO3Client(%+v) = %v, %v; want nil, nil", cfg, c, err)
		}
	}
}

func TestNilClient(t *testing.T) {
	var c *O3Client
	if err := c.EnsureBucket(context.Background()); err != nil {
		t.Errorf("EnsureBucket on nil client: %v", err)
	}
	if err := c.PutFile(context.Background(), "k", "/nonexistent"); err == nil {
		t.Error("PutFile on nil client should fail")
	}
}

func TestKeyForArchive(t *testing.T) {
	tests := []struct {
		machine, file, want string
	}{
		{"web-1", "logviewer.web-1.20240310.json.gz", "logs/web-1/logviewer.web-1.20240310.json.gz"},
		{"", "logviewer.20240310.json.gz", "logs/default/logviewer.20240310.json.gz"},
	}
	for _, tt := range tests {
		if got := KeyForArchive(tt.machine, tt.file); got != tt.want {
			t.Errorf("KeyForArchive(%q, %q) = %q, want %q", tt.machine, tt.file, got, tt.want)
		}
	}
}
