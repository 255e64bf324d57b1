package analytics

import (
	"context"
	"io"
	"strings"
)

type memorySource struct {
	content string
}

func (s *memorySource) Open(ctx context.Context) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(s.content)), nil
}

func (s *memorySource) Name() string { return "memory.csv" }
