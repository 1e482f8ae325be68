package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sources(statuses ...HealthLevel) []SourceHealth {
	out := make([]SourceHealth, 0, len(statuses))
	for i, s := range statuses {
		out = append(out, SourceHealth{Source: string(rune('a' + i)), Status: s})
	}
	return out
}

func TestOverallHealth(t *testing.T) {
	tests := []struct {
		name    string
		sources []SourceHealth
		want    HealthLevel
	}{
		{"no sources", nil, HealthUnhealthy},
		{"all healthy", sources(HealthHealthy, HealthHealthy, HealthHealthy, HealthHealthy), HealthHealthy},
		{"half healthy", sources(HealthHealthy, HealthHealthy, HealthUnhealthy, HealthUnhealthy), HealthDegraded},
		{"one of four healthy", sources(HealthHealthy, HealthUnhealthy, HealthUnhealthy, HealthUnhealthy), HealthUnhealthy},
		{"three of four healthy", sources(HealthHealthy, HealthHealthy, HealthHealthy, HealthDegraded), HealthDegraded},
		{"single healthy source", sources(HealthHealthy), HealthHealthy},
		{"single failing source", sources(HealthUnhealthy), HealthUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OverallHealth(tt.sources))
		})
	}
}
