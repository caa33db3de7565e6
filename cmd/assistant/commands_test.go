package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"manual-assistant/internal/domain"
)

func TestInventorySummary(t *testing.T) {
	v := domain.RegistryValidation{
		TotalRegistered: 3,
		Available: []domain.ManualDefinition{
			{Path: "a.pdf"},
			{Path: "b.pdf"},
		},
		Missing: []domain.ManualDefinition{
			{Path: "c.pdf"},
		},
	}

	assert.Equal(t, "3 registered, 2 available, 1 missing", inventorySummary(v))
}
