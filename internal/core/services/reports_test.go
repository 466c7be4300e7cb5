package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/styleaudit/internal/core/domain"
)

func TestReportService_SaveGetList(t *testing.T) {
	store := newMockReportStore()
	service := NewReportService(store)
	ctx := context.Background()

	report := &domain.AuditReport{ID: "r1", Source: "draft.docx", Findings: []domain.AuditFinding{{}}}
	require.NoError(t, service.Save(ctx, report))

	got, err := service.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Same(t, report, got)

	summaries, err := service.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].Findings)
	assert.Equal(t, defaultReportLimit, store.limit)

	_, err = service.List(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, store.limit)
}

func TestReportService_Validation(t *testing.T) {
	service := NewReportService(newMockReportStore())
	ctx := context.Background()

	assert.ErrorIs(t, service.Save(ctx, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.Save(ctx, &domain.AuditReport{}), domain.ErrInvalidInput)

	_, err := service.Get(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = service.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
