package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-timetable-api/internal/dto"
	"github.com/noah-isme/campus-timetable-api/internal/models"
	"github.com/noah-isme/campus-timetable-api/pkg/config"
	appErrors "github.com/noah-isme/campus-timetable-api/pkg/errors"
)

type refsStub struct {
	refs models.ReferenceSet
}

func (r *refsStub) LoadReferenceSet(_ context.Context) (models.ReferenceSet, error) {
	return r.refs, nil
}

func newAuditFixture(refs models.ReferenceSet, roster ...models.TimeSlot) *AuditService {
	repo := &slotRepoStub{slots: roster}
	return NewAuditService(repo, &refsStub{refs: refs}, nil, nil, nil, config.AuditConfig{}, config.EngineConfig{}, nil)
}

func TestAuditServiceRequiresPeriod(t *testing.T) {
	svc := newAuditFixture(models.ReferenceSet{})

	_, err := svc.Audit(context.Background(), dto.AuditQuery{AcademicYear: "2026"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuditServiceComputesSummary(t *testing.T) {
	svc := newAuditFixture(models.ReferenceSet{}, courseDuplicateRoster()...)

	resp, err := svc.Audit(context.Background(), dto.AuditQuery{AcademicYear: "2026", Semester: "1"})
	require.NoError(t, err)

	assert.False(t, resp.FromCache, "no cache is configured")
	assert.False(t, resp.GeneratedAt.IsZero())
	assert.Equal(t, 1, resp.Summary.Total)
	assert.Equal(t, 1, resp.Summary.High)
	assert.Equal(t, 1, resp.Summary.AutoResolvable)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, models.ConflictCourseDuplicate, resp.Conflicts[0].Type)
}

func TestAuditServiceCleanPeriod(t *testing.T) {
	svc := newAuditFixture(models.ReferenceSet{}, existingSlot("s1"))

	resp, err := svc.Audit(context.Background(), dto.AuditQuery{AcademicYear: "2026", Semester: "1"})
	require.NoError(t, err)
	assert.Equal(t, dto.AuditSummary{}, resp.Summary)
	assert.Empty(t, resp.Conflicts)
}

func TestAuditServiceResolveDefaultBudget(t *testing.T) {
	roster, refs := tightScheduleFixture()
	repo := &slotRepoStub{slots: roster}
	svc := NewAuditService(repo, &refsStub{refs: refs}, nil, nil, nil,
		config.AuditConfig{}, config.EngineConfig{DefaultMaxRelaxation: 1}, nil)

	result, err := svc.Resolve(context.Background(), dto.AutoResolveRequest{
		AcademicYear:           "2026",
		Semester:               "1",
		AllowPartialResolution: true,
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []string{ConstraintBuildingTravel}, result.RelaxedConstraints)
}

func TestAuditServiceResolveExplicitBudgetWins(t *testing.T) {
	roster, refs := tightScheduleFixture()
	repo := &slotRepoStub{slots: roster}
	svc := NewAuditService(repo, &refsStub{refs: refs}, nil, nil, nil,
		config.AuditConfig{}, config.EngineConfig{DefaultMaxRelaxation: 3}, nil)

	zero := 0
	result, err := svc.Resolve(context.Background(), dto.AutoResolveRequest{
		AcademicYear:           "2026",
		Semester:               "1",
		MaxRelaxation:          &zero,
		AllowPartialResolution: true,
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, result.RelaxedConstraints)
}
