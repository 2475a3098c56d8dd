package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/spec-kit/ticket-api/internal/domain"
	"github.com/spec-kit/ticket-api/internal/events"
	"github.com/spec-kit/ticket-api/internal/repository"
	apperrors "github.com/spec-kit/ticket-api/pkg/util/errorutil"
)

type recordedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordedEvents) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordedEvents) count(et events.EventType) int {
	n := 0
	for _, got := range r.types() {
		if got == et {
			n++
		}
	}
	return n
}

func (r *recordedEvents) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestService(t *testing.T) (*TicketService, repository.TicketRepository, *recordedEvents) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrateSQL(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := repository.NewSQLTicketRepository(db)
	dispatcher := events.NewInMemoryDispatcher()
	rec := &recordedEvents{}
	for _, et := range []events.EventType{events.EventTicketCreated, events.EventTicketUpdated, events.EventTicketDeleted} {
		dispatcher.Subscribe(et, rec.handle)
	}

	var clockMu sync.Mutex
	clock := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := NewTicketService(TicketDependencies{
		TicketRepo: repo,
		Dispatcher: dispatcher,
		Clock: func() time.Time {
			clockMu.Lock()
			defer clockMu.Unlock()
			clock = clock.Add(time.Second)
			return clock
		},
	})
	return svc, repo, rec
}

func createInput() TicketCreateInput {
	return TicketCreateInput{
		Title:       "Printer jam",
		Description: "Paper stuck in tray 2",
		ReporterID:  uuid.NewString(),
		Status:      domain.TicketStatusNew,
		Priority:    domain.TicketPriorityMedium,
		Type:        domain.TicketTypeIncident,
	}
}

func TestTicketService_CreateThenGet(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createInput())
	require.NoError(t, err)
	_, err = uuid.Parse(created.ID)
	assert.NoError(t, err)
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

	got, found, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, created.ReporterID, got.ReporterID)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

	assert.Equal(t, []events.EventType{events.EventTicketCreated}, rec.types())
}

func TestTicketService_GetMissingIsNotAnError(t *testing.T) {
	svc, _, _ := newTestService(t)

	got, found, err := svc.GetByID(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestTicketService_UpdateReplacesFields(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, createInput())
	require.NoError(t, err)

	assignee := uuid.NewString()
	updated, err := svc.Update(ctx, created.ID, TicketUpdateInput{
		Title:        "Printer fixed",
		Description:  "Replaced roller",
		Status:       domain.TicketStatusResolved,
		Priority:     domain.TicketPriorityLow,
		Type:         domain.TicketTypeServiceRequest,
		AssignedToID: &assignee,
	})
	require.NoError(t, err)

	assert.Equal(t, "Printer fixed", updated.Title)
	assert.Equal(t, domain.TicketStatusResolved, updated.Status)
	require.NotNil(t, updated.AssignedToID)
	assert.Equal(t, assignee, *updated.AssignedToID)
	assert.Equal(t, created.ReporterID, updated.ReporterID)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	assert.Equal(t, []events.EventType{events.EventTicketCreated, events.EventTicketUpdated}, rec.types())
}

func TestTicketService_PatchChangesOnlySuppliedFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	input := createInput()
	assignee := uuid.NewString()
	input.AssignedToID = &assignee
	created, err := svc.Create(ctx, input)
	require.NoError(t, err)

	status := domain.TicketStatusInProgress
	patched, err := svc.Patch(ctx, created.ID, TicketPatchInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, patched.Status)
	assert.Equal(t, created.Title, patched.Title)
	require.NotNil(t, patched.AssignedToID)
	assert.True(t, patched.UpdatedAt.After(created.UpdatedAt))

	cleared, err := svc.Patch(ctx, created.ID, TicketPatchInput{SetAssignedTo: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.AssignedToID)
}

func TestTicketService_MutationsOnMissingTicket(t *testing.T) {
	svc, repo, rec := newTestService(t)
	ctx := context.Background()
	id := uuid.NewString()
	title := "ghost"

	_, err := svc.Patch(ctx, id, TicketPatchInput{Title: &title})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeTicketNotFound))

	_, err = svc.Update(ctx, id, TicketUpdateInput{
		Title:       "ghost",
		Description: "ghost",
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityHigh,
		Type:        domain.TicketTypeQuestion,
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeTicketNotFound))

	err = svc.Delete(ctx, id)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeTicketNotFound))
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)

	all, err := repo.Scan(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, rec.types())
}

func TestTicketService_DeleteRemovesTicket(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, createInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, found, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, found)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, []events.EventType{events.EventTicketCreated, events.EventTicketDeleted}, rec.types())
}

func TestTicketService_ConcurrentDeleteHasOneWinner(t *testing.T) {
	svc, repo, rec := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, createInput())
	require.NoError(t, err)

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = svc.Delete(ctx, created.ID)
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperrors.IsCode(err, apperrors.CodeTicketNotFound), err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rec.count(events.EventTicketDeleted))

	all, err := repo.Scan(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTicketService_ConcurrentUpdateAndDelete(t *testing.T) {
	svc, repo, rec := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, createInput())
	require.NoError(t, err)
	keep, err := svc.Create(ctx, createInput())
	require.NoError(t, err)

	const workers = 6
	deleteErrs := make([]error, workers)
	updateErrs := make([]error, workers)
	updated := make([]*domain.Ticket, workers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			<-start
			deleteErrs[i] = svc.Delete(ctx, created.ID)
		}(i)
		go func(i int) {
			defer wg.Done()
			<-start
			title := fmt.Sprintf("edit %d", i)
			if i%2 == 0 {
				updated[i], updateErrs[i] = svc.Patch(ctx, created.ID, TicketPatchInput{Title: &title})
				return
			}
			updated[i], updateErrs[i] = svc.Update(ctx, created.ID, TicketUpdateInput{
				Title:       title,
				Description: "raced",
				Status:      domain.TicketStatusOpen,
				Priority:    domain.TicketPriorityHigh,
				Type:        domain.TicketTypeQuestion,
			})
		}(i)
	}
	close(start)
	wg.Wait()

	deleted := 0
	for _, err := range deleteErrs {
		if err == nil {
			deleted++
			continue
		}
		assert.True(t, apperrors.IsCode(err, apperrors.CodeTicketNotFound), err)
	}
	assert.Equal(t, 1, deleted)

	applied := 0
	for i, err := range updateErrs {
		if err == nil {
			applied++
			require.NotNil(t, updated[i])
			assert.Equal(t, created.ID, updated[i].ID)
			continue
		}
		assert.True(t, apperrors.IsCode(err, apperrors.CodeTicketNotFound), err)
		assert.Nil(t, updated[i])
	}
	assert.Equal(t, applied, rec.count(events.EventTicketUpdated))

	all, err := repo.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, keep.ID, all[0].ID)

	_, found, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestChangedFields(t *testing.T) {
	title := "x"
	fields := changedFields(domain.TicketChanges{Title: &title, SetAssignedTo: true})
	assert.Equal(t, []string{"title", "assignedToId"}, fields)
}
