package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/spec-kit/ticket-api/internal/domain"
)

// TicketRecord is the gorm row of the tickets table.
type TicketRecord struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)"`
	Title        string    `gorm:"size:255;not null"`
	Description  string    `gorm:"size:1000;not null"`
	Status       string    `gorm:"size:32;not null"`
	ReporterID   string    `gorm:"type:varchar(36);not null"`
	AssignedToID *string   `gorm:"type:varchar(36)"`
	Priority     string    `gorm:"size:32;not null"`
	TicketType   string    `gorm:"column:ticket_type;size:32;not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName pins the table name.
func (TicketRecord) TableName() string {
	return "tickets"
}

type sqlTicketRepository struct {
	db *gorm.DB
}

// NewSQLTicketRepository instantiates the gorm-backed repository.
func NewSQLTicketRepository(db *gorm.DB) TicketRepository {
	return &sqlTicketRepository{db: db}
}

// AutoMigrateSQL creates or updates the tickets table.
func AutoMigrateSQL(db *gorm.DB) error {
	return db.AutoMigrate(&TicketRecord{})
}

func (r *sqlTicketRepository) Put(ctx context.Context, ticket *domain.Ticket) error {
	record := toRecord(ticket)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

func (r *sqlTicketRepository) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	var record TicketRecord
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return record.toDomain(), nil
}

func (r *sqlTicketRepository) Scan(ctx context.Context) ([]domain.Ticket, error) {
	var records []TicketRecord
	if err := r.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("scan tickets: %w", err)
	}
	result := make([]domain.Ticket, 0, len(records))
	for i := range records {
		result = append(result, *records[i].toDomain())
	}
	return result, nil
}

// Update runs the conditional UPDATE and the read-back in one transaction.
// RowsAffected on the UPDATE is the existence check.
func (r *sqlTicketRepository) Update(ctx context.Context, id string, changes domain.TicketChanges) (*domain.Ticket, error) {
	var record TicketRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&TicketRecord{}).Where("id = ?", id).Updates(sqlUpdateColumns(changes))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConditionFailed
		}
		return tx.First(&record, "id = ?", id).Error
	})
	if errors.Is(err, ErrConditionFailed) {
		return nil, ErrConditionFailed
	}
	if err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}
	return record.toDomain(), nil
}

func (r *sqlTicketRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&TicketRecord{})
	if res.Error != nil {
		return fmt.Errorf("delete ticket: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConditionFailed
	}
	return nil
}

func (r *sqlTicketRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func sqlUpdateColumns(changes domain.TicketChanges) map[string]any {
	columns := map[string]any{"updated_at": changes.UpdatedAt.UTC()}
	if changes.Title != nil {
		columns["title"] = *changes.Title
	}
	if changes.Description != nil {
		columns["description"] = *changes.Description
	}
	if changes.Status != nil {
		columns["status"] = string(*changes.Status)
	}
	if changes.Priority != nil {
		columns["priority"] = string(*changes.Priority)
	}
	if changes.Type != nil {
		columns["ticket_type"] = string(*changes.Type)
	}
	if changes.SetAssignedTo {
		columns["assigned_to_id"] = changes.AssignedToID
	}
	return columns
}

func toRecord(t *domain.Ticket) TicketRecord {
	return TicketRecord{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       string(t.Status),
		ReporterID:   t.ReporterID,
		AssignedToID: t.AssignedToID,
		Priority:     string(t.Priority),
		TicketType:   string(t.Type),
		CreatedAt:    t.CreatedAt.UTC(),
		UpdatedAt:    t.UpdatedAt.UTC(),
	}
}

func (r *TicketRecord) toDomain() *domain.Ticket {
	return &domain.Ticket{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Status:       domain.TicketStatus(r.Status),
		ReporterID:   r.ReporterID,
		AssignedToID: r.AssignedToID,
		Priority:     domain.TicketPriority(r.Priority),
		Type:         domain.TicketType(r.TicketType),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}
