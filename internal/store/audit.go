// Package store persists audit records to a relational database.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shiplink/fedexgate/pkg/audit"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// APILog is the relational form of one audit record. One row per outbound
// carrier call, append-only.
type APILog struct {
	ID              string    `gorm:"primaryKey"`
	AccountID       *string   `gorm:"index"`
	Endpoint        string    `gorm:"not null"`
	Method          string    `gorm:"not null"`
	RequestPayload  string    `gorm:"type:text"`
	ResponsePayload string    `gorm:"type:text"`
	StatusCode      *int
	CreatedAt       time.Time `gorm:"index"`
}

// TableName keeps the table name aligned with the audit trail it stores.
func (APILog) TableName() string {
	return "api_logs"
}

// AuditStore is a Postgres-backed audit sink.
type AuditStore struct {
	db *gorm.DB
}

// Open connects to Postgres and migrates the api_logs table.
func Open(dsn string) (*AuditStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to audit database: %w", err)
	}
	if err := db.AutoMigrate(&APILog{}); err != nil {
		return nil, fmt.Errorf("migrating audit schema: %w", err)
	}
	return &AuditStore{db: db}, nil
}

// NewAuditStore wraps an existing database handle.
func NewAuditStore(db *gorm.DB) *AuditStore {
	return &AuditStore{db: db}
}

// Append inserts one audit record.
func (s *AuditStore) Append(ctx context.Context, rec *audit.Record) error {
	row := &APILog{
		ID:              rec.ID,
		Endpoint:        rec.Endpoint,
		Method:          rec.Method,
		RequestPayload:  rec.RequestPayload,
		ResponsePayload: rec.ResponsePayload,
		StatusCode:      rec.StatusCode,
		CreatedAt:       rec.Timestamp,
	}
	if rec.AccountID != "" {
		accountID := rec.AccountID
		row.AccountID = &accountID
	}
	return s.db.WithContext(ctx).Create(row).Error
}

// Recent returns the latest rows, newest first.
func (s *AuditStore) Recent(ctx context.Context, limit int) ([]*APILog, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []*APILog
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ListByAccount returns an account's rows, newest first.
func (s *AuditStore) ListByAccount(ctx context.Context, accountID string, limit int) ([]*APILog, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []*APILog
	err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Ensure AuditStore implements audit.Sink
var _ audit.Sink = (*AuditStore)(nil)
