package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/hupe1980/agora/core"
	"gorm.io/gorm"
)

// transcriptRow is the GORM persistence model for a Record. The transcript is
// stored as a JSON column; rows are only ever written once per run.
type transcriptRow struct {
	RunID       string `gorm:"primaryKey"`
	Topic       string
	Mode        string
	Status      string
	CreatedAt   time.Time
	CompletedAt time.Time
	Transcript  []byte
}

func (transcriptRow) TableName() string { return "transcripts" }

// SQLiteSink persists Records in a SQLite database via GORM. The pure-Go
// driver keeps the binary cgo-free.
type SQLiteSink struct {
	db *gorm.DB
}

// NewSQLiteSink opens (or creates) the database at dsn and migrates the schema.
func NewSQLiteSink(dsn string) (*SQLiteSink, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	return NewSQLiteSinkFromDB(db)
}

// NewSQLiteSinkFromDB wraps an existing GORM handle, migrating the schema.
func NewSQLiteSinkFromDB(db *gorm.DB) (*SQLiteSink, error) {
	if err := db.AutoMigrate(&transcriptRow{}); err != nil {
		return nil, fmt.Errorf("migrate transcripts table: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

// Save implements Sink.
func (s *SQLiteSink) Save(ctx context.Context, rec Record) error {
	transcript, err := json.Marshal(rec.Transcript)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	row := transcriptRow{
		RunID:       rec.RunID,
		Topic:       rec.Topic,
		Mode:        string(rec.Mode),
		Status:      string(rec.Status),
		CreatedAt:   rec.CreatedAt,
		CompletedAt: rec.CompletedAt,
		Transcript:  transcript,
	}
	return s.db.WithContext(ctx).Save(&row).Error
}

// Load implements Sink.
func (s *SQLiteSink) Load(ctx context.Context, runID string) (Record, error) {
	var row transcriptRow
	err := s.db.WithContext(ctx).First(&row, "run_id = ?", runID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, core.ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	var transcript core.Transcript
	if len(row.Transcript) > 0 {
		if err := json.Unmarshal(row.Transcript, &transcript); err != nil {
			return Record{}, fmt.Errorf("unmarshal transcript: %w", err)
		}
	}
	return Record{
		RunID:       row.RunID,
		Topic:       row.Topic,
		Mode:        core.Mode(row.Mode),
		Status:      core.Status(row.Status),
		CreatedAt:   row.CreatedAt,
		CompletedAt: row.CompletedAt,
		Transcript:  transcript,
	}, nil
}
