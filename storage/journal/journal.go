// Package journal persists ledger events to a SQL database so they can be
// queried after the fact.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stablestake/core/events"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// Record is a single persisted event.
type Record struct {
	Seq        uint64    `gorm:"primaryKey;autoIncrement" json:"seq"`
	EventID    uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"id"`
	Type       string    `gorm:"index;not null" json:"type"`
	Account    string    `gorm:"index" json:"account,omitempty"`
	Attributes string    `gorm:"type:text" json:"-"`
	RecordedAt time.Time `gorm:"index" json:"recordedAt"`
}

// TableName pins the table name independent of gorm pluralisation.
func (Record) TableName() string { return "ledger_events" }

// Attrs decodes the stored attribute map.
func (r Record) Attrs() map[string]string {
	out := map[string]string{}
	if r.Attributes == "" {
		return out
	}
	_ = json.Unmarshal([]byte(r.Attributes), &out)
	return out
}

// MarshalJSON renders attributes as an object rather than the stored string.
func (r Record) MarshalJSON() ([]byte, error) {
	type alias Record
	return json.Marshal(struct {
		alias
		Attributes map[string]string `json:"attributes"`
	}{alias: alias(r), Attributes: r.Attrs()})
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Account string
	Type    string
	Limit   int
}

// Journal writes emitted events to the events table.
type Journal struct {
	db     *gorm.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open connects to driver ("sqlite" or "postgres") at dsn and migrates the
// schema.
func Open(driver, dsn string) (*Journal, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("journal: unsupported driver %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", driver, err)
	}
	return New(db)
}

// New wraps an existing connection and migrates the schema.
func New(db *gorm.DB) (*Journal, error) {
	if db == nil {
		return nil, errors.New("journal: nil database")
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("journal: migrate: %w", err)
	}
	return &Journal{db: db, logger: slog.Default(), now: time.Now}, nil
}

// SetLogger overrides the logger used to report write failures.
func (j *Journal) SetLogger(l *slog.Logger) {
	if l != nil {
		j.logger = l
	}
}

// Emit implements events.Emitter. Write failures are logged and dropped; the
// ledger state is already committed when events are published.
func (j *Journal) Emit(evt events.Event) {
	if j == nil || evt == nil {
		return
	}
	if err := j.Append(context.Background(), evt); err != nil {
		j.logger.Error("journal write failed", "type", evt.EventType(), "error", err)
	}
}

// Append persists evt.
func (j *Journal) Append(ctx context.Context, evt events.Event) error {
	attrs := events.Attributes(evt)
	encoded, err := json.Marshal(attrs)
	if err != nil {
		return err
	}
	record := Record{
		EventID:    uuid.New(),
		Type:       evt.EventType(),
		Account:    attrs["account"],
		Attributes: string(encoded),
		RecordedAt: j.now().UTC(),
	}
	return j.db.WithContext(ctx).Create(&record).Error
}

// List returns the newest records matching filter first.
func (j *Journal) List(ctx context.Context, filter Filter) ([]Record, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	query := j.db.WithContext(ctx).Model(&Record{})
	if filter.Account != "" {
		query = query.Where("account = ?", filter.Account)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	var out []Record
	if err := query.Order("seq DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Close releases the underlying connection pool.
func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
