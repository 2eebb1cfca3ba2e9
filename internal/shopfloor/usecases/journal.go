package usecases

import (
	"context"
	"fmt"
	"time"

	"shopfloor-console/internal/infra/sql"
	"shopfloor-console/internal/infra/utils"
)

// ActionRecord is one dispatched operator action, journaled locally so
// supervisors can trace who pressed what even when the backend is the
// one that judged the outcome.
type ActionRecord struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	TaskID        int64     `json:"task_id"`
	MachineIDCode string    `json:"machine_id_code"`
	Action        string    `json:"action"`
	Reason        string    `json:"reason,omitempty"`
	Actor         string    `json:"actor"`
	CreatedAt     time.Time `json:"created_at"`
}

func (ActionRecord) TableName() string {
	return "operator_actions"
}

type Journal struct {
	orm sql.ORM
}

func NewJournal(orm sql.ORM) (*Journal, error) {
	if err := orm.AutoMigrate(&ActionRecord{}); err != nil {
		return nil, fmt.Errorf("migrating operator_actions table: %w", err)
	}

	return &Journal{orm: orm}, nil
}

func (j *Journal) Append(ctx context.Context, record ActionRecord) error {
	record.ID = utils.GenerateUUID()
	record.CreatedAt = time.Now().UTC()

	if err := j.orm.WithContext(ctx).Create(&record).Error(); err != nil {
		return fmt.Errorf("journaling action: %w", err)
	}

	return nil
}

// Recent returns the newest records first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]ActionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	var records []ActionRecord
	if err := j.orm.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&records).Error(); err != nil {
		return nil, fmt.Errorf("listing action journal: %w", err)
	}

	return records, nil
}
