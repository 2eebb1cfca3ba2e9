package auth

import (
	"context"
	"fmt"
	"time"

	"shopfloor-console/internal/infra/sql"
)

// The kiosk keeps exactly one session across restarts.
const _sessionRowID = 1

type sessionRecord struct {
	ID        int    `gorm:"primaryKey"`
	Token     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (sessionRecord) TableName() string {
	return "sessions"
}

type Store struct {
	orm sql.ORM
}

func NewStore(orm sql.ORM) (*Store, error) {
	if err := orm.AutoMigrate(&sessionRecord{}); err != nil {
		return nil, fmt.Errorf("migrating sessions table: %w", err)
	}

	return &Store{orm: orm}, nil
}

func (s *Store) Save(ctx context.Context, token string) error {
	record := sessionRecord{ID: _sessionRowID, Token: token, UpdatedAt: time.Now().UTC()}
	if err := s.orm.WithContext(ctx).Save(&record).Error(); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	return nil
}

// Load returns sql.ErrRecordNotFound when no session was ever saved.
func (s *Store) Load(ctx context.Context) (string, error) {
	var record sessionRecord
	if err := s.orm.WithContext(ctx).First(&record, _sessionRowID).Error(); err != nil {
		return "", err
	}

	return record.Token, nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.orm.WithContext(ctx).Delete(&sessionRecord{}, _sessionRowID).Error(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}

	return nil
}
