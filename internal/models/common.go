// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns the id so the pattern works on any storage engine.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Classification is the outcome of comparing one observation against the
// stored state of the same product.
type Classification string

const (
	ClassificationFirstSeen      Classification = "first_seen"
	ClassificationPriceUnchanged Classification = "price_unchanged"
	ClassificationPriceDropped   Classification = "price_dropped"
	ClassificationPriceIncreased Classification = "price_increased"
	ClassificationNowHidden      Classification = "now_hidden"
	ClassificationStillHidden    Classification = "still_hidden"
)

type NotificationMethod string

const (
	NotificationMethodConsole NotificationMethod = "console"
	NotificationMethodEmail   NotificationMethod = "email"
)
