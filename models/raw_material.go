package models

import (
	"fmt"
	"time"
)

// Unit is the unit of measure a raw material is tracked in.
type Unit string

const (
	UnitMeter       Unit = "m"
	UnitSquareMeter Unit = "m2"
	UnitKilogram    Unit = "kg"
	UnitPiece       Unit = "pcs"
)

// ParseUnit validates a unit string coming from an external caller.
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case UnitMeter, UnitSquareMeter, UnitKilogram, UnitPiece:
		return Unit(s), nil
	}
	return "", fmt.Errorf("unknown unit %q", s)
}

// RawMaterial is a purchasable input material. Its unit is the source of
// truth for the unit stored on BOM entries and warehouse batches.
type RawMaterial struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Unit      Unit   `gorm:"type:varchar(10);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (m *RawMaterial) TableName() string {
	return "raw_materials"
}
