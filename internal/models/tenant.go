package models

import (
	"time"

	"github.com/google/uuid"
)

// AcademicType classifies the kind of institution a tenant runs.
type AcademicType string

const (
	// AcademicTypeUnconfigured is the wildcard state of a tenant that has not
	// finished onboarding. It accepts snapshots of any declared type.
	AcademicTypeUnconfigured AcademicType = "unconfigured"
	// AcademicTypeK12 is a primary/secondary school.
	AcademicTypeK12 AcademicType = "k12"
	// AcademicTypeHigherEd is a college or university.
	AcademicTypeHigherEd AcademicType = "higher_ed"
	// AcademicTypeLanguage is a language course school.
	AcademicTypeLanguage AcademicType = "language"
	// AcademicTypeVocational is a technical/vocational school.
	AcademicTypeVocational AcademicType = "vocational"
)

// ValidAcademicTypes returns all valid academic types.
func ValidAcademicTypes() []AcademicType {
	return []AcademicType{
		AcademicTypeUnconfigured,
		AcademicTypeK12,
		AcademicTypeHigherEd,
		AcademicTypeLanguage,
		AcademicTypeVocational,
	}
}

// IsValidAcademicType checks if the academic type is valid.
func IsValidAcademicType(t AcademicType) bool {
	for _, valid := range ValidAcademicTypes() {
		if t == valid {
			return true
		}
	}
	return false
}

// Tenant represents an institution whose data is fully isolated from all
// other institutions sharing the platform.
type Tenant struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Slug         string       `json:"slug"`
	AcademicType AcademicType `json:"academic_type"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewTenant creates a new Tenant in the unconfigured state.
func NewTenant(name, slug string) *Tenant {
	now := time.Now()
	return &Tenant{
		ID:           uuid.New(),
		Name:         name,
		Slug:         slug,
		AcademicType: AcademicTypeUnconfigured,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
