package models

// ConstraintType separates rules that must hold from rules that may be
// violated at a scored cost.
type ConstraintType string

const (
	ConstraintHard ConstraintType = "hard"
	ConstraintSoft ConstraintType = "soft"
)

// ConstraintCategory names the resource dimension a rule guards.
type ConstraintCategory string

const (
	CategoryRoom       ConstraintCategory = "room"
	CategoryFaculty    ConstraintCategory = "faculty"
	CategoryCourse     ConstraintCategory = "course"
	CategoryStudent    ConstraintCategory = "student"
	CategoryResource   ConstraintCategory = "resource"
	CategoryPreference ConstraintCategory = "preference"
)

// Constraint is a named scheduling rule. Hard constraints are never
// relaxable; soft ones carry a relaxation penalty.
type Constraint struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Type              ConstraintType     `json:"type"`
	Category          ConstraintCategory `json:"category"`
	Importance        int                `json:"importance"`
	CanRelax          bool               `json:"can_relax"`
	RelaxationPenalty float64            `json:"relaxation_penalty,omitempty"`
}

// ConstraintEvaluation reports whether a constraint holds for a context.
type ConstraintEvaluation struct {
	Satisfied bool     `json:"satisfied"`
	Penalty   float64  `json:"penalty"`
	Details   []string `json:"details,omitempty"`
}
