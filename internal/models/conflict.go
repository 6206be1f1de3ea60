package models

// ConflictSeverity grades a candidate-validation finding.
type ConflictSeverity string

const (
	SeverityError   ConflictSeverity = "error"
	SeverityWarning ConflictSeverity = "warning"
)

// AuditSeverity grades a whole-schedule audit finding.
type AuditSeverity string

const (
	AuditHigh   AuditSeverity = "high"
	AuditMedium AuditSeverity = "medium"
	AuditLow    AuditSeverity = "low"
)

// ConflictType names the rule a finding violated.
type ConflictType string

const (
	ConflictMissingField     ConflictType = "missing-field"
	ConflictTimeFormat       ConflictType = "time-format"
	ConflictTimeOrder        ConflictType = "time-order"
	ConflictDuplicateSlot    ConflictType = "duplicate-slot"
	ConflictFacultyOverlap   ConflictType = "faculty-overlap"
	ConflictRoomOverlap      ConflictType = "room-overlap"
	ConflictCourseDuplicate  ConflictType = "course-duplicate"
	ConflictCohortOverlap    ConflictType = "cohort-overlap"
	ConflictDuration         ConflictType = "duration"
	ConflictJointComposition ConflictType = "joint-composition"
	ConflictSplitComposition ConflictType = "split-composition"
	ConflictStudentOverlap   ConflictType = "student-overlap"
	ConflictRoomTypeMismatch ConflictType = "room-type-mismatch"
	ConflictRoomCapacity     ConflictType = "room-capacity"
	ConflictTightSchedule    ConflictType = "schedule-tightness"
)

// Conflict is one finding raised while validating a candidate slot.
// Conflicts are data, not errors: the validator never fails for a
// well-formed candidate describing a real scheduling collision.
type Conflict struct {
	Type              ConflictType     `json:"type"`
	Severity          ConflictSeverity `json:"severity"`
	Message           string           `json:"message"`
	ConflictingSlotID string           `json:"conflicting_slot_id,omitempty"`
}

// ConflictResult is the candidate-validation verdict. CanProceed is true
// iff no conflict carries error severity.
type ConflictResult struct {
	HasConflicts bool       `json:"has_conflicts"`
	Conflicts    []Conflict `json:"conflicts"`
	CanProceed   bool       `json:"can_proceed"`
	Suggestions  []string   `json:"suggestions,omitempty"`
}

// ResolutionActionKind enumerates the structural repairs the resolver can propose.
type ResolutionActionKind string

const (
	ActionMove   ResolutionActionKind = "move"
	ActionSwap   ResolutionActionKind = "swap"
	ActionRelax  ResolutionActionKind = "relax"
	ActionSplit  ResolutionActionKind = "split"
	ActionMerge  ResolutionActionKind = "merge"
	ActionCancel ResolutionActionKind = "cancel"
)

// ResolutionAction is one concrete change within a suggestion.
type ResolutionAction struct {
	Kind         ResolutionActionKind `json:"kind"`
	SlotID       string               `json:"slot_id,omitempty"`
	NewDayOfWeek int                  `json:"new_day_of_week,omitempty"`
	NewStartTime string               `json:"new_start_time,omitempty"`
	NewEndTime   string               `json:"new_end_time,omitempty"`
	NewRoomID    string               `json:"new_room_id,omitempty"`
	NewFacultyID string               `json:"new_faculty_id,omitempty"`
	SwapSlotID   string               `json:"swap_slot_id,omitempty"`
	Constraints  []string             `json:"constraints,omitempty"`
}

// ResolutionSuggestion is a proposed fix for one conflict, scored by the
// cost of applying it and the confidence it will not create new conflicts.
type ResolutionSuggestion struct {
	Description        string             `json:"description"`
	Actions            []ResolutionAction `json:"actions"`
	ImpactScore        float64            `json:"impact_score"`
	SuccessProbability float64            `json:"success_probability"`
}

// EnhancedConflict is a whole-schedule audit finding enriched with ranked
// resolution suggestions.
type EnhancedConflict struct {
	ID             string                 `json:"id"`
	Type           ConflictType           `json:"type"`
	Description    string                 `json:"description"`
	Details        []string               `json:"details,omitempty"`
	Severity       AuditSeverity          `json:"severity"`
	AffectedSlots  []string               `json:"affected_slots"`
	Resolved       bool                   `json:"resolved"`
	Constraints    []string               `json:"constraints,omitempty"`
	Suggestions    []ResolutionSuggestion `json:"resolution_suggestions,omitempty"`
	Score          float64                `json:"conflict_score"`
	AutoResolvable bool                   `json:"auto_resolvable"`
}

// ResolveOptions bounds an auto-resolution run.
type ResolveOptions struct {
	MaxRelaxation          int  `json:"max_relaxation"`
	PreservePreferences    bool `json:"preserve_preferences"`
	AllowPartialResolution bool `json:"allow_partial_resolution"`
}

// ResolutionResult reports the outcome of an auto-resolution run. The
// resolved roster is a working copy; the caller decides whether to persist
// it through ordinary slot updates.
type ResolutionResult struct {
	Success            bool               `json:"success"`
	ResolvedSlots      []TimeSlot         `json:"resolved_slots"`
	RemainingConflicts []EnhancedConflict `json:"remaining_conflicts"`
	RelaxedConstraints []string           `json:"relaxed_constraints"`
	SuccessRate        float64            `json:"success_rate"`
}
