package entity

// ChangeAction is the kind of write that produced a change event.
type ChangeAction string

const (
	ChangeCreated ChangeAction = "created"
	ChangeUpdated ChangeAction = "updated"
	ChangeDeleted ChangeAction = "deleted"
)

// ChangeEvent is published after a write commits.
type ChangeEvent struct {
	Kind   EntityKind
	ID     uint
	Action ChangeAction

	// ParentIDs are the owning categories of a service (old and new) or
	// cities of a district, used to pick cache keys.
	ParentIDs []uint

	// MasterIDs are the masters referencing a deleted reference row,
	// resolved before the foreign keys were cleared.
	MasterIDs []uint
}
