package domain

import "fmt"

// Workspace mutation kinds as reported by the editor.
const (
	MutationCreate = "create"
	MutationDelete = "delete"
	MutationChange = "change"
	MutationMove   = "move"
	MutationUI     = "ui"
)

const uiSelected = "selected"

// BlockResolver looks up the declared kind of a block. Unknown ids resolve to "".
type BlockResolver interface {
	ResolveBlockKind(id string) string
}

type BlockResolverFunc func(id string) string

func (f BlockResolverFunc) ResolveBlockKind(id string) string {
	return f(id)
}

func resolveKind(r BlockResolver, id string) string {
	if r == nil || id == "" {
		return ""
	}
	return r.ResolveBlockKind(id)
}

// Mutation is a raw workspace change notification. Which fields are set
// depends on Type.
type Mutation struct {
	Type          string   `json:"type"`
	WorkspaceID   string   `json:"workspaceId"`
	BlockID       string   `json:"blockId"`
	Group         string   `json:"group"`
	Element       string   `json:"element"`
	Name          string   `json:"name"`
	OldValue      any      `json:"oldValue"`
	NewValue      any      `json:"newValue"`
	XML           string   `json:"xml"`
	OldXML        string   `json:"oldXml"`
	IDs           []string `json:"ids"`
	OldParentID   string   `json:"oldParentId"`
	NewParentID   string   `json:"newParentId"`
	OldCoordinate any      `json:"oldCoordinate"`
	NewCoordinate any      `json:"newCoordinate"`
	OldInputName  string   `json:"oldInputName"`
	NewInputName  string   `json:"newInputName"`
}

// FromMutation builds the event variant for a mutation kind.
// It reports false for kinds it does not know.
func FromMutation(m Mutation, r BlockResolver) (Event, bool) {
	switch m.Type {
	case MutationChange:
		return NewChangeEvent(m, r), true
	case MutationMove:
		return NewMoveEvent(m, r), true
	case MutationDelete:
		return NewDeleteEvent(m, r), true
	case MutationCreate:
		return NewCreateEvent(m, r), true
	case MutationUI:
		return NewUIEvent(m, r), true
	default:
		return nil, false
	}
}

// WorkspaceEvent holds what every mutation record carries. It is only used
// embedded in a concrete variant.
type WorkspaceEvent struct {
	Base

	// StreamID is the id of the workspace the mutation originated in.
	StreamID  string
	BlockID   string
	Group     string
	BlockKind string
}

func newWorkspaceEvent(m Mutation, r BlockResolver) WorkspaceEvent {
	return WorkspaceEvent{
		Base:      newBase(m.Type),
		StreamID:  m.WorkspaceID,
		BlockID:   m.BlockID,
		Group:     m.Group,
		BlockKind: resolveKind(r, m.BlockID),
	}
}

func (e *WorkspaceEvent) Render() Record {
	r := e.header()
	r["streamId"] = e.StreamID
	r["blockId"] = e.BlockID
	r["group"] = e.Group
	r["blockKind"] = e.BlockKind
	return r
}

type UIEvent struct {
	WorkspaceEvent

	UIKind   string
	OldValue any
	NewValue any

	selectedKind string
}

func NewUIEvent(m Mutation, r BlockResolver) *UIEvent {
	e := &UIEvent{
		WorkspaceEvent: newWorkspaceEvent(m, r),
		UIKind:         m.Element,
		OldValue:       orEmpty(m.OldValue),
		NewValue:       orEmpty(m.NewValue),
	}
	if e.UIKind == uiSelected {
		e.selectedKind = resolveKind(r, e.selectedID())
	}
	return e
}

// orEmpty keeps absent notification values as "" in the record.
func orEmpty(v any) any {
	if v == nil {
		return ""
	}
	return v
}

func (e *UIEvent) selectedID() string {
	switch v := e.NewValue.(type) {
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Render reports a selection against the newly selected block rather than
// the block the notification came from.
func (e *UIEvent) Render() Record {
	r := e.WorkspaceEvent.Render()
	if e.UIKind == uiSelected {
		r["blockId"] = e.selectedID()
		r["blockKind"] = e.selectedKind
	}
	r["uiKind"] = e.UIKind
	r["oldValue"] = e.OldValue
	r["newValue"] = e.NewValue
	return r
}

type ChangeEvent struct {
	UIEvent

	FieldName string
}

func NewChangeEvent(m Mutation, r BlockResolver) *ChangeEvent {
	return &ChangeEvent{
		UIEvent:   *NewUIEvent(m, r),
		FieldName: m.Name,
	}
}

func (e *ChangeEvent) Render() Record {
	r := e.UIEvent.Render()
	r["fieldName"] = e.FieldName
	return r
}

// snapshotEvent is shared by create and delete.
type snapshotEvent struct {
	WorkspaceEvent

	XMLSnapshot string
	AffectedIDs []string
}

func newSnapshotEvent(m Mutation, r BlockResolver, xml string) snapshotEvent {
	ids := make([]string, len(m.IDs))
	copy(ids, m.IDs)
	return snapshotEvent{
		WorkspaceEvent: newWorkspaceEvent(m, r),
		XMLSnapshot:    xml,
		AffectedIDs:    ids,
	}
}

func (e *snapshotEvent) Render() Record {
	r := e.WorkspaceEvent.Render()
	ids := make([]string, len(e.AffectedIDs))
	copy(ids, e.AffectedIDs)
	r["xmlSnapshot"] = e.XMLSnapshot
	r["affectedIds"] = ids
	return r
}

type CreateEvent struct {
	snapshotEvent
}

func NewCreateEvent(m Mutation, r BlockResolver) *CreateEvent {
	return &CreateEvent{snapshotEvent: newSnapshotEvent(m, r, m.XML)}
}

// DeleteEvent keeps the snapshot taken before the blocks were removed.
type DeleteEvent struct {
	snapshotEvent
}

func NewDeleteEvent(m Mutation, r BlockResolver) *DeleteEvent {
	return &DeleteEvent{snapshotEvent: newSnapshotEvent(m, r, m.OldXML)}
}

type MoveEvent struct {
	WorkspaceEvent

	OldParentID        string
	NewParentID        string
	OldParentBlockKind string
	NewParentBlockKind string
	OldCoordinate      any
	NewCoordinate      any
	OldInputName       string
	NewInputName       string
}

func NewMoveEvent(m Mutation, r BlockResolver) *MoveEvent {
	return &MoveEvent{
		WorkspaceEvent:     newWorkspaceEvent(m, r),
		OldParentID:        m.OldParentID,
		NewParentID:        m.NewParentID,
		OldParentBlockKind: resolveKind(r, m.OldParentID),
		NewParentBlockKind: resolveKind(r, m.NewParentID),
		OldCoordinate:      orEmpty(m.OldCoordinate),
		NewCoordinate:      orEmpty(m.NewCoordinate),
		OldInputName:       m.OldInputName,
		NewInputName:       m.NewInputName,
	}
}

func (e *MoveEvent) Render() Record {
	r := e.WorkspaceEvent.Render()
	r["oldParentId"] = e.OldParentID
	r["newParentId"] = e.NewParentID
	r["oldParentBlockKind"] = e.OldParentBlockKind
	r["newParentBlockKind"] = e.NewParentBlockKind
	r["oldCoordinate"] = e.OldCoordinate
	r["newCoordinate"] = e.NewCoordinate
	r["oldInputName"] = e.OldInputName
	r["newInputName"] = e.NewInputName
	return r
}
