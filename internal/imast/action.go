package imast

import "github.com/mike-fabian/m17n-lib-sub004/internal/errors"

// Action is any node of the action language.
type Action interface {
	actionNode()
	Pos() errors.Position
	String() string
}

// ActionList is a sequence of actions executed in order; execution stops
// at the first action that signals Unhandled.
type ActionList []Action

// InsertAction inserts literal text, an integer code point, a variable's
// value (Symbol), or a candidate-group list at the cursor.
type InsertAction struct {
	Text     *string
	Int      *int
	Symbol   string // resolved via vars at runtime; empty if unused
	Groups   [][]string
	Position errors.Position
}

func (*InsertAction) actionNode()              {}
func (n *InsertAction) Pos() errors.Position   { return n.Position }
func (n *InsertAction) String() string         { return "insert" }

// DeleteAction deletes from the cursor to Target.
type DeleteAction struct {
	Target   Expr
	Position errors.Position
}

func (*DeleteAction) actionNode()            {}
func (n *DeleteAction) Pos() errors.Position { return n.Position }
func (n *DeleteAction) String() string       { return "delete " + n.Target.String() }

// MoveAction moves the cursor to Target (clamped to [0, len]).
type MoveAction struct {
	Target   Expr
	Position errors.Position
}

func (*MoveAction) actionNode()            {}
func (n *MoveAction) Pos() errors.Position { return n.Position }
func (n *MoveAction) String() string       { return "move " + n.Target.String() }

// MarkAction stores the cursor position under a named marker.
type MarkAction struct {
	Marker   string
	Position errors.Position
}

func (*MarkAction) actionNode()            {}
func (n *MarkAction) Pos() errors.Position { return n.Position }
func (n *MarkAction) String() string       { return "mark " + n.Marker }

// PushbackAction rewinds or replaces pending keys.
type PushbackAction struct {
	N        *int     // positive: rewind by N; non-positive: set key_head to N
	Keys     []string // non-nil: replace pending keys from key_head-1
	Position errors.Position
}

func (*PushbackAction) actionNode()            {}
func (n *PushbackAction) Pos() errors.Position { return n.Position }
func (n *PushbackAction) String() string       { return "pushback" }

// UndoAction truncates the key ring and replays what remains.
type UndoAction struct {
	Delta    *int // nil means the default: used - 2
	Position errors.Position
}

func (*UndoAction) actionNode()            {}
func (n *UndoAction) Pos() errors.Position { return n.Position }
func (n *UndoAction) String() string       { return "undo" }

// CommitAction appends preedit to produced and clears it.
type CommitAction struct{ Position errors.Position }

func (*CommitAction) actionNode()            {}
func (n *CommitAction) Pos() errors.Position { return n.Position }
func (n *CommitAction) String() string       { return "commit" }

// UnhandleAction commits then aborts the current filter call as Unhandled.
type UnhandleAction struct{ Position errors.Position }

func (*UnhandleAction) actionNode()            {}
func (n *UnhandleAction) Pos() errors.Position { return n.Position }
func (n *UnhandleAction) String() string       { return "unhandle" }

// ShiftAction transitions to another state, or to "t" meaning prev_state.
type ShiftAction struct {
	State    string
	Position errors.Position
}

func (*ShiftAction) actionNode()            {}
func (n *ShiftAction) Pos() errors.Position { return n.Position }
func (n *ShiftAction) String() string       { return "shift " + n.State }

// SelectAction changes the active candidate (absolute index or a
// predefined @ form resolved at runtime).
type SelectAction struct {
	Index    Expr
	Position errors.Position
}

func (*SelectAction) actionNode()            {}
func (n *SelectAction) Pos() errors.Position { return n.Position }
func (n *SelectAction) String() string       { return "select " + n.Index.String() }

// ShowAction / HideAction toggle candidate_show.
type ShowAction struct{ Position errors.Position }

func (*ShowAction) actionNode()            {}
func (n *ShowAction) Pos() errors.Position { return n.Position }
func (n *ShowAction) String() string       { return "show" }

type HideAction struct{ Position errors.Position }

func (*HideAction) actionNode()            {}
func (n *HideAction) Pos() errors.Position { return n.Position }
func (n *HideAction) String() string       { return "hide" }

// CallAction invokes an external module function.
type CallAction struct {
	Module   string
	Function string
	Args     []Expr
	Position errors.Position
}

func (*CallAction) actionNode()            {}
func (n *CallAction) Pos() errors.Position { return n.Position }
func (n *CallAction) String() string       { return "call " + n.Module + " " + n.Function }

// AssignOp is the compound-assignment operator family set/add/sub/mul/div.
type AssignOp string

const (
	AssignSet AssignOp = "set"
	AssignAdd AssignOp = "add"
	AssignSub AssignOp = "sub"
	AssignMul AssignOp = "mul"
	AssignDiv AssignOp = "div"
)

// AssignAction implements set/add/sub/mul/div: vars[Var] ⊙= Value.
type AssignAction struct {
	Op       AssignOp
	Var      string
	Value    Expr
	Position errors.Position
}

func (*AssignAction) actionNode()            {}
func (n *AssignAction) Pos() errors.Position { return n.Position }
func (n *AssignAction) String() string       { return string(n.Op) + " " + n.Var }

// CompareOp is the branch-comparison operator family = < > <= >=.
type CompareOp string

const (
	CmpEq CompareOp = "="
	CmpLt CompareOp = "<"
	CmpGt CompareOp = ">"
	CmpLe CompareOp = "<="
	CmpGe CompareOp = ">="
)

// CompareAction is the `(op a b then-actions else-actions?)` branch form.
type CompareAction struct {
	Op       CompareOp
	Left     Expr
	Right    Expr
	Then     ActionList
	Else     ActionList
	Position errors.Position
}

func (*CompareAction) actionNode()            {}
func (n *CompareAction) Pos() errors.Position { return n.Position }
func (n *CompareAction) String() string       { return "compare " + string(n.Op) }

// CondClause is one `(expr actions…)` clause of a CondAction.
type CondClause struct {
	Test    Expr
	Actions ActionList
}

// CondAction evaluates clauses in order and runs the first whose Test is
// non-zero.
type CondAction struct {
	Clauses  []CondClause
	Position errors.Position
}

func (*CondAction) actionNode()            {}
func (n *CondAction) Pos() errors.Position { return n.Position }
func (n *CondAction) String() string       { return "cond" }

// MacroCallAction invokes a named macro (any action-list name that isn't
// a primitive resolves to one).
type MacroCallAction struct {
	Name     string
	Position errors.Position
}

func (*MacroCallAction) actionNode()            {}
func (n *MacroCallAction) Pos() errors.Position { return n.Position }
func (n *MacroCallAction) String() string       { return "(macro " + n.Name + ")" }
