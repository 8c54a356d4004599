package imeval

import "github.com/mike-fabian/m17n-lib-sub004/internal/imtext"

const candidateListKey = "candidate-list"

// candidatesGroupSizeVar is the per-context variable that re-chunks a flat
// candidate list into fixed-size pages.
const candidatesGroupSizeVar = "candidates-group-size"

// attachCandidates implements the group form of `insert`: it flattens
// groups into a CandidateList, writes the first item at [from,to), and
// records the candidate-list property over the inserted span. Candidates
// outside the configured charset are dropped first, and a single
// implicit group is re-chunked when the candidates-group-size variable
// is set.
func (ctx *Context) attachCandidates(pos int, groups [][]string) {
	groups = ctx.filterByCharset(groups)
	if size := ctx.Vars[candidatesGroupSizeVar]; size > 0 && len(groups) == 1 {
		groups = chunkGroup(groups[0], size)
	}
	if len(groups) == 0 {
		return
	}
	list := &imtext.CandidateList{Groups: groups}
	for _, g := range groups {
		list.Items = append(list.Items, g...)
	}
	if len(list.Items) == 0 {
		return
	}
	first := []rune(list.Items[0])
	ctx.Preedit.InsertRunes(pos, first)
	ctx.CursorPos = pos + len(first)
	to := pos + len(first)
	ctx.Preedit.SetProperty(pos, to, candidateListKey, imtext.Value{Candidates: list, CandidateIndex: 0})
	ctx.CandidateList = list
	ctx.CandidateIndex = 0
	ctx.CandidateFrom, ctx.CandidateTo = pos, to
	ctx.CandidateShow = false
	ctx.Changed.Preedit = true
	ctx.Changed.Candidates = true
}

// filterByCharset drops candidates containing any rune outside the
// context's candidates-charset. Groups emptied by the filter disappear
// entirely.
func (ctx *Context) filterByCharset(groups [][]string) [][]string {
	allows, ok := charsets[ctx.CandidatesCharset]
	if !ok {
		return groups
	}
	out := make([][]string, 0, len(groups))
	for _, g := range groups {
		kept := make([]string, 0, len(g))
		for _, cand := range g {
			if runesAllowed(cand, allows) {
				kept = append(kept, cand)
			}
		}
		if len(kept) > 0 {
			out = append(out, kept)
		}
	}
	return out
}

func runesAllowed(s string, allows func(rune) bool) bool {
	for _, r := range s {
		if !allows(r) {
			return false
		}
	}
	return true
}

// charsets covers the charset names the engine itself can filter with.
// The full character-table machinery lives outside the engine;
// descriptions naming an unknown charset get no filtering.
var charsets = map[string]func(rune) bool{
	"ascii":       func(r rune) bool { return r < 0x80 },
	"iso-8859-1":  func(r rune) bool { return r < 0x100 },
	"unicode-bmp": func(r rune) bool { return r <= 0xFFFF },
}

// chunkGroup splits one implicit group into pages of at most size items.
func chunkGroup(items []string, size int) [][]string {
	var out [][]string
	for len(items) > size {
		out = append(out, items[:size])
		items = items[size:]
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}

// selectCandidate replaces the text of the current candidate span with
// Items[newIndex] (wrapped to [0,len)) and updates the tracked span and
// property in lock-step.
func (ctx *Context) selectCandidate(newIndex int) {
	if ctx.CandidateList == nil || len(ctx.CandidateList.Items) == 0 {
		return
	}
	n := len(ctx.CandidateList.Items)
	newIndex = ((newIndex % n) + n) % n

	ctx.Preedit.DeleteRange(ctx.CandidateFrom, ctx.CandidateTo)
	text := []rune(ctx.CandidateList.Items[newIndex])
	ctx.Preedit.InsertRunes(ctx.CandidateFrom, text)
	to := ctx.CandidateFrom + len(text)
	ctx.Preedit.SetProperty(ctx.CandidateFrom, to, candidateListKey,
		imtext.Value{Candidates: ctx.CandidateList, CandidateIndex: newIndex})

	ctx.CandidateTo = to
	ctx.CandidateIndex = newIndex
	ctx.CursorPos = to
	ctx.Changed.Preedit = true
	ctx.Changed.Candidates = true
}

// selectGroup moves across the current group's boundary: @] selects the
// first candidate of the next group, @[ the candidate just before the
// current group's start. Both wrap at the ends of the candidate list.
func (ctx *Context) selectGroup(next bool) {
	list := ctx.CandidateList
	if list == nil || len(list.Groups) == 0 {
		return
	}
	g := list.GroupOf(ctx.CandidateIndex)
	from, to := list.GroupBounds(g)
	if next {
		ctx.selectCandidate(to % len(list.Items))
	} else {
		idx := from - 1
		if idx < 0 {
			idx = len(list.Items) - 1
		}
		ctx.selectCandidate(idx)
	}
}

// candidateSnapshot captures the observable candidate state before a
// top-level action-list call, so the post-call recompute can tell whether
// anything actually changed.
type candidateSnapshot struct {
	list  *imtext.CandidateList
	index int
	from  int
	to    int
}

func (ctx *Context) snapshotCandidates() candidateSnapshot {
	return candidateSnapshot{ctx.CandidateList, ctx.CandidateIndex, ctx.CandidateFrom, ctx.CandidateTo}
}

// recomputeCandidates runs after each top-level action-list call: it
// re-derives the candidate fields from the candidate-list property
// covering cursor_pos-1, and flags whether that differs from the
// snapshot taken before the call.
func (ctx *Context) recomputeCandidates(before candidateSnapshot) {
	val, ok := ctx.Preedit.PropertyAt(ctx.CursorPos-1, candidateListKey)
	if !ok || val.Candidates == nil {
		ctx.CandidateList = nil
		ctx.CandidateIndex = 0
		ctx.CandidateFrom, ctx.CandidateTo = 0, 0
	} else {
		ctx.CandidateList = val.Candidates
		ctx.CandidateIndex = val.CandidateIndex
		from, to := spanOf(ctx.Preedit, ctx.CursorPos-1, candidateListKey)
		ctx.CandidateFrom, ctx.CandidateTo = from, to
	}
	after := ctx.snapshotCandidates()
	if after != before {
		ctx.Changed.Candidates = true
	}
}

// spanOf finds the [from,to) run of key covering pos. imtext doesn't
// expose this directly; PropertyAt only confirms membership, so this
// rescans the small set of runs a property call already proved exists.
func spanOf(t *imtext.Text, pos int, key string) (int, int) {
	from := pos
	for from > 0 {
		if _, ok := t.PropertyAt(from-1, key); !ok {
			break
		}
		from--
	}
	to := pos + 1
	for {
		if _, ok := t.PropertyAt(to, key); !ok {
			break
		}
		to++
	}
	return from, to
}
