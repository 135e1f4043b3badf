// Package token owns the token sequence produced for a single file:
// an append-only arena of lexemes threaded by a singly-linked next
// chain, addressed through generation-checked cursors so that a
// cursor surviving past the slot it named never reads stale data.
package token

// Cursor addresses a single token in a List. The zero Cursor is
// invalid; use List.Head/Next/InsertAfter to navigate. Internally the
// slot number is stored offset by one so that the zero value never
// aliases a real slot.
type Cursor struct {
	slot int32 // 0 == invalid; a real token at arena index i is slot i+1
	gen  uint32
}

// Valid reports whether c is non-zero. It does not check whether the
// slot is still live; a Cursor goes stale when the slot it names is
// erased, and the List methods detect that through the generation.
func (c Cursor) Valid() bool { return c.slot > 0 }

func cursorFor(idx int32, gen uint32) Cursor {
	if idx < 0 {
		return Cursor{}
	}
	return Cursor{slot: idx + 1, gen: gen}
}

func (c Cursor) arenaIndex() int32 { return c.slot - 1 }

// tok is one arena slot: the owned lexeme, its source location, and
// the next-slot link. FileIndex and Line form the source-location
// metadata required by every diagnostic.
type tok struct {
	lexeme    string
	fileIndex int
	line      int
	id        int // identifier number assigned by the function index; 0 = unassigned
	next      int32
	gen       uint32
	live      bool
}

// List is the owned, singly-linked token sequence for one file. It
// supports O(1) append at the tail, O(1) linear iteration from the
// head, and O(1) splice (erase-range / insert-after) at a cursor.
// Positions never move once created: the arena only grows, so an
// index is the token's permanent identity for the lifetime of the
// List, and erasure is detected via the generation counter rather
// than by the slot being reused.
type List struct {
	toks []tok
	head int32
	tail int32
}

// New returns an empty token list.
func New() *List {
	return &List{head: -1, tail: -1}
}

// Head returns a cursor to the first token, or an invalid cursor if
// the list is empty.
func (l *List) Head() Cursor {
	if l.head < 0 {
		return Cursor{}
	}
	return cursorFor(l.head, l.toks[l.head].gen)
}

// Next returns the cursor immediately following c, or an invalid
// cursor at end-of-list or if c is stale.
func (l *List) Next(c Cursor) Cursor {
	if !l.valid(c) {
		return Cursor{}
	}
	n := l.toks[c.arenaIndex()].next
	if n < 0 {
		return Cursor{}
	}
	return cursorFor(n, l.toks[n].gen)
}

func (l *List) valid(c Cursor) bool {
	if !c.Valid() {
		return false
	}
	idx := c.arenaIndex()
	return int(idx) < len(l.toks) && l.toks[idx].live && l.toks[idx].gen == c.gen
}

// Lexeme returns the token's text, or "" if the cursor is invalid.
func (l *List) Lexeme(c Cursor) string {
	if !l.valid(c) {
		return ""
	}
	return l.toks[c.arenaIndex()].lexeme
}

// SetLexeme rewrites a token's text in place; used by the simplifier
// when a rewrite replaces one token's text without changing the
// sequence shape (e.g. folding sizeof(int) to a decimal literal).
func (l *List) SetLexeme(c Cursor, s string) {
	if l.valid(c) {
		l.toks[c.arenaIndex()].lexeme = s
	}
}

// FileIndex returns the token's file-registry index.
func (l *List) FileIndex(c Cursor) int {
	if !l.valid(c) {
		return 0
	}
	return l.toks[c.arenaIndex()].fileIndex
}

// Line returns the token's 1-based source line.
func (l *List) Line(c Cursor) int {
	if !l.valid(c) {
		return 0
	}
	return l.toks[c.arenaIndex()].line
}

// ID returns the identifier number assigned by the function index, or
// 0 if none has been assigned.
func (l *List) ID(c Cursor) int {
	if !l.valid(c) {
		return 0
	}
	return l.toks[c.arenaIndex()].id
}

// SetID assigns the function-index identifier number to a token.
func (l *List) SetID(c Cursor, id int) {
	if l.valid(c) {
		l.toks[c.arenaIndex()].id = id
	}
}

// Append creates a new token at the tail of the list. It is a no-op
// returning an invalid cursor for an empty lexeme, matching the
// tokenizer's own "don't emit empty tokens" rule.
func (l *List) Append(lexeme string, line, fileIndex int) Cursor {
	if lexeme == "" {
		return Cursor{}
	}
	idx := int32(len(l.toks))
	l.toks = append(l.toks, tok{lexeme: lexeme, fileIndex: fileIndex, line: line, next: -1, live: true})
	if l.tail < 0 {
		l.head = idx
	} else {
		l.toks[l.tail].next = idx
	}
	l.tail = idx
	return cursorFor(idx, 0)
}

// InsertAfter splices a new token in directly after cursor c, which
// must be valid. Returns a cursor to the new token.
func (l *List) InsertAfter(c Cursor, lexeme string) Cursor {
	if !l.valid(c) {
		return Cursor{}
	}
	cIdx := c.arenaIndex()
	idx := int32(len(l.toks))
	next := l.toks[cIdx].next
	l.toks = append(l.toks, tok{lexeme: lexeme, fileIndex: l.toks[cIdx].fileIndex, line: l.toks[cIdx].line, next: next, live: true})
	l.toks[cIdx].next = idx
	if cIdx == l.tail {
		l.tail = idx
	}
	return cursorFor(idx, 0)
}

// EraseRange deletes every token strictly between begin and end,
// releasing their lexemes. begin and end themselves are kept; begin
// may be invalid (meaning "the virtual slot before the head"), in
// which case erase removes everything before end from the head. end
// may be an invalid cursor to mean "erase through the tail".
func (l *List) EraseRange(begin, end Cursor) {
	if l.valid(begin) {
		beginIdx := begin.arenaIndex()
		cur := l.toks[beginIdx].next
		for cur >= 0 && (!end.Valid() || cur != end.arenaIndex()) {
			nxt := l.toks[cur].next
			l.release(cur)
			cur = nxt
		}
		l.toks[beginIdx].next = cur
		if cur < 0 {
			l.tail = beginIdx
		}
		return
	}
	// begin invalid: erase from the head up to (not including) end.
	cur := l.head
	for cur >= 0 && (!end.Valid() || cur != end.arenaIndex()) {
		nxt := l.toks[cur].next
		l.release(cur)
		cur = nxt
	}
	l.head = cur
	if cur < 0 {
		l.tail = -1
	}
}

func (l *List) release(idx int32) {
	l.toks[idx].live = false
	l.toks[idx].lexeme = ""
	l.toks[idx].gen++
}

// Walk calls fn for every live token from head to tail in order,
// stopping early if fn returns false.
func (l *List) Walk(fn func(c Cursor) bool) {
	for c := l.Head(); c.Valid(); c = l.Next(c) {
		if !fn(c) {
			return
		}
	}
}

// Len reports the number of live tokens; it is O(n) and intended for
// tests and diagnostics, not a hot path.
func (l *List) Len() int {
	n := 0
	l.Walk(func(Cursor) bool { n++; return true })
	return n
}
