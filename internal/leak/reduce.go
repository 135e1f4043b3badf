package leak

import "github.com/danmar/cppcheck-sub017/internal/token"

// maxReducePasses bounds the stage-2 fixed-point loop the same way
// the simplifier bounds its own: a bug in a rewrite can't hang the
// analyzer on pathological input.
const maxReducePasses = 10000

// Reduce applies the stage-2 rewrites to events until a pass produces
// no change: a matched brace pair only collapses away when its body is
// a single statement - empty (becomes a bare ";"), one atom optionally
// followed by its terminating ";" (`{ dealloc ; }` ⇒ `dealloc ;`), or
// one of the few named multi-atom exceptions spec lists (`{ return use
// ; }` ⇒ `return use ;`) - and adjacent ";" ";" collapse to one. A
// brace pair whose body is more than one statement (e.g. `{ alloc ;
// dealloc ; }`) is left alone: the braces are the only thing stopping
// a freed allocation from looking, to a flat pattern search, like a
// bare `alloc` sitting next to whatever comes after the block.
// Classification's pattern searches run against this reduced,
// brace-free (where eligible) form.
func Reduce(events []Event) []Event {
	cur := events
	for i := 0; i < maxReducePasses; i++ {
		next, changed := reducePass(cur)
		cur = next
		if !changed {
			break
		}
	}
	return cur
}

// collapsibleMultiAtomBodies lists the brace bodies spec §4.F stage 2
// names explicitly as collapsible despite holding more than one atom
// before their terminating ";".
var collapsibleMultiAtomBodies = [][]string{
	{"return", "use", ";"},
}

func reducePass(events []Event) ([]Event, bool) {
	if i, j, ok := findCollapsibleBraces(events); ok {
		out := make([]Event, 0, len(events))
		out = append(out, events[:i]...)
		body := events[i+1 : j]
		if len(body) == 0 {
			out = append(out, Event{Tag: ";"})
		} else {
			out = append(out, body...)
		}
		out = append(out, events[j+1:]...)
		return out, true
	}

	out := make([]Event, 0, len(events))
	changed := false
	for i := 0; i < len(events); {
		if events[i].Tag == ";" && i+1 < len(events) && events[i+1].Tag == ";" {
			out = append(out, events[i])
			i += 2
			changed = true
			continue
		}
		out = append(out, events[i])
		i++
	}
	if changed {
		return out, true
	}
	return events, false
}

// findCollapsibleBraces returns the index pair of the first "{"..."}"
// run whose body is eligible for the single-statement collapse rule;
// a matched pair whose body holds more than one statement is skipped
// (scanning resumes past it, which naturally reaches any inner braces
// nested inside that body on this or a later pass).
func findCollapsibleBraces(events []Event) (int, int, bool) {
outer:
	for i, ev := range events {
		if ev.Tag != "{" {
			continue
		}
		depth := 0
		for j := i + 1; j < len(events); j++ {
			switch events[j].Tag {
			case "{":
				depth++
			case "}":
				if depth == 0 {
					if isCollapsibleBody(events[i+1 : j]) {
						return i, j, true
					}
					continue outer
				}
				depth--
			}
		}
	}
	return 0, 0, false
}

// isCollapsibleBody reports whether body is a single statement: empty,
// one atom with an optional trailing ";", or one of the named
// multi-atom exceptions.
func isCollapsibleBody(body []Event) bool {
	if len(body) == 0 {
		return true
	}
	stripped := body
	if stripped[len(stripped)-1].Tag == ";" {
		stripped = stripped[:len(stripped)-1]
	}
	if len(stripped) == 1 {
		return true
	}
	for _, exc := range collapsibleMultiAtomBodies {
		if tagsEqualTo(body, exc) {
			return true
		}
	}
	return false
}

func tagsEqualTo(events []Event, tags []string) bool {
	if len(events) != len(tags) {
		return false
	}
	for i, t := range tags {
		if events[i].Tag != t {
			return false
		}
	}
	return true
}

// Classify runs stage 3: reduces events, then matches the surviving
// tag sequence against the leak shapes named in spec §4.F. showAll
// widens the guard set considered a non-escaping condition (ifv
// counts as a guard too), matching "--all" mode's more aggressive
// reporting.
func Classify(events []Event, showAll bool) (leak bool, at token.Cursor) {
	reduced := Reduce(events)
	tags := tagsOf(reduced)

	if !contains(tags, "alloc") {
		return false, token.Cursor{}
	}
	if contains(tags, "goto") {
		return false, token.Cursor{}
	}

	allocAt := firstCursor(reduced, "alloc")

	if containsSeq(tags, "loop", "alloc", ";") {
		return true, allocAt
	}

	guards := []string{"if"}
	if showAll {
		guards = append(guards, "ifv")
	}
	for _, g := range guards {
		for _, exit := range []string{"continue", "break", "return"} {
			if containsSeq(tags, "alloc", ";", g, exit, ";") {
				return true, firstCursor(reduced, exit)
			}
		}
	}

	if containsSeq(tags, "alloc", ";", "return", ";") {
		return true, firstCursor(reduced, "return")
	}
	if containsSeq(tags, "alloc", ";", "alloc") {
		return true, allocAt
	}
	if !contains(tags, "dealloc") && !contains(tags, "use") {
		return true, allocAt
	}
	return false, token.Cursor{}
}

func tagsOf(events []Event) []string {
	tags := make([]string, len(events))
	for i, e := range events {
		tags[i] = e.Tag
	}
	return tags
}

func contains(tags []string, want string) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}

func containsSeq(tags []string, seq ...string) bool {
	if len(seq) == 0 || len(seq) > len(tags) {
		return false
	}
	for i := 0; i+len(seq) <= len(tags); i++ {
		ok := true
		for j, s := range seq {
			if tags[i+j] != s {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func firstCursor(events []Event, tag string) token.Cursor {
	for _, e := range events {
		if e.Tag == tag {
			return e.Cur
		}
	}
	return token.Cursor{}
}
