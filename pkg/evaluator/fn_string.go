package evaluator

import (
	"math"
	"strings"
)

// String functions of the XPath 1.0 core library.

func fnString(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		schemaFnResult(args, set)
		return nil
	}
	if len(args) == 0 {
		set.setString(nodeStringValue(&ev.cnode))
		return nil
	}
	set.setString(args[0].toString(ev.order))
	return nil
}

func fnConcat(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		schemaFnResult(args, set)
		return nil
	}
	var sb strings.Builder
	for _, a := range args {
		sb.WriteString(a.toString(ev.order))
	}
	set.setString(sb.String())
	return nil
}

func fnContains(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		schemaFnResult(args, set)
		return nil
	}
	set.setBoolean(strings.Contains(args[0].toString(ev.order), args[1].toString(ev.order)))
	return nil
}

func fnStartsWith(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		schemaFnResult(args, set)
		return nil
	}
	set.setBoolean(strings.HasPrefix(args[0].toString(ev.order), args[1].toString(ev.order)))
	return nil
}

func fnStringLength(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		schemaFnResult(args, set)
		return nil
	}
	var s string
	if len(args) == 0 {
		s = nodeStringValue(&ev.cnode)
	} else {
		s = args[0].toString(ev.order)
	}
	set.setNumber(float64(len([]rune(s))))
	return nil
}

// fnSubstring implements substring(string, start, length?). Start and
// length are rounded per xpathRound before clamping, character positions
// are 1-based, and the range arithmetic follows IEEE semantics so NaN
// arguments produce the empty string.
func fnSubstring(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		schemaFnResult(args, set)
		return nil
	}

	chars := []rune(args[0].toString(ev.order))
	start := xpathRound(args[1].toNumber(ev.order))
	end := math.Inf(1)
	if len(args) == 3 {
		end = start + xpathRound(args[2].toNumber(ev.order))
	}

	var sb strings.Builder
	for i, ch := range chars {
		pos := float64(i + 1)
		// NaN comparisons are false, excluding every position.
		if pos >= start && pos < end {
			sb.WriteRune(ch)
		}
	}
	set.setString(sb.String())
	return nil
}

func fnSubstringBefore(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		schemaFnResult(args, set)
		return nil
	}
	s := args[0].toString(ev.order)
	sub := args[1].toString(ev.order)
	if i := strings.Index(s, sub); i >= 0 {
		set.setString(s[:i])
	} else {
		set.setString("")
	}
	return nil
}

func fnSubstringAfter(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		schemaFnResult(args, set)
		return nil
	}
	s := args[0].toString(ev.order)
	sub := args[1].toString(ev.order)
	if i := strings.Index(s, sub); i >= 0 {
		set.setString(s[i+len(sub):])
	} else {
		set.setString("")
	}
	return nil
}

// fnNormalizeSpace trims leading and trailing whitespace and collapses
// internal whitespace runs to single spaces. Whitespace is the XML set:
// space, tab, newline, carriage return.
func fnNormalizeSpace(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		schemaFnResult(args, set)
		return nil
	}
	var s string
	if len(args) == 0 {
		s = nodeStringValue(&ev.cnode)
	} else {
		s = args[0].toString(ev.order)
	}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	set.setString(strings.Join(fields, " "))
	return nil
}

// fnTranslate implements translate(string, from, to): characters found in
// from are replaced by the character at the same position in to, or
// removed when to is shorter.
func fnTranslate(ev *evaluation, args []*Set, set *Set) error {
	if ev.schema {
		schemaFnResult(args, set)
		return nil
	}

	from := []rune(args[1].toString(ev.order))
	to := []rune(args[2].toString(ev.order))
	mapping := make(map[rune]rune, len(from))
	remove := make(map[rune]bool)
	for i, r := range from {
		if _, seen := mapping[r]; seen || remove[r] {
			// Only the first occurrence in from counts.
			continue
		}
		if i < len(to) {
			mapping[r] = to[i]
		} else {
			remove[r] = true
		}
	}

	var sb strings.Builder
	for _, r := range args[0].toString(ev.order) {
		if remove[r] {
			continue
		}
		if repl, ok := mapping[r]; ok {
			sb.WriteRune(repl)
		} else {
			sb.WriteRune(r)
		}
	}
	set.setString(sb.String())
	return nil
}
