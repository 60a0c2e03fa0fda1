package tsion

import (
	"math"
	"strconv"
	"strings"
)

// ============================================================
// Encoder
// ============================================================
//
// Encoding runs in two phases.
//
// Phase one walks the value tree depth-first and interns every leaf
// literal and every composite structure body under a synthetic
// placeholder: ?n for literals, +n for structures. Interning is keyed
// by the encoded form, so a substructure that appears many times in
// the tree occupies exactly one map entry. Because structures intern
// after their children, structureMap insertion order is depth-first
// post-order: for any +n, every +k embedded in its body has k < n.
//
// Phase two scans the structure bodies for placeholders referenced two
// or more times, then rewrites everything into the final payload: each
// duplicate is assigned the next $m dictionary slot and its resolved
// body appended to the dictionary; each single-use placeholder is
// inlined at its reference site. Duplicate literals are processed
// before structures, and structures in insertion order, so every
// dictionary entry references only earlier entries — exactly the order
// in which the decoder indexes them.

// Encode renders a value tree as a TSION payload.
//
// Encode is total on finite acyclic trees. Cyclic inputs are not
// detected and will not terminate; callers must guarantee a DAG.
func Encode(v *Value) string {
	e := newEncoder()
	content := e.encodeValue(v)
	return e.finish(content)
}

// internEntry is one literalMap or structureMap slot. The placeholder
// index is implicit in the slice position.
type internEntry struct {
	placeholder string // "?3" or "+3"
	body        string // encoded form, including sigil or delimiters
}

type encoder struct {
	literals   []internEntry
	structures []internEntry

	// reverse maps, body -> placeholder, for interning
	literalIndex   map[string]string
	structureIndex map[string]string
}

func newEncoder() *encoder {
	return &encoder{
		literalIndex:   make(map[string]string),
		structureIndex: make(map[string]string),
	}
}

// encodeValue returns the intermediate token for v: a constant
// spelling, a ?n literal placeholder, or a +n structure placeholder.
func (e *encoder) encodeValue(v *Value) string {
	if v == nil {
		return tokNull
	}
	switch v.kind {
	case KindNull:
		return tokNull

	case KindBool:
		if v.boolVal {
			return tokTrue
		}
		return tokFalse

	case KindNumber:
		switch {
		case math.IsNaN(v.numVal):
			return tokNaN
		case math.IsInf(v.numVal, 1):
			return tokInf
		case math.IsInf(v.numVal, -1):
			return tokNegInf
		}
		return e.internLiteral(string(SigilNumber) + formatNumber(v.numVal))

	case KindBigInt:
		return e.internLiteral(string(SigilBigInt) + v.bigVal.String())

	case KindString:
		return e.internLiteral(string(SigilString) + escapeString(v.strVal))

	case KindArray:
		var sb strings.Builder
		sb.WriteByte(ArrayOpen)
		for _, elem := range v.arrVal {
			sb.WriteString(e.encodeValue(elem))
		}
		sb.WriteByte(ArrayClose)
		return e.internStructure(sb.String())

	case KindObject:
		return e.encodeObject(v)

	default:
		// Unknown kinds encode as null.
		return tokNull
	}
}

// encodeObject picks the object shape by key count: {} for empty,
// {key val} for a single entry, {keyArr val+} for two or more, where
// keyArr is an array token listing the keys in order.
func (e *encoder) encodeObject(v *Value) string {
	members := v.objVal

	var sb strings.Builder
	sb.WriteByte(ObjectOpen)
	switch len(members) {
	case 0:
		// empty body
	case 1:
		sb.WriteString(e.encodeValue(Str(members[0].Key)))
		sb.WriteString(e.encodeValue(members[0].Value))
	default:
		keys := make([]*Value, len(members))
		for i, m := range members {
			keys[i] = Str(m.Key)
		}
		sb.WriteString(e.encodeValue(Array(keys...)))
		for _, m := range members {
			sb.WriteString(e.encodeValue(m.Value))
		}
	}
	sb.WriteByte(ObjectClose)
	return e.internStructure(sb.String())
}

// internLiteral returns the ?n placeholder for body, allocating the
// next index on first sight.
func (e *encoder) internLiteral(body string) string {
	if p, ok := e.literalIndex[body]; ok {
		return p
	}
	p := string(literalSigil) + strconv.Itoa(len(e.literals))
	e.literals = append(e.literals, internEntry{placeholder: p, body: body})
	e.literalIndex[body] = p
	return p
}

// internStructure returns the +n placeholder for body, allocating the
// next index on first sight.
func (e *encoder) internStructure(body string) string {
	if p, ok := e.structureIndex[body]; ok {
		return p
	}
	p := string(structureSigil) + strconv.Itoa(len(e.structures))
	e.structures = append(e.structures, internEntry{placeholder: p, body: body})
	e.structureIndex[body] = p
	return p
}

// ============================================================
// Duplicate Detection and Rewrite
// ============================================================

// finish runs the duplicate scan and the rewrite pass, producing the
// final payload for the given root content token.
func (e *encoder) finish(content string) string {
	counts := e.countPlaceholders()

	var dictionary strings.Builder
	refs := make(map[string]string) // ?n or +n -> $m
	nextRef := 0

	// Duplicate literals first: they are leaves, so their bodies need
	// no resolution and every later entry may reference them.
	for _, entry := range e.literals {
		if counts[entry.placeholder] < 2 {
			continue
		}
		refs[entry.placeholder] = string(SigilRef) + strconv.Itoa(nextRef)
		nextRef++
		dictionary.WriteString(entry.body)
	}

	// Structures in insertion order (depth-first post-order). Each body
	// is resolved in place so later bodies inline the latest form.
	for i := range e.structures {
		resolved := e.resolve(e.structures[i].body, refs)
		e.structures[i].body = resolved
		if counts[e.structures[i].placeholder] < 2 {
			continue
		}
		refs[e.structures[i].placeholder] = string(SigilRef) + strconv.Itoa(nextRef)
		nextRef++
		dictionary.WriteString(resolved)
	}

	resolvedContent := e.resolve(content, refs)
	if dictionary.Len() == 0 {
		return resolvedContent
	}
	return dictionary.String() + "\x00" + resolvedContent
}

// countPlaceholders tallies ?n and +n occurrences across the union of
// structure bodies. The root content is intentionally excluded: a
// placeholder referenced only at the root is never worth lifting.
func (e *encoder) countPlaceholders() map[string]int {
	counts := make(map[string]int)
	for _, entry := range e.structures {
		body := entry.body
		for i := 0; i < len(body); {
			if body[i] != literalSigil && body[i] != structureSigil {
				i++
				continue
			}
			j := i + 1
			for j < len(body) && isDigit(body[j]) {
				j++
			}
			counts[body[i:j]]++
			i = j
		}
	}
	return counts
}

// resolve replaces every embedded placeholder in body with its $m
// reference when it has one, or its (already resolved) literal or
// structure body otherwise. Inlined text is copied verbatim, never
// rescanned: raw string bytes only ever enter a body through inlining.
func (e *encoder) resolve(body string, refs map[string]string) string {
	var sb strings.Builder
	for i := 0; i < len(body); {
		b := body[i]
		if b != literalSigil && b != structureSigil {
			sb.WriteByte(b)
			i++
			continue
		}
		j := i + 1
		for j < len(body) && isDigit(body[j]) {
			j++
		}
		placeholder := body[i:j]
		i = j

		if ref, ok := refs[placeholder]; ok {
			sb.WriteString(ref)
			continue
		}
		index, _ := strconv.Atoi(placeholder[1:])
		if b == literalSigil {
			sb.WriteString(e.literals[index].body)
		} else {
			sb.WriteString(e.structures[index].body)
		}
	}
	return sb.String()
}

// escapeString prefixes every escape-set character with a backslash.
// The escaped character itself is kept verbatim; there are no named
// escape forms. Multi-byte UTF-8 sequences pass through untouched
// since no escape-set member is a UTF-8 continuation byte.
func escapeString(s string) string {
	needs := 0
	for i := 0; i < len(s); i++ {
		if NeedsEscape(s[i]) {
			needs++
		}
	}
	if needs == 0 {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + needs)
	for i := 0; i < len(s); i++ {
		if NeedsEscape(s[i]) {
			sb.WriteByte('\\')
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
