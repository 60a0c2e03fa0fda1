package tsion

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ============================================================
// Decoder
// ============================================================
//
// The decoder is a single left-to-right scan. Every top-level token
// before the NUL separator is appended to a growing dictionary; the
// NUL flips the scan into final-value mode, where exactly one more
// token is read and returned. A payload with no NUL is content-only
// and must consist of exactly one token. Back-references $n resolve
// against the dictionary by index and alias the stored value — no
// deep copy is made.

// Decode parses a TSION payload into a value tree. On malformed input
// it returns a *DecodeError identifying the offending token.
func Decode(text string) (*Value, error) {
	d := &decoder{src: text}

	for d.pos < len(d.src) && d.src[d.pos] != nul {
		v, err := d.readToken()
		if err != nil {
			return nil, err
		}
		d.dict = append(d.dict, v)
	}

	if d.pos >= len(d.src) {
		// Content-only payload: exactly one top-level token.
		if len(d.dict) != 1 {
			return nil, decodeErr(msgBadInput, text, 0)
		}
		return d.dict[0], nil
	}

	d.pos++ // separator
	if d.pos >= len(d.src) {
		return nil, decodeErr(msgEmptyContent, "", d.pos)
	}
	v, err := d.readToken()
	if err != nil {
		return nil, err
	}
	if d.pos != len(d.src) {
		return nil, decodeErr(msgBadInput, d.src[d.pos:], d.pos)
	}
	return v, nil
}

type decoder struct {
	src  string
	pos  int
	dict []*Value
}

// readToken decodes one complete token starting at the cursor. The
// first character decides the kind.
func (d *decoder) readToken() (*Value, error) {
	start := d.pos
	switch c := d.src[d.pos]; c {
	case SigilRef:
		d.pos++
		return d.readRef(start)
	case SigilConst:
		d.pos++
		return d.readConstant(start)
	case SigilString:
		d.pos++
		return d.readString(start)
	case SigilNumber:
		d.pos++
		return d.readNumber(start)
	case SigilBigInt:
		d.pos++
		return d.readBigInt(start)
	case ArrayOpen:
		d.pos++
		return d.readArray(start)
	case ObjectOpen:
		d.pos++
		return d.readObject(start)
	default:
		return nil, decodeErr(msgUnexpectedChar, string(c), start)
	}
}

// readBody consumes token characters until a reserved character or
// end of input.
func (d *decoder) readBody() string {
	start := d.pos
	for d.pos < len(d.src) && IsTokenChar(d.src[d.pos]) {
		d.pos++
	}
	return d.src[start:d.pos]
}

func (d *decoder) readRef(start int) (*Value, error) {
	body := d.readBody()
	if body == "" || !allDigits(body) {
		return nil, decodeErr(msgUnknownRef, string(SigilRef)+body, start)
	}
	index, err := strconv.Atoi(body)
	if err != nil || index >= len(d.dict) {
		return nil, decodeErr(msgUnknownRef, string(SigilRef)+body, start)
	}
	return d.dict[index], nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func (d *decoder) readConstant(start int) (*Value, error) {
	switch body := d.readBody(); body {
	case "n":
		return Null(), nil
	case "t":
		return Bool(true), nil
	case "f":
		return Bool(false), nil
	case "inf":
		return Number(math.Inf(1)), nil
	case "ninf":
		return Number(math.Inf(-1)), nil
	case "nan":
		return Number(math.NaN()), nil
	default:
		return nil, decodeErr(msgUnknownConstant, string(SigilConst)+body, start)
	}
}

func (d *decoder) readString(start int) (*Value, error) {
	var sb strings.Builder
	for d.pos < len(d.src) {
		c := d.src[d.pos]
		if c == '\\' {
			d.pos++
			if d.pos >= len(d.src) {
				return nil, decodeErr(msgTruncatedEscape, d.src[start:], start)
			}
			esc := d.src[d.pos]
			if !NeedsEscape(esc) {
				return nil, decodeErr(msgInvalidEscape, "\\"+string(esc), d.pos-1)
			}
			sb.WriteByte(esc)
			d.pos++
			continue
		}
		if IsReserved(c) {
			break
		}
		sb.WriteByte(c)
		d.pos++
	}
	return Str(sb.String()), nil
}

func (d *decoder) readNumber(start int) (*Value, error) {
	body := d.readBody()
	if !validNumber(body) {
		return nil, decodeErr(msgInvalidNumber, string(SigilNumber)+body, start)
	}
	f, err := strconv.ParseFloat(body, 64)
	if err != nil {
		return nil, decodeErr(msgInvalidNumber, string(SigilNumber)+body, start)
	}
	return Number(f), nil
}

func (d *decoder) readBigInt(start int) (*Value, error) {
	body := d.readBody()
	if !validBigInt(body) {
		return nil, decodeErr(msgInvalidBigInt, string(SigilBigInt)+body, start)
	}
	n, ok := new(big.Int).SetString(body, 10)
	if !ok {
		return nil, decodeErr(msgInvalidBigInt, string(SigilBigInt)+body, start)
	}
	return Big(n), nil
}

func (d *decoder) readArray(start int) (*Value, error) {
	var elems []*Value
	for {
		if d.pos >= len(d.src) || d.src[d.pos] == nul {
			return nil, decodeErr(msgUnterminatedArr, d.src[start:d.pos], start)
		}
		if d.src[d.pos] == ArrayClose {
			d.pos++
			return Array(elems...), nil
		}
		elem, err := d.readToken()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
	}
}

// readObject reads tokens until the closing brace, then interprets the
// first token as the key set: a string for a single-entry object, or
// an array of two or more strings for a multi-entry one. The remaining
// tokens are the values, one per key.
func (d *decoder) readObject(start int) (*Value, error) {
	var toks []*Value
	for {
		if d.pos >= len(d.src) || d.src[d.pos] == nul {
			return nil, decodeErr(msgUnterminatedObj, d.src[start:d.pos], start)
		}
		if d.src[d.pos] == ObjectClose {
			d.pos++
			break
		}
		tok, err := d.readToken()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
	}

	if len(toks) == 0 {
		return Object(), nil
	}

	keys, err := objectKeys(toks[0], start)
	if err != nil {
		return nil, err
	}
	values := toks[1:]
	if len(values) != len(keys) {
		return nil, decodeErr(msgValueCount, d.src[start:d.pos], start)
	}

	members := make([]Member, len(keys))
	for i, k := range keys {
		members[i] = Member{Key: k, Value: values[i]}
	}
	return Object(members...), nil
}

// objectKeys extracts the key list from an object's first token.
func objectKeys(tok *Value, offset int) ([]string, error) {
	switch tok.Kind() {
	case KindString:
		return []string{tok.strVal}, nil
	case KindArray:
		if len(tok.arrVal) < 2 {
			return nil, decodeErr(msgInvalidKey, "", offset)
		}
		keys := make([]string, len(tok.arrVal))
		for i, elem := range tok.arrVal {
			if elem.Kind() != KindString {
				return nil, decodeErr(msgInvalidKey, "", offset)
			}
			keys[i] = elem.strVal
		}
		return keys, nil
	default:
		return nil, decodeErr(msgInvalidKey, "", offset)
	}
}
