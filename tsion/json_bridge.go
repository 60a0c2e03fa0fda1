package tsion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/big"
	"strings"
)

// ============================================================
// JSON Bridge
// ============================================================
//
// Converts between JSON and the canonical value model. Object key
// order is significant in TSION, so decoding walks the json.Decoder
// token stream instead of unmarshalling into map[string]interface{}
// (which would shuffle keys). Numbers decode through json.Number:
// integer literals that exceed exact float64 range become big
// integers, everything else a number.

// FromJSON converts a JSON document to a value tree, preserving object
// key order.
func FromJSON(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := fromJSONToken(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("tsion: trailing data after JSON value")
	}
	return v, nil
}

func fromJSONToken(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("tsion: JSON parse error: %w", err)
	}

	switch t := tok.(type) {
	case nil:
		return Null(), nil

	case bool:
		return Bool(t), nil

	case string:
		return Str(t), nil

	case json.Number:
		return fromJSONNumber(t)

	case json.Delim:
		switch t {
		case '[':
			var elems []*Value
			for dec.More() {
				elem, err := fromJSONToken(dec)
				if err != nil {
					return nil, err
				}
				elems = append(elems, elem)
			}
			if _, err := dec.Token(); err != nil { // closing ]
				return nil, fmt.Errorf("tsion: JSON parse error: %w", err)
			}
			return Array(elems...), nil

		case '{':
			var members []Member
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, fmt.Errorf("tsion: JSON parse error: %w", err)
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("tsion: JSON object key is not a string: %v", keyTok)
				}
				val, err := fromJSONToken(dec)
				if err != nil {
					return nil, err
				}
				members = append(members, Member{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil { // closing }
				return nil, fmt.Errorf("tsion: JSON parse error: %w", err)
			}
			return Object(members...), nil

		default:
			return nil, fmt.Errorf("tsion: unexpected JSON delimiter %q", t)
		}

	default:
		return nil, fmt.Errorf("tsion: unsupported JSON token %T", tok)
	}
}

func fromJSONNumber(n json.Number) (*Value, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		// Integer literal: keep exact when float64 cannot.
		i, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("tsion: invalid JSON number %q", s)
		}
		if i.IsInt64() {
			v := i.Int64()
			if v <= maxExactInt && v >= -maxExactInt {
				return Number(float64(v)), nil
			}
		}
		return Big(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("tsion: invalid JSON number %q: %w", s, err)
	}
	return Number(f), nil
}

// ToJSON renders a value tree as JSON, preserving object key order.
// Big integers are written as bare decimal numbers. NaN and ±Inf have
// no JSON representation and are rejected.
func ToJSON(v *Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := appendJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func appendJSON(buf *bytes.Buffer, v *Value) error {
	if v.IsNull() {
		buf.WriteString("null")
		return nil
	}
	switch v.kind {
	case KindBool:
		if v.boolVal {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil

	case KindNumber:
		if math.IsNaN(v.numVal) || math.IsInf(v.numVal, 0) {
			return fmt.Errorf("tsion: %v has no JSON representation", v.numVal)
		}
		buf.WriteString(formatNumber(v.numVal))
		return nil

	case KindBigInt:
		buf.WriteString(v.bigVal.String())
		return nil

	case KindString:
		data, err := json.Marshal(v.strVal)
		if err != nil {
			return err
		}
		buf.Write(data)
		return nil

	case KindArray:
		buf.WriteByte('[')
		for i, elem := range v.arrVal {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendJSON(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	case KindObject:
		buf.WriteByte('{')
		for i, m := range v.objVal {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := appendJSON(buf, m.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	default:
		return fmt.Errorf("tsion: unsupported kind %s", v.kind)
	}
}
