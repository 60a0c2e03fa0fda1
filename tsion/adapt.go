package tsion

import (
	"math/big"
	"sort"
)

// Marshaler is the conversion hook for host types. A type implementing
// it is converted by invoking the hook before any classification, and
// the returned tree is encoded from scratch; the encoder never sees
// the original value.
type Marshaler interface {
	MarshalTsion() *Value
}

// FromGo maps a native Go value onto the canonical model. It never
// fails: kinds with no canonical counterpart become null.
//
// Go maps have no iteration order, so map members are sorted by key
// for deterministic output. Use Object directly when order matters.
func FromGo(v any) *Value {
	switch val := v.(type) {
	case nil:
		return Null()
	case Marshaler:
		out := val.MarshalTsion()
		if out == nil {
			return Null()
		}
		return out
	case *Value:
		if val == nil {
			return Null()
		}
		return val
	case bool:
		return Bool(val)
	case int:
		return fromInt64(int64(val))
	case int8:
		return Number(float64(val))
	case int16:
		return Number(float64(val))
	case int32:
		return Number(float64(val))
	case int64:
		return fromInt64(val)
	case uint:
		return fromUint64(uint64(val))
	case uint8:
		return Number(float64(val))
	case uint16:
		return Number(float64(val))
	case uint32:
		return Number(float64(val))
	case uint64:
		return fromUint64(val)
	case float32:
		return Number(float64(val))
	case float64:
		return Number(val)
	case string:
		return Str(val)
	case *big.Int:
		return Big(val)
	case big.Int:
		return Big(new(big.Int).Set(&val))
	case []*Value:
		return Array(val...)
	case []Member:
		return Object(val...)
	case []any:
		elems := make([]*Value, len(val))
		for i, e := range val {
			elems[i] = FromGo(e)
		}
		return Array(elems...)
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		members := make([]Member, len(keys))
		for i, k := range keys {
			members[i] = Member{Key: k, Value: FromGo(val[k])}
		}
		return Object(members...)
	default:
		return Null()
	}
}

// maxExactInt is the largest integer magnitude float64 represents
// exactly (2^53). Anything beyond becomes a big integer.
const maxExactInt = 1 << 53

func fromInt64(v int64) *Value {
	if v > maxExactInt || v < -maxExactInt {
		return Big(big.NewInt(v))
	}
	return Number(float64(v))
}

func fromUint64(v uint64) *Value {
	if v > maxExactInt {
		return Big(new(big.Int).SetUint64(v))
	}
	return Number(float64(v))
}
