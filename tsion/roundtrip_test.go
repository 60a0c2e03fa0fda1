package tsion

import (
	"math"
	"math/big"
	"strings"
	"testing"
)

// ============================================================
// Round-Trip Properties
// ============================================================

// roundTripValues is the shared zoo of value trees every property
// below runs against.
func roundTripValues() map[string]*Value {
	bigNum, _ := new(big.Int).SetString("123456789012345678901234567890", 10)

	return map[string]*Value{
		"null":        Null(),
		"true":        Bool(true),
		"false":       Bool(false),
		"zero":        Number(0),
		"int":         Number(123456),
		"negative":    Number(-98765),
		"fraction":    Number(3.14159),
		"tiny":        Number(5e-324),
		"huge":        Number(1.7976931348623157e308),
		"inf":         Number(math.Inf(1)),
		"ninf":        Number(math.Inf(-1)),
		"nan":         Number(math.NaN()),
		"bigint":      Big(bigNum),
		"neg bigint":  Big(new(big.Int).Neg(bigNum)),
		"empty str":   Str(""),
		"plain str":   Str("hello world"),
		"unicode str": Str("héllo wörld — ∅ 日本語"),
		"escape str":  Str(":$&#%[]{}\\\x00\t\n\r"),
		"empty array": Array(),
		"flat array":  Array(Number(1), Str("two"), Bool(true), Null()),
		"empty obj":   Object(),
		"one key":     Object(Field("k", Str("v"))),
		"two keys":    Object(Field("b", Number(2)), Field("a", Number(1))),
		"dup strings": Array(Str("dup"), Str("dup"), Str("dup")),
		"dup structs": Array(
			Object(Field("k", Number(1))),
			Object(Field("k", Number(1))),
		),
		"deep": Array(
			Object(
				Field("users", Array(
					Object(Field("id", Number(1)), Field("role", Str("admin"))),
					Object(Field("id", Number(2)), Field("role", Str("admin"))),
				)),
				Field("total", Number(2)),
			),
		),
		"shared keys": Array(
			Object(Field("x", Number(1)), Field("y", Number(2)), Field("z", Number(3))),
			Object(Field("x", Number(4)), Field("y", Number(5)), Field("z", Number(6))),
			Object(Field("x", Number(7)), Field("y", Number(8)), Field("z", Number(9))),
		),
		"key equals value": Array(Str("k"), Object(Field("k", Str("k")))),
		"mixed depth": Object(
			Field("a", Array(Array(Array(Str("deep"))))),
			Field("b", Array(Array(Array(Str("deep"))))),
		),
	}
}

func TestRoundTrip(t *testing.T) {
	for name, v := range roundTripValues() {
		t.Run(name, func(t *testing.T) {
			payload := Encode(v)
			got, err := Decode(payload)
			if err != nil {
				t.Fatalf("Decode(%q) failed: %v", payload, err)
			}
			if !Equal(got, v) {
				t.Errorf("round trip through %q changed the value", payload)
			}
		})
	}
}

// Re-encoding a decoded tree must reproduce the payload byte for byte:
// the encoder is deterministic and decoding loses nothing it depends
// on.
func TestRoundTrip_Stable(t *testing.T) {
	for name, v := range roundTripValues() {
		t.Run(name, func(t *testing.T) {
			first := Encode(v)
			decoded, err := Decode(first)
			if err != nil {
				t.Fatal(err)
			}
			second := Encode(decoded)
			if first != second {
				t.Errorf("unstable encoding:\n first = %q\nsecond = %q", first, second)
			}
		})
	}
}

// Payloads contain at most one unescaped NUL.
func TestRoundTrip_SingleSeparator(t *testing.T) {
	for name, v := range roundTripValues() {
		t.Run(name, func(t *testing.T) {
			payload := Encode(v)
			count := 0
			for i := 0; i < len(payload); i++ {
				if payload[i] == '\\' {
					i++
					continue
				}
				if payload[i] == nul {
					count++
				}
			}
			if count > 1 {
				t.Errorf("payload %q has %d unescaped NULs", payload, count)
			}
		})
	}
}

// Key order survives the codec (objects are ordered mappings).
func TestRoundTrip_KeyOrder(t *testing.T) {
	v := Object(
		Field("zeta", Number(1)),
		Field("alpha", Number(2)),
		Field("mid", Number(3)),
	)
	got, err := Decode(Encode(v))
	if err != nil {
		t.Fatal(err)
	}
	members, err := got.AsObject()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"zeta", "alpha", "mid"}
	for i, m := range members {
		if m.Key != want[i] {
			t.Fatalf("key %d = %q, want %q", i, m.Key, want[i])
		}
	}
}

// Once references are considered, no literal or structure body repeats
// in the payload: every repetition is a $n. Checked on a payload with
// heavy repetition by asserting the dictionary prefix only grows as
// large as the distinct substructures require.
func TestRoundTrip_DedupSoundness(t *testing.T) {
	row := Object(Field("name", Str("widget")), Field("price", Number(9.99)))
	rows := make([]*Value, 50)
	for i := range rows {
		rows[i] = row
	}
	payload := Encode(Array(rows...))

	// The row body must appear exactly once (in the dictionary).
	if n := strings.Count(payload, "widget"); n != 1 {
		t.Errorf("literal body appears %d times, want 1", n)
	}
	sep := strings.IndexByte(payload, nul)
	if sep < 0 {
		t.Fatal("expected a dictionary")
	}
	content := payload[sep+1:]
	if strings.ContainsAny(content, "&") {
		t.Errorf("content %q re-spells a string literal", content)
	}

	got, err := Decode(payload)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 50 {
		t.Fatalf("decoded %d rows, want 50", got.Len())
	}
	if !Equal(got, Array(rows...)) {
		t.Error("dedup round trip changed the value")
	}
}
