package keycase

import (
	"encoding/json"
	"math/rand"
	"reflect"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWireKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"userId", "user_id"},
		{"isSubscribed", "is_subscribed"},
		{"subscriptionEndDate", "subscription_end_date"},
		{"email", "email"},
		{"", ""},
		{"already_snake", "already_snake"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WireKey(tt.in), "WireKey(%q)", tt.in)
	}
}

func TestPresentationKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"user_id", "userId"},
		{"is_subscribed", "isSubscribed"},
		{"subscription_end_date", "subscriptionEndDate"},
		{"token", "token"},
		{"trailing_", "trailing_"},
		{"digit_1", "digit_1"},
		{"alreadyCamel", "alreadyCamel"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PresentationKey(tt.in), "PresentationKey(%q)", tt.in)
	}
}

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestToPresentation_LoginResponse(t *testing.T) {
	in := decode(t, `{"user_id":7,"email":"a@b.com","is_subscribed":false,"token":"T1"}`)

	got := ToPresentation(in)

	assert.Equal(t, map[string]any{
		"userId":       float64(7),
		"email":        "a@b.com",
		"isSubscribed": false,
		"token":        "T1",
	}, got)
}

func TestToWire_NestedArraysAndScalars(t *testing.T) {
	in := map[string]any{
		"contentIdeas": []any{
			map[string]any{"ideaTitle": "a", "tagList": []any{"x", "y"}},
			"plain",
			nil,
			float64(3),
		},
		"nullValue": nil,
	}

	got := ToWire(in)

	assert.Equal(t, map[string]any{
		"content_ideas": []any{
			map[string]any{"idea_title": "a", "tag_list": []any{"x", "y"}},
			"plain",
			nil,
			float64(3),
		},
		"null_value": nil,
	}, got)
}

func TestTransform_Scalars(t *testing.T) {
	for _, v := range []any{nil, "userId", float64(1), true, json.Number("4")} {
		assert.Equal(t, v, ToWire(v))
		assert.Equal(t, v, ToPresentation(v))
	}
}

func TestTransform_StringMaps(t *testing.T) {
	got := ToWire(map[string]string{"subscriptionType": "premium"})
	assert.Equal(t, map[string]string{"subscription_type": "premium"}, got)

	list := ToPresentation([]map[string]any{{"is_admin": true}})
	assert.Equal(t, []any{map[string]any{"isAdmin": true}}, list)
}

func TestRoundTrip(t *testing.T) {
	trees := []string{
		`{"userId":1,"email":"x@y.z","isSubscribed":true,"subscriptionEnd":null}`,
		`[{"hashtags":["#a"],"trends":[]},{"ideas":[{"title":"t","description":"d"}]}]`,
		`{"deep":{"deeperLevel":{"deepestKey":[1,2,{"leafKey":"v"}]}}}`,
		`"scalar"`,
		`[]`,
		`{}`,
	}
	for _, s := range trees {
		x := decode(t, s)
		assert.Equal(t, x, ToPresentation(ToWire(x)), "round trip of %s", s)
	}
}

const keyAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// jsonTree is a random decoded-JSON value whose object keys contain no '_'.
// Such keys never collide after folding, so the round trip must hold.
type jsonTree struct {
	v any
}

func (jsonTree) Generate(r *rand.Rand, size int) reflect.Value {
	return reflect.ValueOf(jsonTree{v: randomValue(r, 4)})
}

func randomKey(r *rand.Rand) string {
	b := make([]byte, 1+r.Intn(10))
	for i := range b {
		b[i] = keyAlphabet[r.Intn(len(keyAlphabet))]
	}
	return string(b)
}

func randomValue(r *rand.Rand, depth int) any {
	kind := r.Intn(7)
	if depth == 0 {
		kind = r.Intn(4)
	}
	switch kind {
	case 0:
		return nil
	case 1:
		return r.Intn(2) == 0
	case 2:
		return float64(r.Intn(1000))
	case 3:
		return randomKey(r)
	case 4, 5:
		m := make(map[string]any)
		for i := r.Intn(5); i > 0; i-- {
			m[randomKey(r)] = randomValue(r, depth-1)
		}
		return m
	default:
		list := make([]any, r.Intn(4))
		for i := range list {
			list[i] = randomValue(r, depth-1)
		}
		return list
	}
}

func TestRoundTrip_Generated(t *testing.T) {
	cfg := &quick.Config{MaxCount: 500, Rand: rand.New(rand.NewSource(7))}
	roundTrips := func(tree jsonTree) bool {
		return reflect.DeepEqual(tree.v, ToPresentation(ToWire(tree.v)))
	}
	if err := quick.Check(roundTrips, cfg); err != nil {
		t.Error(err)
	}
}

func TestCollision_IsDeterministic(t *testing.T) {
	in := map[string]any{"a_b": "snake", "aB": "camel"}

	first := ToPresentation(in)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, ToPresentation(in))
	}
	// "aB" sorts before "a_b", so the wire spelling is written last.
	assert.Equal(t, map[string]any{"aB": "snake"}, first)
}
