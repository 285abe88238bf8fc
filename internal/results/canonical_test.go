package results

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	b, err := MarshalCanonical(map[string]any{
		"zeta":  1,
		"alpha": 2,
		"mid":   3,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"mid":3,"zeta":1}`, string(b))
}

func TestMarshalCanonical_Numbers(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{int(42), "42"},
		{int64(-7), "-7"},
		{float64(0.5), "0.5"},
		{float64(1.25), "1.25"},
		{float64(3), "3"},
		{float64(0), "0"},
		{0.2764346, "0.2764346"},
	}
	for _, tc := range cases {
		b, err := MarshalCanonical(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, string(b), "input %v", tc.in)
	}
}

func TestMarshalCanonical_RejectsNonFinite(t *testing.T) {
	for _, bad := range []float64{nan(), inf()} {
		_, err := MarshalCanonical(bad)
		assert.Error(t, err)
	}
}

func nan() float64 { z := 0.0; return z / z }
func inf() float64 { z := 0.0; return 1 / z }

func TestMarshalCanonical_RejectsNull(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.Error(t, err)
	_, err = MarshalCanonical(map[string]any{"x": nil})
	assert.Error(t, err)
}

func TestMarshalCanonical_Strings(t *testing.T) {
	// No HTML escaping.
	b, err := MarshalCanonical("a<b>&c")
	require.NoError(t, err)
	assert.Equal(t, `"a<b>&c"`, string(b))

	// NFC normalization: e + combining acute composes to é.
	composed, err := MarshalCanonical("caf\u00e9")
	require.NoError(t, err)
	decomposed, err := MarshalCanonical("cafe\u0301")
	require.NoError(t, err)
	assert.Equal(t, composed, decomposed)
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	payload := map[string]any{
		"entropy":    1.25,
		"population": 1000,
		"recursive":  true,
		"series":     []any{0.5, 2, "λ"},
		"top":        `\x1.x1 <&>`,
	}
	a, err := MarshalCanonical(payload)
	require.NoError(t, err)
	b, err := MarshalCanonical(payload)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	g := goldie.New(t)
	g.Assert(t, "canonical_payload", a)
}
