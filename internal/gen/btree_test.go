package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akratos/alchemy/internal/lambda"
)

func testConfig(seed byte) Config {
	var s [32]byte
	s[0] = seed
	return Config{
		Size:               20,
		FreeVarProbability: 0.2,
		MaxFreeVars:        6,
		Standardization:    StandardizationPrefix,
		Seed:               s,
	}
}

func TestFromConfig_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero size", func(c *Config) { c.Size = 0 }},
		{"negative probability", func(c *Config) { c.FreeVarProbability = -0.1 }},
		{"probability above one", func(c *Config) { c.FreeVarProbability = 1.5 }},
		{"empty free pool", func(c *Config) { c.MaxFreeVars = 0 }},
		{"unknown standardization", func(c *Config) { c.Standardization = "infix" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig(0)
			tc.mutate(&cfg)
			_, err := FromConfig(cfg)
			assert.Error(t, err)
		})
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := FromConfig(testConfig(7))
	require.NoError(t, err)
	b, err := FromConfig(testConfig(7))
	require.NoError(t, err)

	as := a.GenerateN(50)
	bs := b.GenerateN(50)
	for i := range as {
		assert.True(t, lambda.AlphaEq(as[i], bs[i]), "term %d diverged", i)
	}
}

func TestGenerate_SeedChangesSequence(t *testing.T) {
	a, err := FromConfig(testConfig(1))
	require.NoError(t, err)
	b, err := FromConfig(testConfig(2))
	require.NoError(t, err)

	as := a.GenerateN(20)
	bs := b.GenerateN(20)
	same := true
	for i := range as {
		if !lambda.AlphaEq(as[i], bs[i]) {
			same = false
			break
		}
	}
	assert.False(t, same, "different seeds should produce different sequences")
}

func TestGenerate_RespectsBudget(t *testing.T) {
	g, err := FromConfig(testConfig(3))
	require.NoError(t, err)
	for _, term := range g.GenerateN(100) {
		assert.LessOrEqual(t, term.NumNodes(), 20)
	}
}

func TestGenerate_PrefixStandardizationMatchesParser(t *testing.T) {
	// Standardized terms survive a print/parse round trip unchanged:
	// the parser uses the same first-appearance numbering.
	g, err := FromConfig(testConfig(9))
	require.NoError(t, err)
	for _, term := range g.GenerateN(25) {
		back, err := lambda.Parse(term.String())
		require.NoError(t, err)
		assert.True(t, lambda.AlphaEq(term, back), "term %s", term)
	}
}
