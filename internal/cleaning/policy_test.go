package cleaning

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/crime-weather-report/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	p, err := DefaultPolicy()
	require.NoError(t, err)

	actions := func(rules []Rule) map[string]Action {
		m := make(map[string]Action, len(rules))
		for _, r := range rules {
			m[r.Column] = r.Action
		}
		return m
	}

	crime := actions(p.Crime)
	assert.Equal(t, ActionDrop, crime[domain.ColContext])
	assert.Equal(t, ActionDrop, crime[domain.ColLocationSubtype])
	assert.Equal(t, ActionDrop, crime[domain.ColPersistentID])
	assert.Equal(t, ActionFillSentinel, crime[domain.ColOutcomeStatus])

	weather := actions(p.Weather)
	assert.Equal(t, ActionDrop, weather[domain.ColPreselevHp])
	assert.Equal(t, ActionDrop, weather[domain.ColSnowDepcm])
	assert.Equal(t, ActionFillConstant, weather[domain.ColPrecmm])
	assert.Equal(t, ActionFillMean, weather[domain.ColLowClOct])
}

func TestParsePolicy_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown action",
			yaml: "crime: [{column: a, action: shred}]\nweather: [{column: b, action: keep}]\n",
			want: `unknown action "shred"`,
		},
		{
			name: "duplicate column",
			yaml: "crime: [{column: a, action: keep}, {column: a, action: drop}]\nweather: [{column: b, action: keep}]\n",
			want: "duplicate column",
		},
		{
			name: "non-numeric constant",
			yaml: "crime: [{column: a, action: keep}]\nweather: [{column: b, action: fill_constant, value: dry}]\n",
			want: "needs a numeric value",
		},
		{
			name: "sentinel without value",
			yaml: "crime: [{column: a, action: fill_sentinel}]\nweather: [{column: b, action: keep}]\n",
			want: "fill_sentinel needs a value",
		},
		{
			name: "empty table",
			yaml: "crime: [{column: a, action: keep}]\n",
			want: "weather has no rules",
		},
		{
			name: "unknown key",
			yaml: "crime: [{column: a, action: keep, default: 1}]\nweather: [{column: b, action: keep}]\n",
			want: "parse cleaning policy",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePolicy([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadPolicy(t *testing.T) {
	t.Run("empty path uses embedded policy", func(t *testing.T) {
		p, err := LoadPolicy("")
		require.NoError(t, err)
		want, err := DefaultPolicy()
		require.NoError(t, err)
		assert.Equal(t, want, p)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.yaml")
		body := "crime:\n  - {column: date, action: keep}\nweather:\n  - {column: Precmm, action: fill_constant, value: \"0.0\"}\n"
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

		p, err := LoadPolicy(path)
		require.NoError(t, err)
		assert.Equal(t, []Rule{{Column: "Precmm", Action: ActionFillConstant, Value: "0.0"}}, p.Weather)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadPolicy(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nope.yaml")
	})
}

func TestPolicy_Rules(t *testing.T) {
	p := Policy{Crime: []Rule{{Column: "a", Action: ActionKeep}}}

	rules, err := p.Rules(domain.DatasetCrime)
	require.NoError(t, err)
	assert.Len(t, rules, 1)

	_, err = p.Rules("traffic")
	require.Error(t, err)
}
