package badges

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullYAML = `
QUESTION_COUNT:   {BRONZE: 1, SILVER: 5, GOLD: 10}
ANSWER_COUNT:     {BRONZE: 1, SILVER: 5, GOLD: 10}
QUESTION_UPVOTES: {BRONZE: 2, SILVER: 20, GOLD: 200}
ANSWER_UPVOTES:   {BRONZE: 2, SILVER: 20, GOLD: 200}
TOTAL_VIEWS:      {BRONZE: 100, SILVER: 1000, GOLD: 10000}
`

// withAnswerCount подменяет строку ANSWER_COUNT в fullYAML.
func withAnswerCount(levels string) string {
	return strings.Replace(fullYAML,
		"ANSWER_COUNT:     {BRONZE: 1, SILVER: 5, GOLD: 10}",
		"ANSWER_COUNT: "+levels, 1)
}

func TestDefaultThresholds(t *testing.T) {
	table := DefaultThresholds()
	require.NoError(t, table.Validate())
	assert.Equal(t, int64(100000), table[CategoryTotalViews][TierGold])

	table[CategoryQuestionCount][TierGold] = 1
	assert.Equal(t, int64(100), DefaultThresholds()[CategoryQuestionCount][TierGold], "каждый вызов отдаёт копию")
}

func TestParseThresholds(t *testing.T) {
	table, err := ParseThresholds([]byte(fullYAML))
	require.NoError(t, err)
	assert.Equal(t, TierThresholds{TierBronze: 2, TierSilver: 20, TierGold: 200}, table[CategoryAnswerUpvotes])
}

func TestParseThresholds_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"не yaml", "QUESTION_COUNT: [1, 2"},
		{"нет категории", `QUESTION_COUNT: {BRONZE: 1, SILVER: 5, GOLD: 10}`},
		{"нет уровня", withAnswerCount("{BRONZE: 1, SILVER: 5}")},
		{"отрицательный порог", withAnswerCount("{BRONZE: -1, SILVER: 5, GOLD: 10}")},
		{"лишний уровень", withAnswerCount("{BRONZE: 1, SILVER: 5, GOLD: 10, PLATINUM: 50}")},
		{"лишняя категория", fullYAML + "KARMA: {BRONZE: 1, SILVER: 5, GOLD: 10}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseThresholds([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestLoadThresholds(t *testing.T) {
	table, err := LoadThresholds("")
	require.NoError(t, err)
	assert.Equal(t, DefaultThresholds(), table)

	path := filepath.Join(t.TempDir(), "badges.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullYAML), 0o600))

	table, err = LoadThresholds(path)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), table[CategoryTotalViews][TierGold])

	_, err = LoadThresholds(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
