package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanSQL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "SELECT * FROM movies", "SELECT * FROM movies"},
		{"sql fence", "```sql\nSELECT titolo\nFROM movies\n```", "SELECT titolo FROM movies"},
		{"upper case fence", "```SQL\nSELECT 1\n```", "SELECT 1"},
		{"bare fence with prose", "Here you go:\n```\nSELECT 1\n```\nEnjoy", "SELECT 1"},
		{"unterminated fence", "```sql\nSELECT 1", "SELECT 1"},
		{"non ascii prose before the fence", "İİ ```Sql SELECT 1 ```", "SELECT 1"},
		{"comments and blanks", "-- all movies\n\nSELECT *\n# note\n  FROM movies  \n", "SELECT * FROM movies"},
		{"only comments", "-- nothing\n# here", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanSQL(tt.in))
		})
	}
}

func TestCleanSQL_Properties(t *testing.T) {
	inputs := []string{
		"```sql\nSELECT 1\n```",
		"SELECT a\n-- c\nFROM b",
		"\n\n```\nSELECT x\n\n\nFROM y\n```\n",
	}
	for _, in := range inputs {
		out := CleanSQL(in)
		assert.NotContains(t, out, "```")
		assert.NotContains(t, out, "\n")
		assert.Equal(t, strings.TrimSpace(out), out)
		for _, word := range strings.Split(out, " ") {
			assert.NotEmpty(t, word)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Run("should place schema between instruction and question", func(t *testing.T) {
		prompt := BuildPrompt("  how many movies?  ", "movies: idF (int)")

		instruction := strings.Index(prompt, "Use only SELECT")
		schema := strings.Index(prompt, "movies: idF (int)")
		question := strings.Index(prompt, "User request: how many movies?")
		assert.True(t, instruction >= 0 && instruction < schema && schema < question)
		assert.True(t, strings.HasSuffix(prompt, "how many movies?"))
	})

	t.Run("should omit the schema block when empty", func(t *testing.T) {
		prompt := BuildPrompt("q", "  ")
		assert.NotContains(t, prompt, "Database schema")
	})
}
