package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const replacementChar = '*'

// The dictionary uses specific words to avoid partial collisions (e.g., "he" inside "The")
func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	mod, err := NewModerator([]string{"badger", "snake", " mushroom "}, replacementChar)
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
		matches  int
	}{
		{"Simple word", "The badger is here", "The ****** is here", 1},
		{"Repeated word", "badger badger", "****** ******", 2},
		{"Leet speak and punctuation", "Look at B.4.d.g.€r !", "Look at ********** !", 1},
		{"Uppercase with dashes", "S-N-A-K-E everywhere", "********* everywhere", 1},
		{"Accents are kept", "Un été avec un badger", "Un été avec un ******", 1},
		{"Trimmed dictionary entry", "no mushroom soup", "no ******** soup", 1},
		{"Clean text", "ship it on friday", "ship it on friday", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := mod.Censor(tt.input)
			require.Equal(t, tt.expected, got)
			require.Equal(t, tt.matches, n)
		})
	}
}

func TestModerator_EmptyDictionary(t *testing.T) {
	req := require.New(t)
	mod, err := NewModerator([]string{"", "  ", "!!"}, replacementChar)
	req.NoError(err)

	got, n := mod.Censor("badger")
	req.Equal("badger", got)
	req.Zero(n)

	var nilModerator *Moderator
	got, _ = nilModerator.Censor("badger")
	req.Equal("badger", got)
}
