package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeIncludeOnly, ParseMode("include_only"))
	assert.Equal(t, ModeExclude, ParseMode("exclude"))
	assert.Equal(t, ModeDisabled, ParseMode("disabled"))
	assert.Equal(t, ModeDisabled, ParseMode("whatever"))
	assert.Equal(t, ModeDisabled, ParseMode(""))
}

func TestDisabledMatchesEverything(t *testing.T) {
	f := New([]string{"grip"}, ModeDisabled, false, true)
	assert.True(t, f.Matches("anything at all", "even this"))
	assert.True(t, f.Matches("", ""))
	assert.False(t, f.Enabled())
}

func TestEmptyKeywordsMatchesEverything(t *testing.T) {
	f := New(nil, ModeIncludeOnly, false, true)
	assert.True(t, f.Matches("no keywords configured", ""))
	assert.False(t, f.Enabled())
}

func TestIncludeOnly(t *testing.T) {
	f := New([]string{"grip", "regrip"}, ModeIncludeOnly, false, true)

	assert.True(t, f.Matches("My Oversized Grip Review", ""))
	assert.True(t, f.Matches("Putting tips", "I tried a Jumbo grip last week"))
	assert.False(t, f.Matches("Best driver 2023", "no talk of that here"))
}

func TestExcludeIsNegationOfInclude(t *testing.T) {
	keywords := []string{"grip", "jumbo"}
	include := New(keywords, ModeIncludeOnly, false, true)
	exclude := New(keywords, ModeExclude, false, true)

	cases := []struct{ title, body string }{
		{"My Oversized Grip Review", ""},
		{"Putting tips", "I tried a Jumbo grip last week"},
		{"Best driver 2023", "no talk of that here"},
		{"", ""},
		{"GRIP", "grip"},
	}
	for _, tc := range cases {
		assert.Equal(t, include.Matches(tc.title, tc.body), !exclude.Matches(tc.title, tc.body),
			"title=%q body=%q", tc.title, tc.body)
	}
}

func TestCaseSensitivity(t *testing.T) {
	insensitive := New([]string{"JumboMax"}, ModeIncludeOnly, false, true)
	assert.True(t, insensitive.Matches("got new jumbomax grips", ""))

	sensitive := New([]string{"JumboMax"}, ModeIncludeOnly, true, true)
	assert.False(t, sensitive.Matches("got new jumbomax grips", ""))
	assert.True(t, sensitive.Matches("got new JumboMax grips", ""))
}

func TestSearchInContentToggle(t *testing.T) {
	titleOnly := New([]string{"grip"}, ModeIncludeOnly, false, false)
	assert.False(t, titleOnly.Matches("Putting tips", "grip talk in the body"))
	assert.True(t, titleOnly.Matches("Grip question", ""))

	withBody := New([]string{"grip"}, ModeIncludeOnly, false, true)
	assert.True(t, withBody.Matches("Putting tips", "grip talk in the body"))
}

func TestMatchesIsPure(t *testing.T) {
	f := New([]string{"grip"}, ModeIncludeOnly, false, true)
	for i := 0; i < 3; i++ {
		assert.True(t, f.Matches("grip", ""))
		assert.False(t, f.Matches("driver", ""))
	}
}
