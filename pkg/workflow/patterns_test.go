package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchFilterSingleStar(t *testing.T) {
	// * matches zero or more characters but does not cross /.
	tests := []struct {
		pattern string
		value   string
		want    bool
	}{
		{"*", "main", true},
		{"*", "releases/v1", false},
		{"feature/*", "feature/login", true},
		{"feature/*", "feature/login/v2", false},
		{"v2*", "v2", true},
		{"v2*", "v2.9", true},
		{"v2*", "v1.9", false},
		{"*.js", "app.js", true},
		{"*.js", "src/app.js", false},
	}
	for _, tt := range tests {
		got, err := MatchFilter([]string{tt.pattern}, tt.value)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "pattern=%s value=%s", tt.pattern, tt.value)
	}
}

func TestMatchFilterDoubleStar(t *testing.T) {
	tests := []struct {
		pattern string
		value   string
		want    bool
	}{
		{"**", "anything/at/all", true},
		{"releases/**", "releases/v1/hotfix", true},
		{"releases/**", "release", false},
		{"**/*.py", "functions/tile_api/handler.py", true},
		{"**.py", "handler.py", true},
		{"**.py", "deep/nested/handler.py", true},
	}
	for _, tt := range tests {
		got, err := MatchFilter([]string{tt.pattern}, tt.value)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "pattern=%s value=%s", tt.pattern, tt.value)
	}
}

func TestMatchFilterQuantifiers(t *testing.T) {
	// ? and + quantify the preceding character.
	got, err := MatchFilter([]string{"ba?t"}, "bat")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = MatchFilter([]string{"ba?t"}, "bt")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = MatchFilter([]string{"ba+t"}, "baat")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = MatchFilter([]string{"ba+t"}, "bt")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestMatchFilterCharacterClass(t *testing.T) {
	got, err := MatchFilter([]string{"v[12].[0-9]"}, "v1.0")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = MatchFilter([]string{"v[12].[0-9]"}, "v3.0")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestMatchFilterNegationOrder(t *testing.T) {
	// Last match wins.
	got, err := MatchFilter([]string{"*.md", "!README.md"}, "README.md")
	require.NoError(t, err)
	assert.False(t, got)

	got, err = MatchFilter([]string{"*.md", "!README.md"}, "CHANGES.md")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = MatchFilter([]string{"*.md", "!README.md", "README*"}, "README.md")
	require.NoError(t, err)
	assert.True(t, got, "later positive pattern re-includes")

	// A negative pattern with no preceding positive match matches nothing.
	got, err = MatchFilter([]string{"!README.md"}, "CHANGES.md")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestMatchFilterInvalidPatterns(t *testing.T) {
	_, err := MatchFilter([]string{"release[1"}, "release1")
	assert.Error(t, err, "unterminated character class")

	_, err = MatchFilter([]string{"bad\\"}, "bad")
	assert.Error(t, err, "trailing backslash")
}

func TestCompileFilterPatternsReuse(t *testing.T) {
	compiled, err := compileFilterPatterns([]string{"releases/**", "!releases/**-rc"})
	require.NoError(t, err)

	assert.True(t, matchCompiled(compiled, "releases/v1"))
	assert.False(t, matchCompiled(compiled, "releases/v1-rc"))
	assert.False(t, matchCompiled(compiled, "main"))
}
