package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSentenceRowPositionalColumns(t *testing.T) {
	row := []interface{}{"barisal", "আমি ভাত খাই", "s17", "3", "5", "test", "common_voice"}

	r, err := parseSentenceRow(row)
	require.NoError(t, err)
	assert.Equal(t, "barisal", r.Region)
	assert.Equal(t, "আমি ভাত খাই", r.SentenceText)
	assert.Equal(t, "s17", r.ID)
	assert.Equal(t, 3, r.RecordingCount)
	assert.Equal(t, 5, r.TargetCount)
	assert.Equal(t, "test", r.Split)
	assert.Equal(t, "common_voice", r.DatasetSource)
}

func TestParseSentenceRowShortRow(t *testing.T) {
	_, err := parseSentenceRow([]interface{}{"barisal", "text", "s1"})
	assert.Error(t, err)
}

func TestParseSentenceRowBadCount(t *testing.T) {
	_, err := parseSentenceRow([]interface{}{"barisal", "text", "s1", "many", "5", "test", "cv"})
	assert.Error(t, err)
}

func TestCellIntAcceptsSheetNumberFormats(t *testing.T) {
	n, err := cellInt("42")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	// UNFORMATTED_VALUE reads can surface as floats
	n, err = cellInt("7.0")
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = cellInt(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = cellInt("")
	assert.Error(t, err)
}

func TestParseUserRow(t *testing.T) {
	stat, ok := parseUserRow([]interface{}{"u1", "12", "2026-08-30 10:00:00"})
	require.True(t, ok)
	assert.Equal(t, "u1", stat.UserID)
	assert.Equal(t, 12, stat.Count)
	assert.Equal(t, 2026, stat.LastActive.Year())

	_, ok = parseUserRow([]interface{}{"u1"})
	assert.False(t, ok)
}
