package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlignColumns(t *testing.T) {
	rows := [][]string{
		{"example.com", "DIST1", "Deployed"},
		{"d111111abcdef8.cloudfront.net", "E2ABC", "InProgress"},
	}

	lines := AlignColumns(rows)

	assert.Equal(t, []string{
		"example.com                   DIST1 Deployed",
		"d111111abcdef8.cloudfront.net E2ABC InProgress",
	}, lines)
}

func TestAlignColumnsWideCharacters(t *testing.T) {
	rows := [][]string{
		{"日本.jp", "A", "Deployed"},
		{"ab.jp", "BBB", "Deployed"},
	}

	lines := AlignColumns(rows)

	// "日本" は表示幅4として扱う
	assert.Equal(t, []string{
		"日本.jp A   Deployed",
		"ab.jp   BBB Deployed",
	}, lines)
}

func TestAlignColumnsEmpty(t *testing.T) {
	assert.Empty(t, AlignColumns(nil))
}

func TestFormatErrors(t *testing.T) {
	cause := errors.New("boom")

	err := FormatListError("ディストリビューション", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "❌ ディストリビューション一覧の取得に失敗: boom", err.Error())

	assert.ErrorIs(t, FormatCreateError("無効化", cause), cause)
	assert.ErrorIs(t, FormatWaitError("無効化", cause), cause)
}
