package common

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// AlignColumns は各行の列を表示幅で揃えて連結する。
// 最終列以外は列内の最大幅まで右側を空白で埋め、列の間は空白1つで区切る
func AlignColumns(rows [][]string) []string {
	widths := columnWidths(rows)

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			if i == len(row)-1 {
				cells[i] = cell
				continue
			}
			cells[i] = runewidth.FillRight(cell, widths[i])
		}
		lines = append(lines, strings.Join(cells, " "))
	}
	return lines
}

// columnWidths は列ごとの最大表示幅を計算する（全角文字は幅2）
func columnWidths(rows [][]string) []int {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// FormatListError はリスト取得エラーを統一フォーマットで返す
func FormatListError(resource string, err error) error {
	return fmt.Errorf(ListErrorFormat, ErrorIcon, resource, err)
}

// FormatCreateError は作成エラーを統一フォーマットで返す
func FormatCreateError(resource string, err error) error {
	return fmt.Errorf(CreateErrorFormat, ErrorIcon, resource, err)
}

// FormatWaitError は完了待機エラーを統一フォーマットで返す
func FormatWaitError(resource string, err error) error {
	return fmt.Errorf(WaitErrorFormat, ErrorIcon, resource, err)
}
