package autofromgen

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// reportRow 详细输出中的一行
type reportRow struct {
	Target string
	Source string
	Status string
	Detail string
}

// formatReport 输出按列对齐的表格，列宽按显示宽度计算
func formatReport(rows []reportRow) string {
	if len(rows) == 0 {
		return ""
	}

	header := reportRow{Target: "目标", Source: "来源", Status: "状态", Detail: "说明"}
	all := append([]reportRow{header}, rows...)

	widths := make([]int, 3)
	for _, r := range all {
		for i, cell := range []string{r.Target, r.Source, r.Status} {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	lines := make([]string, 0, len(all))
	for _, r := range all {
		var sb strings.Builder
		for i, cell := range []string{r.Target, r.Source, r.Status} {
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
			sb.WriteString("  ")
		}
		sb.WriteString(r.Detail)
		lines = append(lines, strings.TrimRight(sb.String(), " "))
	}
	return strings.Join(lines, "\n")
}
