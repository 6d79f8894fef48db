package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/sirupsen/logrus"

	"InventorySync/internal/utils/reportfile"
)

// ColReportFileDate 合并文件追加的列：来源文件名中的日期
const ColReportFileDate = "reportFileDate"

var inventoryFilePattern = regexp.MustCompile(`^inventory_report_(\d{4}-\d{2}-\d{2})\.csv$`)

// CombineInventory 把 dir 下所有 inventory_report_YYYY-MM-DD.csv 按日期升序合并为 <dir>/<name>.csv。
// 没有可合并的文件时返回空路径。
func CombineInventory(dir, name string, loader *reportfile.Loader, logger *logrus.Logger) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("读取输出目录失败: %w", err)
	}

	type dated struct {
		date string
		path string
	}
	var files []dated
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := inventoryFilePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		files = append(files, dated{date: m[1], path: filepath.Join(dir, e.Name())})
	}
	if len(files) == 0 {
		logger.WithField("dir", dir).Warn("没有可合并的库存报表")
		return "", nil
	}
	// ISO 日期字符串序即时间序
	sort.Slice(files, func(i, j int) bool { return files[i].date < files[j].date })

	var header []string
	var rows [][]string
	for _, f := range files {
		t, err := loader.Load(f.path)
		if err != nil {
			logger.WithError(err).WithField("file", f.path).Warn("读取库存报表失败，跳过")
			continue
		}
		if header == nil {
			header = append(append([]string(nil), t.Headers...), ColReportFileDate)
		}
		for _, r := range t.Rows {
			row := make([]string, 0, len(header))
			for _, col := range header[:len(header)-1] {
				row = append(row, r.Get(col))
			}
			rows = append(rows, append(row, f.date))
		}
	}
	if header == nil {
		return "", fmt.Errorf("库存报表均无法读取")
	}

	target := filepath.Join(dir, name+".csv")
	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("创建合并文件失败: %w", err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		return "", err
	}
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("写入合并文件失败: %w", err)
	}
	logger.WithFields(logrus.Fields{"file": target, "sources": len(files), "rows": len(rows)}).Info("库存历史已合并")
	return target, nil
}
