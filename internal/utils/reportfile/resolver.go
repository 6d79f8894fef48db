package reportfile

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"InventorySync/internal/model"
)

const fileDateLayout = "2006-01-02"

// Resolver 按 prefix + YYYY-MM-DD + ".csv" 查找最新报表
type Resolver struct {
	now func() time.Time
}

// NewResolver 使用系统时钟
func NewResolver() *Resolver {
	return &Resolver{now: time.Now}
}

// WithClock 替换时钟（测试/补跑用）
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	return &Resolver{now: now}
}

// FindLatest 优先命中当天文件，否则扫描目录取日期最大的文件（不递归子目录）。
// 同一日期出现多个文件属于配置错误，此处不做裁决。
func (r *Resolver) FindLatest(dir, prefix string) (model.ResolvedFile, error) {
	// 1. 快速路径：当天文件
	today := r.now().Format(fileDateLayout)
	todayPath := filepath.Join(dir, prefix+today+".csv")
	if info, err := os.Stat(todayPath); err == nil && !info.IsDir() {
		d, _ := time.Parse(fileDateLayout, today)
		return model.ResolvedFile{Path: todayPath, Date: d}, nil
	}

	// 2. 扫描目录
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return model.ResolvedFile{}, fmt.Errorf("%w: 目录不存在 %s", ErrFileNotFound, dir)
		}
		return model.ResolvedFile{}, fmt.Errorf("读取目录%s失败: %w", dir, err)
	}

	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `(\d{4}-\d{2}-\d{2})\.csv$`)
	var latest model.ResolvedFile
	found := false
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := pattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		// 非法日历日期（如 2025-02-30）直接丢弃
		d, err := time.Parse(fileDateLayout, m[1])
		if err != nil {
			continue
		}
		if !found || d.After(latest.Date) {
			latest = model.ResolvedFile{Path: filepath.Join(dir, e.Name()), Date: d}
			found = true
		}
	}
	if !found {
		return model.ResolvedFile{}, fmt.Errorf("%w: %s*.csv", ErrFileNotFound, prefix)
	}
	return latest, nil
}
