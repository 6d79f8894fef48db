package reportfile

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Sniff 表头探测结果
type Sniff struct {
	SkipRows  int
	Delimiter rune
	Found     bool // 是否在扫描范围内命中标记
}

// SniffHeader 逐行扫描前 maxLines 行，第一条包含 marker 的行确定跳过行数与分隔符
// （比较该行 ',' 与 ';' 的个数）。未命中时返回 fallbackSkip 与逗号。
func SniffHeader(path, marker string, maxLines, fallbackSkip int) (Sniff, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Sniff{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return Sniff{}, fmt.Errorf("打开%s失败: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for i := 0; i < maxLines && scanner.Scan(); i++ {
		line := scanner.Text()
		if !strings.Contains(line, marker) {
			continue
		}
		delim := ','
		if strings.Count(line, ";") > strings.Count(line, ",") {
			delim = ';'
		}
		return Sniff{SkipRows: i, Delimiter: delim, Found: true}, nil
	}
	if err := scanner.Err(); err != nil {
		return Sniff{}, fmt.Errorf("扫描%s失败: %w", path, err)
	}
	return Sniff{SkipRows: fallbackSkip, Delimiter: ','}, nil
}
