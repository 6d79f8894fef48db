package reportfile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// Table 原始表格（表头 + 行）
type Table struct {
	Path     string
	Encoding string
	Headers  []string
	Rows     []*Row
	Skipped  int // 无法解析而跳过的行数
}

// HasColumn 表头是否包含该列
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// RequireColumns 校验必需列，缺失返回 ErrMissingColumn
func (t *Table) RequireColumns(names ...string) error {
	var missing []string
	for _, n := range names {
		if !t.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s (%s)", ErrMissingColumn, strings.Join(missing, ", "), filepath.Base(t.Path))
	}
	return nil
}

type loadOptions struct {
	skipRows  int
	delimiter rune
}

// LoadOption 加载选项
type LoadOption func(*loadOptions)

// WithSkipRows 跳过表头前的 n 行
func WithSkipRows(n int) LoadOption {
	return func(o *loadOptions) {
		o.skipRows = n
	}
}

// WithDelimiter 分隔符（默认逗号）
func WithDelimiter(d rune) LoadOption {
	return func(o *loadOptions) {
		o.delimiter = d
	}
}

// Loader 读取分隔文本报表
type Loader struct {
	logger *logrus.Logger
}

func NewLoader(logger *logrus.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load 读取文件为 Table。编码顺序：UTF-8（识别BOM）→ Latin-1。
// 文件不存在返回 ErrFileNotFound（info），其余读取/解析失败按 error 记录；调用方都视为"该源无数据"。
func (l *Loader) Load(path string, opts ...LoadOption) (*Table, error) {
	o := loadOptions{delimiter: ','}
	for _, opt := range opts {
		opt(&o)
	}
	name := filepath.Base(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.logger.WithField("file", name).Info("文件不存在，跳过")
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		l.logger.WithError(err).WithField("file", name).Error("读取文件失败")
		return nil, fmt.Errorf("读取%s失败: %w", name, err)
	}

	text, encoding := decode(data)
	t, err := parse(text, o)
	if err != nil {
		l.logger.WithError(err).WithField("file", name).Error("解析文件失败")
		return nil, fmt.Errorf("解析%s失败: %w", name, err)
	}
	t.Path = path
	t.Encoding = encoding
	if t.Skipped > 0 {
		l.logger.WithFields(logrus.Fields{"file": name, "skipped": t.Skipped}).Warn("部分行无法解析，已跳过")
	}
	l.logger.WithFields(logrus.Fields{
		"file":     name,
		"encoding": encoding,
		"rows":     len(t.Rows),
	}).Debug("文件加载完成")
	return t, nil
}

// decode 去掉UTF-8 BOM；非法UTF-8时按Latin-1解码（Latin-1不会失败，是最终兜底）
func decode(data []byte) ([]byte, string) {
	if bytes.HasPrefix(data, bomUTF8) {
		return data[len(bomUTF8):], "utf-8-sig"
	}
	if utf8.Valid(data) {
		return data, "utf-8"
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return data, "utf-8"
	}
	return decoded, "latin-1"
}

// skipLines 丢弃前 n 个物理行
func skipLines(data []byte, n int) []byte {
	for i := 0; i < n && len(data) > 0; i++ {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			return nil
		}
		data = data[idx+1:]
	}
	return data
}

func parse(data []byte, o loadOptions) (*Table, error) {
	data = skipLines(data, o.skipRows)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = o.delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}
	blank := true
	for i, h := range headers {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if headers[i] != "" {
			blank = false
		}
	}
	if blank {
		return nil, ErrMissingHeader
	}

	t := &Table{Headers: headers}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			t.Skipped++
			continue
		}
		row := &Row{LineNumber: line, Data: make(map[string]string, len(headers))}
		for i, h := range headers {
			if i < len(record) {
				row.Data[h] = strings.TrimSpace(record[i])
			} else {
				row.Data[h] = ""
			}
		}
		if row.IsEmpty() {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
