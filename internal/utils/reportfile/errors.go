package reportfile

import "errors"

var (
	// ErrFileNotFound 源文件不存在（软错误：渠道记为无数据，info 级别日志）
	ErrFileNotFound = errors.New("report file not found")

	// ErrEmptyFile 文件为空或跳过行后没有表头
	ErrEmptyFile = errors.New("report file is empty")

	// ErrMissingHeader 表头全部为空
	ErrMissingHeader = errors.New("report file missing header row")

	// ErrMissingColumn 表头缺少解析必需的列
	ErrMissingColumn = errors.New("report file missing required column")
)
