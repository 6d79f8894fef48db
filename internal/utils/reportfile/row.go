package reportfile

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Row 一行原始数据，列名→单元格（已去首尾空白）
type Row struct {
	LineNumber int
	Data       map[string]string
}

// Get 取列值，列不存在返回空串
func (r *Row) Get(column string) string {
	return r.Data[column]
}

// GetOrDefault 列不存在或为空时返回默认值
func (r *Row) GetOrDefault(column, def string) string {
	if v := r.Data[column]; v != "" {
		return v
	}
	return def
}

// IsEmpty 所有单元格都为空
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// Decimal 数值列（兼容货币格式），非法/空值为 0
func (r *Row) Decimal(column string) decimal.Decimal {
	return ParseAmount(r.Data[column])
}

// Int 整数列，"12.0" 这类导出格式按整数部分取值，非法/空值为 0
func (r *Row) Int(column string) int64 {
	return ParseAmount(r.Data[column]).IntPart()
}

// ParseAmount 规范化金额/数量字符串："$1,234.50" → 1234.50，"(12.00)" → -12.00。
// 空值与非数值一律为 0。
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "", "\u00a0", "").Replace(s)
	if s == "" || s == "-" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if negative {
		d = d.Neg()
	}
	return d
}
