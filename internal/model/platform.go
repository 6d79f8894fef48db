package model

import (
	"time"
)

// ReportType 报表类型
type ReportType string

const (
	ReportInventory ReportType = "inventory"
	ReportSales     ReportType = "sales"
)

// ParseReportType 解析报表类型（大小写敏感）
func ParseReportType(s string) (ReportType, bool) {
	switch ReportType(s) {
	case ReportInventory, ReportSales:
		return ReportType(s), true
	default:
		return "", false
	}
}

// BundlesSKU 销售报表中承载"组合装"汇总量的虚拟SKU
const BundlesSKU = "Bundles"

// FileRole 渠道内某个源文件的角色
type FileRole string

const (
	RolePrimary   FileRole = "primary"
	RoleLevels    FileRole = "levels"
	RoleOrders    FileRole = "orders"
	RoleInbound   FileRole = "inbound"
	RoleSales     FileRole = "sales"
	RoleInventory FileRole = "inventory"
)

// reportDatePriority 一个渠道有多个文件时，取报表日期的优先级
var reportDatePriority = []FileRole{RoleLevels, RoleInventory, RolePrimary, RoleSales, RoleOrders, RoleInbound}

// FileSpec 渠道声明的输入文件
type FileSpec struct {
	Role     FileRole
	Prefix   string
	Optional bool // 可选文件缺失时用零值兜底，不跳过渠道
}

// ResolvedFile 解析到的最新文件
type ResolvedFile struct {
	Path string
	Date time.Time // 文件名中的日期（非运行日期）
}

// FileSet 角色→文件，可选文件缺失时不在集合中
type FileSet map[FileRole]ResolvedFile

// Path 返回角色对应路径，缺失返回空串
func (fs FileSet) Path(role FileRole) string {
	return fs[role].Path
}

// Has 是否解析到该角色文件
func (fs FileSet) Has(role FileRole) bool {
	_, ok := fs[role]
	return ok
}

// ReportDate 按优先级（levels > inventory > primary > ...）取渠道报表日期
func (fs FileSet) ReportDate() (time.Time, bool) {
	for _, role := range reportDatePriority {
		if f, ok := fs[role]; ok {
			return f.Date, true
		}
	}
	return time.Time{}, false
}
