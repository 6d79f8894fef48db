package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date 只保留日期部分，JSON/CSV 输出 YYYY-MM-DD
type Date struct {
	time.Time
}

// NewDate 截断到日
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// String YYYY-MM-DD，零值为空串
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(`"`+dateLayout+`"`, s)
	if err != nil {
		return fmt.Errorf("解析日期失败: %w", err)
	}
	d.Time = t
	return nil
}

// Value gorm 写库
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}

// Scan gorm 读库
func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		d.Time = time.Time{}
	case time.Time:
		*d = NewDate(v)
	case string:
		t, err := time.Parse(dateLayout, v[:min(len(v), len(dateLayout))])
		if err != nil {
			return err
		}
		d.Time = t
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("不支持的日期类型: %T", value)
	}
	return nil
}

// GormDataType 列类型
func (Date) GormDataType() string { return "date" }

// InventoryRecord 库存快照（渠道 × SKU 一行，长表格式）
type InventoryRecord struct {
	ID           string    `gorm:"column:id;primaryKey;type:varchar(128)" json:"id" validate:"required"`
	SKUChannelID string    `gorm:"column:sku_channel_id;type:varchar(96);index;not null" json:"sku_channel_id" validate:"required"`
	ReportDate   Date      `gorm:"column:report_date;not null" json:"reportDate" validate:"required"`
	SKU          string    `gorm:"column:sku;type:varchar(32);not null" json:"sku" validate:"required,master_sku"`
	Channel      string    `gorm:"column:channel;type:varchar(32);index;not null" json:"channel" validate:"required,inventory_channel"`
	UnitsSold    int64     `gorm:"column:units_sold;not null;default:0" json:"unitsSold" validate:"gte=0"`
	Inventory    int64     `gorm:"column:inventory;not null;default:0" json:"inventory" validate:"gte=0"`
	Inbound      int64     `gorm:"column:inbound;not null;default:0" json:"inbound" validate:"gte=0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"-"`
}

func (InventoryRecord) TableName() string { return "inventory_snapshots" }

// SalesRecord 销售快照（渠道 × SKU 一行，另含每渠道一行 Bundles）
type SalesRecord struct {
	ID           string    `gorm:"column:id;primaryKey;type:varchar(128)" json:"id" validate:"required"`
	SKUChannelID string    `gorm:"column:sku_channel_id;type:varchar(96);index;not null" json:"sku_channel_id" validate:"required"`
	ReportDate   Date      `gorm:"column:report_date;not null" json:"reportDate" validate:"required"`
	SKU          string    `gorm:"column:sku;type:varchar(32);not null" json:"sku" validate:"required,sales_sku"`
	Channel      string    `gorm:"column:channel;type:varchar(32);index;not null" json:"channel" validate:"required,sales_channel"`
	Units        int64     `gorm:"column:units;not null;default:0" json:"units" validate:"gte=0"`
	Revenue      float64   `gorm:"column:revenue;type:numeric(14,2);not null;default:0" json:"revenue" validate:"gte=0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"-"`
}

func (SalesRecord) TableName() string { return "sales_snapshots" }

// InventoryHeader CSV/XLSX 表头，与 JSON 字段一致
var InventoryHeader = []string{"id", "sku_channel_id", "reportDate", "sku", "channel", "unitsSold", "inventory", "inbound"}

// SalesHeader CSV/XLSX 表头
var SalesHeader = []string{"id", "sku_channel_id", "reportDate", "sku", "channel", "units", "revenue"}

// Values 按 InventoryHeader 顺序输出
func (r InventoryRecord) Values() []interface{} {
	return []interface{}{r.ID, r.SKUChannelID, r.ReportDate.String(), r.SKU, r.Channel, r.UnitsSold, r.Inventory, r.Inbound}
}

// Values 按 SalesHeader 顺序输出
func (r SalesRecord) Values() []interface{} {
	return []interface{}{r.ID, r.SKUChannelID, r.ReportDate.String(), r.SKU, r.Channel, r.Units, r.Revenue}
}
