package output

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"InventorySync/internal/config"
	"InventorySync/internal/model"
)

const xlsxSheet = "Sheet1"

// FileSink 校验通过的记录落盘：CSV（必写）、JSON/XLSX（按配置），可选上传 S3
type FileSink struct {
	dir      string
	saveJSON bool
	saveXLSX bool
	uploader *S3Uploader
	now      func() time.Time
	logger   *logrus.Logger
}

// NewFileSink uploader 可为 nil
func NewFileSink(paths *config.PathsConfig, out *config.OutputConfig, uploader *S3Uploader, logger *logrus.Logger) *FileSink {
	return &FileSink{
		dir:      paths.OutputDir,
		saveJSON: out.SaveJSON,
		saveXLSX: out.SaveXLSX,
		uploader: uploader,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock 文件名日期取自 now（测试用）
func (s *FileSink) WithClock(now func() time.Time) *FileSink {
	s.now = now
	return s
}

// BaseName inventory_report / sales_report
func BaseName(report model.ReportType) string {
	return string(report) + "_report"
}

// Save 写出 <dir>/<report>_report_<YYYY-MM-DD>.{csv,json,xlsx}，返回首个错误
func (s *FileSink) Save(ctx context.Context, report model.ReportType, records []model.Record) error {
	if len(records) == 0 {
		s.logger.WithField("report", report).Warn("没有数据需要保存")
		return nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	base := filepath.Join(s.dir, BaseName(report)+"_"+model.NewDate(s.now()).String())
	header := model.HeaderFor(report)

	var written []string
	if err := writeCSV(base+".csv", header, records); err != nil {
		return err
	}
	written = append(written, base+".csv")

	if s.saveJSON {
		if err := writeJSON(base+".json", records); err != nil {
			return err
		}
		written = append(written, base+".json")
	}
	if s.saveXLSX {
		if err := writeXLSX(base+".xlsx", header, records); err != nil {
			return err
		}
		written = append(written, base+".xlsx")
	}
	for _, p := range written {
		s.logger.WithFields(logrus.Fields{"report": report, "file": p, "records": len(records)}).Info("报表已保存")
	}

	if s.uploader == nil {
		return nil
	}
	for _, p := range written {
		if _, err := s.uploader.Upload(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// formatCell 浮点保留两位小数
func formatCell(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', 2, 64)
	default:
		return fmt.Sprint(x)
	}
}

func writeCSV(path string, header []string, records []model.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建CSV失败: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("写入CSV表头失败: %w", err)
	}
	row := make([]string, len(header))
	for _, rec := range records {
		for i, v := range rec.Values() {
			row[i] = formatCell(v)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("写入CSV失败: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("写入CSV失败: %w", err)
	}
	return nil
}

func writeJSON(path string, records []model.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化JSON失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入JSON失败: %w", err)
	}
	return nil
}

func writeXLSX(path string, header []string, records []model.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	head := make([]interface{}, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &head); err != nil {
		return fmt.Errorf("写入XLSX表头失败: %w", err)
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := rec.Values()
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return fmt.Errorf("写入XLSX第%d行失败: %w", i+2, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("保存XLSX失败: %w", err)
	}
	return nil
}
