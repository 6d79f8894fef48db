package adapter

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"InventorySync/internal/interfaces"
	"InventorySync/internal/model"
)

// ParserRegistry 每种报表一个固定顺序的解析器列表（启动时构造，运行期只读）
type ParserRegistry struct {
	logger  *logrus.Logger
	parsers map[model.ReportType][]interfaces.ChannelParser
}

// NewParserRegistry 按给定顺序调用工厂函数创建解析器实例
func NewParserRegistry(deps *Deps, factories map[model.ReportType][]Factory) *ParserRegistry {
	r := &ParserRegistry{
		logger:  deps.Logger,
		parsers: make(map[model.ReportType][]interfaces.ChannelParser),
	}
	for report, list := range factories {
		for _, factory := range list {
			if factory == nil {
				panic(fmt.Sprintf("报表%s的解析器工厂函数不能为nil", report))
			}
			p := factory(deps)
			if p == nil {
				r.logger.WithField("report", report).Error("工厂函数返回nil解析器，跳过")
				continue
			}
			r.parsers[report] = append(r.parsers[report], p)
		}
		r.logger.WithFields(logrus.Fields{
			"report":  report,
			"parsers": r.Names(report),
		}).Debug("解析器注册完成")
	}
	return r
}

// Parsers 报表对应的解析器（固定顺序，返回副本）
func (r *ParserRegistry) Parsers(report model.ReportType) []interfaces.ChannelParser {
	return append([]interfaces.ChannelParser(nil), r.parsers[report]...)
}

// Names 解析器名称列表
func (r *ParserRegistry) Names(report model.ReportType) []string {
	var names []string
	for _, p := range r.parsers[report] {
		names = append(names, p.GetName())
	}
	return names
}
