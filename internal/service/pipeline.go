package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"InventorySync/internal/config"
	"InventorySync/internal/interfaces"
	"InventorySync/internal/model"
	"InventorySync/internal/utils/reportfile"
)

// PipelineDeps 流水线依赖；Sinks/Notifier/Runs 可为空
type PipelineDeps struct {
	Logger    *logrus.Logger
	Catalog   *config.Catalog
	Resolver  *reportfile.Resolver
	InputDir  string
	Validator *Validator
	Sinks     []interfaces.ReportSink
	Notifier  interfaces.Notifier
	Runs      interfaces.RunRepository
	Now       func() time.Time
}

// Pipeline Extract → Transform → Load，一个实例对应一种报表
type Pipeline struct {
	report  model.ReportType
	deps    PipelineDeps
	parsers []interfaces.ChannelParser
}

// Result 一次运行的结果
type Result struct {
	RunID   string                 `json:"runId"`
	Report  model.ReportType       `json:"reportType"`
	Status  string                 `json:"status"`
	Summary map[string]interface{} `json:"reportSummary"`
	Records []model.Record         `json:"-"`
	Count   int                    `json:"recordCount"`
}

// NewPipeline parsers 为固定顺序的解析器列表
func NewPipeline(report model.ReportType, deps PipelineDeps, parsers []interfaces.ChannelParser) *Pipeline {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Resolver == nil {
		deps.Resolver = reportfile.NewResolver().WithClock(deps.Now)
	}
	if deps.Validator == nil {
		deps.Validator = NewValidator(deps.Catalog)
	}
	return &Pipeline{report: report, deps: deps, parsers: parsers}
}

// expectedChannels 状态汇总中列出的渠道
func (p *Pipeline) expectedChannels() []string {
	if p.report == model.ReportSales {
		return p.deps.Catalog.SalesChannels()
	}
	return p.deps.Catalog.InventoryChannels()
}

// Run 执行整条流水线。校验失败或上下文取消会返回错误（此时不落盘不推送）。
func (p *Pipeline) Run(ctx context.Context, testMode bool) (*Result, error) {
	startedAt := p.deps.Now()
	systemDate := model.NewDate(startedAt)
	res := &Result{RunID: uuid.NewString(), Report: p.report}
	log := p.deps.Logger.WithFields(logrus.Fields{"run_id": res.RunID, "report": p.report})
	log.Infof("开始生成%s报表", p.report)

	// 1. Extract
	ex := p.Extract(ctx)
	res.Summary = p.statusSummary(ex)
	if err := ctx.Err(); err != nil {
		return p.cancel(ctx, res, log, systemDate, startedAt, err)
	}
	if ex.Empty() {
		log.Warn("没有任何渠道产出数据，仅推送状态")
		res.Status = model.RunStatusEmpty
		p.Load(ctx, res, testMode)
		p.saveRun(ctx, res, systemDate, startedAt, nil)
		return res, nil
	}

	// 2. Transform
	records, err := p.Transform(ex, startedAt)
	if err != nil {
		log.WithError(err).Error("数据校验失败，本次不落盘不推送")
		res.Status = model.RunStatusValidationFailed
		p.saveRun(ctx, res, systemDate, startedAt, err)
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return p.cancel(ctx, res, log, systemDate, startedAt, err)
	}
	res.Records = records
	res.Count = len(records)
	res.Status = model.RunStatusSuccess

	// 3. Load
	p.Load(ctx, res, testMode)
	p.saveRun(ctx, res, systemDate, startedAt, nil)
	log.WithField("records", len(records)).Infof("%s报表完成", p.report)
	return res, nil
}

// cancel 运行中途被取消：不落盘不推送，仅记录运行状态
func (p *Pipeline) cancel(ctx context.Context, res *Result, log *logrus.Entry, systemDate model.Date, startedAt time.Time, err error) (*Result, error) {
	log.WithError(err).Warn("运行被取消，本次不落盘不推送")
	res.Status = model.RunStatusCancelled
	p.saveRun(context.WithoutCancel(ctx), res, systemDate, startedAt, err)
	return res, fmt.Errorf("%s报表运行被取消: %w", p.report, err)
}

// Extract 依次执行各解析器；单个渠道缺文件/解析失败只影响该渠道
func (p *Pipeline) Extract(ctx context.Context) *Extracted {
	ex := newExtracted()
	for _, parser := range p.parsers {
		if ctx.Err() != nil {
			p.deps.Logger.WithError(ctx.Err()).Warn("上下文已取消，停止提取")
			break
		}
		log := p.deps.Logger.WithField("source", parser.GetName())

		files, ok := p.resolveFiles(parser, log)
		if !ok {
			log.Warn("必需文件缺失，跳过该来源")
			continue
		}
		table, err := safeParse(parser, files)
		if err != nil {
			log.WithError(err).Error("解析失败，该来源记为无数据")
			continue
		}
		if table.Empty() {
			log.Warn("来源未产出数据")
			continue
		}
		date, _ := files.ReportDate()
		ex.add(table, model.NewDate(date))
		log.WithFields(logrus.Fields{
			"channels":    table.Channels,
			"rows":        len(table.Rows),
			"report_date": model.NewDate(date).String(),
		}).Info("来源处理完成")
	}
	return ex
}

// resolveFiles 查找最新文件；可选文件缺失不影响
func (p *Pipeline) resolveFiles(parser interfaces.ChannelParser, log *logrus.Entry) (model.FileSet, bool) {
	files := make(model.FileSet)
	for _, spec := range parser.RequiredFiles() {
		rf, err := p.deps.Resolver.FindLatest(p.deps.InputDir, spec.Prefix)
		if err != nil {
			fields := logrus.Fields{"role": spec.Role, "prefix": spec.Prefix}
			if spec.Optional {
				log.WithFields(fields).Info("可选文件缺失，按0处理")
				continue
			}
			if errors.Is(err, reportfile.ErrFileNotFound) {
				log.WithFields(fields).Info("文件不存在")
			} else {
				log.WithFields(fields).WithError(err).Error("查找文件失败")
			}
			return nil, false
		}
		log.WithFields(logrus.Fields{
			"role": spec.Role,
			"file": rf.Path,
			"date": rf.Date.Format("2006-01-02"),
		}).Info("找到文件")
		files[spec.Role] = rf
	}
	return files, true
}

// safeParse 解析器 panic 也只影响该来源
func safeParse(parser interfaces.ChannelParser, files model.FileSet) (t *model.Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			t, err = nil, fmt.Errorf("解析器%s panic: %v", parser.GetName(), r)
		}
	}()
	return parser.Parse(files)
}

// Transform 模板补零 → 生成 id → 校验
func (p *Pipeline) Transform(ex *Extracted, systemDate time.Time) ([]model.Record, error) {
	rows := buildTemplate(p.deps.Catalog, p.report, ex)
	records := toRecords(p.report, systemDate, ex.Dates, rows)
	if err := p.deps.Validator.Validate(records); err != nil {
		return nil, err
	}
	p.deps.Logger.WithFields(logrus.Fields{
		"report":   p.report,
		"channels": len(ex.Channels),
		"records":  len(records),
	}).Info("数据校验通过")
	return records, nil
}

// Load 打印状态汇总 → 落盘/入库 → 推送（测试模式跳过推送）。失败只记录日志。
func (p *Pipeline) Load(ctx context.Context, res *Result, testMode bool) {
	// 1. 状态汇总
	for _, ch := range p.expectedChannels() {
		status := "No data"
		if d, ok := res.Summary[ch].(string); ok {
			status = d
		}
		p.deps.Logger.Infof("%s: %s", ch, status)
	}

	// 2. 落盘
	if len(res.Records) > 0 {
		for _, sink := range p.deps.Sinks {
			if err := sink.Save(ctx, p.report, res.Records); err != nil {
				p.deps.Logger.WithError(err).WithField("sink", fmt.Sprintf("%T", sink)).Error("保存报表失败")
			}
		}
	} else {
		p.deps.Logger.Warn("没有数据需要保存")
	}

	// 3. 推送
	if testMode {
		p.deps.Logger.Info("测试模式：跳过webhook推送")
		return
	}
	if p.deps.Notifier == nil {
		return
	}
	if err := p.deps.Notifier.Notify(ctx, p.report, res.Summary, res.Records); err != nil {
		p.deps.Logger.WithError(err).Error("webhook推送失败（报表已生成）")
	}
}

// statusSummary 渠道 → 报表日期（YYYY-MM-DD），无数据为 nil
func (p *Pipeline) statusSummary(ex *Extracted) map[string]interface{} {
	summary := make(map[string]interface{})
	for _, ch := range p.expectedChannels() {
		summary[ch] = nil
	}
	for _, ch := range ex.Channels {
		summary[ch] = ex.Dates[ch].String()
	}
	return summary
}

func (p *Pipeline) saveRun(ctx context.Context, res *Result, systemDate model.Date, startedAt time.Time, runErr error) {
	if p.deps.Runs == nil {
		return
	}
	summary, err := json.Marshal(res.Summary)
	if err != nil {
		p.deps.Logger.WithError(err).Warn("序列化状态汇总失败")
		summary = []byte("{}")
	}
	run := &model.ReportRun{
		RunUUID:     res.RunID,
		ReportType:  string(p.report),
		SystemDate:  systemDate,
		Status:      res.Status,
		RecordCount: res.Count,
		Summary:     datatypes.JSON(summary),
		StartedAt:   startedAt,
		FinishedAt:  p.deps.Now(),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if err := p.deps.Runs.SaveRun(ctx, run); err != nil {
		p.deps.Logger.WithError(err).Warn("保存运行记录失败")
	}
}
