package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InventorySync/internal/config"
	"InventorySync/internal/interfaces"
	"InventorySync/internal/model"
)

var runDay = time.Date(2025, 1, 2, 8, 30, 0, 0, time.UTC)

// fakeParser 返回固定中间表
type fakeParser struct {
	name     string
	channels []string
	specs    []model.FileSpec
	rows     []model.Row
	bundles  map[string]*model.BundleStat
	err      error
	panics   bool
	called   bool
	onParse  func()
}

func (f *fakeParser) GetName() string { return f.name }
func (f *fakeParser) Channels() []string { return f.channels }
func (f *fakeParser) RequiredFiles() []model.FileSpec { return f.specs }

func (f *fakeParser) Parse(files model.FileSet) (*model.Table, error) {
	f.called = true
	if f.onParse != nil {
		f.onParse()
	}
	if f.panics {
		panic("boom")
	}
	if f.err != nil {
		return nil, f.err
	}
	t := model.NewTable()
	t.Rows = append(t.Rows, f.rows...)
	for ch, st := range f.bundles {
		t.Bundles[ch] = st
	}
	for _, ch := range f.channels {
		t.MarkChannel(ch)
	}
	return t, nil
}

type recordingSink struct {
	mu    sync.Mutex
	calls int
	last  []model.Record
	err   error
}

func (s *recordingSink) Save(_ context.Context, _ model.ReportType, records []model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.last = records
	return s.err
}

type recordingNotifier struct {
	calls   int
	summary map[string]interface{}
	records []model.Record
	err     error
}

func (n *recordingNotifier) Notify(_ context.Context, _ model.ReportType, summary map[string]interface{}, records []model.Record) error {
	n.calls++
	n.summary = summary
	n.records = records
	return n.err
}

type recordingRuns struct {
	runs []*model.ReportRun
}

func (r *recordingRuns) SaveRun(_ context.Context, run *model.ReportRun) error {
	r.runs = append(r.runs, run)
	return nil
}

type harness struct {
	dir      string
	sink     *recordingSink
	notifier *recordingNotifier
	runs     *recordingRuns
	deps     PipelineDeps
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	h := &harness{
		dir:      t.TempDir(),
		sink:     &recordingSink{},
		notifier: &recordingNotifier{},
		runs:     &recordingRuns{},
	}
	h.deps = PipelineDeps{
		Logger:   logger,
		Catalog:  config.DefaultCatalog(),
		InputDir: h.dir,
		Sinks:    []interfaces.ReportSink{h.sink},
		Notifier: h.notifier,
		Runs:     h.runs,
		Now:      func() time.Time { return runDay },
	}
	return h
}

func (h *harness) touch(t *testing.T, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(h.dir, name), []byte("x\n"), 0o644))
}

func primary(prefix string) []model.FileSpec {
	return []model.FileSpec{{Role: model.RolePrimary, Prefix: prefix}}
}

func inventoryRecords(t *testing.T, recs []model.Record) []model.InventoryRecord {
	t.Helper()
	out := make([]model.InventoryRecord, 0, len(recs))
	for _, r := range recs {
		ir, ok := r.(model.InventoryRecord)
		require.True(t, ok)
		out = append(out, ir)
	}
	return out
}

func salesRecords(t *testing.T, recs []model.Record) []model.SalesRecord {
	t.Helper()
	out := make([]model.SalesRecord, 0, len(recs))
	for _, r := range recs {
		sr, ok := r.(model.SalesRecord)
		require.True(t, ok)
		out = append(out, sr)
	}
	return out
}

func TestPipeline_MissingChannelIsAbsent(t *testing.T) {
	h := newHarness(t)
	h.touch(t, "FBA_2025-01-01.csv")

	fba := &fakeParser{
		name: "FBA", channels: []string{"FBA"}, specs: primary("FBA_"),
		rows: []model.Row{{Channel: "FBA", SKU: "1001", Inventory: 9, Inbound: 2, Units: 1}},
	}
	awd := &fakeParser{name: "AWD", channels: []string{"AWD"}, specs: primary("AWD_")}

	res, err := NewPipeline(model.ReportInventory, h.deps, []interfaces.ChannelParser{awd, fba}).Run(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, awd.called)
	assert.Equal(t, model.RunStatusSuccess, res.Status)

	recs := inventoryRecords(t, res.Records)
	skus := config.DefaultCatalog().SKUOrder()
	require.Len(t, recs, len(skus))
	for i, r := range recs {
		assert.Equal(t, "FBA", r.Channel)
		assert.Equal(t, skus[i], r.SKU)
		assert.Equal(t, "2025-01-01", r.ReportDate.String())
	}
	assert.Equal(t, "20250102_FBA_1001", recs[0].ID)
	assert.Equal(t, "FBA_1001", recs[0].SKUChannelID)
	assert.Equal(t, int64(9), recs[0].Inventory)
	assert.Equal(t, int64(0), recs[1].Inventory)

	assert.Equal(t, "2025-01-01", res.Summary["FBA"])
	assert.Nil(t, res.Summary["AWD"])
	assert.Contains(t, res.Summary, "DTC")
	assert.Len(t, res.Summary, 5)

	assert.Equal(t, 1, h.sink.calls)
	assert.Equal(t, 1, h.notifier.calls)
	require.Len(t, h.runs.runs, 1)
	assert.Equal(t, res.RunID, h.runs.runs[0].RunUUID)
	assert.Equal(t, len(skus), h.runs.runs[0].RecordCount)
	assert.JSONEq(t, `{"DTC":null,"Reserve":null,"FBA":"2025-01-01","AWD":null,"WFS":null}`, string(h.runs.runs[0].Summary))
}

func TestPipeline_SalesOrderingAndBundles(t *testing.T) {
	h := newHarness(t)
	h.touch(t, "W_2025-01-01.csv")
	h.touch(t, "A_2024-12-31.csv")

	walmart := &fakeParser{
		name: "Walmart", channels: []string{"Walmart"}, specs: primary("W_"),
		rows:    []model.Row{{Channel: "Walmart", SKU: "2001", Units: 3, Revenue: decimal.RequireFromString("10").Div(decimal.NewFromInt(3))}},
		bundles: map[string]*model.BundleStat{"Walmart": {Units: 4, Revenue: decimal.RequireFromString("19.999")}},
	}
	amazon := &fakeParser{
		name: "Amazon", channels: []string{"Amazon"}, specs: primary("A_"),
		rows: []model.Row{{Channel: "Amazon", SKU: "1001", Units: 1, Revenue: decimal.NewFromInt(5)}},
	}

	res, err := NewPipeline(model.ReportSales, h.deps, []interfaces.ChannelParser{walmart, amazon}).Run(context.Background(), false)
	require.NoError(t, err)

	recs := salesRecords(t, res.Records)
	per := len(config.DefaultCatalog().SKUOrder()) + 1
	require.Len(t, recs, 2*per)

	// 渠道顺序按目录（Amazon 在 Walmart 前），每个渠道 Bundles 在最前
	assert.Equal(t, "Amazon", recs[0].Channel)
	assert.Equal(t, model.BundlesSKU, recs[0].SKU)
	assert.Equal(t, int64(0), recs[0].Units)
	assert.Equal(t, "2024-12-31", recs[0].ReportDate.String())
	assert.Equal(t, "1001", recs[1].SKU)

	wb := recs[per]
	assert.Equal(t, "Walmart", wb.Channel)
	assert.Equal(t, model.BundlesSKU, wb.SKU)
	assert.Equal(t, int64(4), wb.Units)
	assert.Equal(t, 20.0, wb.Revenue)
	assert.Equal(t, "20250102_Walmart_Bundles", wb.ID)

	for _, r := range recs {
		if r.Channel == "Walmart" && r.SKU == "2001" {
			assert.Equal(t, 3.33, r.Revenue)
		}
	}

	// 每个(渠道,SKU)恰好一条
	seen := make(map[string]bool)
	for _, r := range recs {
		assert.False(t, seen[r.ID], r.ID)
		seen[r.ID] = true
	}
	assert.Len(t, res.Summary, 7)
}

func TestPipeline_ChannelNameWithSpaces(t *testing.T) {
	id, skuChannelID := recordIDs(runDay, "TikTok Shop", "1001")
	assert.Equal(t, "20250102_TikTok_Shop_1001", id)
	assert.Equal(t, "TikTok_Shop_1001", skuChannelID)
}

func TestPipeline_ValidationFailureSkipsLoad(t *testing.T) {
	h := newHarness(t)
	h.touch(t, "FBA_2025-01-02.csv")
	bad := &fakeParser{
		name: "FBA", channels: []string{"FBA"}, specs: primary("FBA_"),
		rows: []model.Row{{Channel: "FBA", SKU: "1001", Inventory: -5}},
	}

	res, err := NewPipeline(model.ReportInventory, h.deps, []interfaces.ChannelParser{bad}).Run(context.Background(), false)
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "inventory", verr.Field)
	assert.Equal(t, "gte", verr.Rule)
	assert.Equal(t, "20250102_FBA_1001", verr.RecordID)

	assert.Equal(t, model.RunStatusValidationFailed, res.Status)
	assert.Equal(t, 0, h.sink.calls)
	assert.Equal(t, 0, h.notifier.calls)
	require.Len(t, h.runs.runs, 1)
	assert.NotEmpty(t, h.runs.runs[0].Error)
}

func TestPipeline_TestModeSkipsNotifier(t *testing.T) {
	h := newHarness(t)
	h.touch(t, "FBA_2025-01-02.csv")
	p := &fakeParser{name: "FBA", channels: []string{"FBA"}, specs: primary("FBA_")}

	res, err := NewPipeline(model.ReportInventory, h.deps, []interfaces.ChannelParser{p}).Run(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 32, res.Count)
	assert.Equal(t, 1, h.sink.calls)
	assert.Equal(t, 0, h.notifier.calls)
}

func TestPipeline_EmptyRunStillNotifies(t *testing.T) {
	h := newHarness(t)
	p := &fakeParser{name: "FBA", channels: []string{"FBA"}, specs: primary("FBA_")}

	res, err := NewPipeline(model.ReportInventory, h.deps, []interfaces.ChannelParser{p}).Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusEmpty, res.Status)
	assert.Empty(t, res.Records)
	assert.Equal(t, 0, h.sink.calls)
	assert.Equal(t, 1, h.notifier.calls)
	for _, v := range h.notifier.summary {
		assert.Nil(t, v)
	}
}

func TestPipeline_FailingSourcesAreIsolated(t *testing.T) {
	h := newHarness(t)
	h.touch(t, "P_2025-01-02.csv")
	h.touch(t, "E_2025-01-02.csv")
	h.touch(t, "OK_2025-01-02.csv")

	panicky := &fakeParser{name: "AWD", channels: []string{"AWD"}, specs: primary("P_"), panics: true}
	failing := &fakeParser{name: "WFS", channels: []string{"WFS"}, specs: primary("E_"), err: errors.New("bad file")}
	ok := &fakeParser{name: "FBA", channels: []string{"FBA"}, specs: primary("OK_")}

	h.sink.err = errors.New("disk full")
	h.notifier.err = errors.New("503")

	res, err := NewPipeline(model.ReportInventory, h.deps, []interfaces.ChannelParser{panicky, failing, ok}).Run(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, panicky.called)
	assert.True(t, failing.called)
	assert.Equal(t, 32, res.Count)
	assert.Nil(t, res.Summary["AWD"])
	assert.Nil(t, res.Summary["WFS"])
	assert.Equal(t, "2025-01-02", res.Summary["FBA"])
	// 落盘/推送失败不影响结果
	assert.Equal(t, model.RunStatusSuccess, res.Status)
}

func TestPipeline_CancelledMidRunPublishesNothing(t *testing.T) {
	h := newHarness(t)
	h.touch(t, "FBA_2025-01-02.csv")
	h.touch(t, "AWD_2025-01-02.csv")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fba := &fakeParser{name: "FBA", channels: []string{"FBA"}, specs: primary("FBA_"), onParse: cancel}
	awd := &fakeParser{name: "AWD", channels: []string{"AWD"}, specs: primary("AWD_")}

	res, err := NewPipeline(model.ReportInventory, h.deps, []interfaces.ChannelParser{fba, awd}).Run(ctx, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, fba.called)
	assert.False(t, awd.called)

	assert.Equal(t, model.RunStatusCancelled, res.Status)
	assert.Empty(t, res.Records)
	assert.Equal(t, 0, h.sink.calls)
	assert.Equal(t, 0, h.notifier.calls)
	require.Len(t, h.runs.runs, 1)
	assert.Equal(t, model.RunStatusCancelled, h.runs.runs[0].Status)
	assert.NotEmpty(t, h.runs.runs[0].Error)
}

func TestPipeline_CancelledBeforeStart(t *testing.T) {
	h := newHarness(t)
	h.touch(t, "FBA_2025-01-02.csv")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fba := &fakeParser{name: "FBA", channels: []string{"FBA"}, specs: primary("FBA_")}

	res, err := NewPipeline(model.ReportInventory, h.deps, []interfaces.ChannelParser{fba}).Run(ctx, false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, fba.called)
	assert.Equal(t, model.RunStatusCancelled, res.Status)
	// 空结果也不推送
	assert.Equal(t, 0, h.notifier.calls)
	assert.Equal(t, 0, h.sink.calls)
}

func TestPipeline_OptionalFileMissing(t *testing.T) {
	h := newHarness(t)
	h.touch(t, "L_2025-01-01.csv")
	p := &fakeParser{
		name: "Flexport", channels: []string{"DTC", "Reserve"},
		specs: []model.FileSpec{
			{Role: model.RoleLevels, Prefix: "L_"},
			{Role: model.RoleInbound, Prefix: "I_", Optional: true},
		},
	}

	res, err := NewPipeline(model.ReportInventory, h.deps, []interfaces.ChannelParser{p}).Run(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, p.called)
	assert.Equal(t, 64, res.Count)
	assert.Equal(t, "2025-01-01", res.Summary["DTC"])
	assert.Equal(t, "2025-01-01", res.Summary["Reserve"])
}

func TestPipeline_InactiveChannelRowsDropped(t *testing.T) {
	h := newHarness(t)
	h.touch(t, "X_2025-01-02.csv")
	// 解析器产出了未标记渠道的行
	p := &fakeParser{
		name: "FBA", channels: []string{"FBA"}, specs: primary("X_"),
		rows: []model.Row{{Channel: "AWD", SKU: "1001", Inventory: 3}},
	}

	res, err := NewPipeline(model.ReportInventory, h.deps, []interfaces.ChannelParser{p}).Run(context.Background(), false)
	require.NoError(t, err)
	for _, r := range inventoryRecords(t, res.Records) {
		assert.Equal(t, "FBA", r.Channel)
	}
}
