package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"InventorySync/internal/api"
	"InventorySync/internal/model"
	"InventorySync/internal/output"
)

type runOptions struct {
	testMode bool
	report   string
	combine  bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "inventory-sync",
		Short:         "多渠道库存/销售报表对账",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "配置文件路径（默认 ./config/config.yaml）")

	root.AddCommand(newRunCmd(&configPath), newServeCmd(&configPath))
	return root
}

func newRunCmd(configPath *string) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "运行库存与销售报表（先库存后销售）",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReports(cmd.Context(), *configPath, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.testMode, "test", "t", false, "测试模式：生成报表但不推送webhook")
	cmd.Flags().StringVar(&opts.report, "report", "", "只运行指定报表（inventory/sales），默认全部")
	cmd.Flags().BoolVar(&opts.combine, "combine", false, "运行后合并历史库存报表")
	return cmd
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动HTTP服务（手动触发与快照查询）",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), *configPath)
		},
	}
}

func runReports(ctx context.Context, configPath string, opts runOptions) error {
	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.close()

	log := a.logger
	log.Info("==================================================")
	log.WithField("test_mode", opts.testMode).Info("开始运行报表流水线")

	var runErr error
	if opts.report != "" {
		report, ok := model.ParseReportType(opts.report)
		if !ok {
			return fmt.Errorf("未知报表类型: %s", opts.report)
		}
		_, runErr = a.sync.RunReport(ctx, report, opts.testMode)
	} else {
		_, runErr = a.sync.RunAll(ctx, opts.testMode)
	}

	if opts.combine {
		if _, err := output.CombineInventory(a.cfg.Paths.OutputDir, a.cfg.Output.CombinedInventory, a.loader, log); err != nil {
			log.WithError(err).Error("合并库存历史失败")
		}
	}

	if runErr != nil {
		log.WithError(runErr).Error("流水线运行失败")
		return runErr
	}
	log.Info("流水线运行完成")
	return nil
}

func serve(ctx context.Context, configPath string) error {
	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.close()
	cfg, log := a.cfg, a.logger

	// 配置Gin运行模式（从配置读取：debug/release）
	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()

	// 注册ppof 方便调试和监测性能问题
	pprof.Register(r)
	log.Infof("Gin运行模式: %s", cfg.Server.Mode)

	syncHandler := api.NewSyncHandler(a.sync, log)
	r.POST("/sync/report/:report", syncHandler.SyncReportHandler)

	// 快照查询接口依赖数据库
	if a.db != nil {
		snapshotHandler := api.NewSnapshotHandler(a.db, log)
		r.GET("/api/snapshots/:report", snapshotHandler.ListSnapshots)
		r.GET("/api/runs", snapshotHandler.ListRuns)
		r.GET("/api/runs/:run_id", snapshotHandler.GetRun)
	} else {
		log.Warn("未配置数据库，快照查询接口不可用")
	}

	port := cfg.Server.Port
	log.Infof("服务启动成功，端口：%d", port)
	if err := r.Run(fmt.Sprintf(":%d", port)); err != nil {
		return fmt.Errorf("启动服务失败: %w", err)
	}
	return nil
}
