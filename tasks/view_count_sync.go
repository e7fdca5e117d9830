package tasks

import (
	"context"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Xushengqwer/listing_service/constant"
	"github.com/Xushengqwer/listing_service/repo/mysql"
	"github.com/Xushengqwer/listing_service/repo/redis"
)

// ViewCountSyncTask 负责定时将 Redis 中的帖子浏览量同步到 MySQL 数据库。
// 浏览量在 Redis 中实时累积，MySQL 中的 view_count 是同步周期粒度的快照。
type ViewCountSyncTask struct {
	viewRepo  redis.ListingViewRepository // Redis 仓库，用于获取浏览量
	batchRepo mysql.ListingBatchRepository
	cron      *cron.Cron
	logger    *core.ZapLogger
}

// NewViewCountSyncTask 初始化并启动浏览量同步的定时任务。
func NewViewCountSyncTask(
	viewRepo redis.ListingViewRepository,
	batchRepo mysql.ListingBatchRepository,
	logger *core.ZapLogger,
) *ViewCountSyncTask {
	cronV3 := cron.New() // 默认分钟级精度
	task := &ViewCountSyncTask{
		viewRepo:  viewRepo,
		batchRepo: batchRepo,
		cron:      cronV3,
		logger:    logger,
	}
	task.startCronJob()
	return task
}

// startCronJob 配置并启动 cron 作业。
// 使用 constant.SyncViewCountInterval 定义的 cron 表达式调度 syncViewCountsToDB。
func (t *ViewCountSyncTask) startCronJob() {
	schedule := constant.SyncViewCountInterval
	t.logger.Info("准备启动帖子浏览量同步MySQL定时任务", zap.String("schedule", schedule))

	entryID, err := t.cron.AddFunc(schedule, func() {
		t.logger.Info("帖子浏览量同步MySQL任务开始执行...")
		startTime := time.Now()
		// 单次执行的超时需覆盖 Redis 全量扫描和 MySQL 批量更新。
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()

		t.syncViewCountsToDB(ctx)

		t.logger.Info("帖子浏览量同步MySQL任务执行完毕", zap.Duration("duration", time.Since(startTime)))
	})

	if err != nil {
		// schedule 表达式错误属于启动期缺陷，直接终止进程。
		t.logger.Fatal("添加帖子浏览量同步 cron 作业失败", zap.Error(err), zap.String("schedule", schedule))
	}

	t.cron.Start()
	t.logger.Info("帖子浏览量同步MySQL定时任务已启动", zap.Uint("cronEntryID", uint(entryID)))
}

// syncViewCountsToDB 是定时任务执行的实际同步逻辑。
// 1. 从 Redis 获取全量的帖子浏览量数据。
// 2. 调用 MySQL 仓库批量更新到数据库。
func (t *ViewCountSyncTask) syncViewCountsToDB(ctx context.Context) {
	viewCounts, err := t.viewRepo.GetAllViewCounts(ctx)
	if err != nil {
		t.logger.Error("从 Redis 获取全量浏览量失败，本次同步中止。", zap.Error(err))
		return
	}

	countFromRedis := len(viewCounts)
	if countFromRedis == 0 {
		t.logger.Info("从 Redis 获取到的浏览量数据为空，无需同步到 MySQL。")
		return
	}

	if err := t.batchRepo.BatchUpdateListingViewCounts(ctx, viewCounts); err != nil {
		// 批量更新允许部分批次失败，聚合错误在仓库层已记录，这里只补一条任务级日志。
		t.logger.Error("MySQL 批量更新浏览量存在失败批次",
			zap.Error(err),
			zap.Int("提交数量", countFromRedis),
		)
	} else {
		t.logger.Info("浏览量批量更新到 MySQL 完成。", zap.Int("提交数量", countFromRedis))
	}
}

// Stop 优雅地停止 cron 调度器。
// 返回一个 context，调用者可以使用它来等待正在运行的任务完成。
func (t *ViewCountSyncTask) Stop() context.Context {
	t.logger.Info("正在停止帖子浏览量同步MySQL定时任务...")
	stopCtx := t.cron.Stop()
	t.logger.Info("帖子浏览量同步MySQL定时任务已停止调度。等待正在执行的任务完成...")
	return stopCtx
}
