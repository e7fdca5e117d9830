package tasks

import (
	"context"

	"github.com/Xushengqwer/go-common/core"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Xushengqwer/listing_service/constant"
	"github.com/Xushengqwer/listing_service/service"
)

// FeedJanitorTask 定时回收长时间无操作的信息流会话，
// 防止被客户端遗弃的会话 (关闭页面而未调用 DELETE) 占用内存。
type FeedJanitorTask struct {
	feedManager *service.FeedManager
	cron        *cron.Cron
	logger      *core.ZapLogger
}

// NewFeedJanitorTask 初始化并启动会话清理定时任务。
func NewFeedJanitorTask(feedManager *service.FeedManager, logger *core.ZapLogger) *FeedJanitorTask {
	task := &FeedJanitorTask{
		feedManager: feedManager,
		cron:        cron.New(),
		logger:      logger,
	}
	task.startCronJob()
	return task
}

// startCronJob 配置并启动 cron 作业。
func (t *FeedJanitorTask) startCronJob() {
	schedule := constant.FeedJanitorInterval
	t.logger.Info("准备启动信息流会话清理定时任务", zap.String("schedule", schedule))

	entryID, err := t.cron.AddFunc(schedule, func() {
		evicted := t.feedManager.EvictExpired()
		if evicted > 0 {
			t.logger.Info("信息流会话清理完成",
				zap.Int("回收数量", evicted),
				zap.Int("剩余会话数", t.feedManager.SessionCount()),
			)
		}
	})

	if err != nil {
		t.logger.Fatal("添加信息流会话清理 cron 作业失败", zap.Error(err), zap.String("schedule", schedule))
	}

	t.cron.Start()
	t.logger.Info("信息流会话清理定时任务已启动", zap.Uint("cronEntryID", uint(entryID)))
}

// Stop 优雅地停止 cron 调度器。
func (t *FeedJanitorTask) Stop() context.Context {
	t.logger.Info("正在停止信息流会话清理定时任务...")
	return t.cron.Stop()
}
