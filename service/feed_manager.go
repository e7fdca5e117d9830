package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Xushengqwer/listing_service/config"
	"github.com/Xushengqwer/listing_service/constant"
	"github.com/Xushengqwer/listing_service/models/dto"
	"github.com/Xushengqwer/listing_service/models/vo"
	"github.com/Xushengqwer/listing_service/utils"
)

// 会话默认参数，配置缺省时使用。
const (
	defaultSessionTTL     = 10 * time.Minute
	defaultSearchDebounce = 300 * time.Millisecond
)

// FeedManager 管理所有活跃的信息流会话。
// - 每个会话由一个 UUID 标识，持有独立的 ListingFeed 状态机
//   和一个搜索关键词防抖器。
// - 分类变更立即生效；关键词变更先进入防抖器，静默期结束后
//   才真正触发 SetSearch。
// - 清理任务定期回收超过 TTL 无操作的会话。
type FeedManager struct {
	mu       sync.RWMutex
	sessions map[string]*feedSession

	svc    ListingService
	cfg    config.FeedConfig
	logger *core.ZapLogger
	now    func() time.Time // 可注入的时钟，便于测试会话过期
}

// feedSession 是单个会话的内部状态。
type feedSession struct {
	feed       *ListingFeed
	debouncer  *utils.Debouncer[string]
	lastActive time.Time
}

// NewFeedManager 创建会话管理器。
func NewFeedManager(svc ListingService, cfg config.FeedConfig, logger *core.ZapLogger) *FeedManager {
	return &FeedManager{
		sessions: make(map[string]*feedSession),
		svc:      svc,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// sessionTTL 返回生效的会话回收时长。
func (m *FeedManager) sessionTTL() time.Duration {
	if m.cfg.SessionTTLSeconds > 0 {
		return time.Duration(m.cfg.SessionTTLSeconds) * time.Second
	}
	return defaultSessionTTL
}

// searchDebounce 返回生效的关键词防抖时长。
func (m *FeedManager) searchDebounce() time.Duration {
	if m.cfg.SearchDebounceMillis > 0 {
		return time.Duration(m.cfg.SearchDebounceMillis) * time.Millisecond
	}
	return defaultSearchDebounce
}

// Open 创建一个新会话并同步加载首屏，返回会话 ID 与首屏快照。
func (m *FeedManager) Open(ctx context.Context, req *dto.OpenFeedRequest) (*vo.FeedSnapshotVO, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = constant.DefaultPageSize
	}

	sessionID := uuid.NewString()
	feed := NewListingFeed(m.svc, pageSize, req.Category, req.Search, m.logger)

	// 防抖回调在定时器 goroutine 中触发，用独立的超时上下文执行查询。
	debouncer := utils.NewDebouncer[string](m.searchDebounce(), func(search string) {
		bgCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := feed.SetSearch(bgCtx, search); err != nil {
			m.logger.Warn("防抖后的关键词查询失败",
				zap.String("sessionID", sessionID),
				zap.String("search", search),
				zap.Error(err))
		}
	})

	session := &feedSession{
		feed:       feed,
		debouncer:  debouncer,
		lastActive: m.now(),
	}

	m.mu.Lock()
	m.sessions[sessionID] = session
	m.mu.Unlock()

	if err := feed.LoadInitial(ctx); err != nil {
		// 首屏失败不销毁会话，快照会带回空列表，调用方可重试。
		m.logger.Warn("会话首屏加载失败", zap.String("sessionID", sessionID), zap.Error(err))
	}

	snapshot := feed.Snapshot()
	snapshot.SessionID = sessionID
	m.logger.Info("信息流会话已创建",
		zap.String("sessionID", sessionID),
		zap.Int("pageSize", pageSize),
	)
	return snapshot, nil
}

// lookup 返回会话并刷新其活跃时间。
func (m *FeedManager) lookup(sessionID string) (*feedSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("信息流会话 '%s' 不存在或已过期", sessionID)
	}
	session.lastActive = m.now()
	return session, nil
}

// UpdateFilter 更新会话的筛选条件。
// - 分类立即生效并重新加载首屏。
// - 关键词进入防抖器，静默期结束后由回调触发真正的查询。
func (m *FeedManager) UpdateFilter(ctx context.Context, sessionID string, req *dto.UpdateFeedFilterRequest) (*vo.FeedSnapshotVO, error) {
	session, err := m.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	if req.Category != nil {
		if catErr := session.feed.SetCategory(ctx, *req.Category); catErr != nil {
			m.logger.Warn("会话分类变更后的加载失败",
				zap.String("sessionID", sessionID), zap.Error(catErr))
		}
	}
	if req.Search != nil {
		session.debouncer.Set(*req.Search)
	}

	snapshot := session.feed.Snapshot()
	snapshot.SessionID = sessionID
	return snapshot, nil
}

// LoadMore 对会话追加加载下一页并返回最新快照。
func (m *FeedManager) LoadMore(ctx context.Context, sessionID string) (*vo.FeedSnapshotVO, error) {
	session, err := m.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	if loadErr := session.feed.LoadMore(ctx); loadErr != nil {
		m.logger.Warn("会话追加加载失败", zap.String("sessionID", sessionID), zap.Error(loadErr))
	}

	snapshot := session.feed.Snapshot()
	snapshot.SessionID = sessionID
	return snapshot, nil
}

// Snapshot 返回会话的当前快照，不触发任何加载。
func (m *FeedManager) Snapshot(sessionID string) (*vo.FeedSnapshotVO, error) {
	session, err := m.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	snapshot := session.feed.Snapshot()
	snapshot.SessionID = sessionID
	return snapshot, nil
}

// Close 关闭会话并停止其防抖器。关闭不存在的会话是无操作。
func (m *FeedManager) Close(sessionID string) {
	m.mu.Lock()
	session, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if ok {
		session.debouncer.Stop()
		m.logger.Info("信息流会话已关闭", zap.String("sessionID", sessionID))
	}
}

// EvictExpired 回收超过 TTL 无操作的会话，返回回收数量。
// 由定时清理任务调用。
func (m *FeedManager) EvictExpired() int {
	ttl := m.sessionTTL()
	cutoff := m.now().Add(-ttl)

	m.mu.Lock()
	var expired []*feedSession
	for id, session := range m.sessions {
		if session.lastActive.Before(cutoff) {
			delete(m.sessions, id)
			expired = append(expired, session)
			m.logger.Info("回收过期的信息流会话", zap.String("sessionID", id))
		}
	}
	m.mu.Unlock()

	for _, session := range expired {
		session.debouncer.Stop()
	}
	return len(expired)
}

// SessionCount 返回当前活跃会话数，仅用于观测。
func (m *FeedManager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
