package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/listing_service/config"
	"github.com/Xushengqwer/listing_service/models/dto"
	"github.com/Xushengqwer/listing_service/models/vo"
)

func newTestFeedManager(t *testing.T, cfg config.FeedConfig) (*FeedManager, *fakeListingService) {
	t.Helper()
	svc := &fakeListingService{t: t}
	svc.getListingsPageFn = func(ctx context.Context, query *dto.ListListingsQueryDTO) (*vo.ListingPageVO, error) {
		return pageOf(query.PageSize, query.Page, true), nil
	}
	return NewFeedManager(svc, cfg, newTestLogger(t)), svc
}

func TestFeedManager_OpenLoadsFirstPage(t *testing.T) {
	m, _ := newTestFeedManager(t, config.FeedConfig{})

	snap, err := m.Open(context.Background(), &dto.OpenFeedRequest{PageSize: 5})
	require.NoError(t, err)
	assert.NotEmpty(t, snap.SessionID)
	assert.Len(t, snap.Items, 5)
	assert.Equal(t, 1, m.SessionCount())
}

func TestFeedManager_SnapshotUnknownSession(t *testing.T) {
	m, _ := newTestFeedManager(t, config.FeedConfig{})

	_, err := m.Snapshot("no-existe")
	assert.Error(t, err)
}

func TestFeedManager_LoadMoreAccumulates(t *testing.T) {
	m, _ := newTestFeedManager(t, config.FeedConfig{})

	snap, err := m.Open(context.Background(), &dto.OpenFeedRequest{PageSize: 5})
	require.NoError(t, err)

	snap, err = m.LoadMore(context.Background(), snap.SessionID)
	require.NoError(t, err)
	assert.Len(t, snap.Items, 10)
	assert.Equal(t, 1, snap.Page)
}

func TestFeedManager_CategoryChangeAppliesImmediately(t *testing.T) {
	m, _ := newTestFeedManager(t, config.FeedConfig{})

	snap, err := m.Open(context.Background(), &dto.OpenFeedRequest{PageSize: 5})
	require.NoError(t, err)

	category := "Muebles"
	snap, err = m.UpdateFilter(context.Background(), snap.SessionID, &dto.UpdateFeedFilterRequest{Category: &category})
	require.NoError(t, err)
	assert.Equal(t, "Muebles", snap.Category)
	assert.Equal(t, 0, snap.Page, "分类变更重置到第 0 页")
}

func TestFeedManager_SearchIsDebounced(t *testing.T) {
	var mu sync.Mutex
	var searches []string

	svc := &fakeListingService{t: t}
	svc.getListingsPageFn = func(ctx context.Context, query *dto.ListListingsQueryDTO) (*vo.ListingPageVO, error) {
		mu.Lock()
		if query.Search != "" {
			searches = append(searches, query.Search)
		}
		mu.Unlock()
		return pageOf(query.PageSize, query.Page, true), nil
	}
	m := NewFeedManager(svc, config.FeedConfig{SearchDebounceMillis: 30}, newTestLogger(t))

	snap, err := m.Open(context.Background(), &dto.OpenFeedRequest{PageSize: 5})
	require.NoError(t, err)

	// 模拟用户连续输入，静默期内只有最后一次应触发查询。
	for _, s := range []string{"s", "so", "sof", "sofa"} {
		search := s
		_, err := m.UpdateFilter(context.Background(), snap.SessionID, &dto.UpdateFeedFilterRequest{Search: &search})
		require.NoError(t, err)
	}

	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"sofa"}, searches)
}

func TestFeedManager_CloseRemovesSession(t *testing.T) {
	m, _ := newTestFeedManager(t, config.FeedConfig{})

	snap, err := m.Open(context.Background(), &dto.OpenFeedRequest{PageSize: 5})
	require.NoError(t, err)

	m.Close(snap.SessionID)
	assert.Equal(t, 0, m.SessionCount())

	_, err = m.Snapshot(snap.SessionID)
	assert.Error(t, err)

	// 关闭不存在的会话是无操作。
	m.Close("ya-cerrada")
}

func TestFeedManager_EvictExpired(t *testing.T) {
	m, _ := newTestFeedManager(t, config.FeedConfig{SessionTTLSeconds: 600})

	// 注入可推进的时钟。
	clock := time.Now()
	m.now = func() time.Time { return clock }

	snapA, err := m.Open(context.Background(), &dto.OpenFeedRequest{PageSize: 5})
	require.NoError(t, err)

	clock = clock.Add(5 * time.Minute)
	snapB, err := m.Open(context.Background(), &dto.OpenFeedRequest{PageSize: 5})
	require.NoError(t, err)

	// 再过 6 分钟: A 已闲置 11 分钟，B 只有 6 分钟。
	clock = clock.Add(6 * time.Minute)
	evicted := m.EvictExpired()

	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, m.SessionCount())

	_, err = m.Snapshot(snapA.SessionID)
	assert.Error(t, err, "过期会话应被回收")
	_, err = m.Snapshot(snapB.SessionID)
	assert.NoError(t, err)
}

func TestFeedManager_ActivityRefreshesTTL(t *testing.T) {
	m, _ := newTestFeedManager(t, config.FeedConfig{SessionTTLSeconds: 600})

	clock := time.Now()
	m.now = func() time.Time { return clock }

	snap, err := m.Open(context.Background(), &dto.OpenFeedRequest{PageSize: 5})
	require.NoError(t, err)

	// 9 分钟后有一次访问，活跃时间被刷新。
	clock = clock.Add(9 * time.Minute)
	_, err = m.Snapshot(snap.SessionID)
	require.NoError(t, err)

	// 距上次访问 9 分钟，未超过 10 分钟 TTL。
	clock = clock.Add(9 * time.Minute)
	assert.Equal(t, 0, m.EvictExpired())
	assert.Equal(t, 1, m.SessionCount())
}
