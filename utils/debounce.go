package utils

import (
	"sync"
	"time"
)

// Debouncer 将高频输入折叠为一次延迟回调。
// - 使用场景: 信息流会话内的搜索关键词防抖，用户连续输入时只有
//   最后一次值会在静默 delay 之后真正触发查询。
// - 语义: Set 会取消尚未触发的前一次回调，因此中间值永远不会外泄。
// - 并发: 内部互斥锁保护定时器，Set/Stop 可被任意 goroutine 调用。
type Debouncer[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func(T)
	timer   *time.Timer
	last    T    // 最后一次 Set 的值，供 Flush 使用
	pending bool // 是否存在尚未触发的回调
}

// NewDebouncer 创建一个防抖器，delay 静默期结束后以最后一次 Set 的值调用 fn。
// fn 在定时器自己的 goroutine 中执行，不持有防抖器的锁。
func NewDebouncer[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{
		delay: delay,
		fn:    fn,
	}
}

// Set 提交一个新值并重置静默期。
func (d *Debouncer[T]) Set(value T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.last = value
	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		d.pending = false
		d.mu.Unlock()
		d.fn(value)
	})
}

// Flush 立即以最后一次 Set 的值触发回调。
// 没有待触发的回调时是无操作，不会重放已经触发过的值。
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
	value := d.last
	d.mu.Unlock()

	d.fn(value)
}

// Stop 取消尚未触发的回调。已触发的回调不受影响。
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
}
