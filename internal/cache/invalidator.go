package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/social-feed/pkg/logger"
)

type invalidateJob struct {
	reason string
}

// Invalidator 视图失效信号的异步执行器：变更操作入队后立即返回，
// 由后台 worker 清理 feed 缓存（fire-and-forget，队列满则丢弃）
type Invalidator struct {
	feedCache *FeedCache
	ch        chan invalidateJob
}

func NewInvalidator(feedCache *FeedCache, queueSize int) *Invalidator {
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &Invalidator{feedCache: feedCache, ch: make(chan invalidateJob, queueSize)}
}

func (iv *Invalidator) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 2
	}
	stopCh := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case job := <-iv.ch:
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					if err := iv.feedCache.DropAll(ctx); err != nil {
						logger.Warn("feed cache invalidation failed",
							zap.String("reason", job.reason), zap.Error(err))
					}
					cancel()
				case <-stopCh:
					return
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		close(stopCh)
		// 等待队列自然排空一小段时间
		timeout := time.After(2 * time.Second)
		for {
			select {
			case <-timeout:
				return nil
			default:
				if len(iv.ch) == 0 {
					return nil
				}
				time.Sleep(50 * time.Millisecond)
			}
		}
	}
}

// Notify 入队一次失效信号；调用方不等待结果
func (iv *Invalidator) Notify(reason string) {
	select {
	case iv.ch <- invalidateJob{reason: reason}:
	default:
		logger.Warn("invalidator queue full, drop signal", zap.String("reason", reason))
	}
}

// QueueLen 返回当前队列长度（采样值）
func (iv *Invalidator) QueueLen() int { return len(iv.ch) }
