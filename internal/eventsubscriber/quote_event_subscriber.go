// Package eventsubscriber 把领域事件写进日志，
// 读回退、衰减批处理这类后台行为由此可见。
package eventsubscriber

import (
	"context"

	"github.com/quotevault/backend/internal/eventbus"
	"k8s.io/klog/v2"
)

// RegisterLogging 订阅需要留痕的事件
func RegisterLogging(bus *eventbus.QuoteEventBus) {
	bus.Subscribe(eventbus.QuoteEventReadFallback, func(ctx context.Context, e eventbus.QuoteEvent) error {
		klog.Errorf("远程后端读取失败，已回退本地: op=%s, reason=%s", e.Op, e.Reason)
		return nil
	})
	bus.Subscribe(eventbus.QuoteEventDecaySwept, func(ctx context.Context, e eventbus.QuoteEvent) error {
		klog.V(6).Infof("衰减批处理完成: affected=%d", e.Affected)
		return nil
	})
	bus.Subscribe(eventbus.QuoteEventImported, func(ctx context.Context, e eventbus.QuoteEvent) error {
		klog.V(6).Infof("快照导入完成: affected=%d", e.Affected)
		return nil
	})
}
