package relay

import "context"

// Publisher 通知出口。实现方不得阻塞请求处理：
// 发布失败只记日志，绝不影响已提交的事务结果。
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Fanout 把同一事件发给多个下游（AMQP + websocket 房间）。
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev Event) {
	for _, p := range f {
		if p != nil {
			p.Publish(ctx, ev)
		}
	}
}

// Noop 空实现（测试 / 未配置事件总线时）。
type Noop struct{}

func (Noop) Publish(context.Context, Event) {}
