package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ParkEasy/ParkEasy/internal/common/logger"
	"github.com/ParkEasy/ParkEasy/internal/common/middleware"
	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPPublisher topic exchange 发布器。routing key 固定为 lot.<lotID>，
// 订阅方按 lot 房间绑定 queue 即可只收自己停车场的事件。
// 发布路径套了一层熔断：broker 挂掉时快速失败，不拖住请求处理。
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	breaker  *middleware.CircuitBreaker
	log      logger.Logger
}

// NewAMQPPublisher 建连并声明 topic exchange。
func NewAMQPPublisher(url, exchange string, log logger.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPPublisher{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		breaker:  middleware.NewCircuitBreaker("amqp-publish", 5, 30*time.Second),
		log:      log,
	}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		if p.log != nil {
			p.log.Errorf("marshal event: %v", err)
		}
		return
	}

	key := "lot." + ev.LotID
	err = p.breaker.Call(ctx, func() error {
		return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		})
	})
	if err != nil && p.log != nil {
		p.log.WithFields(map[string]interface{}{
			"type":   ev.Type,
			"lot_id": ev.LotID,
			"error":  err.Error(),
		}).Warn("event publish failed")
	}
}

func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
