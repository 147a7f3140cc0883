// Package queue_publisher publishes domain events to RabbitMQ.  Errors are
// returned so the caller can decide to ignore them without failing the
// request that produced the event.
package queue_publisher

import (
    "context"
    "encoding/json"
    "fmt"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    q "github.com/iliyamo/webshop/internal/queue"
)

// Publisher announces committed orders on the order.placed queue.  It keeps
// one connection and channel open and redials lazily after the broker drops
// them.  Safe for concurrent use.
type Publisher struct {
    url string

    mu   sync.Mutex
    conn *amqp.Connection
    ch   *amqp.Channel
}

// New returns a Publisher for the broker at url.  Nothing is dialled until
// the first publish.
func New(url string) *Publisher { return &Publisher{url: url} }

// channel returns an open channel with the queue declared, dialling when
// needed.  p.mu must be held.
func (p *Publisher) channel() (*amqp.Channel, error) {
    if p.ch != nil && !p.ch.IsClosed() {
        return p.ch, nil
    }
    p.reset()

    conn, err := amqp.DialConfig(p.url, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial:      amqp.DefaultDial(5 * time.Second),
    })
    if err != nil {
        return nil, fmt.Errorf("dial broker: %w", err)
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, fmt.Errorf("open channel: %w", err)
    }
    if _, err := ch.QueueDeclare(q.OrderPlacedQueue, true, false, false, false, nil); err != nil {
        _ = conn.Close()
        return nil, fmt.Errorf("declare %s: %w", q.OrderPlacedQueue, err)
    }
    p.conn, p.ch = conn, ch
    return ch, nil
}

// reset drops the current connection.  p.mu must be held.
func (p *Publisher) reset() {
    if p.conn != nil {
        _ = p.conn.Close()
    }
    p.conn, p.ch = nil, nil
}

// PublishOrderPlaced sends event as a persistent JSON message.
func (p *Publisher) PublishOrderPlaced(ctx context.Context, event q.OrderPlacedEvent) error {
    body, err := json.Marshal(event)
    if err != nil {
        return fmt.Errorf("marshal order event: %w", err)
    }

    p.mu.Lock()
    defer p.mu.Unlock()

    ch, err := p.channel()
    if err != nil {
        return err
    }
    err = ch.PublishWithContext(ctx, "", q.OrderPlacedQueue, false, false, amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    event.EventID,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    })
    if err != nil {
        p.reset()
        return fmt.Errorf("publish order %d: %w", event.OrderID, err)
    }
    return nil
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.reset()
    return nil
}
