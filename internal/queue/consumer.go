package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "strings"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// OrderLog appends one line per placed order to <Dir>/orders.log.
type OrderLog struct {
    Dir string
    mu  sync.Mutex
}

// Handle decodes an OrderPlacedEvent and appends it to the log.  Payloads
// that are not JSON or carry no order id are rejected.
func (l *OrderLog) Handle(body []byte) error {
    var ev OrderPlacedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("decode order event: %w", err)
    }
    if ev.OrderID == 0 {
        return errors.New("order event without order id")
    }

    l.mu.Lock()
    defer l.mu.Unlock()
    if err := os.MkdirAll(l.Dir, 0o755); err != nil {
        return err
    }
    f, err := os.OpenFile(filepath.Join(l.Dir, "orders.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return err
    }
    if _, err := f.WriteString(FormatLine(ev)); err != nil {
        _ = f.Close()
        return err
    }
    return f.Close()
}

// FormatLine renders ev as a single log line ending in a newline.
func FormatLine(ev OrderPlacedEvent) string {
    var b strings.Builder
    items := 0
    for i, l := range ev.Lines {
        if i > 0 {
            b.WriteByte(',')
        }
        fmt.Fprintf(&b, "%dx%d", l.ProductID, l.Quantity)
        items += l.Quantity
    }
    return fmt.Sprintf("[%s] Order placed | order_id=%d | customer_id=%d | user=%q | items=%d | lines=[%s] | event=%s\n",
        ev.OrderDate, ev.OrderID, ev.CustomerID, ev.Username, items, b.String(), ev.EventID)
}

// RunOrderConsumer consumes the order.placed queue into ol until ctx is
// done, redialling with capped exponential backoff whenever the broker
// connection is lost.  Messages the log rejects are dropped without requeue.
func RunOrderConsumer(ctx context.Context, url string, ol *OrderLog) {
    backoff := time.Second
    for {
        err := consume(ctx, url, ol)
        if ctx.Err() != nil {
            return
        }
        log.Printf("order-consumer: %v; retrying in %s", err, backoff)
        select {
        case <-ctx.Done():
            return
        case <-time.After(backoff):
        }
        backoff = min(backoff*2, 30*time.Second)
    }
}

func consume(ctx context.Context, url string, ol *OrderLog) error {
    conn, err := amqp.Dial(url)
    if err != nil {
        return fmt.Errorf("dial: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel: %w", err)
    }
    if err := ch.Qos(50, 0, false); err != nil {
        return fmt.Errorf("qos: %w", err)
    }
    if _, err := ch.QueueDeclare(OrderPlacedQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("declare %s: %w", OrderPlacedQueue, err)
    }
    deliveries, err := ch.ConsumeWithContext(ctx, OrderPlacedQueue, "order-log", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("consume %s: %w", OrderPlacedQueue, err)
    }

    for d := range deliveries {
        if err := ol.Handle(d.Body); err != nil {
            log.Printf("order-consumer: drop message %s: %v", d.MessageId, err)
            _ = d.Nack(false, false)
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("delivery channel closed")
}
