package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agendamoz/barber-platform/internal/phone"
	"github.com/agendamoz/barber-platform/pkg/logging"
)

// Receipt is one payment receipt to deliver to the client.
type Receipt struct {
	BarbershopID   string `json:"barbershop_id"`
	BarbershopName string `json:"barbershop_name"`
	ClientPhone    string `json:"client_phone"`
	AmountMT       string `json:"amount_mt"`
	Code           string `json:"code"`
	Method         string `json:"method"`
}

// Publisher enqueues receipts for asynchronous delivery.
type Publisher struct {
	queue  Queue
	logger *logging.Logger
}

// NewPublisher creates a queue-backed publisher.
func NewPublisher(queue Queue, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("notify: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{queue: queue, logger: logger}
}

// EnqueueReceipt publishes a receipt job.
func (p *Publisher) EnqueueReceipt(ctx context.Context, receipt Receipt) error {
	if ctx == nil {
		ctx = context.Background()
	}
	body, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("notify: encode receipt: %w", err)
	}
	if err := p.queue.Send(ctx, string(body)); err != nil {
		return fmt.Errorf("notify: failed to enqueue receipt: %w", err)
	}
	p.logger.Debug("receipt enqueued", "barbershop_id", receipt.BarbershopID, "code", receipt.Code)
	return nil
}

// Sender delivers one rendered receipt link. Production wires a WhatsApp
// Business sender; tests and the default worker log the link.
type Sender interface {
	SendLink(ctx context.Context, link string) error
}

// LogSender logs the deep link instead of delivering it.
type LogSender struct {
	Logger *logging.Logger
}

func (s LogSender) SendLink(_ context.Context, link string) error {
	logger := s.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger.Info("receipt link ready", "link", link)
	return nil
}

// Worker drains the receipt queue and hands wa.me links to the sender.
type Worker struct {
	queue  Queue
	sender Sender
	logger *logging.Logger
}

// NewWorker creates a receipt worker.
func NewWorker(queue Queue, sender Sender, logger *logging.Logger) *Worker {
	if queue == nil {
		panic("notify: queue cannot be nil")
	}
	if sender == nil {
		sender = LogSender{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Worker{queue: queue, sender: sender, logger: logger}
}

// receiveRetryDelay spaces out polls after a failed Receive so a broken
// queue connection does not turn the loop into a hot spin.
const receiveRetryDelay = 5 * time.Second

// Run processes receipts until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		messages, err := w.queue.Receive(ctx, 10, 20)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Error("receive receipts failed", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(receiveRetryDelay):
			}
			continue
		}
		for _, msg := range messages {
			if err := w.process(ctx, msg.Body); err != nil {
				w.logger.Error("receipt delivery failed", "error", err, "message_id", msg.ID)
				continue
			}
			if err := w.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
				w.logger.Error("delete receipt message failed", "error", err, "message_id", msg.ID)
			}
		}
	}
}

func (w *Worker) process(ctx context.Context, body string) error {
	var receipt Receipt
	if err := json.Unmarshal([]byte(body), &receipt); err != nil {
		return fmt.Errorf("notify: decode receipt: %w", err)
	}

	link, ok := phone.WaLink(receipt.ClientPhone, renderReceipt(receipt))
	if !ok {
		return fmt.Errorf("notify: receipt has unusable phone %q", receipt.ClientPhone)
	}
	return w.sender.SendLink(ctx, link)
}

func renderReceipt(r Receipt) string {
	name := r.BarbershopName
	if name == "" {
		name = "a barbearia"
	}
	return fmt.Sprintf("Pagamento de %s MT confirmado por %s. Referência: %s.", r.AmountMT, name, r.Code)
}
