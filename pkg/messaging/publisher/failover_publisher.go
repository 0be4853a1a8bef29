package publisher

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/marcodd23/go-micro-dbx/pkg/dbx"
	"github.com/marcodd23/go-micro-dbx/pkg/logx"
)

// Attributes set on every failover message.
const (
	AttrEventType = "eventType"
	AttrDatabase  = "database"
	AttrOperation = "operation"
	AttrResolved  = "resolved"

	FailoverEventType = "dbx.failover"
)

// FailoverEventPublisher is a dbx.EventSink publishing failover events as JSON messages.
//
// PublishFailover only enqueues: a background goroutine sends batches of BatchSize
// events, or whatever is queued every FlushDelayThreshold. Publish failures are logged.
type FailoverEventPublisher struct {
	publisher BufferedPublisher
	topic     string
	config    TopicPublishConfig
	logger    logx.Logger

	queue     chan dbx.FailoverEvent
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewFailoverEventPublisher starts the background flush loop. Close stops it.
func NewFailoverEventPublisher(publisher BufferedPublisher, topic string, config TopicPublishConfig, logger logx.Logger) *FailoverEventPublisher {
	if logger == nil {
		logger = logx.NopLogger{}
	}

	config = config.WithDefaults()

	p := &FailoverEventPublisher{
		publisher: publisher,
		topic:     topic,
		config:    config,
		logger:    logger.With(logx.Fields{"component": "publisher", "topic": topic}),
		queue:     make(chan dbx.FailoverEvent, config.QueueSize),
		done:      make(chan struct{}),
	}

	p.wg.Add(1)
	go p.run()

	return p
}

// PublishFailover enqueues the event, it never blocks. Events are dropped once the queue is
// full or the publisher is closed.
func (p *FailoverEventPublisher) PublishFailover(ctx context.Context, event dbx.FailoverEvent) {
	select {
	case <-p.done:
		p.logger.LogWarning(ctx, fmt.Sprintf("[%s] publisher closed, failover event dropped", event.Database))
		return
	default:
	}

	select {
	case p.queue <- event:
	default:
		p.logger.LogWarning(ctx, fmt.Sprintf("[%s] event queue full, failover event dropped", event.Database))
	}
}

func (p *FailoverEventPublisher) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.FlushDelayThreshold)
	defer ticker.Stop()

	batch := make([]dbx.FailoverEvent, 0, p.config.BatchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		p.flush(context.Background(), batch)
		batch = batch[:0]
	}

	for {
		select {
		case event := <-p.queue:
			batch = append(batch, event)
			if int32(len(batch)) >= p.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-p.done:
			// drain what was accepted before Close
			for {
				select {
				case event := <-p.queue:
					batch = append(batch, event)
					if int32(len(batch)) >= p.config.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

func (p *FailoverEventPublisher) flush(ctx context.Context, events []dbx.FailoverEvent) {
	messages := make([]Message, 0, len(events))

	for _, event := range events {
		msg, err := NewFailoverMessage(event)
		if err != nil {
			p.logger.LogError(ctx, fmt.Sprintf("[%s] failover event not serializable", event.Database), err)
			continue
		}
		messages = append(messages, msg)
	}

	if len(messages) == 0 {
		return
	}

	result, err := p.publisher.Publish(ctx, p.topic, messages)
	if err != nil {
		p.logger.LogError(ctx, fmt.Sprintf("failed to publish %d failover events", len(messages)), err)
		return
	}

	if failed := result.Failed(); len(failed) > 0 {
		p.logger.LogWarning(ctx, fmt.Sprintf("%d of %d failover events not published", len(failed), len(messages)))
	}
}

// Close flushes the queued events and closes the underlying publisher.
func (p *FailoverEventPublisher) Close(ctx context.Context) error {
	var err error = NewMessagingErrorCode(ErrorPublisherClosed, nil)

	p.closeOnce.Do(func() {
		close(p.done)
		p.wg.Wait()
		err = p.publisher.Close(ctx)
	})

	return err
}

// NewFailoverMessage encodes a failover event, the message id is a random UUID.
func NewFailoverMessage(event dbx.FailoverEvent) (*MsgPayload, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, NewMessagingErrorCode(ErrorSerializingJsonMessage, err)
	}

	return &MsgPayload{
		MessageId: uuid.NewString(),
		Data:      data,
		Attributes: map[string]string{
			AttrEventType: FailoverEventType,
			AttrDatabase:  event.Database,
			AttrOperation: event.Operation,
			AttrResolved:  strconv.FormatBool(event.Resolved),
		},
	}, nil
}
