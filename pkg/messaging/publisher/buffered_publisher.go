package publisher

import (
	"context"
	"fmt"
	"sync"

	"github.com/marcodd23/go-micro-dbx/pkg/logx"
)

// BufferedPublisher - interface for the publisher
type BufferedPublisher interface {
	Publish(ctx context.Context, topicName string, payloadBatch []Message) (*BatchResult, error)
	Close(ctx context.Context) error
}

// BfPublisher - BufferedPublisher struct implementation.
type BfPublisher struct {
	sync.Mutex
	client        Client
	publishConfig TopicPublishConfig
	logger        logx.Logger
	Done          chan struct{}
}

// NewBufferedPublisher - Constructor of BufferedPublisher.
func NewBufferedPublisher(client Client, publishConfig TopicPublishConfig, logger logx.Logger) BufferedPublisher {
	if logger == nil {
		logger = logx.NopLogger{}
	}

	return &BfPublisher{
		client:        client,
		publishConfig: publishConfig.WithDefaults(),
		logger:        logger.With(logx.Fields{"component": "publisher"}),
		Done:          make(chan struct{}),
	}
}

// BatchResult - result from batch publishing. It contains reference Id to the original message published.
type BatchResult struct {
	Results []*BufferedPublishResult
}

func (br *BatchResult) appendResult(msgRefId string, success bool, err error) {
	br.Results = append(br.Results, &BufferedPublishResult{MsgRefId: msgRefId, Success: success, Err: err})
}

// Failed returns the results that were not published.
func (br *BatchResult) Failed() []*BufferedPublishResult {
	var failed []*BufferedPublishResult
	for _, res := range br.Results {
		if !res.Success {
			failed = append(failed, res)
		}
	}

	return failed
}

// BufferedPublishResult - published result.
type BufferedPublishResult struct {
	MsgRefId string
	Success  bool
	Err      error
}

// Publish - Publish a Batch of Messages and wait for every result.
func (p *BfPublisher) Publish(ctx context.Context, topicName string, payloadBatch []Message) (*BatchResult, error) {
	p.Lock()
	defer p.Unlock()

	// Non-blocking check if the Done channel is closed
	select {
	case <-p.Done:
		return nil, NewMessagingErrorCode(ErrorPublisherClosed, nil)
	default:
	}

	if int32(len(payloadBatch)) > p.publishConfig.BatchSize {
		return nil, NewMessagingError(nil, "error: provide a batch of the configured batch size:  %d", p.publishConfig.BatchSize)
	}

	batchResult := &BatchResult{Results: []*BufferedPublishResult{}}
	p.publishBatch(ctx, topicName, payloadBatch, batchResult)

	return batchResult, nil
}

func (p *BfPublisher) publishBatch(ctx context.Context, topicName string, messages []Message, batchResult *BatchResult) {
	results := make([]PublishResult, len(messages))

	topic := p.client.Topic(topicName)
	topic.ConfigPublishSettings(p.publishConfig)

	defer topic.Stop()

	for i, msg := range messages {
		results[i] = topic.Publish(ctx, msg)
	}

	topic.Flush()

	for i, res := range results {
		msgRefId := messages[i].GetMsgRefId()

		if _, err := res.Get(ctx); err != nil {
			p.logger.LogError(ctx, fmt.Sprintf("failed to publish message to topic %s, msgRefId: %s", topic.String(), msgRefId), err)
			batchResult.appendResult(msgRefId, false, err)

			continue
		}

		batchResult.appendResult(msgRefId, true, nil)
	}
}

// Close - close the BufferedPublisher and the underlying client.
func (p *BfPublisher) Close(_ context.Context) error {
	p.Lock()
	defer p.Unlock()

	select {
	case <-p.Done:
		return NewMessagingErrorCode(ErrorPublisherClosed, nil)
	default:
		close(p.Done)

		if err := p.client.Close(); err != nil {
			return NewMessagingErrorCode(ErrorClosingPubsubClient, err)
		}

		return nil
	}
}
