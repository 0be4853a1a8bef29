package publisher_test

import (
	"context"
	"sync"

	"github.com/marcodd23/go-micro-dbx/pkg/messaging/publisher"
)

// MockClient - mock a publisher.Client
type MockClient struct {
	topics map[string]publisher.Topic
	closed int
}

func (c *MockClient) Topic(id string) publisher.Topic {
	return c.topics[id]
}

func (c *MockClient) Close() error {
	c.closed++
	return nil
}

// MockTopic - mock a publisher.Topic
type MockTopic struct {
	id          string
	publishFunc func(ctx context.Context, msg publisher.Message) publisher.PublishResult

	mu        sync.Mutex
	published []publisher.Message
	settings  publisher.TopicPublishConfig
	stops     int
}

func (t *MockTopic) Publish(ctx context.Context, msg publisher.Message) publisher.PublishResult {
	t.mu.Lock()
	t.published = append(t.published, msg)
	t.mu.Unlock()

	if t.publishFunc == nil {
		return okResult()
	}

	return t.publishFunc(ctx, msg)
}

func (t *MockTopic) Stop() {
	t.mu.Lock()
	t.stops++
	t.mu.Unlock()
}

func (t *MockTopic) Flush() {}

func (t *MockTopic) String() string {
	return t.id
}

func (t *MockTopic) ConfigPublishSettings(config publisher.TopicPublishConfig) {
	t.mu.Lock()
	t.settings = config
	t.mu.Unlock()
}

func (t *MockTopic) messages() []publisher.Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]publisher.Message(nil), t.published...)
}

// MockPublishResult - mock a publisher.PublishResult
type MockPublishResult struct {
	getFunc func(ctx context.Context) (string, error)
	readyCh chan struct{}
}

func (pr MockPublishResult) Get(ctx context.Context) (string, error) {
	return pr.getFunc(ctx)
}

func (pr MockPublishResult) Ready() <-chan struct{} {
	return pr.readyCh
}

func okResult() MockPublishResult {
	ready := make(chan struct{})
	close(ready)

	return MockPublishResult{
		getFunc: func(context.Context) (string, error) { return "message-id", nil },
		readyCh: ready,
	}
}

func errResult(err error) MockPublishResult {
	ready := make(chan struct{})
	close(ready)

	return MockPublishResult{
		getFunc: func(context.Context) (string, error) { return "", err },
		readyCh: ready,
	}
}

func newMockClient(topic *MockTopic) *MockClient {
	return &MockClient{topics: map[string]publisher.Topic{topic.id: topic}}
}
