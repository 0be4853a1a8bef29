package pubsub

import (
	"context"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/marcodd23/go-micro-dbx/pkg/logx"
	"github.com/marcodd23/go-micro-dbx/pkg/messaging/publisher"
	"google.golang.org/api/option"
)

// PublisherConfig - failover topic settings, read from the `events` section of the service configuration.
type PublisherConfig struct {
	Topic                     string `mapstructure:"topic" validate:"required"`
	BatchSize                 int32  `mapstructure:"batchSize" validate:"gte=0"`
	FlushDelayThresholdMillis int32  `mapstructure:"flushDelayThresholdMillis" validate:"gte=0"`
	QueueSize                 int    `mapstructure:"queueSize" validate:"gte=0"`
}

func (c PublisherConfig) topicPublishConfig() publisher.TopicPublishConfig {
	return publisher.TopicPublishConfig{
		BatchSize:           c.BatchSize,
		FlushDelayThreshold: time.Duration(c.FlushDelayThresholdMillis) * time.Millisecond,
		QueueSize:           c.QueueSize,
	}.WithDefaults()
}

// NewPubSubBufferedPublisherFactory - factory that create a cloud_pubsub client and then initialize a publisher.BufferedPublisher.
func NewPubSubBufferedPublisherFactory(
	ctx context.Context,
	projectID string,
	config PublisherConfig,
	logger logx.Logger,
	opts ...option.ClientOption) (publisher.BufferedPublisher, error) {
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, publisher.NewMessagingErrorCode(publisher.ErrorInitializingPubsubClient, err)
	}

	return publisher.NewBufferedPublisher(NewClient(client), config.topicPublishConfig(), logger), nil
}

// NewFailoverEventPublisherFactory - factory that create a cloud_pubsub client and then initialize a
// publisher.FailoverEventPublisher sending to config.Topic. Register it with dbx.WithEventSink.
func NewFailoverEventPublisherFactory(
	ctx context.Context,
	projectID string,
	config PublisherConfig,
	logger logx.Logger,
	opts ...option.ClientOption) (*publisher.FailoverEventPublisher, error) {
	bp, err := NewPubSubBufferedPublisherFactory(ctx, projectID, config, logger, opts...)
	if err != nil {
		return nil, err
	}

	return publisher.NewFailoverEventPublisher(bp, config.Topic, config.topicPublishConfig(), logger), nil
}
