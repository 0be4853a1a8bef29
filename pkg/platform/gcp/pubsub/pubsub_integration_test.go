package pubsub_test

import (
	"context"
	"testing"

	"github.com/marcodd23/go-micro-dbx/pkg/dbx"
	"github.com/marcodd23/go-micro-dbx/pkg/platform/gcp/pubsub"
	pubsubcontainer "github.com/marcodd23/go-micro-dbx/test/testcontainer/pubsub"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

func TestFailoverEventPublisher_Emulator(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := pubsubcontainer.StartPubSubContainer(ctx, testProject)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.StopContainer(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	})

	sub := container.CreateTopicAndSubscription(ctx, t, testTopic, "dbx-failover-sub")
	container.CloseClient(ctx, t)

	p, err := pubsub.NewFailoverEventPublisherFactory(ctx, testProject, pubsub.PublisherConfig{Topic: testTopic, BatchSize: 1}, nil, container.CreateConnectionOptions(t)...)
	require.NoError(t, err)

	p.PublishFailover(ctx, dbx.FailoverEvent{Database: "orders", CorrelationID: "req-emulator", Operation: "query", Resolved: true, Attempts: 1})
	require.NoError(t, p.Close(ctx))

	received := container.Receive(ctx, t, sub, 1)
	require.Len(t, received, 1)
	require.Contains(t, string(received[0].Data), "req-emulator")
}
