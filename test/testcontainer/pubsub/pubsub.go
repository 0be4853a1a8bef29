package pubsub

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	pubSubEmulatorImage = "gcr.io/google.com/cloudsdktool/cloud-sdk:emulators"
	pubSubEmulatorPort  = "8085/tcp"
	pubSubEmulatorHost  = "PUBSUB_EMULATOR_HOST"
)

// PubsubContainer represents the cloud_pubsub container type used in the module.
type PubsubContainer struct {
	Container testcontainers.Container
	URI       string
	client    *pubsub.Client
	projectId string
}

// StartPubSubContainer - startContainer creates an instance of the cloud_pubsub container type.
func StartPubSubContainer(ctx context.Context, projectId string) (*PubsubContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        pubSubEmulatorImage,
		ExposedPorts: []string{pubSubEmulatorPort},
		WaitingFor:   wait.ForLog("started").WithStartupTimeout(2 * time.Minute),
		Cmd: []string{
			"/bin/sh",
			"-c",
			"gcloud beta emulators pubsub start --host-port 0.0.0.0:8085",
		},
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, err
	}

	mappedPort, err := container.MappedPort(ctx, pubSubEmulatorPort)
	if err != nil {
		return nil, err
	}

	hostIP, err := container.Host(ctx)
	if err != nil {
		return nil, err
	}

	uri := fmt.Sprintf("%s:%s", hostIP, mappedPort.Port())

	if err := os.Setenv(pubSubEmulatorHost, uri); err != nil {
		return nil, err
	}

	return &PubsubContainer{Container: container, URI: uri, projectId: projectId}, nil
}

func (c *PubsubContainer) StopContainer(ctx context.Context) error {
	_ = os.Unsetenv(pubSubEmulatorHost)
	return c.Container.Terminate(ctx)
}

// CreateConnectionOptions dials the emulator on a new plaintext connection.
func (c *PubsubContainer) CreateConnectionOptions(t *testing.T) []option.ClientOption {
	conn, err := grpc.NewClient(c.URI, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatal(err)
	}

	return []option.ClientOption{option.WithGRPCConn(conn)}
}

func (c *PubsubContainer) getClient(ctx context.Context, t *testing.T) *pubsub.Client {
	if c.client == nil {
		client, err := pubsub.NewClient(ctx, c.projectId, c.CreateConnectionOptions(t)...)
		if err != nil {
			t.Fatal(err)
		}

		c.client = client
	}

	return c.client
}

// CloseClient closes the admin client, subscriptions created with it stay usable
// through Receive which opens its own client.
func (c *PubsubContainer) CloseClient(_ context.Context, t *testing.T) {
	if c.client == nil {
		return
	}

	if err := c.client.Close(); err != nil {
		t.Fatal(err)
	}
	c.client = nil
}

func (c *PubsubContainer) CreateTopic(ctx context.Context, t *testing.T, topicName string) *pubsub.Topic {
	t.Helper()

	topic, err := c.getClient(ctx, t).CreateTopic(ctx, topicName)
	if err != nil {
		t.Fatal(err)
	}

	return topic
}

// CreateTopicAndSubscription creates the topic and a subscription on it, returning the subscription id.
func (c *PubsubContainer) CreateTopicAndSubscription(ctx context.Context, t *testing.T, topicName, subscriptionName string) string {
	t.Helper()

	topic := c.CreateTopic(ctx, t, topicName)

	_, err := c.getClient(ctx, t).CreateSubscription(ctx, subscriptionName, pubsub.SubscriptionConfig{Topic: topic})
	if err != nil {
		t.Fatal(err)
	}

	return subscriptionName
}

// Receive pulls until n messages arrived or 30 seconds passed.
func (c *PubsubContainer) Receive(ctx context.Context, t *testing.T, subscriptionName string, n int) []*pubsub.Message {
	t.Helper()

	client, err := pubsub.NewClient(ctx, c.projectId, c.CreateConnectionOptions(t)...)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	rctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var (
		mu       sync.Mutex
		received []*pubsub.Message
	)

	err = client.Subscription(subscriptionName).Receive(rctx, func(_ context.Context, msg *pubsub.Message) {
		msg.Ack()

		mu.Lock()
		defer mu.Unlock()
		received = append(received, msg)
		if len(received) >= n {
			cancel()
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	defer mu.Unlock()

	return received
}
