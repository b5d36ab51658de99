package publishers

import (
	"context"
	"encoding/json"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
)

func TestPubSubPublisherPublishes(t *testing.T) {
	// Use the in-memory Pub/Sub emulator.
	server := pstest.NewServer()
	defer server.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer client.Close()
	if _, err := client.CreateTopic(ctx, "reports"); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	pub, err := DefaultRegistry().PublisherFor(ctx, PublisherConfig{
		ID:     "gcp",
		Type:   TypePubSub,
		PubSub: &PubSubPublisherConfig{ProjectID: "test-project", Topic: "reports"},
	}, nil)
	if err != nil {
		t.Fatalf("PublisherFor: %v", err)
	}
	defer pub.Close()

	if err := pub.Publish(ctx, Report{RunID: "run-3", OK: true}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	msgs := server.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Attributes["run_id"] != "run-3" {
		t.Fatalf("unexpected attributes: %#v", msgs[0].Attributes)
	}
	var got Report
	if err := json.Unmarshal(msgs[0].Data, &got); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if !got.OK {
		t.Fatalf("expected ok report, got %#v", got)
	}
}

func TestPubSubPublisherUnknownTopic(t *testing.T) {
	server := pstest.NewServer()
	defer server.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	pub, err := newPubSubPublisher(ctx, PublisherConfig{
		ID:     "gcp",
		Type:   TypePubSub,
		PubSub: &PubSubPublisherConfig{ProjectID: "test-project", Topic: "missing"},
	}, nil)
	if err != nil {
		t.Fatalf("newPubSubPublisher: %v", err)
	}
	defer pub.Close()

	if err := pub.Publish(ctx, Report{RunID: "run-4"}); err == nil {
		t.Fatalf("expected error publishing to a missing topic")
	}
}
