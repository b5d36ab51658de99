package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type fakeSQSClient struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSQSPublisherSendSuccess(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{
		id:       "queue",
		typ:      TypeSQS,
		queueURL: "https://example.com/queue",
		client:   client,
		log:      ensureLogger(nil),
	}

	if err := pub.Publish(context.Background(), Report{RunID: "run-1", OK: true}); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if client.input == nil {
		t.Fatalf("client was not called")
	}
	if got := aws.ToString(client.input.QueueUrl); got != "https://example.com/queue" {
		t.Fatalf("QueueUrl = %s", got)
	}
	attr, ok := client.input.MessageAttributes["run_id"]
	if !ok || aws.ToString(attr.StringValue) != "run-1" {
		t.Fatalf("run_id attribute missing or wrong: %#v", attr)
	}
	if aws.ToString(attr.DataType) != "String" {
		t.Fatalf("DataType should be String, got %#v", attr.DataType)
	}
	if got := aws.ToString(client.input.MessageAttributes["ok"].StringValue); got != "true" {
		t.Fatalf("ok attribute = %q", got)
	}
	if !strings.Contains(aws.ToString(client.input.MessageBody), `"run_id":"run-1"`) {
		t.Fatalf("MessageBody missing run_id: %s", aws.ToString(client.input.MessageBody))
	}
}

func TestSQSPublisherSendError(t *testing.T) {
	client := &fakeSQSClient{err: errors.New("boom")}
	pub := &sqsPublisher{
		id:       "queue",
		queueURL: "https://example.com/queue",
		client:   client,
		log:      ensureLogger(nil),
	}

	if err := pub.Publish(context.Background(), Report{RunID: "run-1"}); err == nil {
		t.Fatalf("expected error from Publish")
	}
}

func TestNewSQSPublisherWithStaticCredentials(t *testing.T) {
	pub, err := newSQSPublisher(context.Background(), PublisherConfig{
		ID:   "queue",
		Type: TypeSQS,
		SQS: &SQSPublisherConfig{
			QueueURL: "http://localhost:4566/000000000000/reports",
			AWSAuth: AWSAuth{
				Region:          "us-east-1",
				Endpoint:        "http://localhost:4566",
				AccessKeyID:     "test",
				SecretAccessKey: "test",
			},
		},
	}, nil)
	if err != nil {
		t.Fatalf("newSQSPublisher: %v", err)
	}
	if pub.Type() != TypeSQS || pub.ID() != "queue" {
		t.Fatalf("unexpected publisher identity %s/%s", pub.Type(), pub.ID())
	}
}
