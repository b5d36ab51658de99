package publishers

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func writeReporters(t *testing.T, name, raw string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, name, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return fs
}

func TestLoadReportersEnabledFilter(t *testing.T) {
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: http2
    type: HTTP
    enabled: true
    http:
      url: " https://example.com/2 "
      method: put
      headers:
        X-Token: " abc "
        " ": dropped
  - id: queue
    type: sqs
    sqs:
      uri: https://sqs.eu-west-1.amazonaws.com/123/reports
      region: eu-west-1
      endpoint: http://localhost:4566
  - id: topic
    type: sns
    sns:
      topic_arn: arn:aws:sns:eu-west-1:123:reports
      region: eu-west-1
  - id: gcp
    type: pubsub
    pubsub:
      project_id: demo
      topic: reports
`
	fs := writeReporters(t, "reporters.yaml", raw)

	reg, err := LoadReporters(fs, "reporters.yaml")
	if err != nil {
		t.Fatalf("LoadReporters: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 4 || enabled[0].ID != "http2" {
		t.Fatalf("expected http1 disabled, got %#v", enabled)
	}
	http2, _ := reg.ByID("http2")
	if http2.Type != TypeHTTP || http2.HTTP.Method != "PUT" || http2.HTTP.URL != "https://example.com/2" {
		t.Fatalf("http2 not normalized: %#v", http2.HTTP)
	}
	if http2.HTTP.TimeoutSeconds != httpDefaultTimeout {
		t.Fatalf("expected default timeout, got %d", http2.HTTP.TimeoutSeconds)
	}
	if len(http2.HTTP.Headers) != 1 || http2.HTTP.Headers["X-Token"] != "abc" {
		t.Fatalf("headers not normalized: %#v", http2.HTTP.Headers)
	}
	queue, _ := reg.ByID("queue")
	if queue.SQS.Region != "eu-west-1" || queue.SQS.Endpoint != "http://localhost:4566" {
		t.Fatalf("inline aws settings not decoded: %#v", queue.SQS)
	}
	if _, ok := reg.ByID("missing"); ok {
		t.Fatalf("unexpected entry for missing id")
	}
}

func TestPrepareRejectsIncompleteEntries(t *testing.T) {
	cases := map[string]struct {
		cfg  PublisherConfig
		want string
	}{
		"missing http":    {PublisherConfig{ID: "h1", Type: TypeHTTP}, "http settings block is required"},
		"missing sns":     {PublisherConfig{ID: "s1", Type: TypeSNS}, "sns settings block is required"},
		"sns no arn":      {PublisherConfig{ID: "s1", Type: TypeSNS, SNS: &SNSPublisherConfig{AWSAuth: AWSAuth{Region: "eu-west-1"}}}, "sns.topic_arn"},
		"sqs no region":   {PublisherConfig{ID: "q1", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "https://q"}}, "sqs.region"},
		"half key":        {PublisherConfig{ID: "q1", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "https://q", AWSAuth: AWSAuth{Region: "r", AccessKeyID: "id"}}}, "set together"},
		"pubsub no topic": {PublisherConfig{ID: "p1", Type: TypePubSub, PubSub: &PubSubPublisherConfig{ProjectID: "demo"}}, "pubsub.topic"},
		"blank url":       {PublisherConfig{ID: "h1", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "  "}}, "http.url"},
		"unknown type":    {PublisherConfig{ID: "k1", Type: "kafka"}, `unknown type "kafka"`},
		"no type":         {PublisherConfig{ID: "k1"}, "type is required"},
		"no id":           {PublisherConfig{Type: TypeHTTP}, "id is required"},
	}
	for name, tc := range cases {
		cfg := tc.cfg
		err := cfg.prepare()
		if err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: error %q does not mention %q", name, err, tc.want)
		}
	}
}

func TestLoadReportersRejectsDuplicates(t *testing.T) {
	raw := `{"publishers":[{"id":"a","type":"http","http":{"url":"https://x"}},{"id":" a ","type":"http","http":{"url":"https://y"}}]}`
	fs := writeReporters(t, "reporters.json", raw)
	_, err := LoadReporters(fs, "reporters.json")
	if err == nil || !strings.Contains(err.Error(), `duplicate reporter id "a"`) {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestLoadReportersBadFiles(t *testing.T) {
	fs := writeReporters(t, "reporters.toml", "publishers = []")
	if _, err := LoadReporters(fs, "reporters.toml"); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
	fs = writeReporters(t, "empty.yaml", "publishers: []\n")
	if _, err := LoadReporters(fs, "empty.yaml"); err == nil {
		t.Fatalf("expected empty file error")
	}
	if _, err := LoadReporters(fs, "missing.yaml"); err == nil {
		t.Fatalf("expected read error")
	}
	if _, err := LoadReporters(fs, " "); err == nil {
		t.Fatalf("expected empty path error")
	}
}
