package sqs

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sqs"
)

func TestSentAt(t *testing.T) {
	in := MessageInput([]byte(`{}`), "https://queue")

	if have, want := aws.StringValue(in.QueueUrl), "https://queue"; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	sentAt, err := SentAt(&sqs.Message{MessageAttributes: in.MessageAttributes})
	if err != nil {
		t.Fatal(err)
	}

	if time.Since(sentAt) > time.Minute {
		t.Errorf("sentAt too far in the past: %v", sentAt)
	}

	zero, err := SentAt(&sqs.Message{})
	if err != nil {
		t.Fatal(err)
	}

	if !zero.IsZero() {
		t.Errorf("have %v, want zero time", zero)
	}
}
