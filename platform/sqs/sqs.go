package sqs

import (
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sqs"
)

// Common Attributes.
const (
	AttributeSentAt = "SentAt"
	AttributeAll    = "All"

	FormatSentAt = "2006-01-02 15:04:05.999999999 -0700 MST"

	TypeString = "String"
)

// Common Timeouts.
var (
	TimeoutVisibility int64 = 60
	TimeoutWait       int64 = 10
)

// API bundles common SQS operations.
type API interface {
	DeleteMessage(*sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error)
	GetQueueUrl(*sqs.GetQueueUrlInput) (*sqs.GetQueueUrlOutput, error)
	ReceiveMessage(*sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error)
	SendMessage(*sqs.SendMessageInput) (*sqs.SendMessageOutput, error)
}

// QueueURL resolves the url for the queue with the given name.
func QueueURL(api API, name string) (string, error) {
	res, err := api.GetQueueUrl(&sqs.GetQueueUrlInput{
		QueueName: aws.String(name),
	})
	if err != nil {
		return "", err
	}

	return aws.StringValue(res.QueueUrl), nil
}

// ReceiveMessage given a queue url fetches the latest message with the common
// attributes and timeouts.
func ReceiveMessage(api API, queueURL string) (*sqs.ReceiveMessageOutput, error) {
	return api.ReceiveMessage(&sqs.ReceiveMessageInput{
		MaxNumberOfMessages: aws.Int64(1),
		MessageAttributeNames: []*string{
			aws.String(AttributeAll),
		},
		QueueUrl:          aws.String(queueURL),
		VisibilityTimeout: aws.Int64(TimeoutVisibility),
		WaitTimeSeconds:   aws.Int64(TimeoutWait),
	})
}

// MessageInput given a queue url and a body creates a common message for to be
// sent over SQS.
func MessageInput(body []byte, queueURL string) *sqs.SendMessageInput {
	now := time.Now().Format(FormatSentAt)

	return &sqs.SendMessageInput{
		MessageAttributes: map[string]*sqs.MessageAttributeValue{
			AttributeSentAt: {
				DataType:    aws.String(TypeString),
				StringValue: aws.String(now),
			},
		},
		MessageBody: aws.String(string(body)),
		QueueUrl:    aws.String(queueURL),
	}
}

// SentAt extracts the time a message was handed to the queue, the zero time
// if the attribute is missing.
func SentAt(m *sqs.Message) (time.Time, error) {
	attr, ok := m.MessageAttributes[AttributeSentAt]
	if !ok || attr.StringValue == nil {
		return time.Time{}, nil
	}

	return time.Parse(FormatSentAt, *attr.StringValue)
}
