package notification

import (
	"encoding/json"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sqs"

	serr "github.com/DRLee98/random-chat-backend-sub000/error"
	platformSQS "github.com/DRLee98/random-chat-backend-sub000/platform/sqs"
)

const queueName = "notification-push"

type sqsSource struct {
	api      platformSQS.API
	queueURL string
}

// SQSSource returns an SQS backed Source implementation.
func SQSSource(api platformSQS.API) (Source, error) {
	url, err := platformSQS.QueueURL(api, queueName)
	if err != nil {
		return nil, err
	}

	return &sqsSource{
		api:      api,
		queueURL: url,
	}, nil
}

func (s *sqsSource) Ack(id string) error {
	_, err := s.api.DeleteMessage(&sqs.DeleteMessageInput{
		QueueUrl:      aws.String(s.queueURL),
		ReceiptHandle: aws.String(id),
	})

	return err
}

func (s *sqsSource) Consume() (*Delivery, error) {
	o, err := platformSQS.ReceiveMessage(s.api, s.queueURL)
	if err != nil {
		return nil, err
	}

	if len(o.Messages) == 0 {
		return nil, serr.Wrap(serr.ErrEmptySource, "%s", queueName)
	}

	m := o.Messages[0]

	sentAt, err := platformSQS.SentAt(m)
	if err != nil {
		return nil, err
	}

	e := envelope{}

	if err := json.Unmarshal([]byte(aws.StringValue(m.Body)), &e); err != nil {
		return nil, err
	}

	return &Delivery{
		AckID:        aws.StringValue(m.ReceiptHandle),
		ID:           aws.StringValue(m.MessageId),
		Namespace:    e.Namespace,
		Notification: e.Notification,
		SentAt:       sentAt,
	}, nil
}

func (s *sqsSource) Propagate(ns string, n *Notification) (string, error) {
	r, err := json.Marshal(&envelope{
		Namespace:    ns,
		Notification: n,
	})
	if err != nil {
		return "", err
	}

	o, err := s.api.SendMessage(platformSQS.MessageInput(r, s.queueURL))
	if err != nil {
		return "", err
	}

	return aws.StringValue(o.MessageId), nil
}

type envelope struct {
	Namespace    string        `json:"namespace"`
	Notification *Notification `json:"notification"`
}
