package main

import (
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sqs"

	serr "github.com/DRLee98/random-chat-backend-sub000/error"
	"github.com/DRLee98/random-chat-backend-sub000/platform/sns"
	"github.com/DRLee98/random-chat-backend-sub000/platform/source"
	platformSQS "github.com/DRLee98/random-chat-backend-sub000/platform/sqs"
	"github.com/DRLee98/random-chat-backend-sub000/service/notification"
)

const idleWait = 500 * time.Millisecond

type ackFunc func() error

type batch struct {
	ackFunc       ackFunc
	namespace     string
	notifications notification.List
}

// consumeNotification forwards every propagated notification as a batch until
// stop is closed. An empty source is polled again after a short pause.
func consumeNotification(
	notificationSource notification.Source,
	batchc chan<- batch,
	stop <-chan struct{},
) error {
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		d, err := notificationSource.Consume()
		if err != nil {
			if serr.IsEmptySource(err) {
				select {
				case <-stop:
					return nil
				case <-time.After(idleWait):
				}

				continue
			}
			return err
		}

		if d.Notification == nil {
			err := notificationSource.Ack(d.AckID)
			if err != nil {
				return err
			}

			continue
		}

		b := batchNotifications(
			d.Namespace,
			notificationSource,
			d.AckID,
			notification.List{d.Notification},
		)

		select {
		case <-stop:
			return nil
		case batchc <- b:
		}
	}
}

func consumeEndpointChange(
	api platformSQS.API,
	queueURL string,
	changec chan<- endpointChange,
	stop <-chan struct{},
) error {
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		o, err := platformSQS.ReceiveMessage(api, queueURL)
		if err != nil {
			return err
		}

		for _, msg := range o.Messages {
			receipt := msg.ReceiptHandle
			ack := func() error {
				_, err := api.DeleteMessage(&sqs.DeleteMessageInput{
					QueueUrl:      aws.String(queueURL),
					ReceiptHandle: receipt,
				})
				return err
			}

			if msg.Body == nil {
				_ = ack()

				continue
			}

			f := struct {
				Message string `json:"Message"`
				Type    string `json:"Type"`
			}{}

			if err := json.Unmarshal([]byte(*msg.Body), &f); err != nil {
				return err
			}

			if f.Type != sns.TypeNotification {
				_ = ack()

				continue
			}

			c := endpointChange{}

			if err := json.Unmarshal([]byte(f.Message), &c); err != nil {
				return err
			}

			c.ack = ack

			select {
			case <-stop:
				return nil
			case changec <- c:
			}
		}
	}
}

func batchNotifications(
	ns string,
	acker source.Acker,
	ackID string,
	list notification.List,
) batch {
	return batch{
		ackFunc: func(acked bool, ackID string) ackFunc {
			return func() error {
				if acked {
					return nil
				}

				err := acker.Ack(ackID)
				if err == nil {
					acked = true
				}
				return err
			}
		}(false, ackID),
		namespace:     ns,
		notifications: list,
	}
}
