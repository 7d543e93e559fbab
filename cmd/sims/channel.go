package main

import (
	"github.com/DRLee98/random-chat-backend-sub000/core"
	serr "github.com/DRLee98/random-chat-backend-sub000/error"
	"github.com/DRLee98/random-chat-backend-sub000/platform/sns"
	"github.com/DRLee98/random-chat-backend-sub000/service/notification"
)

type channelFunc func(ns string, n *notification.Notification) error

// channelPush delivers a notification to every pushable device of its
// recipient. Devices without a configured platform, disabled endpoints and
// rejected deliveries are skipped.
func channelPush(
	deviceListUser core.DeviceListUserFunc,
	deviceSync core.DeviceSyncEndpointFunc,
	push sns.PushFunc,
	arns platformARNs,
) channelFunc {
	return func(ns string, n *notification.Notification) error {
		ds, err := deviceListUser(ns, n.UserID)
		if err != nil {
			return err
		}
		if len(ds) == 0 {
			return nil
		}

		p := sns.Payload{
			Category: string(n.Category),
			Data:     n.Data,
			Message:  n.Message,
			Title:    n.Title,
		}

		for _, d := range ds {
			arn, err := arns.arn(d.Platform)
			if err != nil {
				if isPlatformNotFound(err) {
					continue
				}

				return err
			}

			d, err = deviceSync(ns, arn, d)
			if err != nil {
				if serr.IsDeviceDisabled(err) {
					continue
				}

				return err
			}

			err = push(d.Platform, d.EndpointARN, p)
			if err != nil {
				if sns.IsDeliveryFailure(err) {
					continue
				}

				return err
			}
		}

		return nil
	}
}
