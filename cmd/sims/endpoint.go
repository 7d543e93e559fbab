package main

import (
	"github.com/DRLee98/random-chat-backend-sub000/core"
	"github.com/DRLee98/random-chat-backend-sub000/platform/sns"
)

const serviceSNS = "SNS"

type endpointChange struct {
	ack            ackFunc
	EndpointArn    string `json:"EndpointArn"`
	EventType      string `json:"EventType"`
	FailureMessage string `json:"FailureMessage"`
	FailureType    string `json:"FailureType"`
	Resource       string `json:"Resource"`
	Service        string `json:"Service"`
}

// endpointUpdate disables the devices behind an endpoint SNS failed to deliver
// to. The change is acked unless disabling failed.
func endpointUpdate(
	disableDevice core.DeviceDisableFunc,
	ns string,
	c endpointChange,
) (err error) {
	defer func() {
		if err == nil && c.ack != nil {
			err = c.ack()
		}
	}()

	if c.Service != serviceSNS {
		return nil
	}

	if c.EventType != sns.TypeDeliveryFailure {
		return nil
	}

	return disableDevice(ns, c.EndpointArn)
}
