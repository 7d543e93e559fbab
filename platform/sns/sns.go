package sns

import (
	"encoding/json"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/sns"
)

// Endpoint attributes.
const (
	AttributeEnabled = "Enabled"
	AttributeToken   = "Token"
)

// Message types delivered by SNS topic subscriptions.
const (
	TypeDeliveryFailure = "DeliveryFailure"
	TypeNotification    = "Notification"
)

// Platform supported by SNS for push.
const (
	PlatformAPNSSandbox Platform = iota + 1
	PlatformAPNS
	PlatformGCM
)

const structureJSON = "json"

// PlatformIdentifiers helps to map Platform to human-readable strings.
var PlatformIdentifiers = map[Platform]string{
	PlatformAPNS:        "APNS",
	PlatformAPNSSandbox: "APNS_SANDBOX",
	PlatformGCM:         "GCM",
}

// API bundles common SNS interactions in a reasonably sized interface.
type API interface {
	CreatePlatformEndpoint(*sns.CreatePlatformEndpointInput) (*sns.CreatePlatformEndpointOutput, error)
	GetEndpointAttributes(*sns.GetEndpointAttributesInput) (*sns.GetEndpointAttributesOutput, error)
	SetEndpointAttributes(*sns.SetEndpointAttributesInput) (*sns.SetEndpointAttributesOutput, error)
	Publish(*sns.PublishInput) (*sns.PublishOutput, error)
}

// Endpoint is the AWS SNS representation of a Device.
type Endpoint struct {
	ARN   string
	Token string
}

// Payload is the platform independent content of a push.
type Payload struct {
	Category string
	Data     map[string]string
	Message  string
	Title    string
}

// Platform of a device.
type Platform uint8

// EndpointCreateFunc registers a new device endpoint for the given platform
// and token.
type EndpointCreateFunc func(platformARN, token string) (*Endpoint, error)

// EndpointCreate registers a new device endpoint for the given platform and
// token.
func EndpointCreate(api API) EndpointCreateFunc {
	return func(platformARN, token string) (*Endpoint, error) {
		r, err := api.CreatePlatformEndpoint(&sns.CreatePlatformEndpointInput{
			PlatformApplicationArn: aws.String(platformARN),
			Token:                  aws.String(token),
		})
		if err != nil {
			return nil, err
		}

		return &Endpoint{
			ARN:   aws.StringValue(r.EndpointArn),
			Token: token,
		}, nil
	}
}

// EndpointRetrieveFunc returns the Endpoint for the given ARN.
type EndpointRetrieveFunc func(arn string) (*Endpoint, error)

// EndpointRetrieve returns the Endpoint for the given ARN.
func EndpointRetrieve(api API) EndpointRetrieveFunc {
	return func(arn string) (*Endpoint, error) {
		r, err := api.GetEndpointAttributes(
			&sns.GetEndpointAttributesInput{
				EndpointArn: aws.String(arn),
			},
		)
		if err != nil {
			if awsErr, ok := err.(awserr.RequestFailure); ok &&
				awsErr.StatusCode() == 404 {
				return nil, wrapError(ErrEndpointNotFound, "%s", arn)
			}

			return nil, err
		}

		if aws.StringValue(r.Attributes[AttributeEnabled]) == "false" {
			return nil, wrapError(ErrEndpointDisabled, "%s", arn)
		}

		return &Endpoint{
			ARN:   arn,
			Token: aws.StringValue(r.Attributes[AttributeToken]),
		}, nil
	}
}

// EndpointUpdateFunc takes a new token and stores it with the Endpoint.
type EndpointUpdateFunc func(arn, token string) (*Endpoint, error)

// EndpointUpdate takes a new token and re-enables the Endpoint.
func EndpointUpdate(api API) EndpointUpdateFunc {
	return func(arn, token string) (*Endpoint, error) {
		_, err := api.SetEndpointAttributes(&sns.SetEndpointAttributesInput{
			Attributes: map[string]*string{
				AttributeEnabled: aws.String("true"),
				AttributeToken:   aws.String(token),
			},
			EndpointArn: aws.String(arn),
		})
		if err != nil {
			return nil, err
		}

		return &Endpoint{
			ARN:   arn,
			Token: token,
		}, nil
	}
}

// PushFunc pushes a new notification to the device for the given endpoint ARN.
type PushFunc func(platform Platform, endpointARN string, p Payload) error

// Push pushes a new notification to the device for the given endpoint ARN.
func Push(api API) PushFunc {
	return func(platform Platform, arn string, p Payload) error {
		msg, err := message(platform, p)
		if err != nil {
			return err
		}

		_, err = api.Publish(&sns.PublishInput{
			Message:          aws.String(msg),
			MessageStructure: aws.String(structureJSON),
			TargetArn:        aws.String(arn),
		})
		if err != nil {
			if awsErr, ok := err.(awserr.RequestFailure); ok &&
				awsErr.StatusCode() == 400 {
				return wrapError(ErrDeliveryFailure, "%s", arn)
			}

			return err
		}

		return nil
	}
}

type apnsAlert struct {
	Body  string `json:"body"`
	Title string `json:"title"`
}

type apnsMessage struct {
	APS struct {
		Alert apnsAlert `json:"alert"`
	} `json:"aps"`
	Category string            `json:"category"`
	Data     map[string]string `json:"data,omitempty"`
}

type gcmMessage struct {
	Notification struct {
		Body  string `json:"body"`
		Title string `json:"title"`
	} `json:"notification"`
	Data map[string]string `json:"data"`
}

// message renders the SNS json structure, where every platform key holds its
// own json encoded document as a string.
func message(platform Platform, p Payload) (string, error) {
	var doc interface{}

	switch platform {
	case PlatformAPNS, PlatformAPNSSandbox:
		m := apnsMessage{
			Category: p.Category,
			Data:     p.Data,
		}
		m.APS.Alert = apnsAlert{Body: p.Message, Title: p.Title}

		doc = m
	case PlatformGCM:
		m := gcmMessage{
			Data: withCategory(p.Data, p.Category),
		}
		m.Notification.Body = p.Message
		m.Notification.Title = p.Title

		doc = m
	default:
		return "", wrapError(ErrInvalidPlatform, "%d", platform)
	}

	inner, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}

	outer, err := json.Marshal(map[string]string{
		PlatformIdentifiers[platform]: string(inner),
	})
	if err != nil {
		return "", err
	}

	return string(outer), nil
}

func withCategory(data map[string]string, category string) map[string]string {
	d := map[string]string{"category": category}

	for k, v := range data {
		d[k] = v
	}

	return d
}
