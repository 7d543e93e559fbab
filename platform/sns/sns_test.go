package sns

import (
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/sns"
)

type fakeAPI struct {
	API

	attributes map[string]*string
	err        error
	published  []*sns.PublishInput
}

func (a *fakeAPI) GetEndpointAttributes(
	*sns.GetEndpointAttributesInput,
) (*sns.GetEndpointAttributesOutput, error) {
	if a.err != nil {
		return nil, a.err
	}

	return &sns.GetEndpointAttributesOutput{Attributes: a.attributes}, nil
}

func (a *fakeAPI) Publish(in *sns.PublishInput) (*sns.PublishOutput, error) {
	if a.err != nil {
		return nil, a.err
	}

	a.published = append(a.published, in)

	return &sns.PublishOutput{}, nil
}

func TestPushGCM(t *testing.T) {
	var (
		api = &fakeAPI{}
		p   = Payload{
			Category: "invite",
			Data:     map[string]string{"roomId": "12"},
			Message:  `someone "quoted" you`,
			Title:    "Chat invite",
		}
	)

	if err := Push(api)(PlatformGCM, "arn:device", p); err != nil {
		t.Fatal(err)
	}

	if have, want := len(api.published), 1; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	in := api.published[0]

	if have, want := aws.StringValue(in.TargetArn), "arn:device"; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	var outer map[string]string

	if err := json.Unmarshal([]byte(aws.StringValue(in.Message)), &outer); err != nil {
		t.Fatal(err)
	}

	var inner gcmMessage

	if err := json.Unmarshal([]byte(outer["GCM"]), &inner); err != nil {
		t.Fatal(err)
	}

	if have, want := inner.Notification.Body, p.Message; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := inner.Data["category"], "invite"; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := inner.Data["roomId"], "12"; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestPushDeliveryFailure(t *testing.T) {
	api := &fakeAPI{
		err: awserr.NewRequestFailure(
			awserr.New("EndpointDisabled", "disabled", nil),
			400,
			"req",
		),
	}

	err := Push(api)(PlatformAPNS, "arn:device", Payload{Title: "t"})
	if !IsDeliveryFailure(err) {
		t.Errorf("have %v, want %v", err, ErrDeliveryFailure)
	}
}

func TestPushInvalidPlatform(t *testing.T) {
	err := Push(&fakeAPI{})(Platform(42), "arn:device", Payload{})
	if !IsInvalidPlatform(err) {
		t.Errorf("have %v, want %v", err, ErrInvalidPlatform)
	}
}

func TestEndpointRetrieveDisabled(t *testing.T) {
	api := &fakeAPI{
		attributes: map[string]*string{
			AttributeEnabled: aws.String("false"),
			AttributeToken:   aws.String("token"),
		},
	}

	_, err := EndpointRetrieve(api)("arn:device")
	if !IsEndpointDisabled(err) {
		t.Errorf("have %v, want %v", err, ErrEndpointDisabled)
	}
}
