package device

import (
	"time"

	"golang.org/x/text/language"

	"github.com/DRLee98/random-chat-backend-sub000/platform/service"
	"github.com/DRLee98/random-chat-backend-sub000/platform/sns"
)

// DefaultLanguage for devices.
const DefaultLanguage = "en"

const entity = "devices"

// Platform supported for a Device.
const (
	PlatformIOS        = sns.PlatformAPNS
	PlatformIOSSandbox = sns.PlatformAPNSSandbox
	PlatformAndroid    = sns.PlatformGCM
)

// Device represents a physical device like mobile phone or tablet of a user.
type Device struct {
	Deleted     bool         `json:"deleted"`
	DeviceID    string       `json:"device_id"`
	Disabled    bool         `json:"disabled"`
	EndpointARN string       `json:"endpoint_arn,omitempty"`
	ID          uint64       `json:"id"`
	Language    string       `json:"language"`
	Platform    sns.Platform `json:"platform"`
	Token       string       `json:"token"`
	UserID      uint64       `json:"user_id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Validate returns an error when a semantic check fails. The language is
// normalised to its canonical BCP 47 form.
func (d *Device) Validate() error {
	if d.DeviceID == "" {
		return wrapError(ErrInvalidDevice, "device id must be set")
	}

	tag, err := language.Parse(d.Language)
	if err != nil {
		return wrapError(ErrInvalidDevice, "language invalid '%s'", d.Language)
	}

	d.Language = tag.String()

	if d.Platform == 0 {
		return wrapError(ErrInvalidDevice, "platform must be set")
	}

	if d.Platform > PlatformAndroid {
		return wrapError(ErrInvalidDevice, "platform '%d' not supported", d.Platform)
	}

	if d.Token == "" {
		return wrapError(ErrInvalidDevice, "token must be set")
	}

	if d.UserID == 0 {
		return wrapError(ErrInvalidDevice, "user id must be set")
	}

	return nil
}

// List is a collection of devices.
type List []*Device

func (l List) Len() int {
	return len(l)
}

func (l List) Less(i, j int) bool {
	if l[i].CreatedAt.Equal(l[j].CreatedAt) {
		return l[i].ID > l[j].ID
	}

	return l[i].CreatedAt.After(l[j].CreatedAt)
}

func (l List) Swap(i, j int) {
	l[i], l[j] = l[j], l[i]
}

// QueryOptions is used to narrow-down device queries.
type QueryOptions struct {
	Deleted      *bool          `json:"deleted,omitempty"`
	DeviceIDs    []string       `json:"device_ids,omitempty"`
	Disabled     *bool          `json:"disabled,omitempty"`
	EndpointARNs []string       `json:"endpoint_arns,omitempty"`
	IDs          []uint64       `json:"ids,omitempty"`
	Platforms    []sns.Platform `json:"platforms,omitempty"`
	Tokens       []string       `json:"-"`
	UserIDs      []uint64       `json:"user_ids,omitempty"`
}

// Service for device interactions.
type Service interface {
	service.Lifecycle

	Put(namespace string, device *Device) (*Device, error)
	Query(namespace string, opts QueryOptions) (List, error)
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service
