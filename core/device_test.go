package core

import (
	"testing"

	serr "github.com/DRLee98/random-chat-backend-sub000/error"
	"github.com/DRLee98/random-chat-backend-sub000/platform/sns"
	"github.com/DRLee98/random-chat-backend-sub000/service/device"
)

type testEndpoints struct {
	created  int
	disabled map[string]bool
	tokens   map[string]string
	updated  int
}

func newTestEndpoints() *testEndpoints {
	return &testEndpoints{
		disabled: map[string]bool{},
		tokens:   map[string]string{},
	}
}

func (e *testEndpoints) create(platformARN, token string) (*sns.Endpoint, error) {
	e.created++

	arn := platformARN + "/endpoint/" + token
	e.tokens[arn] = token

	return &sns.Endpoint{ARN: arn, Token: token}, nil
}

func (e *testEndpoints) retrieve(arn string) (*sns.Endpoint, error) {
	token, ok := e.tokens[arn]
	if !ok {
		return nil, sns.ErrEndpointNotFound
	}

	if e.disabled[arn] {
		return nil, sns.ErrEndpointDisabled
	}

	return &sns.Endpoint{ARN: arn, Token: token}, nil
}

func (e *testEndpoints) update(arn, token string) (*sns.Endpoint, error) {
	e.updated++
	e.tokens[arn] = token

	return &sns.Endpoint{ARN: arn, Token: token}, nil
}

func (e *testEndpoints) sync(devices device.Service) DeviceSyncEndpointFunc {
	return DeviceSyncEndpoint(devices, e.create, e.retrieve, e.update)
}

func TestDeviceUpdate(t *testing.T) {
	var (
		devices = device.MemService()
		owner   = Origin{UserID: 1}
		fn      = DeviceUpdate(devices)
	)

	d, err := fn(testNamespace, owner, "device-1", device.PlatformIOS, "token-1", "")
	if err != nil {
		t.Fatal(err)
	}

	if have, want := d.Language, device.DefaultLanguage; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	d.Disabled = true

	if _, err := devices.Put(testNamespace, d); err != nil {
		t.Fatal(err)
	}

	d, err = fn(testNamespace, owner, "device-1", device.PlatformIOS, "token-2", "de")
	if err != nil {
		t.Fatal(err)
	}

	if d.Disabled {
		t.Error("want device enabled")
	}

	ds, err := DeviceListUser(devices)(testNamespace, owner.UserID)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(ds), 1; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	if have, want := ds[0].Token, "token-2"; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	_, err = fn(testNamespace, owner, "device-2", 9, "token-3", "")
	if have, want := err, ErrInvalidEntity; !IsInvalidEntity(have) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestDeviceDelete(t *testing.T) {
	var (
		devices = device.MemService()
		owner   = Origin{UserID: 1}
	)

	_, err := DeviceUpdate(devices)(testNamespace, owner, "device-1", device.PlatformAndroid, "token", "en")
	if err != nil {
		t.Fatal(err)
	}

	if err := DeviceDelete(devices)(testNamespace, owner, "device-1"); err != nil {
		t.Fatal(err)
	}

	ds, err := DeviceListUser(devices)(testNamespace, owner.UserID)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(ds), 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestDeviceSyncEndpoint(t *testing.T) {
	var (
		devices   = device.MemService()
		endpoints = newTestEndpoints()
		owner     = Origin{UserID: 1}
		fn        = endpoints.sync(devices)
	)

	d, err := DeviceUpdate(devices)(testNamespace, owner, "device-1", device.PlatformIOS, "token-1", "en")
	if err != nil {
		t.Fatal(err)
	}

	d, err = fn(testNamespace, "arn:apns", d)
	if err != nil {
		t.Fatal(err)
	}

	if d.EndpointARN == "" {
		t.Fatal("want endpoint arn")
	}

	if have, want := endpoints.created, 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	d, err = fn(testNamespace, "arn:apns", d)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := endpoints.created+endpoints.updated, 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	d.Token = "token-2"

	d, err = fn(testNamespace, "arn:apns", d)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := endpoints.updated, 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	endpoints.disabled[d.EndpointARN] = true

	_, err = fn(testNamespace, "arn:apns", d)
	if have, want := err, serr.ErrDeviceDisabled; !serr.IsDeviceDisabled(have) {
		t.Errorf("have %v, want %v", have, want)
	}

	ds, err := DeviceListUser(devices)(testNamespace, owner.UserID)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(ds), 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestDeviceDisable(t *testing.T) {
	var (
		devices   = device.MemService()
		endpoints = newTestEndpoints()
		owner     = Origin{UserID: 1}
	)

	d, err := DeviceUpdate(devices)(testNamespace, owner, "device-1", device.PlatformAndroid, "token-1", "en")
	if err != nil {
		t.Fatal(err)
	}

	d, err = endpoints.sync(devices)(testNamespace, "arn:gcm", d)
	if err != nil {
		t.Fatal(err)
	}

	if err := DeviceDisable(devices)(testNamespace, d.EndpointARN); err != nil {
		t.Fatal(err)
	}

	ds, err := DeviceListUser(devices)(testNamespace, owner.UserID)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(ds), 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}
