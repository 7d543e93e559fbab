package core

import (
	serr "github.com/DRLee98/random-chat-backend-sub000/error"
	"github.com/DRLee98/random-chat-backend-sub000/platform/sns"
	"github.com/DRLee98/random-chat-backend-sub000/service/device"
)

var defaultDisabled = false

// DeviceDeleteFunc removes the device of a user.
type DeviceDeleteFunc func(ns string, origin Origin, deviceID string) error

// DeviceDelete removes the device of a user.
func DeviceDelete(devices device.Service) DeviceDeleteFunc {
	return func(ns string, origin Origin, deviceID string) error {
		ds, err := devices.Query(ns, device.QueryOptions{
			Deleted: &defaultDeleted,
			DeviceIDs: []string{
				deviceID,
			},
			UserIDs: []uint64{
				origin.UserID,
			},
		})
		if err != nil {
			return err
		}

		if len(ds) == 0 {
			return nil
		}

		d := ds[0]
		d.Deleted = true

		_, err = devices.Put(ns, d)

		return err
	}
}

// DeviceDisableFunc flags the devices behind an endpoint as disabled.
type DeviceDisableFunc func(ns string, endpointARN string) error

// DeviceDisable flags the devices behind an endpoint as disabled, they are
// skipped for pushes until the client reports a fresh token.
func DeviceDisable(devices device.Service) DeviceDisableFunc {
	return func(ns string, endpointARN string) error {
		ds, err := devices.Query(ns, device.QueryOptions{
			Deleted:  &defaultDeleted,
			Disabled: &defaultDisabled,
			EndpointARNs: []string{
				endpointARN,
			},
		})
		if err != nil {
			return err
		}

		for _, d := range ds {
			d.Disabled = true

			if _, err := devices.Put(ns, d); err != nil {
				return err
			}
		}

		return nil
	}
}

// DeviceListUserFunc returns all pushable devices of a user.
type DeviceListUserFunc func(ns string, userID uint64) (device.List, error)

// DeviceListUser returns all pushable devices of a user.
func DeviceListUser(devices device.Service) DeviceListUserFunc {
	return func(ns string, userID uint64) (device.List, error) {
		return devices.Query(ns, device.QueryOptions{
			Deleted:  &defaultDeleted,
			Disabled: &defaultDisabled,
			UserIDs: []uint64{
				userID,
			},
		})
	}
}

// DeviceSyncEndpointFunc ensures the device has a matching, enabled push
// endpoint.
type DeviceSyncEndpointFunc func(
	ns string,
	platformARN string,
	d *device.Device,
) (*device.Device, error)

// DeviceSyncEndpoint creates the endpoint for devices without one, recreates
// vanished endpoints and pushes changed tokens. Devices behind a disabled
// endpoint are flagged and serr.ErrDeviceDisabled is returned.
func DeviceSyncEndpoint(
	devices device.Service,
	endpointCreate sns.EndpointCreateFunc,
	endpointRetrieve sns.EndpointRetrieveFunc,
	endpointUpdate sns.EndpointUpdateFunc,
) DeviceSyncEndpointFunc {
	return func(
		ns string,
		platformARN string,
		d *device.Device,
	) (*device.Device, error) {
		if d.Disabled {
			return nil, serr.Wrap(serr.ErrDeviceDisabled, "device %d", d.ID)
		}

		if d.EndpointARN == "" {
			return createEndpoint(devices, endpointCreate, ns, platformARN, d)
		}

		e, err := endpointRetrieve(d.EndpointARN)
		if err != nil {
			switch {
			case sns.IsEndpointNotFound(err):
				return createEndpoint(devices, endpointCreate, ns, platformARN, d)
			case sns.IsEndpointDisabled(err):
				d.Disabled = true

				if _, err := devices.Put(ns, d); err != nil {
					return nil, err
				}

				return nil, serr.Wrap(serr.ErrDeviceDisabled, "device %d", d.ID)
			}

			return nil, err
		}

		if e.Token == d.Token {
			return d, nil
		}

		if _, err := endpointUpdate(d.EndpointARN, d.Token); err != nil {
			return nil, err
		}

		return d, nil
	}
}

// DeviceUpdateFunc stores the device data of the origin.
type DeviceUpdateFunc func(
	ns string,
	origin Origin,
	deviceID string,
	platform sns.Platform,
	token string,
	language string,
) (*device.Device, error)

// DeviceUpdate stores the device info in the given device service. A changed
// token re-enables a disabled device.
func DeviceUpdate(devices device.Service) DeviceUpdateFunc {
	return func(
		ns string,
		origin Origin,
		deviceID string,
		platform sns.Platform,
		token string,
		language string,
	) (*device.Device, error) {
		if language == "" {
			language = device.DefaultLanguage
		}

		ds, err := devices.Query(ns, device.QueryOptions{
			Deleted: &defaultDeleted,
			DeviceIDs: []string{
				deviceID,
			},
			UserIDs: []uint64{
				origin.UserID,
			},
		})
		if err != nil {
			return nil, err
		}

		if len(ds) > 0 && ds[0].Token == token && ds[0].Language == language {
			return ds[0], nil
		}

		var d *device.Device

		if len(ds) > 0 {
			d = ds[0]
			d.Disabled = false
			d.Language = language
			d.Token = token
		} else {
			d = &device.Device{
				DeviceID: deviceID,
				Disabled: false,
				Language: language,
				Platform: platform,
				Token:    token,
				UserID:   origin.UserID,
			}
		}

		d, err = devices.Put(ns, d)
		if err != nil {
			if device.IsInvalidDevice(err) {
				return nil, wrapError(ErrInvalidEntity, "%s", err)
			}

			return nil, err
		}

		return d, nil
	}
}

func createEndpoint(
	devices device.Service,
	endpointCreate sns.EndpointCreateFunc,
	ns string,
	platformARN string,
	d *device.Device,
) (*device.Device, error) {
	e, err := endpointCreate(platformARN, d.Token)
	if err != nil {
		return nil, err
	}

	d.EndpointARN = e.ARN

	return devices.Put(ns, d)
}
