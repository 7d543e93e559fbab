package core

// IntegrationApplication marks requests issued by the chat apps.
const IntegrationApplication Integration = iota

// Integration determines the type of integration used for an operation.
type Integration uint8

// Origin information of an operation.
type Origin struct {
	DeviceID    string
	Integration Integration
	UserID      uint64
}
