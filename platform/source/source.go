// Package source holds the pieces shared by every state change source.
package source

// Acker is implemented by sources which need explicit confirmation that a
// consumed message was handled.
type Acker interface {
	Ack(id string) error
}
