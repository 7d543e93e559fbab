package notification

import serr "github.com/DRLee98/random-chat-backend-sub000/error"

type nopSource struct{}

// NopSource returns a noop implementation of Source.
func NopSource() Source {
	return &nopSource{}
}

func (s *nopSource) Ack(id string) error {
	return nil
}

func (s *nopSource) Consume() (*Delivery, error) {
	return nil, serr.ErrEmptySource
}

func (s *nopSource) Propagate(ns string, n *Notification) (string, error) {
	return "", nil
}
