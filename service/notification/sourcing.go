package notification

type sourcingService struct {
	producer Producer
	service  Service
}

// SourcingServiceMiddleware hands every newly stored Notification to the
// given Producer.
func SourcingServiceMiddleware(producer Producer) ServiceMiddleware {
	return func(service Service) Service {
		return &sourcingService{
			producer: producer,
			service:  service,
		}
	}
}

func (s *sourcingService) Count(ns string, opts QueryOptions) (int, error) {
	return s.service.Count(ns, opts)
}

func (s *sourcingService) Put(
	ns string,
	input *Notification,
) (output *Notification, err error) {
	isNew := input.ID == 0

	output, err = s.service.Put(ns, input)
	if err != nil {
		return nil, err
	}

	if isNew {
		if _, err := s.producer.Propagate(ns, output); err != nil {
			return nil, err
		}
	}

	return output, nil
}

func (s *sourcingService) Query(ns string, opts QueryOptions) (List, error) {
	return s.service.Query(ns, opts)
}

func (s *sourcingService) Setup(ns string) error {
	return s.service.Setup(ns)
}

func (s *sourcingService) Teardown(ns string) error {
	return s.service.Teardown(ns)
}
