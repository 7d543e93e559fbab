package device

import (
	"sort"
	"sync"
	"time"

	"github.com/DRLee98/random-chat-backend-sub000/platform/flake"
	"github.com/DRLee98/random-chat-backend-sub000/platform/pg"
	"github.com/DRLee98/random-chat-backend-sub000/platform/sns"
)

type memService struct {
	mu      sync.Mutex
	devices map[string]map[uint64]Device
}

// MemService returns a memory backed implementation of Service.
func MemService() Service {
	return &memService{
		devices: map[string]map[uint64]Device{},
	}
}

func (s *memService) Put(ns string, d *Device) (*Device, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.setup(ns)

	now, err := pg.ParseTime(pg.FormatTime(time.Now()))
	if err != nil {
		return nil, err
	}

	if d.ID == 0 {
		id, err := flake.NextID(flake.Namespace(ns, entity))
		if err != nil {
			return nil, err
		}

		d.ID = id
		d.CreatedAt = now
	} else {
		stored, ok := s.devices[ns][d.ID]
		if !ok {
			return nil, wrapError(ErrNotFound, "%d", d.ID)
		}

		d.CreatedAt = stored.CreatedAt
		d.Platform = stored.Platform
	}

	d.UpdatedAt = now

	s.devices[ns][d.ID] = *d

	return d, nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setup(ns)

	ds := List{}

	for _, device := range s.devices[ns] {
		if opts.Deleted != nil && device.Deleted != *opts.Deleted {
			continue
		}

		if opts.Disabled != nil && device.Disabled != *opts.Disabled {
			continue
		}

		if !inStrings(device.DeviceID, opts.DeviceIDs) ||
			!inStrings(device.EndpointARN, opts.EndpointARNs) ||
			!inStrings(device.Token, opts.Tokens) {
			continue
		}

		if !inIDs(device.ID, opts.IDs) || !inIDs(device.UserID, opts.UserIDs) {
			continue
		}

		if !inPlatforms(device.Platform, opts.Platforms) {
			continue
		}

		d := device
		ds = append(ds, &d)
	}

	sort.Sort(ds)

	return ds, nil
}

func (s *memService) Setup(ns string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setup(ns)

	return nil
}

func (s *memService) Teardown(ns string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.devices, ns)

	return nil
}

func (s *memService) setup(ns string) {
	if _, ok := s.devices[ns]; !ok {
		s.devices[ns] = map[uint64]Device{}
	}
}

func inIDs(id uint64, ids []uint64) bool {
	if len(ids) == 0 {
		return true
	}

	for _, i := range ids {
		if i == id {
			return true
		}
	}

	return false
}

func inPlatforms(p sns.Platform, ps []sns.Platform) bool {
	if len(ps) == 0 {
		return true
	}

	for _, platform := range ps {
		if platform == p {
			return true
		}
	}

	return false
}

func inStrings(v string, vs []string) bool {
	if len(vs) == 0 {
		return true
	}

	for _, s := range vs {
		if s == v {
			return true
		}
	}

	return false
}
