package flake

import (
	"hash/fnv"
	"os"
	"sync"
	"time"

	"github.com/sony/sonyflake"
)

var (
	epoch = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	mu     sync.Mutex
	flakes = map[string]*sonyflake.Sonyflake{}
)

// NextID returns the next safe to use ID for the given namespace.
func NextID(namespace string) (uint64, error) {
	mu.Lock()
	f, ok := flakes[namespace]
	if !ok {
		f = sonyflake.NewSonyflake(sonyflake.Settings{
			StartTime: epoch,
			MachineID: machineID,
		})
		flakes[namespace] = f
	}
	mu.Unlock()

	return f.NextID()
}

// machineID derives a stable id from host and process so instances without a
// private address still get a generator.
func machineID() (uint16, error) {
	host, err := os.Hostname()
	if err != nil {
		return 0, err
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(host))

	return uint16(h.Sum32()) ^ uint16(os.Getpid()), nil
}

// Namespace scopes an id sequence to an entity within a namespace.
func Namespace(ns, entity string) string {
	return ns + "_" + entity
}
