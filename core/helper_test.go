package core

import (
	"sync"
	"testing"

	"github.com/DRLee98/random-chat-backend-sub000/platform/generate"
	"github.com/DRLee98/random-chat-backend-sub000/service/notification"
	"github.com/DRLee98/random-chat-backend-sub000/service/user"
)

const testNamespace = "core_test"

type notifyRecorder struct {
	mu sync.Mutex
	ns notification.List
}

func (r *notifyRecorder) notify(ns string, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ns = append(r.ns, n)

	return nil
}

func (r *notifyRecorder) userIDs() []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := []uint64{}

	for _, n := range r.ns {
		ids = append(ids, n.UserID)
	}

	return ids
}

func testUser(t *testing.T, users user.Service, modify func(*user.User)) *user.User {
	u := &user.User{
		ChatEnabled: true,
		Enabled:     true,
		Username:    generate.RandomString(8),
	}

	if modify != nil {
		modify(u)
	}

	created, err := users.Put(testNamespace, u)
	if err != nil {
		t.Fatal(err)
	}

	return created
}

func testUsers(t *testing.T, users user.Service, n int) user.List {
	us := user.List{}

	for i := 0; i < n; i++ {
		us = append(us, testUser(t, users, nil))
	}

	return us
}

func testOrigin(u *user.User) Origin {
	return Origin{
		Integration: IntegrationApplication,
		UserID:      u.ID,
	}
}
