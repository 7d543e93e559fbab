package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/DRLee98/random-chat-backend-sub000/core"
	serr "github.com/DRLee98/random-chat-backend-sub000/error"
	"github.com/DRLee98/random-chat-backend-sub000/platform/generate"
	"github.com/DRLee98/random-chat-backend-sub000/platform/limiter"
	"github.com/DRLee98/random-chat-backend-sub000/platform/lock"
	"github.com/DRLee98/random-chat-backend-sub000/platform/pubsub"
	"github.com/DRLee98/random-chat-backend-sub000/service/block"
	"github.com/DRLee98/random-chat-backend-sub000/service/invite"
	"github.com/DRLee98/random-chat-backend-sub000/service/member"
	"github.com/DRLee98/random-chat-backend-sub000/service/notification"
	"github.com/DRLee98/random-chat-backend-sub000/service/room"
	"github.com/DRLee98/random-chat-backend-sub000/service/session"
	"github.com/DRLee98/random-chat-backend-sub000/service/user"
)

const testNamespace = "handler_test"

type testGateway struct {
	bus      *pubsub.Bus
	invites  invite.Service
	router   *mux.Router
	sessions session.Service
	users    user.Service
}

func testSetupGateway(t *testing.T, inviteLimit int64) *testGateway {
	var (
		blocks        = block.MemService()
		bus           = pubsub.New(log.NewNopLogger(), 16)
		invites       = invite.MemService()
		members       = member.MemService()
		notifications = notification.MemService()
		rooms         = room.MemService()
		sessions      = session.MemService()
		users         = user.MemService()
		notify        = core.Notify(notifications)
		router        = mux.NewRouter()
	)

	bus.Start()
	t.Cleanup(bus.Stop)

	withUser := Chain(
		CtxPrepare(testNamespace, "test"),
		CtxDeviceID(),
		CtxUser(sessions, users),
	)

	router.Methods("GET").Path("/me").Name("userRetrieveMe").HandlerFunc(
		Wrap(withUser, UserRetrieveMe()),
	)

	router.Methods("GET").Path("/me/invites/candidates").Name("inviteCandidates").HandlerFunc(
		Wrap(withUser, InviteCandidates(core.InviteCandidates(blocks, members, users))),
	)

	router.Methods("GET").Path("/me/invites").Name("inviteListPending").HandlerFunc(
		Wrap(withUser, InviteListPending(core.InviteListPending(invites, rooms))),
	)

	router.Methods("POST").Path("/me/invites").Name("inviteCreate").HandlerFunc(
		Wrap(
			Chain(withUser, RateLimit(limiter.Mem(), inviteLimit, time.Minute)),
			InviteCreate(core.InviteCreate(invites, rooms, users, notify)),
		),
	)

	router.Methods("GET").Path("/me/invites/subscribe").Name("inviteStatusSubscribe").HandlerFunc(
		Wrap(withUser, InviteStatusSubscribe(log.NewNopLogger(), bus)),
	)

	router.Methods("PUT").Path("/me/invites/{inviteID:[0-9]+}").Name("inviteRespond").HandlerFunc(
		Wrap(withUser, InviteRespond(core.InviteRespond(
			invites,
			lock.MemLocker(lock.DefaultWait),
			members,
			rooms,
			users,
			bus,
			notify,
		))),
	)

	router.Methods("GET").Path("/me/rooms").Name("roomListMine").HandlerFunc(
		Wrap(withUser, RoomListMine(core.RoomListMine(members, rooms))),
	)

	return &testGateway{
		bus:      bus,
		invites:  invites,
		router:   router,
		sessions: sessions,
		users:    users,
	}
}

func (g *testGateway) user(t *testing.T) (*user.User, string) {
	u, err := g.users.Put(testNamespace, &user.User{
		ChatEnabled: true,
		Enabled:     true,
		Username:    generate.RandomString(8),
	})
	if err != nil {
		t.Fatal(err)
	}

	s, err := g.sessions.Put(testNamespace, &session.Session{
		DeviceID: "device",
		Enabled:  true,
		UserID:   u.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	return u, s.ID
}

func (g *testGateway) do(
	t *testing.T,
	method, path, token string,
	payload interface{},
) *httptest.ResponseRecorder {
	var body bytes.Buffer

	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatal(err)
		}
	}

	r := httptest.NewRequest(method, path, &body)
	r.Header.Set("Content-Type", "application/json")

	if token != "" {
		r.Header.Set("Authorization", tokenPrefix+token)
	}

	w := httptest.NewRecorder()

	g.router.ServeHTTP(w, r)

	return w
}

func TestRespondError(t *testing.T) {
	cases := map[error]int{
		wrapError(ErrBadRequest, "broken"):                         http.StatusBadRequest,
		wrapError(ErrLimitExceeded, "quota"):                       http.StatusTooManyRequests,
		wrapError(ErrUnauthorized, "token"):                        http.StatusUnauthorized,
		&core.Error{Err: core.ErrInvalidDecision, Msg: "waiting"}:  http.StatusBadRequest,
		&core.Error{Err: core.ErrInvalidEntity, Msg: "count"}:      http.StatusBadRequest,
		&core.Error{Err: core.ErrNotInviteOwner, Msg: "owner"}:     http.StatusForbidden,
		&core.Error{Err: core.ErrInviteNotFound, Msg: "invite"}:    http.StatusNotFound,
		&core.Error{Err: core.ErrNotFound, Msg: "user"}:            http.StatusNotFound,
		&core.Error{Err: core.ErrAlreadyResolved, Msg: "accepted"}: http.StatusConflict,
		&core.Error{Err: core.ErrNoEligibleTargets, Msg: "nobody"}: http.StatusUnprocessableEntity,
		&core.Error{Err: core.ErrNoValidTargets, Msg: "unknown"}:   http.StatusUnprocessableEntity,
		serr.Wrap(serr.ErrLockUnavailable, "room"):                 http.StatusServiceUnavailable,
		errors.New("store unreachable"):                            http.StatusInternalServerError,
	}

	for err, want := range cases {
		w := httptest.NewRecorder()

		respondError(w, 0, err)

		if have := w.Code; have != want {
			t.Errorf("%s: have %v, want %v", err, have, want)
		}

		res := struct {
			Errors []apiError `json:"errors"`
		}{}

		if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
			t.Fatal(err)
		}

		if have, want := len(res.Errors), 1; have != want {
			t.Fatalf("have %v, want %v", have, want)
		}

		if have, want := res.Errors[0].Message, err.Error(); have != want {
			t.Errorf("have %v, want %v", have, want)
		}
	}
}

func TestCtxUser(t *testing.T) {
	var (
		g        = testSetupGateway(t, 10)
		u, token = g.user(t)
	)

	if have, want := g.do(t, "GET", "/me", "", nil).Code, http.StatusUnauthorized; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := g.do(t, "GET", "/me", "unknown", nil).Code, http.StatusUnauthorized; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	w := g.do(t, "GET", "/me", token, nil)

	if have, want := w.Code, http.StatusOK; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	res := struct {
		ID       uint64 `json:"id"`
		Username string `json:"user_name"`
	}{}

	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}

	if have, want := res.ID, u.ID; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestInviteFlow(t *testing.T) {
	var (
		g                   = testSetupGateway(t, 10)
		_, ownerToken       = g.user(t)
		target, targetToken = g.user(t)
	)

	w := g.do(t, "GET", "/me/invites/candidates?count=3", ownerToken, nil)
	if have, want := w.Code, http.StatusOK; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	w = g.do(t, "POST", "/me/invites", ownerToken, payloadInviteCreate{
		UserIDs: []uint64{target.ID},
	})
	if have, want := w.Code, http.StatusCreated; have != want {
		t.Fatalf("have %v, want %v: %s", have, want, w.Body)
	}

	b := core.InviteBatch{}

	if err := json.NewDecoder(w.Body).Decode(&b); err != nil {
		t.Fatal(err)
	}

	if have, want := len(b.Invites), 2; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	w = g.do(t, "GET", "/me/invites", targetToken, nil)
	if have, want := w.Code, http.StatusOK; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	var own *invite.Invite

	for _, i := range b.Invites {
		if i.UserID == target.ID {
			own = i
		}
	}

	path := fmt.Sprintf("/me/invites/%d", own.ID)

	w = g.do(t, "PUT", path, targetToken, payloadInviteRespond{Status: invite.StatusWaiting})
	if have, want := w.Code, http.StatusBadRequest; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	w = g.do(t, "PUT", path, ownerToken, payloadInviteRespond{Status: invite.StatusAccepted})
	if have, want := w.Code, http.StatusForbidden; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	w = g.do(t, "PUT", path, targetToken, payloadInviteRespond{Status: invite.StatusAccepted})
	if have, want := w.Code, http.StatusOK; have != want {
		t.Fatalf("have %v, want %v: %s", have, want, w.Body)
	}

	res := core.RespondResult{}

	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}

	if res.Room == nil {
		t.Fatal("want room")
	}

	if have, want := len(res.Members), 2; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	w = g.do(t, "PUT", path, targetToken, payloadInviteRespond{Status: invite.StatusAccepted})
	if have, want := w.Code, http.StatusNotFound; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	w = g.do(t, "GET", "/me/invites", ownerToken, nil)
	if have, want := w.Code, http.StatusNoContent; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	w = g.do(t, "GET", "/me/rooms", ownerToken, nil)
	if have, want := w.Code, http.StatusOK; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	w = g.do(t, "POST", "/me/invites", ownerToken, payloadInviteCreate{
		UserIDs: []uint64{4711},
	})
	if have, want := w.Code, http.StatusUnprocessableEntity; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestRateLimit(t *testing.T) {
	var (
		g         = testSetupGateway(t, 1)
		_, token  = g.user(t)
		target, _ = g.user(t)
		payload   = payloadInviteCreate{UserIDs: []uint64{target.ID}}
	)

	if have, want := g.do(t, "POST", "/me/invites", token, payload).Code, http.StatusCreated; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	w := g.do(t, "POST", "/me/invites", token, payload)
	if have, want := w.Code, http.StatusTooManyRequests; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := w.Header().Get("X-RateLimit-Remaining"), "-1"; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestInviteStatusSubscribe(t *testing.T) {
	var (
		g               = testSetupGateway(t, 10)
		_, ownerToken   = g.user(t)
		target, token   = g.user(t)
		other, otherTok = g.user(t)
		server          = httptest.NewServer(g.router)
	)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial(
		"ws"+strings.TrimPrefix(server.URL, "http")+"/me/invites/subscribe",
		http.Header{
			"Authorization": []string{tokenPrefix + otherTok},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	w := g.do(t, "POST", "/me/invites", ownerToken, payloadInviteCreate{
		UserIDs: []uint64{target.ID, other.ID},
	})
	if have, want := w.Code, http.StatusCreated; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	b := core.InviteBatch{}

	if err := json.NewDecoder(w.Body).Decode(&b); err != nil {
		t.Fatal(err)
	}

	var own *invite.Invite

	for _, i := range b.Invites {
		if i.UserID == target.ID {
			own = i
		}
	}

	w = g.do(t, "PUT", fmt.Sprintf("/me/invites/%d", own.ID), token, payloadInviteRespond{
		Status: invite.StatusRejected,
	})
	if have, want := w.Code, http.StatusOK; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	have := core.InviteStatusChanged{}

	if err := conn.ReadJSON(&have); err != nil {
		t.Fatal(err)
	}

	want := core.InviteStatusChanged{
		InviteID:    own.ID,
		ResponderID: target.ID,
		RoomID:      b.Room.ID,
		Status:      invite.StatusRejected,
		UserID:      other.ID,
	}

	if have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}
