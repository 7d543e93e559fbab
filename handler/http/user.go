package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/DRLee98/random-chat-backend-sub000/service/user"
)

// UserRetrieveMe returns the current user.
func UserRetrieveMe() Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, &payloadUser{
			private: true,
			user:    userFromContext(ctx),
		})
	}
}

type payloadUser struct {
	private bool
	user    *user.User
}

func (p *payloadUser) MarshalJSON() ([]byte, error) {
	f := struct {
		ChatEnabled *bool     `json:"chat_enabled,omitempty"`
		Email       string    `json:"email,omitempty"`
		ID          uint64    `json:"id"`
		IDString    string    `json:"id_string"`
		Username    string    `json:"user_name"`
		CreatedAt   time.Time `json:"created_at"`
	}{
		ID:        p.user.ID,
		IDString:  strconv.FormatUint(p.user.ID, 10),
		Username:  p.user.Username,
		CreatedAt: p.user.CreatedAt,
	}

	if p.private {
		chatEnabled := p.user.ChatEnabled

		f.ChatEnabled = &chatEnabled
		f.Email = p.user.Email
	}

	return json.Marshal(f)
}

type payloadUsers struct {
	users user.List
}

func (p *payloadUsers) MarshalJSON() ([]byte, error) {
	us := []*payloadUser{}

	for _, u := range p.users {
		us = append(us, &payloadUser{user: u})
	}

	return json.Marshal(struct {
		Users      []*payloadUser `json:"users"`
		UsersCount int            `json:"users_count"`
	}{
		Users:      us,
		UsersCount: len(us),
	})
}
