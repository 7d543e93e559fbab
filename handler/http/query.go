package http

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

const (
	cursorTimeFormat = time.RFC3339Nano

	keyCount          = "count"
	keyCursorBefore   = "before"
	keyDeviceID       = "deviceID"
	keyInviteID       = "inviteID"
	keyLimit          = "limit"
	keyNotificationID = "notificationID"
	keyUserID         = "userID"

	countDefault = 5
	countMax     = 20
	limitDefault = 25
	limitMax     = 50

	refFmt = "%s://%s%s?limit=%d&%s"
)

var cursorEncoding = base64.URLEncoding.WithPadding(base64.NoPadding)

type payloadCursors struct {
	Before string `json:"before"`
}

type payloadPagination struct {
	before string
	limit  int
	req    *http.Request
}

func pagination(
	req *http.Request,
	limit int,
	before string,
) *payloadPagination {
	return &payloadPagination{
		before: before,
		limit:  limit,
		req:    req,
	}
}

func (p *payloadPagination) MarshalJSON() ([]byte, error) {
	var (
		next   = ""
		scheme = "http"
	)

	if p.req.TLS != nil {
		scheme = "https"
	}

	if p.before != "" {
		next = fmt.Sprintf(
			refFmt,
			scheme,
			p.req.Host,
			p.req.URL.Path,
			p.limit,
			fmt.Sprintf("%s=%s", keyCursorBefore, p.before),
		)
	}

	f := struct {
		Cursors payloadCursors `json:"cursors"`
		Next    string         `json:"next"`
	}{
		Cursors: payloadCursors{
			Before: p.before,
		},
		Next: next,
	}

	return json.Marshal(&f)
}

func extractCount(r *http.Request) (int, error) {
	param := r.URL.Query().Get(keyCount)

	if param == "" {
		return countDefault, nil
	}

	count, err := strconv.Atoi(param)
	if err != nil {
		return 0, err
	}

	if count > countMax {
		return countMax, nil
	}

	return count, nil
}

func extractInviteID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)[keyInviteID], 10, 64)
}

func extractLimit(r *http.Request) (int, error) {
	param := r.URL.Query().Get(keyLimit)

	if param == "" {
		return limitDefault, nil
	}

	limit, err := strconv.Atoi(param)
	if err != nil {
		return 0, err
	}

	if limit > limitMax {
		return limitMax, nil
	}

	return limit, nil
}

func extractNotificationID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)[keyNotificationID], 10, 64)
}

func extractTimeCursorBefore(r *http.Request) (time.Time, error) {
	var (
		before = time.Now()
		param  = r.URL.Query().Get(keyCursorBefore)
	)

	if param == "" {
		return before, nil
	}

	cursor, err := cursorEncoding.DecodeString(param)
	if err != nil {
		return before, err
	}

	return time.Parse(cursorTimeFormat, string(cursor))
}

func extractUserID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)[keyUserID], 10, 64)
}

func toTimeCursor(t time.Time) string {
	return cursorEncoding.EncodeToString([]byte(t.Format(cursorTimeFormat)))
}
