package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-kit/kit/log"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/DRLee98/random-chat-backend-sub000/platform/service"
	"github.com/DRLee98/random-chat-backend-sub000/service/block"
	"github.com/DRLee98/random-chat-backend-sub000/service/device"
	"github.com/DRLee98/random-chat-backend-sub000/service/invite"
	"github.com/DRLee98/random-chat-backend-sub000/service/member"
	"github.com/DRLee98/random-chat-backend-sub000/service/notification"
	"github.com/DRLee98/random-chat-backend-sub000/service/room"
	"github.com/DRLee98/random-chat-backend-sub000/service/session"
	"github.com/DRLee98/random-chat-backend-sub000/service/user"
)

const (
	cmdExport   = "export"
	cmdImport   = "import"
	cmdSetup    = "setup"
	cmdTeardown = "teardown"

	component = "dataz"

	fileBlocks  = "blocks.json"
	fileDevices = "devices.json"
	fileMembers = "members.json"
	fileRooms   = "rooms.json"
	fileUsers   = "users.json"

	revision = "0000000-dev"

	storeService = "postgres"
)

var (
	defaultDeleted = false
	defaultEnabled = true
)

type stores struct {
	blocks        block.Service
	devices       device.Service
	invites       invite.Service
	members       member.Service
	notifications notification.Service
	rooms         room.Service
	sessions      session.Service
	users         user.Service
}

func (s stores) lifecycles() []service.Lifecycle {
	return []service.Lifecycle{
		s.users,
		s.sessions,
		s.devices,
		s.blocks,
		s.rooms,
		s.members,
		s.invites,
		s.notifications,
	}
}

type counts struct {
	blocks  int
	devices int
	members int
	rooms   int
	users   int
}

func main() {
	var (
		dataDir     = flag.String("data.dir", "", "Directory which holds the data files.")
		namespace   = flag.String("namespace", "random_chat", "Namespace to operate on")
		postgresURL = flag.String("postgres.url", "", "Postgres URL to connect to.")
	)
	flag.Parse()

	logger := log.With(
		log.NewJSONLogger(os.Stdout),
		"caller", log.Caller(3),
		"component", component,
		"revision", revision,
	)

	hostname, err := os.Hostname()
	if err != nil {
		logger.Log("err", err, "lifecycle", "abort")
		os.Exit(1)
	}

	logger = log.With(logger, "host", hostname, "namespace", *namespace)
	if len(flag.Args()) != 1 {
		logger.Log("err", "missing command", "lifecycle", "abort")
		os.Exit(1)
	}

	pgClient, err := sqlx.Connect(storeService, *postgresURL)
	if err != nil {
		logger.Log("err", err, "lifecycle", "abort")
		os.Exit(1)
	}

	s := stores{
		blocks:        block.PostgresService(pgClient),
		devices:       device.PostgresService(pgClient),
		invites:       invite.PostgresService(pgClient),
		members:       member.PostgresService(pgClient),
		notifications: notification.PostgresService(pgClient),
		rooms:         room.PostgresService(pgClient),
		sessions:      session.PostgresService(pgClient),
		users:         user.PostgresService(pgClient),
	}

	switch cmd := flag.Args()[0]; cmd {
	case cmdSetup:
		for _, l := range s.lifecycles() {
			if err := l.Setup(*namespace); err != nil {
				logger.Log("err", err, "lifecycle", "abort", "sub", cmd)
				os.Exit(1)
			}
		}
	case cmdTeardown:
		for _, l := range s.lifecycles() {
			if err := l.Teardown(*namespace); err != nil {
				logger.Log("err", err, "lifecycle", "abort", "sub", cmd)
				os.Exit(1)
			}
		}
	case cmdExport:
		err := os.MkdirAll(*dataDir, os.ModePerm)
		if err != nil {
			logger.Log("err", err, "lifecycle", "abort", "sub", cmd)
			os.Exit(1)
		}

		c, err := export(s, *dataDir, *namespace)
		if err != nil {
			logger.Log("err", err, "lifecycle", "abort", "sub", cmd)
			os.Exit(1)
		}

		logCounts(logger, cmd, c)
	case cmdImport:
		c, err := importAll(s, *dataDir, *namespace)
		if err != nil {
			logCounts(log.With(logger, "err", err, "lifecycle", "abort"), cmd, c)
			os.Exit(1)
		}

		logCounts(logger, cmd, c)
	default:
		logger.Log(
			"err", fmt.Sprintf("unknown command '%s'", cmd),
			"lifecycle", "abort",
		)
		os.Exit(1)
	}
}

func logCounts(logger log.Logger, cmd string, c counts) {
	logger.Log(
		"count_block", c.blocks,
		"count_device", c.devices,
		"count_member", c.members,
		"count_room", c.rooms,
		"count_user", c.users,
		"sub", cmd,
	)
}

// export writes users, blocks, devices and chat rooms with their members as
// JSON lines. Sessions and pending invites are not carried over.
func export(s stores, dir, ns string) (counts, error) {
	c := counts{}

	us, err := s.users.Query(ns, user.QueryOptions{
		Deleted: &defaultDeleted,
	})
	if err != nil {
		return c, err
	}

	if err := writeLines(filepath.Join(dir, fileUsers), us); err != nil {
		return c, err
	}
	c.users = len(us)

	bs, err := s.blocks.Query(ns, block.QueryOptions{
		Enabled: &defaultEnabled,
	})
	if err != nil {
		return c, err
	}

	if err := writeLines(filepath.Join(dir, fileBlocks), bs); err != nil {
		return c, err
	}
	c.blocks = len(bs)

	ds, err := s.devices.Query(ns, device.QueryOptions{
		Deleted: &defaultDeleted,
	})
	if err != nil {
		return c, err
	}

	if err := writeLines(filepath.Join(dir, fileDevices), ds); err != nil {
		return c, err
	}
	c.devices = len(ds)

	rs, err := s.rooms.Query(ns, room.QueryOptions{
		Kinds: []room.Kind{
			room.KindChat,
		},
	})
	if err != nil {
		return c, err
	}

	if err := writeLines(filepath.Join(dir, fileRooms), rs); err != nil {
		return c, err
	}
	c.rooms = len(rs)

	if len(rs) == 0 {
		return c, writeLines(filepath.Join(dir, fileMembers), member.List{})
	}

	ms, err := s.members.Query(ns, member.QueryOptions{
		RoomIDs: rs.IDs(),
	})
	if err != nil {
		return c, err
	}

	if err := writeLines(filepath.Join(dir, fileMembers), ms); err != nil {
		return c, err
	}
	c.members = len(ms)

	return c, nil
}

// importAll reads the files written by export. Every entity gets a fresh id,
// references are rewritten to the new ids.
func importAll(s stores, dir, ns string) (counts, error) {
	c := counts{}

	us, err := readLines[user.User](filepath.Join(dir, fileUsers))
	if err != nil {
		return c, err
	}

	userIDs := map[uint64]uint64{}

	for _, u := range us {
		old := u.ID
		u.ID = 0

		created, err := s.users.Put(ns, u)
		if err != nil {
			return c, fmt.Errorf("user %d: %w", old, err)
		}

		userIDs[old] = created.ID
		c.users++
	}

	bs, err := readLines[block.Block](filepath.Join(dir, fileBlocks))
	if err != nil {
		return c, err
	}

	for _, b := range bs {
		from, okFrom := userIDs[b.FromID]
		to, okTo := userIDs[b.ToID]

		if !okFrom || !okTo {
			continue
		}

		b.FromID, b.ToID = from, to

		if _, err := s.blocks.Put(ns, b); err != nil {
			return c, err
		}

		c.blocks++
	}

	ds, err := readLines[device.Device](filepath.Join(dir, fileDevices))
	if err != nil {
		return c, err
	}

	for _, d := range ds {
		id, ok := userIDs[d.UserID]
		if !ok {
			continue
		}

		d.ID = 0
		d.UserID = id

		if _, err := s.devices.Put(ns, d); err != nil {
			return c, err
		}

		c.devices++
	}

	rs, err := readLines[room.Room](filepath.Join(dir, fileRooms))
	if err != nil {
		return c, err
	}

	roomIDs := map[uint64]uint64{}

	for _, r := range rs {
		old := r.ID
		r.ID = 0

		created, err := s.rooms.Put(ns, r)
		if err != nil {
			return c, fmt.Errorf("room %d: %w", old, err)
		}

		roomIDs[old] = created.ID
		c.rooms++
	}

	ms, err := readLines[member.Member](filepath.Join(dir, fileMembers))
	if err != nil {
		return c, err
	}

	for _, m := range ms {
		roomID, okRoom := roomIDs[m.RoomID]
		userID, okUser := userIDs[m.UserID]

		if !okRoom || !okUser {
			continue
		}

		m.ID = 0
		m.RoomID = roomID
		m.UserID = userID

		if _, err := s.members.Put(ns, m); err != nil {
			return c, err
		}

		c.members++
	}

	return c, nil
}

func readLines[T any](path string) ([]*T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		dec = json.NewDecoder(f)
		ts  = []*T{}
	)

	for dec.More() {
		t := new(T)

		if err := dec.Decode(t); err != nil {
			return ts, err
		}

		ts = append(ts, t)
	}

	return ts, nil
}

func writeLines[T any](path string, ts []*T) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	out := json.NewEncoder(f)

	for _, t := range ts {
		if err := out.Encode(t); err != nil {
			f.Close()
			return err
		}
	}

	return f.Close()
}
