package core

import (
	"sort"

	"github.com/DRLee98/random-chat-backend-sub000/service/member"
	"github.com/DRLee98/random-chat-backend-sub000/service/room"
)

// ChatRoom is a materialised room as seen by one of its members.
type ChatRoom struct {
	Member  *member.Member `json:"member"`
	Members member.List    `json:"members"`
	Room    *room.Room     `json:"room"`
}

// RoomListMineFunc returns the chat rooms of the origin.
type RoomListMineFunc func(ns string, origin Origin) ([]*ChatRoom, error)

// RoomListMine returns the chat rooms of the origin ordered like its
// memberships, pinned rooms first.
func RoomListMine(
	members member.Service,
	rooms room.Service,
) RoomListMineFunc {
	return func(ns string, origin Origin) ([]*ChatRoom, error) {
		own, err := members.Query(ns, member.QueryOptions{
			UserIDs: []uint64{
				origin.UserID,
			},
		})
		if err != nil {
			return nil, err
		}

		if len(own) == 0 {
			return []*ChatRoom{}, nil
		}

		sort.Sort(own)

		rs, err := rooms.Query(ns, room.QueryOptions{
			IDs: own.RoomIDs(),
			Kinds: []room.Kind{
				room.KindChat,
			},
		})
		if err != nil {
			return nil, err
		}

		ms, err := members.Query(ns, member.QueryOptions{
			RoomIDs: own.RoomIDs(),
		})
		if err != nil {
			return nil, err
		}

		var (
			byRoom = ms.ByRoom()
			rm     = rs.ToMap()
			crs    = []*ChatRoom{}
		)

		for _, m := range own {
			r, ok := rm[m.RoomID]
			if !ok {
				continue
			}

			crs = append(crs, &ChatRoom{
				Member:  m,
				Members: byRoom[m.RoomID],
				Room:    r,
			})
		}

		return crs, nil
	}
}
