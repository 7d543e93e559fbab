package core

import (
	"github.com/DRLee98/random-chat-backend-sub000/service/block"
	"github.com/DRLee98/random-chat-backend-sub000/service/user"
)

// BlockCreateFunc hides the target from the origin's random matching.
type BlockCreateFunc func(
	ns string,
	origin Origin,
	toID uint64,
) (*block.Block, error)

// BlockCreate hides the target from the origin's random matching and the
// other way round.
func BlockCreate(
	blocks block.Service,
	users user.Service,
) BlockCreateFunc {
	return func(
		ns string,
		origin Origin,
		toID uint64,
	) (*block.Block, error) {
		if origin.UserID == toID {
			return nil, wrapError(ErrInvalidEntity, "user can't block itself")
		}

		us, err := user.ListFromIDs(users, ns, toID)
		if err != nil {
			return nil, err
		}

		if len(us) != 1 || us[0].Deleted {
			return nil, wrapError(ErrNotFound, "user %d", toID)
		}

		b, err := blocks.Put(ns, &block.Block{
			Enabled: true,
			FromID:  origin.UserID,
			ToID:    toID,
		})
		if err != nil {
			if block.IsInvalidBlock(err) {
				return nil, wrapError(ErrInvalidEntity, "%s", err)
			}

			return nil, err
		}

		return b, nil
	}
}

// BlockDeleteFunc lifts a block of the origin.
type BlockDeleteFunc func(ns string, origin Origin, toID uint64) error

// BlockDelete lifts a block of the origin. Lifting an absent block is a
// no-op.
func BlockDelete(blocks block.Service) BlockDeleteFunc {
	return func(ns string, origin Origin, toID uint64) error {
		bs, err := blocks.Query(ns, block.QueryOptions{
			Enabled: &defaultEnabled,
			FromIDs: []uint64{
				origin.UserID,
			},
			ToIDs: []uint64{
				toID,
			},
		})
		if err != nil {
			return err
		}

		for _, b := range bs {
			b.Enabled = false

			if _, err := blocks.Put(ns, b); err != nil {
				return err
			}
		}

		return nil
	}
}

// BlockListMineFunc returns the users blocked by the origin.
type BlockListMineFunc func(ns string, origin Origin) (user.List, error)

// BlockListMine returns the users blocked by the origin.
func BlockListMine(
	blocks block.Service,
	users user.Service,
) BlockListMineFunc {
	return func(ns string, origin Origin) (user.List, error) {
		bs, err := blocks.Query(ns, block.QueryOptions{
			Enabled: &defaultEnabled,
			FromIDs: []uint64{
				origin.UserID,
			},
		})
		if err != nil {
			return nil, err
		}

		if len(bs) == 0 {
			return user.List{}, nil
		}

		return user.ListFromIDs(users, ns, bs.ToIDs()...)
	}
}
