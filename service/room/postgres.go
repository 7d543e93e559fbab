package room

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/DRLee98/random-chat-backend-sub000/platform/flake"
	"github.com/DRLee98/random-chat-backend-sub000/platform/pg"
)

const (
	pgDeleteRooms = `DELETE FROM %s.rooms
		%s`
	pgInsertRoom = `INSERT INTO
		%s.rooms(id, kind, created_at, updated_at)
		VALUES($1, $2, $3, $4)`
	pgUpdateRoom = `
		UPDATE
			%s.rooms
		SET
			kind = $2,
			updated_at = $3
		WHERE
			id = $1`

	pgClauseBefore = `created_at < ?`
	pgClauseIDs    = `id IN (?)`
	pgClauseKinds  = `kind IN (?)`

	pgListRooms = `
		SELECT
			id, kind, created_at, updated_at
		FROM
			%s.rooms
		%s`

	pgOrderCreatedAt = `ORDER BY created_at DESC, id DESC`

	pgCreateScheme = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.rooms(
		id BIGINT NOT NULL UNIQUE,
		kind TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`
	pgDropTable = `DROP TABLE IF EXISTS %s.rooms`
)

type pgService struct {
	db *sqlx.DB
}

// PostgresService returns a Postgres based Service implementation.
func PostgresService(db *sqlx.DB) Service {
	return &pgService{
		db: db,
	}
}

func (s *pgService) Delete(ns string, opts QueryOptions) error {
	if opts.Empty() {
		return wrapError(ErrInvalidQuery, "delete without constraints")
	}

	opts.Limit = 0

	where, params, err := convertOpts(opts, false)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(fmt.Sprintf(pgDeleteRooms, ns, where), params...)
	if err != nil && pg.IsRelationNotFound(pg.WrapError(err)) {
		return s.Setup(ns)
	}

	return err
}

func (s *pgService) Put(ns string, r *Room) (*Room, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	if r.ID == 0 {
		return s.insert(ns, r)
	}

	return s.update(ns, r)
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts, true)
	if err != nil {
		return nil, err
	}

	return s.listRooms(ns, where, params...)
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		fmt.Sprintf(pgCreateScheme, ns),
		fmt.Sprintf(pgCreateTable, ns),
	}

	for _, q := range qs {
		_, err := s.db.Exec(q)
		if err != nil {
			return fmt.Errorf("setup '%s': %s", q, err)
		}
	}

	return nil
}

func (s *pgService) Teardown(ns string) error {
	qs := []string{
		fmt.Sprintf(pgDropTable, ns),
	}

	for _, q := range qs {
		_, err := s.db.Exec(q)
		if err != nil {
			return fmt.Errorf("teardown '%s': %s", q, err)
		}
	}

	return nil
}

func (s *pgService) insert(ns string, r *Room) (*Room, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	ts, err := pg.ParseTime(pg.FormatTime(r.CreatedAt))
	if err != nil {
		return nil, err
	}

	r.CreatedAt = ts
	r.UpdatedAt = ts

	id, err := flake.NextID(flake.Namespace(ns, entity))
	if err != nil {
		return nil, err
	}

	r.ID = id

	var (
		params = []interface{}{
			r.ID,
			string(r.Kind),
			r.CreatedAt,
			r.UpdatedAt,
		}
		query = fmt.Sprintf(pgInsertRoom, ns)
	)

	_, err = s.db.Exec(query, params...)
	if err != nil && pg.IsRelationNotFound(pg.WrapError(err)) {
		if err := s.Setup(ns); err != nil {
			return nil, err
		}

		_, err = s.db.Exec(query, params...)
	}
	if err != nil {
		return nil, err
	}

	return r, nil
}

func (s *pgService) listRooms(
	ns, where string,
	params ...interface{},
) (List, error) {
	query := fmt.Sprintf(pgListRooms, ns, where)

	rows, err := s.db.Query(query, params...)
	if err != nil {
		if pg.IsRelationNotFound(pg.WrapError(err)) {
			if err := s.Setup(ns); err != nil {
				return nil, err
			}

			return s.listRooms(ns, where, params...)
		}

		return nil, err
	}
	defer rows.Close()

	rs := List{}

	for rows.Next() {
		var (
			room = &Room{}
			kind string
		)

		err := rows.Scan(
			&room.ID,
			&kind,
			&room.CreatedAt,
			&room.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		room.Kind = Kind(kind)
		room.CreatedAt = room.CreatedAt.UTC()
		room.UpdatedAt = room.UpdatedAt.UTC()

		rs = append(rs, room)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rs, nil
}

func (s *pgService) update(ns string, r *Room) (*Room, error) {
	stored, err := s.Query(ns, QueryOptions{IDs: []uint64{r.ID}})
	if err != nil {
		return nil, err
	}

	if len(stored) != 1 {
		return nil, wrapError(ErrInvalidRoom, "room %d not found", r.ID)
	}

	now, err := pg.ParseTime(pg.FormatTime(time.Now()))
	if err != nil {
		return nil, err
	}

	r.CreatedAt = stored[0].CreatedAt
	r.UpdatedAt = now

	query := fmt.Sprintf(pgUpdateRoom, ns)

	if _, err := s.db.Exec(query, r.ID, string(r.Kind), r.UpdatedAt); err != nil {
		return nil, err
	}

	return r, nil
}

func convertOpts(opts QueryOptions, order bool) (string, []interface{}, error) {
	var (
		clauses = []string{}
		params  = []interface{}{}
	)

	if !opts.Before.IsZero() {
		clauses = append(clauses, pgClauseBefore)
		params = append(params, pg.FormatTime(opts.Before))
	}

	if len(opts.IDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.IDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseIDs, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if len(opts.Kinds) > 0 {
		ps := []interface{}{}

		for _, k := range opts.Kinds {
			ps = append(ps, string(k))
		}

		clause, _, err := sqlx.In(pgClauseKinds, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	where := ""

	if len(clauses) > 0 {
		where = sqlx.Rebind(sqlx.DOLLAR, pg.ClausesToWhere(clauses...))
	}

	if order {
		where = fmt.Sprintf("%s\n%s", where, pgOrderCreatedAt)
	}

	if opts.Limit > 0 {
		where = fmt.Sprintf("%s\nLIMIT %d", where, opts.Limit)
	}

	return where, params, nil
}
