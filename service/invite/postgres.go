package invite

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/DRLee98/random-chat-backend-sub000/platform/flake"
	"github.com/DRLee98/random-chat-backend-sub000/platform/pg"
)

const (
	pgDeleteInvites = `DELETE FROM %s.invites
		%s`
	pgInsertInvite = `INSERT INTO
		%s.invites(id, room_id, status, user_id, created_at, updated_at)
		VALUES($1, $2, $3, $4, $5, $6)`
	pgUpdateInvite = `
		UPDATE
			%s.invites
		SET
			status = $2,
			updated_at = $3
		WHERE
			id = $1`

	pgClauseBefore   = `created_at < ?`
	pgClauseIDs      = `id IN (?)`
	pgClauseRoomIDs  = `room_id IN (?)`
	pgClauseStatuses = `status IN (?)`
	pgClauseUserIDs  = `user_id IN (?)`

	pgListInvites = `
		SELECT
			id, room_id, status, user_id, created_at, updated_at
		FROM
			%s.invites
		%s`

	pgOrderCreatedAt = `ORDER BY created_at DESC, id DESC`

	pgIndexCreatedAt = `CREATE INDEX %s ON %s.invites(created_at)`
	pgIndexRoom      = `CREATE INDEX %s ON %s.invites(room_id)`
	pgIndexUser      = `CREATE INDEX %s ON %s.invites(user_id, status)`

	pgCreateScheme = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.invites(
		id BIGINT NOT NULL UNIQUE,
		room_id BIGINT NOT NULL,
		status TEXT NOT NULL,
		user_id BIGINT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`
	pgDropTable = `DROP TABLE IF EXISTS %s.invites`
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

	query := fmt.Sprintf(pgDeleteInvites, ns, where)

	_, err = s.db.Exec(query, params...)
	if err != nil && pg.IsRelationNotFound(pg.WrapError(err)) {
		return s.Setup(ns)
	}

	return err
}

func (s *pgService) Put(ns string, i *Invite) (*Invite, error) {
	if err := i.Validate(); err != nil {
		return nil, err
	}

	if i.ID == 0 {
		return s.insert(ns, i)
	}

	return s.update(ns, i)
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts, true)
	if err != nil {
		return nil, err
	}

	return s.listInvites(ns, where, params...)
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		fmt.Sprintf(pgCreateScheme, ns),
		fmt.Sprintf(pgCreateTable, ns),
		pg.GuardIndex(ns, "invite_created_at", pgIndexCreatedAt),
		pg.GuardIndex(ns, "invite_room", pgIndexRoom),
		pg.GuardIndex(ns, "invite_user", pgIndexUser),
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

func (s *pgService) insert(ns string, i *Invite) (*Invite, error) {
	if i.CreatedAt.IsZero() {
		i.CreatedAt = time.Now()
	}

	ts, err := pg.ParseTime(pg.FormatTime(i.CreatedAt))
	if err != nil {
		return nil, err
	}

	i.CreatedAt = ts
	i.UpdatedAt = ts

	id, err := flake.NextID(flake.Namespace(ns, entity))
	if err != nil {
		return nil, err
	}

	i.ID = id

	var (
		params = []interface{}{
			i.ID,
			i.RoomID,
			string(i.Status),
			i.UserID,
			i.CreatedAt,
			i.UpdatedAt,
		}
		query = fmt.Sprintf(pgInsertInvite, ns)
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

	return i, nil
}

func (s *pgService) listInvites(
	ns, where string,
	params ...interface{},
) (List, error) {
	query := fmt.Sprintf(pgListInvites, ns, where)

	rows, err := s.db.Query(query, params...)
	if err != nil {
		if pg.IsRelationNotFound(pg.WrapError(err)) {
			if err := s.Setup(ns); err != nil {
				return nil, err
			}

			return s.listInvites(ns, where, params...)
		}

		return nil, err
	}
	defer rows.Close()

	is := List{}

	for rows.Next() {
		var (
			invite = &Invite{}
			status string
		)

		err := rows.Scan(
			&invite.ID,
			&invite.RoomID,
			&status,
			&invite.UserID,
			&invite.CreatedAt,
			&invite.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		invite.Status = Status(status)
		invite.CreatedAt = invite.CreatedAt.UTC()
		invite.UpdatedAt = invite.UpdatedAt.UTC()

		is = append(is, invite)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return is, nil
}

func (s *pgService) update(ns string, i *Invite) (*Invite, error) {
	stored, err := s.Query(ns, QueryOptions{IDs: []uint64{i.ID}})
	if err != nil {
		return nil, err
	}

	if len(stored) != 1 {
		return nil, wrapError(ErrInvalidInvite, "invite %d not found", i.ID)
	}

	now, err := pg.ParseTime(pg.FormatTime(time.Now()))
	if err != nil {
		return nil, err
	}

	i.CreatedAt = stored[0].CreatedAt
	i.UpdatedAt = now

	var (
		params = []interface{}{
			i.ID,
			string(i.Status),
			i.UpdatedAt,
		}
		query = fmt.Sprintf(pgUpdateInvite, ns)
	)

	if _, err := s.db.Exec(query, params...); err != nil {
		return nil, err
	}

	return i, nil
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
		clause, ps, err := inClause(pgClauseIDs, opts.IDs)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if len(opts.RoomIDs) > 0 {
		clause, ps, err := inClause(pgClauseRoomIDs, opts.RoomIDs)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if len(opts.Statuses) > 0 {
		ps := []interface{}{}

		for _, s := range opts.Statuses {
			ps = append(ps, string(s))
		}

		clause, _, err := sqlx.In(pgClauseStatuses, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if len(opts.UserIDs) > 0 {
		clause, ps, err := inClause(pgClauseUserIDs, opts.UserIDs)
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

func inClause(clause string, ids []uint64) (string, []interface{}, error) {
	ps := []interface{}{}

	for _, id := range ids {
		ps = append(ps, id)
	}

	c, _, err := sqlx.In(clause, ps)
	if err != nil {
		return "", nil, err
	}

	return c, ps, nil
}
