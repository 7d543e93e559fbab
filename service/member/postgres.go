package member

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/DRLee98/random-chat-backend-sub000/platform/flake"
	"github.com/DRLee98/random-chat-backend-sub000/platform/pg"
)

const (
	pgDeleteMembers = `DELETE FROM %s.members
		%s`
	pgInsertMember = `INSERT INTO
		%s.members(id, room_id, user_id, display_name, noti_enabled, pinned_at, unread_count, created_at, updated_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	pgUpdateMember = `
		UPDATE
			%s.members
		SET
			display_name = $2,
			noti_enabled = $3,
			pinned_at = $4,
			unread_count = $5,
			updated_at = $6
		WHERE
			id = $1`

	pgClauseIDs     = `id IN (?)`
	pgClauseRoomIDs = `room_id IN (?)`
	pgClauseUserIDs = `user_id IN (?)`

	pgListMembers = `
		SELECT
			id, room_id, user_id, display_name, noti_enabled, pinned_at, unread_count, created_at, updated_at
		FROM
			%s.members
		%s`

	pgOrderPinned = `ORDER BY pinned_at DESC NULLS LAST, created_at DESC, id DESC`

	pgIndexRoomUser = `CREATE UNIQUE INDEX %s ON %s.members(room_id, user_id)`
	pgIndexUser     = `CREATE INDEX %s ON %s.members(user_id)`

	pgCreateScheme = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.members(
		id BIGINT NOT NULL UNIQUE,
		room_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		display_name TEXT NOT NULL,
		noti_enabled BOOL NOT NULL DEFAULT true,
		pinned_at TIMESTAMP,
		unread_count INT NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`
	pgDropTable = `DROP TABLE IF EXISTS %s.members`
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

	_, err = s.db.Exec(fmt.Sprintf(pgDeleteMembers, ns, where), params...)
	if err != nil && pg.IsRelationNotFound(pg.WrapError(err)) {
		return s.Setup(ns)
	}

	return err
}

func (s *pgService) Put(ns string, m *Member) (*Member, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	if m.ID == 0 {
		return s.insert(ns, m)
	}

	return s.update(ns, m)
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts, true)
	if err != nil {
		return nil, err
	}

	return s.listMembers(ns, where, params...)
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		fmt.Sprintf(pgCreateScheme, ns),
		fmt.Sprintf(pgCreateTable, ns),
		pg.GuardIndex(ns, "member_room_user", pgIndexRoomUser),
		pg.GuardIndex(ns, "member_user", pgIndexUser),
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

func (s *pgService) insert(ns string, m *Member) (*Member, error) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	ts, err := pg.ParseTime(pg.FormatTime(m.CreatedAt))
	if err != nil {
		return nil, err
	}

	m.CreatedAt = ts
	m.UpdatedAt = ts

	if err := normalisePinned(m); err != nil {
		return nil, err
	}

	id, err := flake.NextID(flake.Namespace(ns, entity))
	if err != nil {
		return nil, err
	}

	m.ID = id

	var (
		params = []interface{}{
			m.ID,
			m.RoomID,
			m.UserID,
			m.DisplayName,
			m.NotiEnabled,
			m.PinnedAt,
			m.UnreadCount,
			m.CreatedAt,
			m.UpdatedAt,
		}
		query = fmt.Sprintf(pgInsertMember, ns)
	)

	_, err = s.db.Exec(query, params...)
	if err != nil && pg.IsRelationNotFound(pg.WrapError(err)) {
		if err := s.Setup(ns); err != nil {
			return nil, err
		}

		_, err = s.db.Exec(query, params...)
	}
	if err != nil {
		if pg.IsUniqueViolation(pg.WrapError(err)) {
			return nil, wrapError(ErrMemberExists, "user %d in room %d", m.UserID, m.RoomID)
		}

		return nil, err
	}

	return m, nil
}

func (s *pgService) listMembers(
	ns, where string,
	params ...interface{},
) (List, error) {
	query := fmt.Sprintf(pgListMembers, ns, where)

	rows, err := s.db.Query(query, params...)
	if err != nil {
		if pg.IsRelationNotFound(pg.WrapError(err)) {
			if err := s.Setup(ns); err != nil {
				return nil, err
			}

			return s.listMembers(ns, where, params...)
		}

		return nil, err
	}
	defer rows.Close()

	ms := List{}

	for rows.Next() {
		m := &Member{}

		err := rows.Scan(
			&m.ID,
			&m.RoomID,
			&m.UserID,
			&m.DisplayName,
			&m.NotiEnabled,
			&m.PinnedAt,
			&m.UnreadCount,
			&m.CreatedAt,
			&m.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		if m.PinnedAt != nil {
			pinned := m.PinnedAt.UTC()
			m.PinnedAt = &pinned
		}

		m.CreatedAt = m.CreatedAt.UTC()
		m.UpdatedAt = m.UpdatedAt.UTC()

		ms = append(ms, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ms, nil
}

func (s *pgService) update(ns string, m *Member) (*Member, error) {
	stored, err := s.Query(ns, QueryOptions{IDs: []uint64{m.ID}})
	if err != nil {
		return nil, err
	}

	if len(stored) != 1 {
		return nil, wrapError(ErrInvalidMember, "member %d not found", m.ID)
	}

	now, err := pg.ParseTime(pg.FormatTime(time.Now()))
	if err != nil {
		return nil, err
	}

	if err := normalisePinned(m); err != nil {
		return nil, err
	}

	m.CreatedAt = stored[0].CreatedAt
	m.RoomID = stored[0].RoomID
	m.UserID = stored[0].UserID
	m.UpdatedAt = now

	var (
		params = []interface{}{
			m.ID,
			m.DisplayName,
			m.NotiEnabled,
			m.PinnedAt,
			m.UnreadCount,
			m.UpdatedAt,
		}
		query = fmt.Sprintf(pgUpdateMember, ns)
	)

	if _, err := s.db.Exec(query, params...); err != nil {
		return nil, err
	}

	return m, nil
}

func normalisePinned(m *Member) error {
	if m.PinnedAt == nil {
		return nil
	}

	pinned, err := pg.ParseTime(pg.FormatTime(*m.PinnedAt))
	if err != nil {
		return err
	}

	m.PinnedAt = &pinned

	return nil
}

func convertOpts(opts QueryOptions, order bool) (string, []interface{}, error) {
	var (
		clauses = []string{}
		params  = []interface{}{}
	)

	for _, c := range []struct {
		clause string
		ids    []uint64
	}{
		{pgClauseIDs, opts.IDs},
		{pgClauseRoomIDs, opts.RoomIDs},
		{pgClauseUserIDs, opts.UserIDs},
	} {
		if len(c.ids) == 0 {
			continue
		}

		ps := []interface{}{}

		for _, id := range c.ids {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(c.clause, ps)
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
		where = fmt.Sprintf("%s\n%s", where, pgOrderPinned)
	}

	if opts.Limit > 0 {
		where = fmt.Sprintf("%s\nLIMIT %d", where, opts.Limit)
	}

	return where, params, nil
}
