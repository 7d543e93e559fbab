package notification

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/DRLee98/random-chat-backend-sub000/platform/flake"
	"github.com/DRLee98/random-chat-backend-sub000/platform/pg"
)

const (
	pgInsertNotification = `INSERT INTO %s.notifications(json_data) VALUES($1)`
	pgUpdateNotification = `
		UPDATE
			%s.notifications
		SET
			json_data = $1
		WHERE
			(json_data->>'id')::BIGINT = $2::BIGINT`

	pgClauseBefore  = `(json_data->>'created_at')::TIMESTAMPTZ < ?`
	pgClauseIDs     = `(json_data->>'id')::BIGINT IN (?)`
	pgClauseRead    = `(json_data->>'read')::BOOL = ?::BOOL`
	pgClauseUserIDs = `(json_data->>'user_id')::BIGINT IN (?)`

	pgOrderCreatedAt = `ORDER BY (json_data->>'created_at')::TIMESTAMPTZ DESC, (json_data->>'id')::BIGINT DESC`

	pgCountNotifications = `SELECT count(json_data) FROM %s.notifications
		%s`
	pgListNotifications = `SELECT json_data FROM %s.notifications
		%s`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.notifications (
		json_data JSONB NOT NULL
	)`
	pgDropTable = `DROP TABLE IF EXISTS %s.notifications`

	pgIndexID = `
		CREATE INDEX
			%s
		ON
			%s.notifications(((json_data->>'id')::BIGINT))`
	pgIndexUserUnread = `
		CREATE INDEX
			%s
		ON
			%s.notifications(((json_data->>'user_id')::BIGINT))
		WHERE
			(json_data->>'read')::BOOL = false`
)

type pgService struct {
	db *sqlx.DB
}

// PostgresService returns a Postgres based Service implementation.
func PostgresService(db *sqlx.DB) Service {
	return &pgService{db: db}
}

func (s *pgService) Count(ns string, opts QueryOptions) (int, error) {
	opts.Limit = 0

	where, params, err := convertOpts(opts, false)
	if err != nil {
		return 0, err
	}

	var (
		count = 0
		query = fmt.Sprintf(pgCountNotifications, ns, where)
	)

	err = s.db.Get(&count, query, params...)
	if err != nil && pg.IsRelationNotFound(pg.WrapError(err)) {
		if err := s.Setup(ns); err != nil {
			return 0, err
		}

		err = s.db.Get(&count, query, params...)
	}

	return count, err
}

func (s *pgService) Put(ns string, n *Notification) (*Notification, error) {
	var (
		query = pgInsertNotification

		params []interface{}
	)

	if err := n.Validate(); err != nil {
		return nil, err
	}

	now, err := pg.ParseTime(pg.FormatTime(time.Now()))
	if err != nil {
		return nil, err
	}

	if n.ID != 0 {
		list, err := s.Query(ns, QueryOptions{
			IDs: []uint64{
				n.ID,
			},
		})
		if err != nil {
			return nil, err
		}

		if len(list) == 0 {
			return nil, wrapError(ErrNotFound, "%d", n.ID)
		}

		n.CreatedAt = list[0].CreatedAt

		params = []interface{}{n.ID}
		query = pgUpdateNotification
	} else {
		id, err := flake.NextID(flake.Namespace(ns, entity))
		if err != nil {
			return nil, err
		}

		n.ID = id
		n.CreatedAt = now
	}

	n.UpdatedAt = now

	data, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}

	params = append([]interface{}{data}, params...)

	_, err = s.db.Exec(fmt.Sprintf(query, ns), params...)
	if err != nil && pg.IsRelationNotFound(pg.WrapError(err)) {
		if err := s.Setup(ns); err != nil {
			return nil, err
		}

		_, err = s.db.Exec(fmt.Sprintf(query, ns), params...)
	}
	if err != nil {
		return nil, err
	}

	return n, nil
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts, true)
	if err != nil {
		return nil, err
	}

	return s.listNotifications(ns, where, params...)
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		fmt.Sprintf(pgCreateSchema, ns),
		fmt.Sprintf(pgCreateTable, ns),
		pg.GuardIndex(ns, "notification_id", pgIndexID),
		pg.GuardIndex(ns, "notification_user_unread", pgIndexUserUnread),
	}

	for _, query := range qs {
		_, err := s.db.Exec(query)
		if err != nil {
			return fmt.Errorf("setup '%s': %s", query, err)
		}
	}

	return nil
}

func (s *pgService) Teardown(ns string) error {
	_, err := s.db.Exec(fmt.Sprintf(pgDropTable, ns))
	return err
}

func (s *pgService) listNotifications(
	ns, where string,
	params ...interface{},
) (List, error) {
	query := fmt.Sprintf(pgListNotifications, ns, where)

	rows, err := s.db.Query(query, params...)
	if err != nil {
		if pg.IsRelationNotFound(pg.WrapError(err)) {
			if err := s.Setup(ns); err != nil {
				return nil, err
			}

			return s.listNotifications(ns, where, params...)
		}

		return nil, err
	}
	defer rows.Close()

	list := List{}

	for rows.Next() {
		var (
			n = &Notification{}

			raw []byte
		)

		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}

		if err := json.Unmarshal(raw, n); err != nil {
			return nil, err
		}

		n.CreatedAt = n.CreatedAt.UTC()
		n.UpdatedAt = n.UpdatedAt.UTC()

		list = append(list, n)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func convertOpts(opts QueryOptions, order bool) (string, []interface{}, error) {
	var (
		clauses = []string{}
		params  = []interface{}{}
	)

	if !opts.Before.IsZero() {
		clauses = append(clauses, pgClauseBefore)
		params = append(params, opts.Before.UTC())
	}

	if opts.Read != nil {
		clauses = append(clauses, pgClauseRead)
		params = append(params, *opts.Read)
	}

	for _, c := range []struct {
		clause string
		ids    []uint64
	}{
		{pgClauseIDs, opts.IDs},
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
		where = fmt.Sprintf("%s\n%s", where, pgOrderCreatedAt)
	}

	if opts.Limit > 0 {
		where = fmt.Sprintf("%s\nLIMIT %d", where, opts.Limit)
	}

	return where, params, nil
}
