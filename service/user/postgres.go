package user

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/DRLee98/random-chat-backend-sub000/platform/flake"
	"github.com/DRLee98/random-chat-backend-sub000/platform/pg"
)

const (
	pgInsertUser = `INSERT INTO %s.users(json_data) VALUES($1)`
	pgUpdateUser = `
		UPDATE
			%s.users
		SET
			json_data = $1
		WHERE
			(json_data->>'id')::BIGINT = $2::BIGINT`

	pgClauseChatEnabled = `(json_data->>'chat_enabled')::BOOL = ?::BOOL`
	pgClauseDeleted     = `(json_data->>'deleted')::BOOL = ?::BOOL`
	pgClauseEnabled     = `(json_data->>'enabled')::BOOL = ?::BOOL`
	pgClauseExcludeIDs  = `(json_data->>'id')::BIGINT NOT IN (?)`
	pgClauseIDs         = `(json_data->>'id')::BIGINT IN (?)`
	pgClauseUsernames   = `lower(json_data->>'user_name') IN (?)`

	pgOrderCreatedAt = `ORDER BY json_data->>'created_at' DESC, (json_data->>'id')::BIGINT DESC`

	pgCountUsers = `SELECT count(json_data) FROM %s.users
		%s`
	pgListUsers = `SELECT json_data FROM %s.users
		%s`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.users (
		json_data JSONB NOT NULL
	)`
	pgDropTable = `DROP TABLE IF EXISTS %s.users`

	pgIndexID = `
		CREATE INDEX
			%s
		ON
			%s.users(((json_data->>'id')::BIGINT))
		WHERE
			(json_data->>'enabled')::BOOL = true`
	pgIndexChatEnabled = `
		CREATE INDEX
			%s
		ON
			%s.users(((json_data->>'id')::BIGINT))
		WHERE
			(json_data->>'enabled')::BOOL = true
			AND (json_data->>'chat_enabled')::BOOL = true`
	pgIndexUsername = `
		CREATE UNIQUE INDEX
			%s
		ON
			%s.users((lower(json_data->>'user_name')))
		WHERE
			(json_data->>'enabled')::BOOL = true`
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
		query = fmt.Sprintf(pgCountUsers, ns, where)
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

func (s *pgService) Put(ns string, user *User) (*User, error) {
	var (
		query = pgInsertUser

		params []interface{}
	)

	if err := user.Validate(); err != nil {
		return nil, err
	}

	now, err := pg.ParseTime(pg.FormatTime(time.Now()))
	if err != nil {
		return nil, err
	}

	if user.ID != 0 {
		params = []interface{}{
			user.ID,
		}

		us, err := s.Query(ns, QueryOptions{
			IDs: []uint64{
				user.ID,
			},
		})
		if err != nil {
			return nil, err
		}

		if len(us) == 0 {
			return nil, wrapError(ErrNotFound, "%d", user.ID)
		}

		user.CreatedAt = us[0].CreatedAt
		query = pgUpdateUser
	} else {
		id, err := flake.NextID(flake.Namespace(ns, entity))
		if err != nil {
			return nil, err
		}

		if user.CreatedAt.IsZero() {
			user.CreatedAt = now
		}

		user.CreatedAt, err = pg.ParseTime(pg.FormatTime(user.CreatedAt))
		if err != nil {
			return nil, err
		}

		user.ID = id
	}

	user.UpdatedAt = now

	data, err := json.Marshal(user)
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
		if pg.IsUniqueViolation(pg.WrapError(err)) {
			return nil, wrapError(ErrNotUnique, "%s", user.Username)
		}

		return nil, err
	}

	return user, nil
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts, true)
	if err != nil {
		return nil, err
	}

	return s.listUsers(ns, where, params...)
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		fmt.Sprintf(pgCreateSchema, ns),
		fmt.Sprintf(pgCreateTable, ns),
		pg.GuardIndex(ns, "user_id", pgIndexID),
		pg.GuardIndex(ns, "user_chat_enabled", pgIndexChatEnabled),
		pg.GuardIndex(ns, "user_username", pgIndexUsername),
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

func (s *pgService) listUsers(
	ns, where string,
	params ...interface{},
) (List, error) {
	query := fmt.Sprintf(pgListUsers, ns, where)

	rows, err := s.db.Query(query, params...)
	if err != nil {
		if pg.IsRelationNotFound(pg.WrapError(err)) {
			if err := s.Setup(ns); err != nil {
				return nil, err
			}

			return s.listUsers(ns, where, params...)
		}

		return nil, err
	}
	defer rows.Close()

	us := List{}

	for rows.Next() {
		var (
			user = &User{}

			raw []byte
		)

		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}

		if err := json.Unmarshal(raw, user); err != nil {
			return nil, err
		}

		user.CreatedAt = user.CreatedAt.UTC()
		user.UpdatedAt = user.UpdatedAt.UTC()

		us = append(us, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return us, nil
}

func convertOpts(opts QueryOptions, order bool) (string, []interface{}, error) {
	var (
		clauses = []string{}
		params  = []interface{}{}
	)

	for _, c := range []struct {
		clause string
		value  *bool
	}{
		{pgClauseChatEnabled, opts.ChatEnabled},
		{pgClauseDeleted, opts.Deleted},
		{pgClauseEnabled, opts.Enabled},
	} {
		if c.value == nil {
			continue
		}

		clauses = append(clauses, c.clause)
		params = append(params, *c.value)
	}

	for _, c := range []struct {
		clause string
		ids    []uint64
	}{
		{pgClauseExcludeIDs, opts.ExcludeIDs},
		{pgClauseIDs, opts.IDs},
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

	if len(opts.Usernames) > 0 {
		ps := []interface{}{}

		for _, name := range opts.Usernames {
			ps = append(ps, strings.ToLower(name))
		}

		clause, _, err := sqlx.In(pgClauseUsernames, ps)
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
