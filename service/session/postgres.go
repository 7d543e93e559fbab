package session

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/DRLee98/random-chat-backend-sub000/platform/pg"
)

const (
	pgInsertSession = `INSERT INTO
		%s.sessions(user_id, session_id, created_at, enabled, device_id)
		VALUES($1, $2, $3, $4, $5)`
	pgUpdateSession = `
		UPDATE
			%s.sessions
		SET
			enabled = $3
		WHERE
			user_id = $1 AND
			session_id = $2`

	pgClauseDeviceIDs = `device_id IN (?)`
	pgClauseEnabled   = `enabled = ?`
	pgClauseIDs       = `session_id IN (?)`
	pgClauseUserIDs   = `user_id IN (?)`

	pgOrderCreatedAt = `ORDER BY created_at DESC`

	pgListSessions = `
		SELECT
			user_id, session_id, created_at, enabled, device_id
		FROM
			%s.sessions
		%s`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.sessions (
		user_id BIGINT NOT NULL,
		session_id VARCHAR(40) NOT NULL,
		created_at TIMESTAMP DEFAULT now() NOT NULL,
		enabled BOOL DEFAULT TRUE NOT NULL,
		device_id VARCHAR(255)
	)`
	pgDropTable = `DROP TABLE IF EXISTS %s.sessions`

	pgIndexDeviceIDUserID = `
		CREATE INDEX
			%s
		ON
			%s.sessions (device_id, user_id)
		WHERE
			enabled = true`
	pgIndexID = `
		CREATE UNIQUE INDEX
			%s
		ON
			%s.sessions (session_id)`
)

type pgService struct {
	db *sqlx.DB
}

// PostgresService returns a Postgres based Service implementation.
func PostgresService(db *sqlx.DB) Service {
	return &pgService{db: db}
}

func (s *pgService) Put(ns string, session *Session) (*Session, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}

	var (
		params = []interface{}{
			session.UserID,
			session.ID,
			session.Enabled,
		}
		query = pgUpdateSession
	)

	if session.ID == "" {
		id, err := generateID()
		if err != nil {
			return nil, err
		}

		now, err := pg.ParseTime(pg.FormatTime(time.Now()))
		if err != nil {
			return nil, err
		}

		session.ID = id
		session.CreatedAt = now

		params = []interface{}{
			session.UserID,
			session.ID,
			session.CreatedAt,
			session.Enabled,
			session.DeviceID,
		}
		query = pgInsertSession
	} else {
		ss, err := s.Query(ns, QueryOptions{
			IDs: []string{
				session.ID,
			},
		})
		if err != nil {
			return nil, err
		}

		if len(ss) == 0 {
			return nil, wrapError(ErrNotFound, "%s", session.ID)
		}

		session.CreatedAt = ss[0].CreatedAt
	}

	query = fmt.Sprintf(query, ns)

	_, err := s.db.Exec(query, params...)
	if err != nil && pg.IsRelationNotFound(pg.WrapError(err)) {
		if err := s.Setup(ns); err != nil {
			return nil, err
		}

		_, err = s.db.Exec(query, params...)
	}
	if err != nil {
		return nil, err
	}

	return session, nil
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts)
	if err != nil {
		return nil, err
	}

	return s.listSessions(ns, where, params...)
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		fmt.Sprintf(pgCreateSchema, ns),
		fmt.Sprintf(pgCreateTable, ns),
		pg.GuardIndex(ns, "session_device_id_user_id", pgIndexDeviceIDUserID),
		pg.GuardIndex(ns, "session_id", pgIndexID),
	}

	for _, q := range qs {
		_, err := s.db.Exec(q)
		if err != nil {
			return fmt.Errorf("setup (%s): %s", q, err)
		}
	}

	return nil
}

func (s *pgService) Teardown(ns string) error {
	_, err := s.db.Exec(fmt.Sprintf(pgDropTable, ns))
	return err
}

func (s *pgService) listSessions(
	ns, where string,
	params ...interface{},
) (List, error) {
	query := fmt.Sprintf(pgListSessions, ns, where)

	rows, err := s.db.Query(query, params...)
	if err != nil {
		if pg.IsRelationNotFound(pg.WrapError(err)) {
			if err := s.Setup(ns); err != nil {
				return nil, err
			}

			return s.listSessions(ns, where, params...)
		}

		return nil, err
	}
	defer rows.Close()

	ss := List{}

	for rows.Next() {
		session := &Session{}

		err := rows.Scan(
			&session.UserID,
			&session.ID,
			&session.CreatedAt,
			&session.Enabled,
			&session.DeviceID,
		)
		if err != nil {
			return nil, err
		}

		session.CreatedAt = session.CreatedAt.UTC()

		ss = append(ss, session)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ss, nil
}

func convertOpts(opts QueryOptions) (string, []interface{}, error) {
	var (
		clauses = []string{}
		params  = []interface{}{}
	)

	if opts.Enabled != nil {
		clauses = append(clauses, pgClauseEnabled)
		params = append(params, *opts.Enabled)
	}

	for _, c := range []struct {
		clause string
		values []string
	}{
		{pgClauseDeviceIDs, opts.DeviceIDs},
		{pgClauseIDs, opts.IDs},
	} {
		if len(c.values) == 0 {
			continue
		}

		ps := []interface{}{}

		for _, v := range c.values {
			ps = append(ps, v)
		}

		clause, _, err := sqlx.In(c.clause, ps)
		if err != nil {
			return "", nil, err
		}

		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	if len(opts.UserIDs) > 0 {
		ps := []interface{}{}

		for _, id := range opts.UserIDs {
			ps = append(ps, id)
		}

		clause, _, err := sqlx.In(pgClauseUserIDs, ps)
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

	return fmt.Sprintf("%s\n%s", where, pgOrderCreatedAt), params, nil
}
