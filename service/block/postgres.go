package block

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/DRLee98/random-chat-backend-sub000/platform/pg"
)

const (
	pgInsertBlock = `INSERT INTO %s.blocks(json_data) VALUES($1)`
	pgUpdateBlock = `UPDATE %s.blocks
		SET json_data = $3
		WHERE (json_data->>'user_from_id')::BIGINT = $1::BIGINT
		AND (json_data->>'user_to_id')::BIGINT = $2::BIGINT`

	pgCountBlocks = `SELECT count(json_data) FROM %s.blocks
		%s`
	pgListBlocks = `SELECT json_data FROM %s.blocks
		%s`

	pgClauseEnabled = `(json_data->>'enabled')::BOOL = ?::BOOL`
	pgClauseFromIDs = `(json_data->>'user_from_id')::BIGINT IN (?)`
	pgClauseToIDs   = `(json_data->>'user_to_id')::BIGINT IN (?)`

	pgOrderUpdatedAt = `ORDER BY json_data->>'updated_at' DESC`

	pgIndexRelation = `
		CREATE UNIQUE INDEX
			%s
		ON
			%s.blocks(((json_data->>'user_from_id')::BIGINT), ((json_data->>'user_to_id')::BIGINT))`
	pgIndexTarget = `
		CREATE INDEX
			%s
		ON
			%s.blocks(((json_data->>'user_to_id')::BIGINT))
		WHERE
			(json_data->>'enabled')::BOOL = true`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.blocks
		(json_data JSONB NOT NULL)`
	pgDropTable = `DROP TABLE IF EXISTS %s.blocks`
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
		query = fmt.Sprintf(pgCountBlocks, ns, where)
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

func (s *pgService) Put(ns string, b *Block) (*Block, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	now, err := pg.ParseTime(pg.FormatTime(time.Now()))
	if err != nil {
		return nil, err
	}

	var (
		params = []interface{}{b.FromID, b.ToID}
		query  = pgUpdateBlock
	)

	bs, err := s.Query(ns, QueryOptions{
		FromIDs: []uint64{
			b.FromID,
		},
		ToIDs: []uint64{
			b.ToID,
		},
	})
	if err != nil {
		return nil, err
	}

	if len(bs) > 0 {
		b.CreatedAt = bs[0].CreatedAt
	} else {
		params = []interface{}{}
		query = pgInsertBlock

		b.CreatedAt = now
	}

	b.UpdatedAt = now

	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(fmt.Sprintf(query, ns), append(params, data)...)
	if err != nil {
		return nil, err
	}

	return b, nil
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts, true)
	if err != nil {
		return nil, err
	}

	return s.listBlocks(ns, where, params...)
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		fmt.Sprintf(pgCreateSchema, ns),
		fmt.Sprintf(pgCreateTable, ns),
		pg.GuardIndex(ns, "block_relation", pgIndexRelation),
		pg.GuardIndex(ns, "block_target", pgIndexTarget),
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

func (s *pgService) listBlocks(
	ns, where string,
	params ...interface{},
) (List, error) {
	query := fmt.Sprintf(pgListBlocks, ns, where)

	rows, err := s.db.Query(query, params...)
	if err != nil {
		if pg.IsRelationNotFound(pg.WrapError(err)) {
			if err := s.Setup(ns); err != nil {
				return nil, err
			}

			return s.listBlocks(ns, where, params...)
		}

		return nil, err
	}
	defer rows.Close()

	bs := List{}

	for rows.Next() {
		var (
			b = &Block{}

			raw []byte
		)

		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}

		if err := json.Unmarshal(raw, b); err != nil {
			return nil, err
		}

		b.CreatedAt = b.CreatedAt.UTC()
		b.UpdatedAt = b.UpdatedAt.UTC()

		bs = append(bs, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bs, nil
}

func convertOpts(opts QueryOptions, order bool) (string, []interface{}, error) {
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
		ids    []uint64
	}{
		{pgClauseFromIDs, opts.FromIDs},
		{pgClauseToIDs, opts.ToIDs},
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
		where = fmt.Sprintf("%s\n%s", where, pgOrderUpdatedAt)
	}

	if opts.Limit > 0 {
		where = fmt.Sprintf("%s\nLIMIT %d", where, opts.Limit)
	}

	return where, params, nil
}
