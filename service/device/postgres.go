package device

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/DRLee98/random-chat-backend-sub000/platform/flake"
	"github.com/DRLee98/random-chat-backend-sub000/platform/pg"
)

const (
	pgInsertDevice = `INSERT INTO
		%s.devices(deleted, device_id, disabled, endpoint_arn, id, language, platform, token, user_id, created_at, updated_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	pgUpdateDevice = `
		UPDATE
			%s.devices
		SET
			deleted = $2,
			device_id = $3,
			disabled = $4,
			endpoint_arn = $5,
			language = $6,
			token = $7,
			user_id = $8,
			updated_at = $9
		WHERE
			id = $1`

	pgListDevices = `
		SELECT
			deleted, device_id, disabled, endpoint_arn, id, language, platform, token, user_id, created_at, updated_at
		FROM
			%s.devices
		%s`

	pgClauseDeleted      = `deleted = ?`
	pgClauseDeviceIDs    = `device_id IN (?)`
	pgClauseDisabled     = `disabled = ?`
	pgClauseEndpointARNs = `endpoint_arn IN (?)`
	pgClauseIDs          = `id IN (?)`
	pgClausePlatforms    = `platform IN (?)`
	pgClauseTokens       = `token IN (?)`
	pgClauseUserIDs      = `user_id IN (?)`

	pgOrderCreatedAt = `ORDER BY created_at DESC, id DESC`

	pgIndexDeviceIDUserID = `
		CREATE INDEX
			%s
		ON
			%s.devices (device_id, user_id)
		WHERE
			deleted = false`
	pgIndexEndpointARN = `
		CREATE INDEX
			%s
		ON
			%s.devices(endpoint_arn)
		WHERE
			deleted = false`
	pgIndexID          = `CREATE INDEX %s ON %s.devices (id)`
	pgIndexUserDevices = `
		CREATE INDEX
			%s
		ON
			%s.devices(user_id)
		WHERE
			deleted = false
			AND disabled = false`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `CREATE TABLE IF NOT EXISTS %s.devices (
		deleted BOOL DEFAULT false,
		device_id TEXT NOT NULL,
		disabled BOOL DEFAULT false,
		endpoint_arn TEXT,
		id BIGINT NOT NULL,
		language TEXT NOT NULL,
		platform INT NOT NULL,
		token TEXT NOT NULL,
		user_id BIGINT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`
	pgDropTable = `DROP TABLE IF EXISTS %s.devices`
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

func (s *pgService) Put(ns string, d *Device) (*Device, error) {
	var (
		params []interface{}
		query  string
	)

	if err := d.Validate(); err != nil {
		return nil, err
	}

	now, err := pg.ParseTime(pg.FormatTime(time.Now()))
	if err != nil {
		return nil, err
	}

	if d.ID == 0 {
		id, err := flake.NextID(flake.Namespace(ns, entity))
		if err != nil {
			return nil, err
		}

		d.ID = id
		d.CreatedAt = now
		d.UpdatedAt = now

		params = []interface{}{
			d.Deleted,
			d.DeviceID,
			d.Disabled,
			d.EndpointARN,
			d.ID,
			d.Language,
			d.Platform,
			d.Token,
			d.UserID,
			d.CreatedAt,
			d.UpdatedAt,
		}
		query = pgInsertDevice
	} else {
		ds, err := s.Query(ns, QueryOptions{
			IDs: []uint64{
				d.ID,
			},
		})
		if err != nil {
			return nil, err
		}

		if len(ds) == 0 {
			return nil, wrapError(ErrNotFound, "%d", d.ID)
		}

		d.CreatedAt = ds[0].CreatedAt
		d.Platform = ds[0].Platform
		d.UpdatedAt = now

		params = []interface{}{
			d.ID,
			d.Deleted,
			d.DeviceID,
			d.Disabled,
			d.EndpointARN,
			d.Language,
			d.Token,
			d.UserID,
			d.UpdatedAt,
		}
		query = pgUpdateDevice
	}

	query = fmt.Sprintf(query, ns)

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

	return d, nil
}

func (s *pgService) Query(ns string, opts QueryOptions) (List, error) {
	where, params, err := convertOpts(opts)
	if err != nil {
		return nil, err
	}

	return s.listDevices(ns, where, params...)
}

func (s *pgService) Setup(ns string) error {
	qs := []string{
		fmt.Sprintf(pgCreateSchema, ns),
		fmt.Sprintf(pgCreateTable, ns),
		pg.GuardIndex(ns, "device_device_id_user_id", pgIndexDeviceIDUserID),
		pg.GuardIndex(ns, "device_endpoint_arn", pgIndexEndpointARN),
		pg.GuardIndex(ns, "device_id", pgIndexID),
		pg.GuardIndex(ns, "device_user_devices", pgIndexUserDevices),
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

func (s *pgService) listDevices(
	ns, where string,
	params ...interface{},
) (List, error) {
	query := fmt.Sprintf(pgListDevices, ns, where)

	rows, err := s.db.Query(query, params...)
	if err != nil {
		if pg.IsRelationNotFound(pg.WrapError(err)) {
			if err := s.Setup(ns); err != nil {
				return nil, err
			}

			return s.listDevices(ns, where, params...)
		}

		return nil, err
	}
	defer rows.Close()

	ds := List{}

	for rows.Next() {
		d := &Device{}

		err := rows.Scan(
			&d.Deleted,
			&d.DeviceID,
			&d.Disabled,
			&d.EndpointARN,
			&d.ID,
			&d.Language,
			&d.Platform,
			&d.Token,
			&d.UserID,
			&d.CreatedAt,
			&d.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		d.CreatedAt = d.CreatedAt.UTC()
		d.UpdatedAt = d.UpdatedAt.UTC()

		ds = append(ds, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ds, nil
}

func convertOpts(opts QueryOptions) (string, []interface{}, error) {
	var (
		clauses = []string{}
		params  = []interface{}{}
	)

	for _, c := range []struct {
		clause string
		value  *bool
	}{
		{pgClauseDeleted, opts.Deleted},
		{pgClauseDisabled, opts.Disabled},
	} {
		if c.value == nil {
			continue
		}

		clauses = append(clauses, c.clause)
		params = append(params, *c.value)
	}

	for _, c := range []struct {
		clause string
		values []string
	}{
		{pgClauseDeviceIDs, opts.DeviceIDs},
		{pgClauseEndpointARNs, opts.EndpointARNs},
		{pgClauseTokens, opts.Tokens},
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

	if len(opts.Platforms) > 0 {
		ps := []interface{}{}

		for _, p := range opts.Platforms {
			ps = append(ps, int(p))
		}

		clause, _, err := sqlx.In(pgClausePlatforms, ps)
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
