package store

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-trip-keeper/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func buildUpsertCollectionQuery(userID int64, c models.Collection) (string, []any, error) {
	query, args, err := psql.
		Insert("collections").
		Columns("user_id", "collection").
		Values(userID, string(c)).
		Suffix("ON CONFLICT (user_id, collection) DO UPDATE SET updated_at = now()").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildDeleteCollectionEntitiesQuery(userID int64, c models.Collection) (string, []any, error) {
	query, args, err := psql.
		Delete("entities").
		Where(sq.And{
			sq.Eq{"user_id": userID},
			sq.Eq{"collection": string(c)},
		}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// maxInsertRows bounds one multi-row insert. Postgres accepts at most 65535
// bind parameters per statement and every row takes five.
const maxInsertRows = 1000

func buildInsertEntitiesQuery(userID int64, c models.Collection, rows []entityRow) (string, []any, error) {
	insert := psql.
		Insert("entities").
		Columns("user_id", "collection", "entity_id", "position", "data")
	for _, row := range rows {
		insert = insert.Values(userID, string(c), row.EntityID, row.Position, row.Data)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildSelectCollectionsQuery(userID int64) (string, []any, error) {
	query, args, err := psql.
		Select("collection").
		From("collections").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildSelectEntitiesQuery(userID int64) (string, []any, error) {
	query, args, err := psql.
		Select("collection", "entity_id", "position", "data").
		From("entities").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("collection", "position").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildDeleteEntitiesQuery(userID int64, c models.Collection, ids []string) (string, []any, error) {
	query, args, err := psql.
		Delete("entities").
		Where(sq.And{
			sq.Eq{"user_id": userID},
			sq.Eq{"collection": string(c)},
			sq.Eq{"entity_id": ids},
		}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}
