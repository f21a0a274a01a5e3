package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	"github.com/hpungsan/clipstash/internal/clip"
	"github.com/hpungsan/clipstash/internal/errors"
)

const selectColumns = `SELECT id, content, timestamp, isPinned, folder FROM clips`

// listOrder puts pinned clips first, newest first within each group.
// id breaks ties between clips captured in the same millisecond.
const listOrder = ` ORDER BY isPinned DESC, timestamp DESC, id DESC`

// CountExact returns how many clips have content exactly equal to content.
func CountExact(ctx context.Context, q Querier, content string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM clips WHERE content = ?`, content).Scan(&n)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// Insert stores c as a new row and sets c.ID to the assigned id.
// It performs no duplicate check; see InsertIfAbsent.
func Insert(ctx context.Context, q Querier, c *clip.Clip) error {
	folder := c.Folder
	if folder == "" {
		folder = clip.DefaultFolder
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO clips (content, timestamp, isPinned, folder) VALUES (?, ?, ?, ?)`,
		c.Content, c.Timestamp, c.IsPinned, folder,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.NewInternal(err)
	}
	c.ID = id
	c.Folder = folder
	return nil
}

// InsertIfAbsent inserts a clip with the given content and timestamp unless a
// clip with exactly the same content already exists. The check and the
// insert share one transaction. Returns the new clip, or nil when nothing
// was inserted.
func InsertIfAbsent(ctx context.Context, database *sql.DB, content string, timestamp int64) (*clip.Clip, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback()

	n, err := CountExact(ctx, tx, content)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, nil
	}

	c := clip.New(content, timestamp)
	if err := Insert(ctx, tx, &c); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return &c, nil
}

// GetByID retrieves a clip by id.
func GetByID(ctx context.Context, q Querier, id int64) (*clip.Clip, error) {
	row := q.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	c, err := scanClip(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return c, nil
}

// Update writes the mutable fields (content, isPinned, folder) of c to the
// row with the same id. id and timestamp are never written. Reports whether
// a row matched; a missing id is not an error.
func Update(ctx context.Context, q Querier, c clip.Clip) (bool, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE clips SET content = ?, isPinned = ?, folder = ? WHERE id = ?`,
		c.Content, c.IsPinned, c.Folder, c.ID,
	)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return affected(result)
}

// Delete removes the clip with the given id. Reports whether a row was
// removed; a missing id is not an error.
func Delete(ctx context.Context, q Querier, id int64) (bool, error) {
	result, err := q.ExecContext(ctx, `DELETE FROM clips WHERE id = ?`, id)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return affected(result)
}

// Search returns clips whose content contains substring. Matching follows
// SQLite LIKE: ASCII letters ignore case, other characters match exactly,
// and % and _ in substring are literal. An empty substring matches every clip.
func Search(ctx context.Context, q Querier, substring string) ([]clip.Clip, error) {
	rows, err := q.QueryContext(ctx,
		selectColumns+` WHERE ? = '' OR content LIKE '%' || ? || '%' ESCAPE '\'`+listOrder,
		substring, escapeLike(substring),
	)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return collect(rows)
}

// likeEscaper escapes LIKE metacharacters for use with ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ListByFolder returns clips whose folder equals folder exactly.
func ListByFolder(ctx context.Context, q Querier, folder string) ([]clip.Clip, error) {
	rows, err := q.QueryContext(ctx, selectColumns+` WHERE folder = ?`+listOrder, folder)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return collect(rows)
}

// DistinctFolders returns every folder value in use, each once, in no
// particular order.
func DistinctFolders(ctx context.Context, q Querier) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT DISTINCT folder FROM clips`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	folders := []string{}
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, errors.NewInternal(err)
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return folders, nil
}

// Count returns the total number of clips.
func Count(ctx context.Context, q Querier) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM clips`).Scan(&n); err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanClip scans a single row into a Clip.
func scanClip(row scanner) (*clip.Clip, error) {
	var c clip.Clip
	if err := row.Scan(&c.ID, &c.Content, &c.Timestamp, &c.IsPinned, &c.Folder); err != nil {
		return nil, err
	}
	return &c, nil
}

// collect drains rows into a non-nil slice and closes them.
func collect(rows *sql.Rows) ([]clip.Clip, error) {
	defer rows.Close()

	clips := []clip.Clip{}
	for rows.Next() {
		c, err := scanClip(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		clips = append(clips, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return clips, nil
}

func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return n > 0, nil
}
