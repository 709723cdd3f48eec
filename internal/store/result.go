package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// resultRepo implements ResultRepo.
type resultRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

var resultColumns = []string{
	"id", "sequence", "timestamp", "session_id", "category", "nickname",
	"score", "total_questions", "user_answers",
}

func (r *resultRepo) Save(ctx context.Context, data ResultData) (string, error) {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return "", fmt.Errorf("next sequence: %w", err)
	}

	answers := data.UserAnswers
	if len(answers) == 0 {
		answers = json.RawMessage(`{}`)
	}

	id := uuid.NewString()
	query, args := builder().Insert(ResultsTable.Name).
		Columns(resultColumns...).
		Values(
			id, seqNum, time.Now().UTC(), data.SessionID, data.Category, data.Nickname,
			data.Score, data.TotalQuestions, string(answers),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("save result: %w", err)
	}
	return id, nil
}

func (r *resultRepo) List(ctx context.Context, opts QueryOpts) ([]ResultRecord, error) {
	sel := builder().Select(resultColumns...).
		From(entsql.Table(ResultsTable.Name)).
		OrderBy(entsql.Desc("sequence"))

	if preds := sequencePredicates(opts); len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Category != "" {
		sel.Where(entsql.EQ("category", opts.Category))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []ResultRecord
	for rows.Next() {
		var rec ResultRecord
		var answers string
		if err := rows.Scan(
			&rec.ID, &rec.Sequence, &rec.Timestamp, &rec.SessionID, &rec.Category, &rec.Nickname,
			&rec.Score, &rec.TotalQuestions, &answers,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		rec.UserAnswers = json.RawMessage(answers)
		out = append(out, rec)
	}
	return out, rows.Err()
}
