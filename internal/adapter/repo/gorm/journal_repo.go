package gormrepo

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"outpost/internal/adapter/repo/gorm/model"
	"outpost/internal/app/ports"
)

type JournalRepo struct {
	db *gorm.DB
}

func NewJournalRepo(db *gorm.DB) JournalRepo {
	return JournalRepo{db: db}
}

func (r JournalRepo) Append(ctx context.Context, events []ports.Event) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]model.JournalEvent, 0, len(events))
	for _, e := range events {
		b, _ := json.Marshal(e.Payload)
		rows = append(rows, model.JournalEvent{
			Seq:        e.Seq,
			Topic:      e.Topic,
			PersonID:   e.PersonID,
			OccurredAt: e.OccurredAt.UTC(),
			Payload:    b,
		})
	}
	return dbFrom(ctx, r.db).Create(&rows).Error
}

// List returns matching events oldest first; Limit keeps the newest ones.
func (r JournalRepo) List(ctx context.Context, q ports.JournalQuery) ([]ports.Event, error) {
	rows := []model.JournalEvent{}
	query := dbFrom(ctx, r.db).Model(&model.JournalEvent{})
	if q.PersonID != "" {
		query = query.Where("person_id = ?", q.PersonID)
	}
	if q.Topic != "" {
		query = query.Where("topic = ?", q.Topic)
	}
	if !q.Since.IsZero() {
		query = query.Where("occurred_at >= ?", q.Since.UTC())
	}
	query = query.Clauses(clause.OrderBy{
		Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "id"}, Desc: true}},
	})
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]ports.Event, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		payload := map[string]any{}
		if len(row.Payload) > 0 {
			_ = json.Unmarshal(row.Payload, &payload)
		}
		out = append(out, ports.Event{
			Seq:        row.Seq,
			Topic:      row.Topic,
			OccurredAt: row.OccurredAt,
			PersonID:   row.PersonID,
			Payload:    payload,
		})
	}
	return out, nil
}
