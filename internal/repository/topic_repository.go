package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/counseling-api/internal/models"
)

const topicColumns = "id, name, admin_id, created_at, updated_at"

// TopicRepository manages counseling topics.
type TopicRepository struct {
	db  *sqlx.DB
	ids *IdentifierAllocator
}

// NewTopicRepository constructs a TopicRepository.
func NewTopicRepository(db *sqlx.DB, ids *IdentifierAllocator) *TopicRepository {
	if ids == nil {
		ids = NewIdentifierAllocator()
	}
	return &TopicRepository{db: db, ids: ids}
}

// List returns all topics ordered by id.
func (r *TopicRepository) List(ctx context.Context) ([]models.Topic, error) {
	query := fmt.Sprintf("SELECT %s FROM topics ORDER BY id ASC", topicColumns)
	var topics []models.Topic
	if err := r.db.SelectContext(ctx, &topics, query); err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	return topics, nil
}

// FindByID fetches a topic.
func (r *TopicRepository) FindByID(ctx context.Context, id string) (*models.Topic, error) {
	query := fmt.Sprintf("SELECT %s FROM topics WHERE id = $1", topicColumns)
	var topic models.Topic
	if err := r.db.GetContext(ctx, &topic, query, id); err != nil {
		return nil, err
	}
	return &topic, nil
}

// Create inserts a topic with an allocated T### id.
func (r *TopicRepository) Create(ctx context.Context, topic *models.Topic) error {
	id, err := r.ids.Next(ctx, r.db, models.IDTopic)
	if err != nil {
		return fmt.Errorf("create topic: %w", err)
	}
	topic.ID = id
	query := fmt.Sprintf(`INSERT INTO topics (id, name, admin_id) VALUES ($1, $2, $3) RETURNING %s`, topicColumns)
	if err := r.db.GetContext(ctx, topic, query, topic.ID, topic.Name, topic.AdminID); err != nil {
		return fmt.Errorf("create topic: %w", translate(err))
	}
	return nil
}

// Update renames a topic.
func (r *TopicRepository) Update(ctx context.Context, topic *models.Topic) error {
	query := fmt.Sprintf(`UPDATE topics SET name = $2, updated_at = NOW() WHERE id = $1 RETURNING %s`, topicColumns)
	if err := r.db.GetContext(ctx, topic, query, topic.ID, topic.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("update topic: %w", err)
	}
	return nil
}

// CountExpertise returns how many counselors list topicID as expertise.
func (r *TopicRepository) CountExpertise(ctx context.Context, topicID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM counselor_topics WHERE topic_id = $1`, topicID); err != nil {
		return 0, fmt.Errorf("count topic expertise: %w", err)
	}
	return count, nil
}

// Delete removes a topic. Topics still referenced by expertise links or
// sessions fail with ErrReferenced; missing topics return sql.ErrNoRows.
func (r *TopicRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM topics WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete topic: %w", translate(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete topic rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
