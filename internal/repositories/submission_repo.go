package repositories

import (
	"context"

	"github.com/hollowayclinic/intake/internal/database"
	"github.com/hollowayclinic/intake/internal/models"
)

// SubmissionRepository handles database operations for contact submissions
type SubmissionRepository struct {
	db *database.DB
}

// NewSubmissionRepository creates a new SubmissionRepository
func NewSubmissionRepository(db *database.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Insert records a submission. Submissions are write-once; there is no
// update or delete path.
func (r *SubmissionRepository) Insert(ctx context.Context, sub *models.Submission) error {
	query := `
		INSERT INTO contact_submissions (id, name, email, phone, subject, message, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		sub.ID,
		sub.Name,
		sub.Email,
		sub.Phone,
		sub.Subject,
		sub.Message,
		sub.IPAddress,
		sub.UserAgent,
		sub.CreatedAt,
	)

	return database.MapPostgresError(err)
}
