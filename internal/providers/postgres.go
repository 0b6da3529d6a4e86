package providers

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	"matching-workers/internal/common/errors"
	"matching-workers/internal/models"

	"github.com/goccy/go-json"
	"github.com/lib/pq"
)

const jobColumns = `id, title, category, location, required_skills, budget, estimated_hours,
		       experience_level, urgent, payment_methods`

const workerColumns = `id, name, location, skills, certifications, specializations, hourly_rate,
		       rating, completion_rate, avg_response_hours, punctuality_score, languages,
		       accepted_payments, community_rating, local_recommendations, repeat_customers,
		       verified_id, apprenticeship_completed, experience_years, local_experience`

type PostgresJobStore struct {
	db *sql.DB
}

func NewPostgresJobStore(db *sql.DB) *PostgresJobStore {
	return &PostgresJobStore{db: db}
}

func (s *PostgresJobStore) GetJob(ctx context.Context, id string) (models.JobRequest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM job_requests
		WHERE id = $1`, id)

	var (
		job              models.JobRequest
		skills, payments []byte
		budget, hours    sql.NullFloat64
		level            sql.NullString
	)
	err := row.Scan(&job.ID, &job.Title, &job.Category, &job.Location, &skills, &budget, &hours,
		&level, &job.Urgent, &payments)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return models.JobRequest{}, errors.NewJobNotFoundError(id)
		}
		return models.JobRequest{}, queryError(ctx, "job_request", err)
	}

	job.RequiredSkills = decodeList(skills)
	job.PaymentMethods = decodeList(payments)
	job.Budget = nullFloat(budget)
	job.EstimatedHours = nullFloat(hours)
	job.ExperienceLevel = models.ExperienceLevel(level.String)
	return job, nil
}

type PostgresWorkerStore struct {
	db *sql.DB
}

func NewPostgresWorkerStore(db *sql.DB) *PostgresWorkerStore {
	return &PostgresWorkerStore{db: db}
}

func (s *PostgresWorkerStore) GetWorker(ctx context.Context, id string) (models.WorkerProfile, error) {
	workers, err := s.GetWorkers(ctx, []string{id})
	if err != nil {
		return models.WorkerProfile{}, err
	}
	if len(workers) == 0 {
		return models.WorkerProfile{}, errors.NewWorkerNotFoundError(id)
	}
	return workers[0], nil
}

func (s *PostgresWorkerStore) GetWorkers(ctx context.Context, ids []string) ([]models.WorkerProfile, error) {
	if len(ids) == 0 {
		return []models.WorkerProfile{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+workerColumns+`
		FROM worker_profiles
		WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, queryError(ctx, "worker_profiles", err)
	}
	defer rows.Close()

	byID := make(map[string]models.WorkerProfile, len(ids))
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, queryError(ctx, "worker_profiles", err)
		}
		byID[w.ID] = w
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(ctx, "worker_profiles", err)
	}

	return inOrder(ids, byID), nil
}

func scanWorker(rows *sql.Rows) (models.WorkerProfile, error) {
	var (
		w                    models.WorkerProfile
		name                 sql.NullString
		rate                 sql.NullFloat64
		response, community  sql.NullFloat64
		skills, certs, specs []byte
		languages, payments  []byte
	)
	err := rows.Scan(&w.ID, &name, &w.Location, &skills, &certs, &specs, &rate,
		&w.Rating, &w.CompletionRate, &response, &w.PunctualityScore, &languages,
		&payments, &community, &w.LocalRecommendations, &w.RepeatCustomers,
		&w.VerifiedID, &w.ApprenticeshipCompleted, &w.ExperienceYears, &w.LocalExperience)
	if err != nil {
		return models.WorkerProfile{}, err
	}

	w.Name = name.String
	w.Skills = decodeList(skills)
	w.Certifications = decodeList(certs)
	w.Specializations = decodeList(specs)
	w.Languages = decodeList(languages)
	w.AcceptedPayments = decodeList(payments)
	w.HourlyRate = nullFloat(rate)
	w.AverageResponseTimeHours = nullFloat(response)
	w.CommunityRating = nullFloat(community)
	return w, nil
}

// inOrder returns the profiles of ids in that order, skipping unknown and
// repeated ids.
func inOrder(ids []string, byID map[string]models.WorkerProfile) []models.WorkerProfile {
	out := make([]models.WorkerProfile, 0, len(byID))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if w, ok := byID[id]; ok {
			out = append(out, w)
		}
	}
	return out
}

// decodeList reads a JSONB string array. NULL and malformed values decode
// as an empty list.
func decodeList(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func queryError(ctx context.Context, queryType string, err error) error {
	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) || strings.Contains(err.Error(), "canceling statement due to statement timeout") {
		return errors.NewQueryTimeoutError(queryType)
	}
	return errors.NewQueryExecutionFailedError(queryType, err)
}
