package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over a PostgreSQL mirror of the
// applicant base, used for local development and integration runs.
// Work experience listing orders by creation time so positional
// reconciliation sees the same order compression saw.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgres establishes a connection pool and verifies it.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresStore) GetApplicant(ctx context.Context, id string) (*Applicant, error) {
	var a Applicant
	err := s.pool.QueryRow(ctx,
		`SELECT id, COALESCE(compressed_json, ''), COALESCE(shortlist_status, 'Pending'),
		        COALESCE(llm_summary, ''), llm_score, COALESCE(llm_issues, ''), COALESCE(llm_follow_ups, '')
		 FROM applicants WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.CompressedJSON, &a.ShortlistStatus, &a.LLMSummary, &a.LLMScore, &a.LLMIssues, &a.LLMFollowUps)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Collection: TableApplicants, ID: id}
		}
		return nil, &TransportError{Op: "read " + TableApplicants, Cause: err}
	}
	return &a, nil
}

func (s *PostgresStore) ListApplicants(ctx context.Context) ([]Applicant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, COALESCE(compressed_json, ''), COALESCE(shortlist_status, 'Pending'),
		        COALESCE(llm_summary, ''), llm_score, COALESCE(llm_issues, ''), COALESCE(llm_follow_ups, '')
		 FROM applicants ORDER BY created_at, id`)
	if err != nil {
		return nil, &TransportError{Op: "read " + TableApplicants, Cause: err}
	}
	defer rows.Close()

	var applicants []Applicant
	for rows.Next() {
		var a Applicant
		if err := rows.Scan(&a.ID, &a.CompressedJSON, &a.ShortlistStatus, &a.LLMSummary, &a.LLMScore, &a.LLMIssues, &a.LLMFollowUps); err != nil {
			return nil, &TransportError{Op: "read " + TableApplicants, Cause: err}
		}
		applicants = append(applicants, a)
	}
	if err := rows.Err(); err != nil {
		return nil, &TransportError{Op: "read " + TableApplicants, Cause: err}
	}
	return applicants, nil
}

// updateApplicant runs an UPDATE and reports a write failure when no
// row matched, mirroring the remote store's 404-on-update behavior.
func (s *PostgresStore) updateApplicant(ctx context.Context, applicantID, query string, args ...any) error {
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return &WriteError{Collection: TableApplicants, ID: applicantID, Cause: err}
	}
	if tag.RowsAffected() == 0 {
		return &WriteError{Collection: TableApplicants, ID: applicantID, Cause: fmt.Errorf("record does not exist")}
	}
	return nil
}

func (s *PostgresStore) SaveCompressedJSON(ctx context.Context, applicantID, compressed string) error {
	return s.updateApplicant(ctx, applicantID,
		`UPDATE applicants SET compressed_json = $1, updated_at = NOW() WHERE id = $2`,
		compressed, applicantID)
}

func (s *PostgresStore) SetShortlistStatus(ctx context.Context, applicantID string, status ShortlistStatus) error {
	return s.updateApplicant(ctx, applicantID,
		`UPDATE applicants SET shortlist_status = $1, updated_at = NOW() WHERE id = $2`,
		string(status), applicantID)
}

func (s *PostgresStore) SaveEnrichment(ctx context.Context, applicantID string, fields EnrichmentFields) error {
	return s.updateApplicant(ctx, applicantID,
		`UPDATE applicants
		 SET llm_summary = $1, llm_score = $2, llm_issues = $3, llm_follow_ups = $4, updated_at = NOW()
		 WHERE id = $5`,
		fields.Summary, fields.Score, fields.Issues, fields.FollowUps, applicantID)
}

func (s *PostgresStore) GetPersonalDetails(ctx context.Context, applicantID string) (*PersonalDetails, error) {
	var rec PersonalDetails
	err := s.pool.QueryRow(ctx,
		`SELECT id, applicant_id, full_name, email, location, linkedin
		 FROM personal_details WHERE applicant_id = $1`,
		applicantID,
	).Scan(&rec.ID, &rec.ApplicantID, &rec.FullName, &rec.Email, &rec.Location, &rec.LinkedIn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, &TransportError{Op: "read " + TablePersonalDetails, Cause: err}
	}
	return &rec, nil
}

func (s *PostgresStore) CreatePersonalDetails(ctx context.Context, rec PersonalDetails) (*PersonalDetails, error) {
	rec.ID = uuid.NewString()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO personal_details (id, applicant_id, full_name, email, location, linkedin)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.ApplicantID, rec.FullName, rec.Email, rec.Location, rec.LinkedIn)
	if err != nil {
		return nil, &WriteError{Collection: TablePersonalDetails, Cause: err}
	}
	return &rec, nil
}

func (s *PostgresStore) UpdatePersonalDetails(ctx context.Context, rec PersonalDetails) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE personal_details SET full_name = $1, email = $2, location = $3, linkedin = $4
		 WHERE id = $5`,
		rec.FullName, rec.Email, rec.Location, rec.LinkedIn, rec.ID)
	if err != nil {
		return &WriteError{Collection: TablePersonalDetails, ID: rec.ID, Cause: err}
	}
	if tag.RowsAffected() == 0 {
		return &WriteError{Collection: TablePersonalDetails, ID: rec.ID, Cause: fmt.Errorf("record does not exist")}
	}
	return nil
}

func (s *PostgresStore) ListWorkExperience(ctx context.Context, applicantID string) ([]WorkExperience, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, applicant_id, company, title, start_date, end_date, technologies, description
		 FROM work_experience WHERE applicant_id = $1
		 ORDER BY created_at, id`,
		applicantID)
	if err != nil {
		return nil, &TransportError{Op: "read " + TableWorkExperience, Cause: err}
	}
	defer rows.Close()

	var experiences []WorkExperience
	for rows.Next() {
		var rec WorkExperience
		if err := rows.Scan(&rec.ID, &rec.ApplicantID, &rec.Company, &rec.Title, &rec.StartDate, &rec.EndDate, &rec.Technologies, &rec.Description); err != nil {
			return nil, &TransportError{Op: "read " + TableWorkExperience, Cause: err}
		}
		experiences = append(experiences, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &TransportError{Op: "read " + TableWorkExperience, Cause: err}
	}
	return experiences, nil
}

func (s *PostgresStore) CreateWorkExperience(ctx context.Context, rec WorkExperience) (*WorkExperience, error) {
	rec.ID = uuid.NewString()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO work_experience (id, applicant_id, company, title, start_date, end_date, technologies, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.ApplicantID, rec.Company, rec.Title, rec.StartDate, rec.EndDate, rec.Technologies, rec.Description)
	if err != nil {
		return nil, &WriteError{Collection: TableWorkExperience, Cause: err}
	}
	return &rec, nil
}

func (s *PostgresStore) UpdateWorkExperience(ctx context.Context, rec WorkExperience) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE work_experience
		 SET company = $1, title = $2, start_date = $3, end_date = $4, technologies = $5, description = $6
		 WHERE id = $7`,
		rec.Company, rec.Title, rec.StartDate, rec.EndDate, rec.Technologies, rec.Description, rec.ID)
	if err != nil {
		return &WriteError{Collection: TableWorkExperience, ID: rec.ID, Cause: err}
	}
	if tag.RowsAffected() == 0 {
		return &WriteError{Collection: TableWorkExperience, ID: rec.ID, Cause: fmt.Errorf("record does not exist")}
	}
	return nil
}

func (s *PostgresStore) DeleteWorkExperience(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM work_experience WHERE id = $1`, id)
	if err != nil {
		return &WriteError{Collection: TableWorkExperience, ID: id, Cause: err}
	}
	if tag.RowsAffected() == 0 {
		return &WriteError{Collection: TableWorkExperience, ID: id, Cause: fmt.Errorf("record does not exist")}
	}
	return nil
}

func (s *PostgresStore) GetSalaryPreference(ctx context.Context, applicantID string) (*SalaryPreference, error) {
	var rec SalaryPreference
	err := s.pool.QueryRow(ctx,
		`SELECT id, applicant_id, preferred_rate, minimum_rate, currency, availability
		 FROM salary_preferences WHERE applicant_id = $1`,
		applicantID,
	).Scan(&rec.ID, &rec.ApplicantID, &rec.PreferredRate, &rec.MinimumRate, &rec.Currency, &rec.Availability)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, &TransportError{Op: "read " + TableSalaryPreferences, Cause: err}
	}
	return &rec, nil
}

func (s *PostgresStore) CreateSalaryPreference(ctx context.Context, rec SalaryPreference) (*SalaryPreference, error) {
	rec.ID = uuid.NewString()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO salary_preferences (id, applicant_id, preferred_rate, minimum_rate, currency, availability)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.ApplicantID, rec.PreferredRate, rec.MinimumRate, rec.Currency, rec.Availability)
	if err != nil {
		return nil, &WriteError{Collection: TableSalaryPreferences, Cause: err}
	}
	return &rec, nil
}

func (s *PostgresStore) UpdateSalaryPreference(ctx context.Context, rec SalaryPreference) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE salary_preferences
		 SET preferred_rate = $1, minimum_rate = $2, currency = $3, availability = $4
		 WHERE id = $5`,
		rec.PreferredRate, rec.MinimumRate, rec.Currency, rec.Availability, rec.ID)
	if err != nil {
		return &WriteError{Collection: TableSalaryPreferences, ID: rec.ID, Cause: err}
	}
	if tag.RowsAffected() == 0 {
		return &WriteError{Collection: TableSalaryPreferences, ID: rec.ID, Cause: fmt.Errorf("record does not exist")}
	}
	return nil
}

func (s *PostgresStore) CreateShortlistedLead(ctx context.Context, lead ShortlistedLead) (*ShortlistedLead, error) {
	lead.ID = uuid.NewString()
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO shortlisted_leads (id, applicant_id, compressed_json, score_reason, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		lead.ID, lead.ApplicantID, lead.CompressedJSON, lead.ScoreReason, lead.CreatedAt)
	if err != nil {
		return nil, &WriteError{Collection: TableShortlistedLeads, Cause: err}
	}
	return &lead, nil
}

func (s *PostgresStore) HasShortlistedLead(ctx context.Context, applicantID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM shortlisted_leads WHERE applicant_id = $1)`,
		applicantID,
	).Scan(&exists)
	if err != nil {
		return false, &TransportError{Op: "read " + TableShortlistedLeads, Cause: err}
	}
	return exists, nil
}
