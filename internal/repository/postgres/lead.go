package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/plscore/leadscore-api/internal/domain"
	"github.com/plscore/leadscore-api/internal/pkg/logger"
	"github.com/plscore/leadscore-api/internal/service/lead"
)

// LeadRepo implements lead.Repository against PostgreSQL. A lead spans three
// tables: tb_leads (identity), tb_leads_detail (contact history), and
// tb_leads_score (model output).
type LeadRepo struct{ db *sql.DB }

// NewLeadRepo creates a Postgres-backed lead repository.
func NewLeadRepo(db *sql.DB) *LeadRepo { return &LeadRepo{db: db} }

const scoredLeadColumns = `
	l.lead_id, l.lead_name, COALESCE(l.lead_phone_number,''), l.lead_email,
	l.lead_age, l.job_id, l.marital_id, l.education_id, l.created_at, l.updated_at,
	d.lead_default, d.lead_balance, d.lead_housing_loan, d.lead_loan,
	d.last_contact_day, d.month_id, d.last_contact_duration_sec, d.campaign_count,
	d.pdays, d.prev_contact_count, d.poutcome_id, d.contactmethod_id,
	COALESCE(s.lead_score, 0)`

func scanScoredLead(row interface{ Scan(...interface{}) error }) (*domain.ScoredLead, error) {
	sl := &domain.ScoredLead{}
	err := row.Scan(
		&sl.ID, &sl.Name, &sl.PhoneNumber, &sl.Email,
		&sl.Age, &sl.Job, &sl.Marital, &sl.Education, &sl.CreatedAt, &sl.UpdatedAt,
		&sl.Detail.InDefault, &sl.Detail.Balance, &sl.Detail.HousingLoan, &sl.Detail.PersonalLoan,
		&sl.Detail.LastContactDay, &sl.Detail.Month, &sl.Detail.ContactDuration, &sl.Detail.CampaignCount,
		&sl.Detail.PDays, &sl.Detail.PrevContacts, &sl.Detail.Outcome, &sl.Detail.Contact,
		&sl.Score,
	)
	if err != nil {
		return nil, err
	}
	sl.Detail.LeadID = sl.ID
	return sl, nil
}

func (r *LeadRepo) Get(ctx context.Context, id int64) (*domain.ScoredLead, error) {
	sl, err := scanScoredLead(r.db.QueryRowContext(ctx, `
		SELECT `+scoredLeadColumns+`
		FROM tb_leads l
		JOIN tb_leads_detail d ON d.lead_id = l.lead_id
		LEFT JOIN tb_leads_score s ON s.lead_id = l.lead_id
		WHERE l.lead_id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, lead.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return sl, nil
}

func (r *LeadRepo) List(ctx context.Context, f lead.ListFilter) ([]domain.ScoredLead, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	where := " WHERE 1=1"
	args := []interface{}{}
	idx := 1
	add := func(cond string, val interface{}) {
		where += fmt.Sprintf(" AND "+cond, idx)
		args = append(args, val)
		idx++
	}

	if f.Job != 0 {
		add("l.job_id = $%d", f.Job)
	}
	if f.Marital != 0 {
		add("l.marital_id = $%d", f.Marital)
	}
	if f.Education != 0 {
		add("l.education_id = $%d", f.Education)
	}
	if f.MinScore > 0 {
		add("COALESCE(s.lead_score, 0) >= $%d", f.MinScore)
	}
	if f.MaxScore > 0 {
		add("COALESCE(s.lead_score, 0) <= $%d", f.MaxScore)
	}
	if f.Search != "" {
		add("(l.lead_name ILIKE $%[1]d OR l.lead_email ILIKE $%[1]d)", "%"+f.Search+"%")
	}

	from := `
		FROM tb_leads l
		JOIN tb_leads_detail d ON d.lead_id = l.lead_id
		LEFT JOIN tb_leads_score s ON s.lead_id = l.lead_id`

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*)"+from+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	q := "SELECT " + scoredLeadColumns + from + where +
		fmt.Sprintf(" ORDER BY COALESCE(s.lead_score, 0) DESC, l.lead_id LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var out []domain.ScoredLead
	for rows.Next() {
		sl, err := scanScoredLead(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan lead: %w", err)
		}
		out = append(out, *sl)
	}
	return out, total, rows.Err()
}

func (r *LeadRepo) Create(ctx context.Context, l domain.NormalizedLead) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	id, err := insertScoredLead(ctx, tx, l)
	if err != nil {
		return 0, mapInsertErr(err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// insertScoredLead writes all three records of a lead inside the given
// transaction and returns the generated lead ID.
func insertScoredLead(ctx context.Context, tx *sql.Tx, l domain.NormalizedLead) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO tb_leads
			(lead_name, lead_phone_number, lead_email, lead_age,
			 job_id, marital_id, education_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING lead_id
	`, l.Name, l.PhoneNumber, l.Email, l.Age, l.Job, l.Marital, l.Education).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert lead: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tb_leads_detail
			(lead_id, lead_default, lead_balance, lead_housing_loan, lead_loan,
			 last_contact_day, month_id, last_contact_duration_sec, campaign_count,
			 pdays, prev_contact_count, poutcome_id, contactmethod_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, id, l.InDefault, l.Balance, l.HousingLoan, l.PersonalLoan,
		l.LastContactDay, l.Month, l.ContactDuration, l.CampaignCount,
		l.PDays, l.PrevContacts, l.Outcome, l.Contact)
	if err != nil {
		return 0, fmt.Errorf("insert lead detail: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tb_leads_score (lead_id, lead_score, scored_at)
		VALUES ($1, $2, NOW())
	`, id, l.Score)
	if err != nil {
		return 0, fmt.Errorf("insert lead score: %w", err)
	}
	return id, nil
}

// mapInsertErr translates database constraint violations into service errors.
func mapInsertErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return lead.ErrDuplicateEmail
	}
	return err
}

func (r *LeadRepo) Update(ctx context.Context, id int64, u lead.UpdateFields) error {
	sets := []string{}
	args := []interface{}{}
	idx := 1
	add := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, idx))
		args = append(args, val)
		idx++
	}

	if u.Name != nil {
		add("lead_name", *u.Name)
	}
	if u.PhoneNumber != nil {
		add("lead_phone_number", *u.PhoneNumber)
	}
	if u.Email != nil {
		add("lead_email", *u.Email)
	}
	if u.Age != nil {
		add("lead_age", *u.Age)
	}
	if u.Job != nil {
		add("job_id", *u.Job)
	}
	if u.Marital != nil {
		add("marital_id", *u.Marital)
	}
	if u.Education != nil {
		add("education_id", *u.Education)
	}

	if len(sets) == 0 {
		return nil
	}

	q := fmt.Sprintf("UPDATE tb_leads SET %s, updated_at = NOW() WHERE lead_id = $%d",
		joinComma(sets), idx)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update lead: %w", mapInsertErr(err))
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return lead.ErrNotFound
	}
	return nil
}

func (r *LeadRepo) Delete(ctx context.Context, id int64) error {
	// Sub-records cascade via foreign keys.
	res, err := r.db.ExecContext(ctx, `DELETE FROM tb_leads WHERE lead_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return lead.ErrNotFound
	}
	return nil
}

func (r *LeadRepo) BatchDelete(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM tb_leads WHERE lead_id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("batch delete leads: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// BulkInsertScored persists a scored batch with per-row failure isolation:
// each lead gets its own transaction, and a failed row never blocks the rows
// after it. onRow, when non-nil, runs after every attempted row with the
// running saved count.
func (r *LeadRepo) BulkInsertScored(ctx context.Context, leads []domain.NormalizedLead, onRow func(saved int)) (domain.BulkResult, error) {
	var res domain.BulkResult
	for i, l := range leads {
		if err := r.insertOne(ctx, l); err != nil {
			res.FailureCount++
			res.Errors = append(res.Errors, fmt.Sprintf("row %d (%s): %v", i+1, l.Email, rowErrMessage(err)))
			logger.Warn("bulk insert row failed", "row", i+1, "email", l.Email, "error", err.Error())
		} else {
			res.SuccessCount++
		}
		if onRow != nil {
			onRow(res.SuccessCount)
		}
	}
	return res, nil
}

func (r *LeadRepo) insertOne(ctx context.Context, l domain.NormalizedLead) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := insertScoredLead(ctx, tx, l); err != nil {
		return err
	}
	return tx.Commit()
}

// rowErrMessage renders a constraint violation as a short operator-facing
// message for the bulk error list.
func rowErrMessage(err error) string {
	if mapInsertErr(err) == lead.ErrDuplicateEmail {
		return "duplicate email"
	}
	return err.Error()
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
