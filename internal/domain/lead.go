package domain

import "time"

// Lead is the primary CRM record for a prospective customer.
type Lead struct {
	ID          int64         `json:"lead_id" db:"lead_id"`
	Name        string        `json:"lead_name" db:"lead_name"`
	PhoneNumber string        `json:"lead_phone_number" db:"lead_phone_number"`
	Email       string        `json:"lead_email" db:"lead_email"`
	Age         int           `json:"lead_age" db:"lead_age"`
	Job         JobCode       `json:"job_id" db:"job_id"`
	Marital     MaritalCode   `json:"marital_id" db:"marital_id"`
	Education   EducationCode `json:"education_id" db:"education_id"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// LeadDetail holds the contact-history attributes of a lead, persisted as a
// separate sub-record (tb_leads_detail).
type LeadDetail struct {
	LeadID          int64       `json:"lead_id" db:"lead_id"`
	InDefault       bool        `json:"lead_default" db:"lead_default"`
	Balance         int         `json:"lead_balance" db:"lead_balance"`
	HousingLoan     bool        `json:"lead_housing_loan" db:"lead_housing_loan"`
	PersonalLoan    bool        `json:"lead_loan" db:"lead_loan"`
	LastContactDay  int         `json:"last_contact_day" db:"last_contact_day"`
	Month           MonthCode   `json:"month_id" db:"month_id"`
	ContactDuration int         `json:"last_contact_duration_sec" db:"last_contact_duration_sec"`
	CampaignCount   int         `json:"campaign_count" db:"campaign_count"`
	PDays           int         `json:"pdays" db:"pdays"`
	PrevContacts    int         `json:"prev_contact_count" db:"prev_contact_count"`
	Outcome         OutcomeCode `json:"poutcome_id" db:"poutcome_id"`
	Contact         ContactCode `json:"contactmethod_id" db:"contactmethod_id"`
}

// NormalizedLead is a lead row after categorical mapping and defaulting: the
// unit of work for the ingestion pipeline. Score is attached once the batch
// comes back from the external scorer.
type NormalizedLead struct {
	Name        string
	PhoneNumber string
	Email       string
	Age         int

	Job       JobCode
	Marital   MaritalCode
	Education EducationCode

	InDefault    bool
	Balance      int
	HousingLoan  bool
	PersonalLoan bool

	LastContactDay  int
	Month           MonthCode
	ContactDuration int
	CampaignCount   int
	PDays           int
	PrevContacts    int
	Outcome         OutcomeCode
	Contact         ContactCode

	Score float64
}

// ScoredLead is a fully hydrated lead as returned by read queries, joining
// the primary record with its detail and score sub-records.
type ScoredLead struct {
	Lead
	Detail LeadDetail `json:"detail"`
	Score  float64    `json:"lead_score"`
}

// BulkResult reports the outcome of a partial-failure bulk insert.
// SuccessCount+FailureCount always equals the number of rows submitted.
type BulkResult struct {
	SuccessCount int      `json:"success_count"`
	FailureCount int      `json:"failure_count"`
	Errors       []string `json:"errors,omitempty"`
}
