package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/plscore/leadscore-api/internal/domain"
)

// lookupCode resolves a raw value against an ordered vocabulary,
// case-insensitive and trimmed. Missing or unrecognized values map to the
// default code, so the result is always a valid 1-based code.
func lookupCode(vocab []string, raw string, def int) int {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return def
	}
	for i, name := range vocab {
		if name == v {
			return i + 1
		}
	}
	return def
}

// JobCodeOf maps a job title to its code. Default: JobUnknown.
func JobCodeOf(raw string) domain.JobCode {
	return domain.JobCode(lookupCode(domain.JobNames, raw, int(domain.JobUnknown)))
}

// MaritalCodeOf maps a marital status to its code. Default: MaritalSingle.
func MaritalCodeOf(raw string) domain.MaritalCode {
	return domain.MaritalCode(lookupCode(domain.MaritalNames, raw, int(domain.MaritalSingle)))
}

// EducationCodeOf maps an education level to its code. Default: EducationUnknown.
func EducationCodeOf(raw string) domain.EducationCode {
	return domain.EducationCode(lookupCode(domain.EducationNames, raw, int(domain.EducationUnknown)))
}

// MonthCodeOf maps a month abbreviation to its code. Default: MonthMay.
func MonthCodeOf(raw string) domain.MonthCode {
	return domain.MonthCode(lookupCode(domain.MonthNames, raw, int(domain.MonthMay)))
}

// OutcomeCodeOf maps a prior-campaign outcome to its code. Default: OutcomeUnknown.
func OutcomeCodeOf(raw string) domain.OutcomeCode {
	return domain.OutcomeCode(lookupCode(domain.OutcomeNames, raw, int(domain.OutcomeUnknown)))
}

// ContactCodeOf maps a contact channel to its code: cellular/mobile → 1,
// telephone/landline → 2, anything else → 3.
func ContactCodeOf(raw string) domain.ContactCode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "cellular", "mobile":
		return domain.ContactCellular
	case "telephone", "landline":
		return domain.ContactTelephone
	default:
		return domain.ContactUnknown
	}
}

func intOr(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return n
}

func isYes(raw string) bool {
	return strings.ToLower(strings.TrimSpace(raw)) == "yes"
}

// NormalizeRow converts one decoded row into a NormalizedLead. idx is the
// zero-based row position within the batch and uploadedAt the batch intake
// time; both feed the synthetic identity fallbacks that keep missing names
// and emails from colliding on unique constraints.
func NormalizeRow(row Row, idx int, uploadedAt time.Time) domain.NormalizedLead {
	name := strings.TrimSpace(firstOf(row, "lead_name", "name", "nama"))
	if name == "" {
		name = fmt.Sprintf("Lead %d", idx+1)
	}
	email := strings.TrimSpace(firstOf(row, "lead_email", "email"))
	if email == "" {
		email = fmt.Sprintf("noemail-%d-%d@missing.com", uploadedAt.UnixMilli(), idx)
	}
	phone := strings.TrimSpace(firstOf(row, "lead_phone_number", "phone", "telephone", "nomor_telepon"))

	return domain.NormalizedLead{
		Name:        name,
		PhoneNumber: phone,
		Email:       email,
		Age:         intOr(row["age"], 30),

		Job:       JobCodeOf(row["job"]),
		Marital:   MaritalCodeOf(row["marital"]),
		Education: EducationCodeOf(row["education"]),

		InDefault:    isYes(row["default"]),
		Balance:      intOr(row["balance"], 0),
		HousingLoan:  isYes(row["housing"]),
		PersonalLoan: isYes(row["loan"]),

		LastContactDay:  intOr(row["day"], 1),
		Month:           MonthCodeOf(row["month"]),
		ContactDuration: intOr(row["duration"], 0),
		CampaignCount:   intOr(row["campaign"], 1),
		PDays:           intOr(row["pdays"], -1),
		PrevContacts:    intOr(row["previous"], 0),
		Outcome:         OutcomeCodeOf(row["poutcome"]),
		Contact:         ContactCodeOf(row["contact"]),
	}
}

// NormalizeRows maps every row with a shared upload timestamp.
func NormalizeRows(rows []Row, uploadedAt time.Time) []domain.NormalizedLead {
	out := make([]domain.NormalizedLead, len(rows))
	for i, row := range rows {
		out[i] = NormalizeRow(row, i, uploadedAt)
	}
	return out
}

func firstOf(row Row, keys ...string) string {
	for _, k := range keys {
		if v, ok := row[k]; ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
