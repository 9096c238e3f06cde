package domain

// Categorical lead attributes are stored as 1-based numeric codes matching
// the reference tables (tb_job, tb_marital, ...). The normalizer in
// internal/ingest guarantees every code is valid: unrecognized or missing
// input maps to the documented default, never to zero.

// JobCode identifies a job category.
type JobCode int

const (
	JobAdmin JobCode = iota + 1
	JobBlueCollar
	JobEntrepreneur
	JobHousemaid
	JobManagement
	JobRetired
	JobSelfEmployed
	JobServices
	JobStudent
	JobTechnician
	JobUnemployed
	JobUnknown // default
)

// MaritalCode identifies a marital status.
type MaritalCode int

const (
	MaritalDivorced MaritalCode = iota + 1
	MaritalMarried
	MaritalSingle // default
)

// EducationCode identifies an education level.
type EducationCode int

const (
	EducationPrimary EducationCode = iota + 1
	EducationSecondary
	EducationTertiary
	EducationUnknown // default
)

// MonthCode is the 1-based calendar month of the last contact.
type MonthCode int

const (
	MonthJan MonthCode = iota + 1
	MonthFeb
	MonthMar
	MonthApr
	MonthMay // default
	MonthJun
	MonthJul
	MonthAug
	MonthSep
	MonthOct
	MonthNov
	MonthDec
)

// OutcomeCode identifies the outcome of a previous campaign contact.
type OutcomeCode int

const (
	OutcomeFailure OutcomeCode = iota + 1
	OutcomeOther
	OutcomeSuccess
	OutcomeUnknown // default
)

// ContactCode identifies the channel used to reach the lead.
type ContactCode int

const (
	ContactCellular  ContactCode = 1
	ContactTelephone ContactCode = 2
	ContactUnknown   ContactCode = 3 // default
)

// Ordered vocabulary names, 1-based code = index+1. The reference tables in
// the database are seeded in the same order, and the external scorer was
// trained on exactly these spellings.
var (
	JobNames = []string{
		"admin.", "blue-collar", "entrepreneur", "housemaid", "management",
		"retired", "self-employed", "services", "student", "technician",
		"unemployed", "unknown",
	}
	MaritalNames   = []string{"divorced", "married", "single"}
	EducationNames = []string{"primary", "secondary", "tertiary", "unknown"}
	MonthNames     = []string{
		"jan", "feb", "mar", "apr", "may", "jun",
		"jul", "aug", "sep", "oct", "nov", "dec",
	}
	OutcomeNames = []string{"failure", "other", "success", "unknown"}
	ContactNames = []string{"cellular", "telephone", "unknown"}
)

func nameOf(names []string, code, def int) string {
	if code < 1 || code > len(names) {
		code = def
	}
	return names[code-1]
}

// Name returns the vocabulary spelling for the code; out-of-range codes
// render as the default.
func (c JobCode) Name() string       { return nameOf(JobNames, int(c), int(JobUnknown)) }
func (c MaritalCode) Name() string   { return nameOf(MaritalNames, int(c), int(MaritalSingle)) }
func (c EducationCode) Name() string { return nameOf(EducationNames, int(c), int(EducationUnknown)) }
func (c MonthCode) Name() string     { return nameOf(MonthNames, int(c), int(MonthMay)) }
func (c OutcomeCode) Name() string   { return nameOf(OutcomeNames, int(c), int(OutcomeUnknown)) }
func (c ContactCode) Name() string   { return nameOf(ContactNames, int(c), int(ContactUnknown)) }
