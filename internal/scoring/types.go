package scoring

import "github.com/plscore/leadscore-api/internal/domain"

// Features is the flat feature vector the scoring model expects for a single
// lead: raw numerics plus the trained vocabulary spellings for categoricals.
type Features struct {
	Age      int `json:"age"`
	Balance  int `json:"balance"`
	Day      int `json:"day"`
	Duration int `json:"duration"`
	Campaign int `json:"campaign"`
	PDays    int `json:"pdays"`
	Previous int `json:"previous"`

	Job       string `json:"job"`
	Marital   string `json:"marital"`
	Education string `json:"education"`
	Default   string `json:"default"`
	Housing   string `json:"housing"`
	Loan      string `json:"loan"`
	Contact   string `json:"contact"`
	Month     string `json:"month"`
	POutcome  string `json:"poutcome"`
}

// FeaturesOf builds the scorer's feature vector from a normalized lead.
func FeaturesOf(l domain.NormalizedLead) Features {
	return Features{
		Age:      l.Age,
		Balance:  l.Balance,
		Day:      l.LastContactDay,
		Duration: l.ContactDuration,
		Campaign: l.CampaignCount,
		PDays:    l.PDays,
		Previous: l.PrevContacts,

		Job:       l.Job.Name(),
		Marital:   l.Marital.Name(),
		Education: l.Education.Name(),
		Default:   yesNo(l.InDefault),
		Housing:   yesNo(l.HousingLoan),
		Loan:      yesNo(l.PersonalLoan),
		Contact:   l.Contact.Name(),
		Month:     l.Month.Name(),
		POutcome:  l.Outcome.Name(),
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Contribution is one ranked per-feature explanation entry.
type Contribution struct {
	Feature   string  `json:"raw_feature"`
	Label     string  `json:"label,omitempty"`
	ShapValue float64 `json:"shap_value"`
	ImpactPct float64 `json:"impact_pct"`
}

// Explanation is the scorer's single-lead explanation: the predicted score,
// the model's baseline probability, and per-feature contributions ranked by
// absolute impact.
type Explanation struct {
	Prediction    float64        `json:"prediction"`
	BaseValue     float64        `json:"base_value"`
	Contributions []Contribution `json:"explanations"`
}
