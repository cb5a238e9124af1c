package entity

import "github.com/joseph-ayodele/resume-extractor/constants"

// ExtractionRecord is the normalized result for one document.
// A nil scalar means the service did not report the field.
type ExtractionRecord struct {
	SourceName     string            `json:"source_name"`
	FullName       *string           `json:"full_name"`
	Email          *string           `json:"email"`
	PhoneNumber    *string           `json:"phone_number"`
	WorkExperience []ExperienceEntry `json:"work_experience"`
	ATSScore       int               `json:"ats_score"`
}

// ExperienceEntry is one employment record. Blank fields hold constants.NotSpecified.
type ExperienceEntry struct {
	CompanyName    string   `json:"company_name"`
	CustomerName   string   `json:"customer_name"`
	Role           string   `json:"role"`
	Duration       string   `json:"duration"`
	Skills         []string `json:"skills"`
	IndustryDomain string   `json:"industry_domain"`
	Location       string   `json:"location"`
}

// EmptyExperienceEntry returns an entry with every text field set to the sentinel.
func EmptyExperienceEntry() ExperienceEntry {
	return ExperienceEntry{
		CompanyName:    constants.NotSpecified,
		CustomerName:   constants.NotSpecified,
		Role:           constants.NotSpecified,
		Duration:       constants.NotSpecified,
		Skills:         []string{},
		IndustryDomain: constants.NotSpecified,
		Location:       constants.NotSpecified,
	}
}

// OrNotSpecified renders an optional scalar for display.
func OrNotSpecified(s *string) string {
	if s == nil {
		return constants.NotSpecified
	}
	return *s
}

// ATSMatch is a scored comparison between a resume and a job description.
type ATSMatch struct {
	Score           int      `json:"score"`
	MatchedKeywords []string `json:"matched_keywords"`
	MissingKeywords []string `json:"missing_keywords"`
	Summary         string   `json:"summary"`
}
