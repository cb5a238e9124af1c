package constants

// NotSpecified is the sentinel for experience fields the service left blank.
const NotSpecified = "N/A"

// Top-level keys of the extraction service's JSON reply.
const (
	KeyFullName       = "Full Name"
	KeyEmail          = "Email"
	KeyPhoneNumber    = "Phone Number"
	KeyWorkExperience = "Work Experience"
	KeyATSScore       = "ATS Score"
)

// Keys of one work experience entry.
const (
	KeyCompanyName    = "Company Name"
	KeyCustomerName   = "Customer Name"
	KeyRole           = "Role"
	KeyDuration       = "Duration"
	KeySkills         = "Skills/Technologies"
	KeyIndustryDomain = "Industry/Domain"
	KeyLocation       = "Location"
)

// ExperienceKeys lists the entry keys in prompt and export order.
var ExperienceKeys = []string{
	KeyCompanyName,
	KeyCustomerName,
	KeyRole,
	KeyDuration,
	KeySkills,
	KeyIndustryDomain,
	KeyLocation,
}
