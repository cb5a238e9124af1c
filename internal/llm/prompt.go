package llm

import (
	"strings"

	"github.com/joseph-ayodele/resume-extractor/constants"
)

const exampleRecord = `{
  "Full Name": "Jane Doe",
  "Email": "jane.doe@example.com",
  "Phone Number": "+1 555 0100",
  "Work Experience": [
    {
      "Company Name": "Acme Corp",
      "Customer Name": "Globex",
      "Role": "Senior Software Engineer",
      "Duration": "Jan 2020 - Present",
      "Skills/Technologies": ["Go", "PostgreSQL", "Kubernetes"],
      "Industry/Domain": "Logistics",
      "Location": "Berlin, Germany"
    }
  ],
  "ATS Score": 82
}`

// BuildExtractionPrompt wraps resume text in the fixed extraction instructions.
// The text is the only variable part.
func BuildExtractionPrompt(resumeText string) string {
	quoted := make([]string, len(constants.ExperienceKeys))
	for i, k := range constants.ExperienceKeys {
		quoted[i] = `"` + k + `"`
	}

	parts := []string{
		"You are an expert resume parser. Read the resume text below and return exactly one JSON object.",
		`The object has these top-level keys: "` + constants.KeyFullName + `", "` + constants.KeyEmail + `", "` +
			constants.KeyPhoneNumber + `", "` + constants.KeyWorkExperience + `", "` + constants.KeyATSScore + `".`,
		`Use null for "` + constants.KeyFullName + `", "` + constants.KeyEmail + `" or "` + constants.KeyPhoneNumber + `" when the resume does not state them.`,
		`"` + constants.KeyWorkExperience + `" is an array with one object per position, in the order they appear. Each object has the keys ` +
			strings.Join(quoted, ", ") + ".",
		`"` + constants.KeySkills + `" is an array of strings. Every other position key is a string; use "` + constants.NotSpecified + `" when the resume does not state it.`,
		`"Customer Name" is the client the work was delivered for, when the employer is a consultancy or agency.`,
		`"` + constants.KeyATSScore + `" is an integer from 0 to 100 rating how well the resume is structured for applicant tracking systems.`,
		"Output rules: respond with the JSON object only. No markdown, no code fences, no commentary before or after it.",
		"Use double quotes for every key and string. Do not leave trailing commas. Do not repeat commas. Escape quotes inside strings.",
		"Example of the expected shape:\n" + exampleRecord,
	}

	var b strings.Builder
	b.WriteString(strings.Join(parts, "\n"))
	b.WriteString("\n\nResume Text:\n---\n")
	b.WriteString(resumeText)
	b.WriteString("\n---\nEnd of Resume Text. Output JSON object:")
	return b.String()
}

// BuildATSMatchPrompt asks for a score of the resume against a job description.
// In detailed mode the reply is a JSON object; otherwise a bare integer.
func BuildATSMatchPrompt(resumeText, jobDescription string, detailed bool) string {
	var parts []string
	if detailed {
		parts = []string{
			"You are an applicant tracking system. Compare the resume with the job description.",
			`Return one JSON object with keys "score" (integer 0-100), "matchedKeywords" (array of strings found in both),` +
				` "missingKeywords" (array of important job keywords absent from the resume) and "summary" (two sentences at most).`,
			"Respond with the JSON object only. No markdown, no code fences.",
		}
	} else {
		parts = []string{
			"You are an applicant tracking system. Compare the resume with the job description.",
			"Respond with a single integer from 0 to 100 estimating how well the resume matches. Respond with the number only.",
		}
	}

	var b strings.Builder
	b.WriteString(strings.Join(parts, "\n"))
	b.WriteString("\n\nJob Description:\n---\n")
	b.WriteString(jobDescription)
	b.WriteString("\n---\n\nResume Text:\n---\n")
	b.WriteString(resumeText)
	b.WriteString("\n---\n")
	return b.String()
}
