package server

import (
	"net/http"
	"strconv"

	"github.com/joseph-ayodele/resume-extractor/constants"
	"github.com/joseph-ayodele/resume-extractor/internal/common"
	"github.com/joseph-ayodele/resume-extractor/internal/entity"
)

// handleATSMatch scores an uploaded resume against the job_description field.
func (s *Server) handleATSMatch(w http.ResponseWriter, r *http.Request) {
	in, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	jd := r.FormValue("job_description")
	detailed, _ := strconv.ParseBool(r.FormValue("detailed"))

	v := common.NewValidator()
	v.Field("job_description", jd, common.Required)
	if err := v.Err(); err != nil {
		writeError(w, err)
		return
	}

	mt, _ := constants.ResolveMediaType(in.DeclaredType, in.Name)
	text, err := s.deps.Text.Run(r.Context(), entity.Document{Name: in.Name, Content: in.Content, MediaType: mt})
	if err != nil {
		writeError(w, err)
		return
	}

	if detailed {
		match, err := s.deps.Matcher.Detailed(r.Context(), text, jd)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, match)
		return
	}

	score, err := s.deps.Matcher.Score(r.Context(), text, jd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"score": score})
}
