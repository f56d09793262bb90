package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/finsight/finsight/internal/api/middleware"
	"github.com/finsight/finsight/internal/extract"
	"github.com/finsight/finsight/internal/pipeline"
)

const maxUploadBytes = 32 << 20

// uploadStatement handles POST /api/statements/upload: a multipart form with
// a `file` part, an optional `password` and an optional `skip_gap_check`
// flag. Continuity rejections come back as a 200 with a structured rejected
// outcome; extraction problems are the caller's to fix and map to 400.
func (a *API) uploadStatement(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	state := &pipeline.State{
		UserID:       userID,
		Filename:     header.Filename,
		Password:     r.FormValue("password"),
		Content:      content,
		SkipGapCheck: r.FormValue("skip_gap_check") == "true",
	}

	outcome, err := a.pipe.Run(r.Context(), state)
	if err != nil {
		switch {
		case errors.Is(err, extract.ErrPasswordProtected):
			middleware.WriteError(w, http.StatusBadRequest,
				"statement is password-protected; provide the correct password")
		case errors.Is(err, extract.ErrExtractionFailed):
			middleware.WriteError(w, http.StatusBadRequest, "could not extract text from the file")
		default:
			a.log.Error().Err(err).Str("user_id", userID).Msg("statement upload failed")
			middleware.WriteError(w, http.StatusInternalServerError, "failed to process statement")
		}
		return
	}

	middleware.WriteJSON(w, http.StatusOK, outcome)
}
