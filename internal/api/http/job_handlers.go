package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/careermate/careermate/internal/activity"
	auth "github.com/careermate/careermate/internal/auth/middleware"
	"github.com/careermate/careermate/internal/jobs"
)

// GET /careers
func ListCareersHandler(store *jobs.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		careers, err := store.ListCareers(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, careers)
	}
}

// POST /careers (admin)
func CreateCareerHandler(store *jobs.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c jobs.Career
		if err := decodeJSON(r, &c); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(c.Name) == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}
		id, err := store.CreateCareer(r.Context(), c)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"id": id})
	}
}

// GET /jobs
func ListJobsHandler(store *jobs.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListJobs(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /jobs/{jobID}
func GetJobHandler(store *jobs.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "jobID"))
		if err != nil {
			http.Error(w, "bad job id", http.StatusBadRequest)
			return
		}
		j, err := store.GetJob(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, j)
	}
}

// POST /jobs (admin)
func CreateJobHandler(store *jobs.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var j jobs.Job
		if err := decodeJSON(r, &j); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(j.Title) == "" || strings.TrimSpace(j.Company) == "" {
			http.Error(w, "title and company required", http.StatusBadRequest)
			return
		}
		id, err := store.CreateJob(r.Context(), j)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"id": id})
	}
}

// POST /jobs/{jobID}/apply
func ApplyJobHandler(store *jobs.Store, events *activity.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "jobID"))
		if err != nil {
			http.Error(w, "bad job id", http.StatusBadRequest)
			return
		}
		uid := auth.UserIDFromContext(r.Context())
		if err := store.Apply(r.Context(), id, uid); err != nil {
			writeErr(w, err)
			return
		}
		_ = events.Record(r.Context(), uid, activity.TypeJobApplied, chi.URLParam(r, "jobID"))
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "success",
			"message": "Application submitted successfully",
		})
	}
}
