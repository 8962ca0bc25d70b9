package handler

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/sales-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/sales-dashboard-api/pkg/log"
)

const (
	CronJobTypeDailySummary = "daily-summary"
	CronJobTypeAll          = "all"
)

// CronJob is a scheduled job that can also be started by hand
type CronJob interface {
	TriggerManualSync(ctx context.Context) bool
	GetStatus() map[string]any
}

// CronJobServices holds the jobs that can be run manually
type CronJobServices struct {
	DailySummary CronJob
}

func (s CronJobServices) jobs() map[string]CronJob {
	jobs := map[string]CronJob{}
	if s.DailySummary != nil {
		jobs[CronJobTypeDailySummary] = s.DailySummary
	}
	return jobs
}

// RunCronJob starts a job in the background. The run outlives the request.
func RunCronJob(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if cronType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "cron job type not specified", nil)
			return
		}

		jobs := services.jobs()
		ctx := context.WithoutCancel(r.Context())
		started := map[string]bool{}

		if cronType == CronJobTypeAll {
			for name, job := range jobs {
				started[name] = job.TriggerManualSync(ctx)
			}
		} else {
			job, ok := jobs[cronType]
			if !ok {
				apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "invalid cron job type", map[string]any{
					"accepted": []string{CronJobTypeDailySummary, CronJobTypeAll},
				})
				return
			}
			started[cronType] = job.TriggerManualSync(ctx)
		}

		log.ForContext(r.Context()).WithField("type", cronType).Info("manual cron run requested")

		writeJSON(w, r, http.StatusAccepted, map[string]any{
			"message": "cron job started",
			"type":    cronType,
			"started": started,
		})
	}
}

func GetCronStatus(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{}
		for name, job := range services.jobs() {
			status[name] = job.GetStatus()
		}

		writeJSON(w, r, http.StatusOK, status)
	}
}
