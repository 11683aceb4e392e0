package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-forecast-api/pkg/apiErrors"
)

const (
	CronJobTypeForecastSnapshots = "forecast-snapshots"
	CronJobTypeAll               = "all"
)

// SyncJob é uma sincronização agendada que também pode ser disparada manualmente
type SyncJob interface {
	TriggerManualSync() bool
	GetStatus() map[string]any
}

// CronJobServices contém os serviços de cron disponíveis para execução manual
type CronJobServices struct {
	ForecastSnapshotSyncService SyncJob
}

func (s CronJobServices) jobs() map[string]SyncJob {
	jobs := map[string]SyncJob{}
	if s.ForecastSnapshotSyncService != nil {
		jobs[CronJobTypeForecastSnapshots] = s.ForecastSnapshotSyncService
	}
	return jobs
}

// RunCronJob executa manualmente uma cron job específica
func RunCronJob(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if cronType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Tipo de cron job não especificado", nil)
			return
		}

		jobs := services.jobs()

		var selected map[string]SyncJob
		switch cronType {
		case CronJobTypeAll:
			selected = jobs
		case CronJobTypeForecastSnapshots:
			job, ok := jobs[cronType]
			if !ok {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de sincronização não disponível", nil)
				return
			}
			selected = map[string]SyncJob{cronType: job}
		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de cron job inválido. Valores aceitos: forecast-snapshots, all", nil)
			return
		}

		started := make(map[string]bool, len(selected))
		anyStarted := false
		for name, job := range selected {
			started[name] = job.TriggerManualSync()
			anyStarted = anyStarted || started[name]
		}

		logrus.WithFields(logrus.Fields{
			"type":    cronType,
			"started": started,
		}).Info("Execução manual de cron job solicitada")

		if !anyStarted && len(selected) > 0 {
			apiErrors.WriteError(w, apiErrors.ErrConflict, "Sincronização já em andamento", started)
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]any{
			"message": "Cron job iniciada com sucesso",
			"type":    cronType,
			"started": started,
		})
	}
}

// GetCronStatus retorna o status de uma cron job, ou de todas com o tipo "all"
func GetCronStatus(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		jobs := services.jobs()

		if cronType != CronJobTypeAll {
			job, ok := jobs[cronType]
			if !ok {
				apiErrors.WriteError(w, apiErrors.ErrResourceNotFound, "Cron job desconhecida", map[string]string{"type": cronType})
				return
			}
			writeJSON(w, http.StatusOK, job.GetStatus())
			return
		}

		status := map[string]any{}
		for name, job := range jobs {
			status[name] = job.GetStatus()
		}

		writeJSON(w, http.StatusOK, status)
	}
}
