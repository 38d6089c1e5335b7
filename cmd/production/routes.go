package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	generate_excel "garment-golang/http-server/generate-report/generate-excel"
	getjobs "garment-golang/http-server/jobs/get"
	savejobs "garment-golang/http-server/jobs/save"
	upjobs "garment-golang/http-server/jobs/update"
	getstations "garment-golang/http-server/stations/get"
	savestations "garment-golang/http-server/stations/save"
	getworktypes "garment-golang/http-server/work-types/get"
	"garment-golang/internal/config"
	"garment-golang/internal/middleware/auth"
	"garment-golang/internal/service/assign"
	"garment-golang/internal/service/quality"
	"garment-golang/internal/service/report"
	"garment-golang/internal/service/scheduler"
	"garment-golang/internal/storage/mysql"
)

func routes(
	cfg config.Config,
	log *slog.Logger,
	storage *mysql.Storage,
	jobScheduler *scheduler.Scheduler,
	assignor *assign.Assignor,
	qualityService *quality.Service,
	reportService *report.Service,
) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:8081", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", auth.ActorHeader},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// Queue view and job history
	router.Get("/api/jobs/queue", getjobs.GetQueue(log, jobScheduler))
	router.Get("/api/jobs/{id}", getjobs.GetJobDetails(log, jobScheduler))

	// Job commands
	router.Post("/api/jobs", savejobs.CreateJob(log, jobScheduler))
	router.Post("/api/jobs/{id}/rework", savejobs.CreateRework(log, qualityService))
	router.Post("/api/jobs/{id}/status", upjobs.ChangeStatus(log, jobScheduler))
	router.Post("/api/jobs/{id}/assign", upjobs.AssignStation(log, assignor))
	router.Post("/api/jobs/{id}/production", upjobs.LogProduction(log, jobScheduler))
	router.Post("/api/jobs/{id}/qc", upjobs.PerformQCCheck(log, qualityService))

	// Station picker for the assignment dialog
	router.Get("/api/stations", getstations.GetStations(log, storage))

	// Work-type registry for the creation and QC dialogs
	router.Get("/api/work-types", getworktypes.GetWorkTypes(log))

	// Queue snapshot export
	router.Get("/api/report/excel", generate_excel.GenerateReportExcel(log, reportService))

	// Station administration
	adminRouter := chi.NewRouter()
	adminRouter.Use(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass))

	adminRouter.Get("/stations/all", getstations.GetAllStationsAdmin(log, storage))
	adminRouter.Post("/stations", savestations.SaveStationAdmin(log, storage))
	adminRouter.Put("/stations/{id}", savestations.UpdateStationAdmin(log, storage))

	router.Mount("/api/admin", adminRouter)

	// Static files for the Vue front end, SPA fallback to index.html.
	frontendDir := "./frontend-dist"
	if _, err := os.Stat(frontendDir); os.IsNotExist(err) {
		log.Warn("frontend dir not found, serving API only", "path", frontendDir)
		return router
	}

	fileServer := http.StripPrefix("/", http.FileServer(http.Dir(frontendDir)))

	router.Handle("/assets/*", fileServer)
	router.Handle("/js/*", fileServer)
	router.Handle("/css/*", fileServer)
	router.Handle("/img/*", fileServer)

	router.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(frontendDir, r.URL.Path)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			http.ServeFile(w, r, path)
			return
		}
		http.ServeFile(w, r, filepath.Join(frontendDir, "index.html"))
	})

	return router
}
