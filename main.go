package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"salesflow/internal/audit"
	"salesflow/internal/auth"
	catalogrepo "salesflow/internal/catalog/infrastructure/postgres"
	cataloghttp "salesflow/internal/catalog/interfaces/http"
	"salesflow/internal/notify"
	"salesflow/internal/observability/metrics"
	"salesflow/internal/reporting/application"
	reportingrepo "salesflow/internal/reporting/infrastructure/postgres"
	reportinghttp "salesflow/internal/reporting/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	workflowCfg, err := application.LoadConfig()
	if err != nil {
		logger.Fatalf("workflow config error: %v", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)
	companyRepo := catalogrepo.NewCompanyRepository(db)
	companyChecker := auth.NewCompanyChecker(db)

	reportRepo, err := reportingrepo.NewReportRepository(db)
	if err != nil {
		logger.Fatalf("report repository error: %v", err)
	}

	workflowOpts := []application.WorkflowOption{
		application.WithAuditLogger(auditRepo),
		application.WithLogger(logger),
		application.WithMaxSelection(workflowCfg.MaxSelection),
	}
	if workflowCfg.WebhookURL != "" {
		notifier := notify.NewWebhookNotifier(workflowCfg.WebhookURL, workflowCfg.WebhookTimeout())
		workflowOpts = append(workflowOpts, application.WithNotifier(notifier))
	}
	workflowService, err := application.NewWorkflowService(reportRepo, workflowOpts...)
	if err != nil {
		logger.Fatalf("workflow service error: %v", err)
	}

	reportHandler, err := reportinghttp.NewReportHandler(workflowService, reportRepo, companyChecker, workflowCfg, auditRepo)
	if err != nil {
		logger.Fatalf("report handler error: %v", err)
	}
	companyHandler, err := cataloghttp.NewCompanyHandler(companyRepo)
	if err != nil {
		logger.Fatalf("company handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/reports", reportHandler)
	mux.Handle("/api/v1/reports/", reportHandler)
	mux.Handle("/api/v1/companies", companyHandler)
	mux.Handle("/api/v1/companies/", companyHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL string
	HTTPAddr    string
	JWTSecret   string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:   getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
