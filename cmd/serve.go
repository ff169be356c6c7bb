package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/smelter-recon/internal/config"
	"github.com/sells-group/smelter-recon/internal/ingest"
	"github.com/sells-group/smelter-recon/internal/model"
	"github.com/sells-group/smelter-recon/internal/recon"
	"github.com/sells-group/smelter-recon/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the reconciliation HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		router := buildRouter(st, cfg.Recon, cfg.Server.AllowedOrigins)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// compareRequest is the POST /api/compare payload.
type compareRequest struct {
	Supplier  string                   `json:"supplier"`
	Standards []string                 `json:"standards,omitempty"`
	Declared  []model.DeclaredFacility `json:"declared"`
}

// buildRouter assembles the API routes over the given store.
func buildRouter(st store.Store, rc config.ReconConfig, origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/compare", func(w http.ResponseWriter, req *http.Request) {
		var body compareRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if body.Supplier == "" {
			writeError(w, http.StatusBadRequest, "supplier is required")
			return
		}
		if len(body.Declared) == 0 {
			writeError(w, http.StatusBadRequest, "declared is required")
			return
		}

		standards, err := parseStandards(body.Standards)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		// API clients send the same template metal variants the spreadsheets
		// do; canonicalize before matching, as the ingest path does.
		for i := range body.Declared {
			body.Declared[i].Metal = ingest.CanonicalMetal(body.Declared[i].Metal)
		}

		ctx := req.Context()
		refs, err := st.ListReference(ctx, standards)
		if err != nil {
			zap.L().Error("list reference failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list reference failed")
			return
		}
		if len(refs) == 0 {
			writeError(w, http.StatusConflict, "reference set is empty")
			return
		}

		index := recon.BuildIndex(refs)
		engine := recon.NewEngine(index, recon.Options{
			FuzzyFloor:   rc.FuzzyFloor,
			ClassifyGate: rc.ClassifyGate,
			Workers:      rc.Workers,
		})

		outcomes, err := engine.Compare(ctx, body.Supplier, body.Declared)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "compare failed")
			return
		}
		summary := recon.Summarize(outcomes, index.Standards(), metalsOf(body.Declared))

		run, err := st.CreateRun(ctx, body.Supplier, summary, outcomes)
		if err != nil {
			zap.L().Error("create run failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "create run failed")
			return
		}

		detail, _ := json.Marshal(map[string]any{
			"run_id":   run.ID,
			"supplier": body.Supplier,
			"declared": len(body.Declared),
		})
		if err := st.RecordAudit(ctx, model.AuditComparisonRun, "api", string(detail)); err != nil {
			zap.L().Warn("audit record failed", zap.Error(err))
		}

		writeJSON(w, http.StatusCreated, run)
	})

	r.Get("/api/runs", func(w http.ResponseWriter, req *http.Request) {
		limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = 50
		}
		runs, err := st.ListRuns(req.Context(), store.RunFilter{
			Supplier: req.URL.Query().Get("supplier"),
			Limit:    limit,
		})
		if err != nil {
			zap.L().Error("list runs failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list runs failed")
			return
		}
		if runs == nil {
			runs = []model.ComparisonRun{}
		}
		writeJSON(w, http.StatusOK, runs)
	})

	r.Get("/api/runs/{id}", func(w http.ResponseWriter, req *http.Request) {
		run, err := st.GetRun(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeJSON(w, http.StatusOK, run)
	})

	r.Get("/api/reference/status", func(w http.ResponseWriter, req *http.Request) {
		counts, err := st.ReferenceCounts(req.Context())
		if err != nil {
			zap.L().Error("reference counts failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "reference counts failed")
			return
		}
		if counts == nil {
			counts = []store.ReferenceCount{}
		}
		writeJSON(w, http.StatusOK, counts)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
