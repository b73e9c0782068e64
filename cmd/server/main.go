package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/freelance-ledger/internal/events/kafka"
	"github.com/sheikh-saqib/freelance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/freelance-ledger/internal/ledger"
	"github.com/sheikh-saqib/freelance-ledger/internal/logging"
	"github.com/sheikh-saqib/freelance-ledger/internal/milestones"
	"github.com/sheikh-saqib/freelance-ledger/internal/storage/memory"
	"github.com/sheikh-saqib/freelance-ledger/internal/storage/postgres"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	godotenv.Load()

	logCfg := logging.DefaultConfig()
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		logCfg.Level = lvl
	}
	log, err := logging.New(logCfg)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	var store interfaces.LedgerStore
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			log.Fatal("open postgres", zap.Error(err))
		}
		store = postgres.NewPostgresLedgerStore(db)
		log.Info("using postgres store")
	} else {
		store = memory.NewMemoryLedgerStore()
		log.Info("using in-memory store")
	}

	var publisher interfaces.EventPublisher
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		publisher = kafka.NewPublisher(strings.Split(brokers, ","))
		log.Info("kafka publisher enabled", zap.String("brokers", brokers))
	}

	engine := ledger.NewLedger(store, log, publisher)
	gigs := milestones.NewService(memory.NewMemoryMilestoneStore(), engine)

	srv := &server{engine: engine, gigs: gigs, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("POST /transactions", srv.withUser(srv.createTransaction))
	mux.HandleFunc("GET /transactions", srv.withUser(srv.listTransactions))
	mux.HandleFunc("GET /transactions/{id}", srv.withUser(srv.getTransaction))
	mux.HandleFunc("PUT /transactions/{id}", srv.withUser(srv.updateTransaction))
	mux.HandleFunc("DELETE /transactions/{id}", srv.withUser(srv.deleteTransaction))
	mux.HandleFunc("POST /transactions/import", srv.withUser(srv.importTransactions))

	mux.HandleFunc("GET /balance", srv.withUser(srv.getBalance))
	mux.HandleFunc("PUT /balance", srv.withUser(srv.setBalance))

	mux.HandleFunc("POST /gigs", srv.withUser(srv.createGig))
	mux.HandleFunc("POST /gigs/{id}/milestones", srv.withUser(srv.addMilestone))
	mux.HandleFunc("GET /gigs/{id}/milestones", srv.withUser(srv.listMilestones))
	mux.HandleFunc("POST /milestones/{id}/payment", srv.withUser(srv.logMilestonePayment))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	log.Info("starting server", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

type server struct {
	engine *ledger.Ledger
	gigs   *milestones.Service
	log    *zap.Logger
}

// identity carries the caller established by the upstream auth middleware.
// This process trusts the X-User-ID / X-User-Role headers; authentication
// itself lives in front of it.
type identity struct {
	userID string
	role   string
}

func (s *server) withUser(h func(http.ResponseWriter, *http.Request, identity)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := identity{
			userID: r.Header.Get("X-User-ID"),
			role:   r.Header.Get("X-User-Role"),
		}
		if id.userID == "" {
			writeJSONStatus(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		h(w, r, id)
	}
}

// transactionRequest mirrors ledger.TransactionInput with pointers on the
// required fields so that omitted keys are distinguishable from zero values.
type transactionRequest struct {
	Amount        *decimal.Decimal `json:"amount"`
	Type          *string          `json:"type"`
	TaxPercentage *decimal.Decimal `json:"taxPercentage"`
	Category      string           `json:"category"`
	Description   string           `json:"description"`
}

func (req transactionRequest) input() (ledger.TransactionInput, bool) {
	if req.Amount == nil || req.Type == nil || req.TaxPercentage == nil {
		return ledger.TransactionInput{}, false
	}
	return ledger.TransactionInput{
		Amount:        *req.Amount,
		Type:          *req.Type,
		TaxPercentage: *req.TaxPercentage,
		Category:      req.Category,
		Description:   req.Description,
	}, true
}

func (s *server) createTransaction(w http.ResponseWriter, r *http.Request, id identity) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	in, ok := req.input()
	if !ok {
		writeJSONStatus(w, http.StatusBadRequest, map[string]string{"message": "amount, type, and taxPercentage are required"})
		return
	}

	result, err := s.engine.Create(r.Context(), id.userID, in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

func (s *server) listTransactions(w http.ResponseWriter, r *http.Request, id identity) {
	start, end, err := dateRange(r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		writeJSONStatus(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	txs, err := s.engine.List(r.Context(), id.userID, start, end)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusOK, txs)
}

func (s *server) getTransaction(w http.ResponseWriter, r *http.Request, id identity) {
	tx, err := s.engine.Get(r.Context(), id.userID, id.role, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusOK, tx)
}

func (s *server) updateTransaction(w http.ResponseWriter, r *http.Request, id identity) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	in, ok := req.input()
	if !ok {
		writeJSONStatus(w, http.StatusBadRequest, map[string]string{"message": "amount, type, and taxPercentage are required"})
		return
	}

	result, err := s.engine.Update(r.Context(), id.userID, id.role, r.PathValue("id"), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusOK, result)
}

func (s *server) deleteTransaction(w http.ResponseWriter, r *http.Request, id identity) {
	balance, err := s.engine.Delete(r.Context(), id.userID, id.role, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusOK, map[string]any{
		"message":        "Transaction deleted",
		"updatedBalance": balance,
	})
}

func (s *server) importTransactions(w http.ResponseWriter, r *http.Request, id identity) {
	body := r.Body
	if file, _, err := r.FormFile("file"); err == nil {
		defer file.Close()
		body = file
	}

	result, err := s.engine.Import(r.Context(), id.userID, body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

func (s *server) getBalance(w http.ResponseWriter, r *http.Request, id identity) {
	bal, err := s.engine.Balance(r.Context(), id.userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusOK, bal)
}

func (s *server) setBalance(w http.ResponseWriter, r *http.Request, id identity) {
	var req struct {
		Balance *decimal.Decimal `json:"balance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Balance == nil {
		writeJSONStatus(w, http.StatusBadRequest, map[string]string{"message": "Balance is required"})
		return
	}

	bal, err := s.engine.SetBalance(r.Context(), id.userID, *req.Balance)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusOK, bal)
}

func (s *server) createGig(w http.ResponseWriter, r *http.Request, id identity) {
	var req struct {
		Title      string `json:"title"`
		ClientName string `json:"clientName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		writeJSONStatus(w, http.StatusBadRequest, map[string]string{"message": "title is required"})
		return
	}

	gig, err := s.gigs.CreateGig(r.Context(), id.userID, req.Title, req.ClientName)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, gig)
}

func (s *server) addMilestone(w http.ResponseWriter, r *http.Request, id identity) {
	var req milestones.MilestoneInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		writeJSONStatus(w, http.StatusBadRequest, map[string]string{"message": "title is required"})
		return
	}

	milestone, err := s.gigs.AddMilestone(r.Context(), id.userID, id.role, r.PathValue("id"), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, milestone)
}

func (s *server) listMilestones(w http.ResponseWriter, r *http.Request, id identity) {
	ms, err := s.gigs.MilestonesByGig(r.Context(), id.userID, id.role, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusOK, ms)
}

func (s *server) logMilestonePayment(w http.ResponseWriter, r *http.Request, id identity) {
	result, err := s.gigs.LogPayment(r.Context(), id.userID, id.role, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

// dateRange clamps start_date/end_date query parameters to day bounds.
func dateRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	if startStr != "" {
		d, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			return start, end, errors.New("invalid start_date, expected YYYY-MM-DD")
		}
		start = d
	}
	if endStr != "" {
		d, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			return start, end, errors.New("invalid end_date, expected YYYY-MM-DD")
		}
		end = d.Add(24*time.Hour - time.Millisecond)
	}
	if startStr != "" && endStr == "" {
		now := time.Now().UTC()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		end = today.Add(24*time.Hour - time.Millisecond)
	}
	return start, end, nil
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case ledger.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrImportRejected),
		errors.Is(err, ledger.ErrEmptyImport),
		errors.Is(err, milestones.ErrPaymentAlreadyLogged),
		errors.Is(err, milestones.ErrNoPaymentAmount):
		status = http.StatusBadRequest
	case ledger.IsNotFound(err),
		errors.Is(err, milestones.ErrGigNotFound),
		errors.Is(err, milestones.ErrMilestoneNotFound):
		status = http.StatusNotFound
	default:
		s.log.Error("request failed", zap.Error(err))
	}
	writeJSONStatus(w, status, map[string]string{"message": err.Error()})
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
