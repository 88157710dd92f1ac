package api

import "net/http"

func Router(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", h.Health)

	mux.HandleFunc("GET /v1/evaluators/{name}/status", h.EvaluatorStatus)
	mux.HandleFunc("POST /v1/evaluators/{name}/start", h.EvaluatorStart)
	mux.HandleFunc("POST /v1/evaluators/{name}/stop", h.EvaluatorStop)
	mux.HandleFunc("POST /v1/evaluators/{name}/run", h.EvaluatorRun)

	mux.HandleFunc("GET /v1/messages", h.ListMessages)

	mux.HandleFunc("GET /v1/alerts", h.ListAlerts)
	mux.HandleFunc("POST /v1/alerts/{id}/actions/{idx}", h.InvokeAlertAction)

	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("reminder-engine"))
	})

	return mux
}
