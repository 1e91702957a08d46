package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"vidgrab/internal/ui"
)

func SetupRoutes(handler *Handler, page *ui.TemplateHandler) *mux.Router {
	router := mux.NewRouter()

	// CORS middleware
	router.Use(corsMiddleware)

	// Page and its form posts
	router.HandleFunc("/", page.ServeIndex).Methods("GET")
	router.HandleFunc("/analyze", handler.AnalyzeForm).Methods("POST")
	router.HandleFunc("/download/{kind}", handler.DownloadForm).Methods("POST")
	router.HandleFunc("/history/clear", handler.ClearHistoryForm).Methods("POST")
	router.HandleFunc("/history/{id}/redownload", handler.RedownloadForm).Methods("POST")
	router.HandleFunc("/files/{name}", handler.ServeFile).Methods("GET")
	router.HandleFunc("/health", handler.Health).Methods("GET")

	// API routes
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/config", handler.GetConfig).Methods("GET")
	api.HandleFunc("/state", handler.GetState).Methods("GET")
	api.HandleFunc("/history", handler.GetHistory).Methods("GET")
	api.HandleFunc("/analyze", handler.Analyze).Methods("POST")
	api.HandleFunc("/download/{kind}", handler.Download).Methods("POST")
	api.HandleFunc("/history/{id}/redownload", handler.Redownload).Methods("POST")

	return router
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
