package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/keboo/deckstatus/pkg/plugin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Keys is the part of the plugin registry the debug api exposes
type Keys interface {
	Buttons() []plugin.ButtonState
	Refresh(contextID string)
}

func SetupRouter(keys Keys) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(middleware.WithValue("keys", keys))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/api/buttons", getButtons)
	r.Post("/api/buttons/{context}/refresh", refreshButton)

	return r
}

func getButtons(w http.ResponseWriter, r *http.Request) {
	keys := r.Context().Value("keys").(Keys)

	buttonsJson, err := json.Marshal(keys.Buttons())
	if err != nil {
		logrus.Errorf("cannot serialize buttons: %s", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(buttonsJson)
}

func refreshButton(w http.ResponseWriter, r *http.Request) {
	keys := r.Context().Value("keys").(Keys)
	contextID := chi.URLParam(r, "context")

	for _, b := range keys.Buttons() {
		if b.Context == contextID {
			keys.Refresh(contextID)
			w.WriteHeader(http.StatusAccepted)
			return
		}
	}

	http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}
