package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// GigRoutes are the handlers mounted by the Router.
type GigRoutes interface {
	Index(w http.ResponseWriter, r *http.Request)
	GetDates(w http.ResponseWriter, r *http.Request)
	Chart(w http.ResponseWriter, r *http.Request)
	Ping(w http.ResponseWriter, r *http.Request)
}

type Router struct {
	gigHandler     GigRoutes
	metricsHandler http.Handler
	middlewares    []mux.MiddlewareFunc
	router         *mux.Router
}

// NewRouter creates a router with the app's routes.
func NewRouter(
	gigHandler GigRoutes,
	metricsHandler http.Handler,
	router *mux.Router,
	middlewares ...mux.MiddlewareFunc) *Router {
	return &Router{
		gigHandler:     gigHandler,
		metricsHandler: metricsHandler,
		middlewares:    middlewares,
		router:         router,
	}
}

func (r *Router) RegisterRoutes() {
	r.router.Use(r.middlewares...)

	r.router.HandleFunc("/", r.gigHandler.Index).Methods("GET")

	// expects form fields user_city and user_genre
	r.router.HandleFunc("/get_dates/", r.gigHandler.GetDates).Methods("POST")

	// expects ?city={city}&genre={genre}
	r.router.HandleFunc("/chart", r.gigHandler.Chart).Methods("GET")

	r.router.HandleFunc("/ping", r.gigHandler.Ping).Methods("GET")

	if r.metricsHandler != nil {
		r.router.Handle("/metrics", r.metricsHandler).Methods("GET")
	}
}
