package handlers

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strings"

	"gigcast/models/event"
	"gigcast/models/forecast"
	"gigcast/report"
	services "gigcast/service"
	"gigcast/util"

	"github.com/dustin/go-humanize"
)

const (
	CITY_FORM_FIELD   = "user_city"
	GENRE_FORM_FIELD  = "user_genre"
	CITY_QUERY_ARG    = "city"
	GENRE_QUERY_ARG   = "genre"
	NO_DATA_MESSAGE   = "No data available for this city/genre"
	MISSING_FIELDS    = "Please enter both a city and a genre"
	REQUEST_ID_HEADER = "X-Request-Id"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// GigDateProvider is the part of the service the handlers rely on.
type GigDateProvider interface {
	GetGigDates(ctx context.Context, q event.Query) (*report.Report, *forecast.Forecast, error)
	GetOptions(ctx context.Context) ([]string, []string, error)
}

type pageData struct {
	Cities   []string
	Genres   []string
	City     string
	Genre    string
	Error    string
	WeekRec  []template.HTML
	DateRec  *dateRec
	Summary  string
	ChartURL string
}

type dateRec struct {
	Sections []report.DateSection
	Best     template.HTML
	Worst    template.HTML
}

type GigHandler struct {
	gigDateService GigDateProvider
}

func NewGigHandler(gigDateService GigDateProvider) *GigHandler {
	return &GigHandler{gigDateService: gigDateService}
}

// Index handles GET /
func (h *GigHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, h.basePage(r.Context()))
}

// GetDates handles POST /get_dates/ with the user_city and user_genre form fields.
func (h *GigHandler) GetDates(w http.ResponseWriter, r *http.Request) {
	page := h.basePage(r.Context())
	if err := r.ParseForm(); err != nil {
		page.Error = "Invalid form submission"
		h.render(w, r, http.StatusBadRequest, page)
		return
	}

	page.City = strings.TrimSpace(r.PostForm.Get(CITY_FORM_FIELD))
	page.Genre = strings.TrimSpace(r.PostForm.Get(GENRE_FORM_FIELD))
	if page.City == "" || page.Genre == "" {
		page.Error = MISSING_FIELDS
		h.render(w, r, http.StatusBadRequest, page)
		return
	}

	rep, f, err := h.gigDateService.GetGigDates(r.Context(), event.Query{City: page.City, Genre: page.Genre})
	if err != nil {
		status := h.errorStatus(r, err)
		page.Error = NO_DATA_MESSAGE
		if status != http.StatusNotFound {
			page.Error = "Something went wrong while building your forecast"
		}
		h.render(w, r, status, page)
		return
	}

	page.WeekRec = weekRec(rep.Weekly)
	page.DateRec = &dateRec{
		Sections: rep.Dates.Sections(),
		Best:     template.HTML(rep.Dates.BestSentence(bold)),
		Worst:    template.HTML(rep.Dates.WorstSentence(bold)),
	}
	page.Summary = fmt.Sprintf("Based on %s days of past gigs.", humanize.Comma(int64(f.TrainingPoints)))
	page.ChartURL = chartURL(page.City, page.Genre)
	h.render(w, r, http.StatusOK, page)
}

// Chart handles GET /chart?city=&genre= and renders the forecast with go-echarts.
func (h *GigHandler) Chart(w http.ResponseWriter, r *http.Request) {
	vals := r.URL.Query()
	city := strings.TrimSpace(vals.Get(CITY_QUERY_ARG))
	genre := strings.TrimSpace(vals.Get(GENRE_QUERY_ARG))
	if city == "" || genre == "" {
		http.Error(w, "Missing argument "+CITY_QUERY_ARG+" or "+GENRE_QUERY_ARG, http.StatusBadRequest)
		return
	}

	rep, f, err := h.gigDateService.GetGigDates(r.Context(), event.Query{City: city, Genre: genre})
	if err != nil {
		status := h.errorStatus(r, err)
		if status == http.StatusNotFound {
			http.Error(w, NO_DATA_MESSAGE, status)
		} else {
			http.Error(w, "Internal server error", status)
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := util.RenderForecastPage(w, f, &rep.Weekly); err != nil {
		log.Printf("[GigHandler] request_id=%s error rendering chart: %v", services.RequestID(r.Context()), err)
	}
}

// Ping handles GET /ping
func (h *GigHandler) Ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "pong"})
}

func (h *GigHandler) basePage(ctx context.Context) pageData {
	cities, genres, err := h.gigDateService.GetOptions(ctx)
	if err != nil {
		log.Printf("[GigHandler] request_id=%s could not load form options: %v", services.RequestID(ctx), err)
	}
	return pageData{Cities: cities, Genres: genres}
}

// errorStatus maps service errors to 404 for missing data and 500 otherwise.
func (h *GigHandler) errorStatus(r *http.Request, err error) int {
	if errors.Is(err, services.ErrNoData) {
		return http.StatusNotFound
	}
	log.Printf("[GigHandler] request_id=%s error building gig dates: %v", services.RequestID(r.Context()), err)
	return http.StatusInternalServerError
}

func (h *GigHandler) render(w http.ResponseWriter, r *http.Request, status int, page pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := indexTemplate.Execute(w, page); err != nil {
		log.Printf("[GigHandler] request_id=%s error rendering page: %v", services.RequestID(r.Context()), err)
	}
}

func weekRec(weekly report.WeeklyReport) []template.HTML {
	sentences := weekly.Sentences(bold)
	out := make([]template.HTML, len(sentences))
	for i, s := range sentences {
		out[i] = template.HTML(s)
	}
	return out
}

// bold escapes s before wrapping it, so the surrounding sentence can be trusted as HTML.
func bold(s string) string {
	return "<b>" + template.HTMLEscapeString(s) + "</b>"
}

func chartURL(city, genre string) string {
	vals := url.Values{}
	vals.Set(CITY_QUERY_ARG, city)
	vals.Set(GENRE_QUERY_ARG, genre)
	return "/chart?" + vals.Encode()
}
