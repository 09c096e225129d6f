package handlers

import (
	"net/http"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"titlechat/internal/chat"
	"titlechat/internal/records"
	"titlechat/internal/region"
	"titlechat/internal/session"
)

// Deps is what the router serves.
type Deps struct {
	Records        *records.FileStore
	Chat           chat.Replier
	Regions        *region.Registry
	Sessions       *session.Manager
	Transcripts    TranscriptReader
	StaticDir      string
	AllowedOrigins []string
	Logger         *zap.Logger
}

// NewRouter builds the full HTTP surface with CORS, panic recovery and
// access logging applied.
func NewRouter(d Deps) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/check-client", HandleCheckClient(d.Records, d.Logger)).Methods(http.MethodPost)
	r.HandleFunc("/chat", HandleChat(d.Chat, d.Logger)).Methods(http.MethodPost)
	r.HandleFunc("/regions", HandleRegionList(d.Regions)).Methods(http.MethodGet)
	r.HandleFunc("/regions/{slug:[A-Za-z-]+}.json", HandleRegion(d.Regions)).Methods(http.MethodGet)

	if d.Sessions != nil {
		r.HandleFunc("/session", HandleCreateSession(d.Sessions)).Methods(http.MethodPost)
		r.HandleFunc("/session/{id}/input", HandleSessionInput(d.Sessions, d.Logger)).Methods(http.MethodPost)
	}
	if d.Transcripts != nil {
		r.HandleFunc("/session/{id}/transcript", HandleTranscript(d.Transcripts, d.Logger)).Methods(http.MethodGet)
	}

	// The browser-side fallback reader fetches the raw records file.
	r.HandleFunc("/data/client_data.csv", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		http.ServeFile(w, req, d.Records.Path)
	}).Methods(http.MethodGet)

	if d.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(d.StaticDir))).Methods(http.MethodGet, http.MethodHead)
	}

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(origins),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type"}),
	)

	accessLog := zap.NewStdLog(d.Logger.Named("http")).Writer()
	return gorillahandlers.CombinedLoggingHandler(accessLog,
		gorillahandlers.RecoveryHandler(gorillahandlers.PrintRecoveryStack(false))(cors(r)))
}
