package router

import (
	"database/sql"
	_ "embed"
	"net/http"
	"os"

	"pet-planboard/internal/adapters/attachments"
	mem "pet-planboard/internal/adapters/storage/memory"
	pg "pet-planboard/internal/adapters/storage/postgres"
	"pet-planboard/internal/domain/events"
	"pet-planboard/internal/domain/pets"
	"pet-planboard/internal/middleware"
	"pet-planboard/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed doc.json
var swaggerDoc []byte

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Directorio de blobs de adjuntos. Vacío usa ./data/attachments.
	AttachmentsDir string
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/doc.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(swaggerDoc)
	})
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	var (
		petRepo   pets.Repository
		eventRepo events.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		petRepo = pg.NewPetsRepo(db)
		eventRepo = pg.NewEventsRepo(db)
	} else {
		petRepo = mem.NewPetRepo()
		eventRepo = mem.NewEventRepo()
	}

	attDir := opts.AttachmentsDir
	if attDir == "" {
		attDir = "./data/attachments"
	}
	blobs := attachments.NewStore(attDir)

	// Services por módulo
	petsSvc := pets.NewService(petRepo)
	eventsSvc := events.NewService(eventRepo)

	// Rutas por módulo
	pets.RegisterRoutes(r, petsSvc)
	events.RegisterRoutes(r, eventsSvc, petsSvc, blobs)

	return r
}
