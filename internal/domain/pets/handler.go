package pets

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"pet-planboard/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc))
		pr.Get("/", listPetsHandler(svc))
		pr.Get("/{petID}", getPetHandler(svc))
	})
}

// createPetRequest es el cuerpo para registrar una mascota.
type createPetRequest struct {
	Name      string   `json:"name"`
	OwnerName string   `json:"owner_name"`
	Species   string   `json:"species" enums:"dog,cat,bird,rodent,reptile"`
	Breed     string   `json:"breed"`
	Sex       string   `json:"sex" enums:"male,female,unknown"`
	BirthDate string   `json:"birth_date,omitempty"` // RFC3339
	Images    []string `json:"images,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

// petResponse representa el perfil de una mascota devuelto por la API.
type petResponse struct {
	ID          string `json:"id"`
	OwnerUserID string `json:"owner_user_id"`
	OwnerName   string `json:"owner_name"`

	Name    string  `json:"name"`
	Species Species `json:"species"`
	Breed   string  `json:"breed"`
	Sex     Sex     `json:"sex"`

	BirthDate *time.Time `json:"birth_date,omitempty"`
	Microchip string     `json:"microchip,omitempty"`

	Images []string `json:"images,omitempty"`
	Notes  string   `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// createPetHandler godoc
// @Summary Registrar mascota
// @Description Registra una mascota a nombre del usuario autenticado. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>`.
// @Tags pets
// @Accept json
// @Produce json
// @Param payload body createPetRequest true "Perfil de la mascota"
// @Success 201 {object} petResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Router /pets [post]
func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := CreateInput{
			Name:      req.Name,
			OwnerName: req.OwnerName,
			Species:   req.Species,
			Breed:     req.Breed,
			Sex:       req.Sex,
			Images:    req.Images,
			Notes:     req.Notes,
		}
		if strings.TrimSpace(req.BirthDate) != "" {
			t, err := time.Parse(time.RFC3339, req.BirthDate)
			if err != nil {
				http.Error(w, "birth_date must be RFC3339", http.StatusBadRequest)
				return
			}
			in.BirthDate = &t
		}

		p, err := svc.Create(r.Context(), claims.UserID, in)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

// listPetsHandler godoc
// @Summary Listar mascotas
// @Description Lista todas las mascotas de la clínica (feed del planboard). Con `owner=me` lista solo las del usuario autenticado.
// @Tags pets
// @Produce json
// @Param owner query string false "me para filtrar por dueño"
// @Success 200 {array} petResponse
// @Failure 401 {string} string "unauthorized"
// @Router /pets [get]
func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var (
			items []Pet
			err   error
		)
		if r.URL.Query().Get("owner") == "me" {
			items, err = svc.ListByOwner(r.Context(), claims.UserID)
		} else {
			items, err = svc.List(r.Context())
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getPetHandler godoc
// @Summary Perfil de una mascota
// @Tags pets
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} petResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:          p.ID,
		OwnerUserID: p.OwnerUserID,
		OwnerName:   p.OwnerName,
		Name:        p.Name,
		Species:     p.Species,
		Breed:       p.Breed,
		Sex:         p.Sex,
		BirthDate:   p.BirthDate,
		Microchip:   p.Microchip,
		Images:      p.Images,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
