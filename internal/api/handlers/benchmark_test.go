package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hugh/hr-manager/internal/api/dto"
	"github.com/hugh/hr-manager/internal/database/models"
	"github.com/hugh/hr-manager/internal/users"
)

func benchPartners(n int) []models.Partner {
	adresse := "10 rue de la Paix, 75002 Paris"
	list := make([]models.Partner, n)
	for i := range list {
		list[i] = models.Partner{
			NomCompagnie: fmt.Sprintf("Société %d", i),
			Siren:        fmt.Sprintf("%09d", i),
			NumeroTva:    fmt.Sprintf("FR12%09d", i),
			Contacts: []models.Contact{
				{Nom: "Martin", Prenom: "Luc", Email: "luc.martin@example.com", Telephone: "+33611223344", Role: "DAF"},
				{Nom: "Petit", Prenom: "Anne", Direction: "Achats"},
			},
			Activites: []string{"Conseil", "Formation", "Audit"},
			Adresse:   &adresse,
			Active:    true,
		}
		list[i].ID = uint(i + 1)
	}
	return list
}

func benchUsers(n int) []users.Summary {
	list := make([]users.Summary, n)
	for i := range list {
		list[i] = users.Summary{
			ID:        uint(i + 1),
			Nom:       "Dupont",
			Prenom:    "Claire",
			Email:     fmt.Sprintf("user%d@example.com", i),
			Telephone: "+33612345678",
			Role:      models.RoleRessource,
			Active:    true,
		}
	}
	return list
}

// BenchmarkJSONSerialization benchmarks JSON encoding of common response types
func BenchmarkJSONSerialization(b *testing.B) {
	b.Run("ErrorResponse", func(b *testing.B) {
		resp := dto.ErrorResponse{
			Error: "Validation failed",
			Details: map[string]string{
				"siren":     "SIREN must be exactly 9 digits",
				"numeroTva": "VAT number is invalid",
			},
		}
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = json.Marshal(resp)
		}
	})

	b.Run("UsersResponse", func(b *testing.B) {
		resp := dto.UsersResponse{Message: "Users retrieved successfully", Users: benchUsers(50)}
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = json.Marshal(resp)
		}
	})

	b.Run("PartnersResponse", func(b *testing.B) {
		resp := dto.PartnersResponse{Message: "Partenaires retrieved successfully", Partenaires: benchPartners(50)}
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = json.Marshal(resp)
		}
	})
}

// BenchmarkRequestValidation benchmarks decode + normalize + validate of write requests
func BenchmarkRequestValidation(b *testing.B) {
	b.Run("CreateUserRequest", func(b *testing.B) {
		body := []byte(`{"nom":"Durand","prenom":"Élodie","email":" Elodie@Example.com ","telephone":"+33612345678","role":"Gestionnaire"}`)
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			var req dto.CreateUserRequest
			_ = json.Unmarshal(body, &req)
			req.Normalize()
			_ = req.Validate()
		}
	})

	b.Run("CreatePartnerRequest", func(b *testing.B) {
		body := []byte(`{"nomCompagnie":"Acme","siren":"123 456 789","numeroTva":"fr12123456789","contacts":[{"nom":"Martin","email":"luc@acme.fr"}],"activites":[" Conseil ",""]}`)
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			var req dto.CreatePartnerRequest
			_ = json.Unmarshal(body, &req)
			req.Normalize()
			_ = req.Validate()
		}
	})
}

func BenchmarkWriteJSON(b *testing.B) {
	b.Run("SmallResponse", func(b *testing.B) {
		resp := dto.SuccessResponse{Message: "OK"}
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			w := httptest.NewRecorder()
			writeJSON(w, http.StatusOK, resp)
		}
	})

	b.Run("LargeResponse", func(b *testing.B) {
		resp := dto.PartnersResponse{Message: "Partenaires retrieved successfully", Partenaires: benchPartners(200)}
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			w := httptest.NewRecorder()
			writeJSON(w, http.StatusOK, resp)
		}
	})
}

func BenchmarkDecodeJSON(b *testing.B) {
	body := []byte(`{"email":"user@example.com","password":"Testpassword1!"}`)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
		var req dto.LoginRequest
		_ = decodeJSON(w, r, &req)
	}
}

// BenchmarkParallelRequestParsing benchmarks request parsing with parallelism
func BenchmarkParallelRequestParsing(b *testing.B) {
	jsonData := []byte(`{"email":"user@example.com","password":"Testpassword1!"}`)

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			var req dto.LoginRequest
			_ = json.Unmarshal(jsonData, &req)
			_ = req.Validate()
		}
	})
}
