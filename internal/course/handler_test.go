// AngelaMos | 2026
// handler_test.go

package course

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCourseValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"category": "engineering", "price": 4999}`},
		{"missing category", `{"title": "Intro to Go", "price": 4999}`},
		{"missing price", `{"title": "Intro to Go", "category": "engineering"}`},
		{"empty body", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			h := NewHandler(NewService(repo, &fakeMediaStore{}))

			req := httptest.NewRequest(
				http.MethodPost,
				"/courses",
				strings.NewReader(tt.body),
			)
			rec := httptest.NewRecorder()
			h.Create(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, repo.courses, "nothing may persist on validation failure")
		})
	}
}

func TestCreateCourseValid(t *testing.T) {
	repo := newFakeRepo()
	h := NewHandler(NewService(repo, &fakeMediaStore{}))

	body := `{"title": "Intro to Go", "category": "engineering", "price": 4999}`
	req := httptest.NewRequest(
		http.MethodPost,
		"/courses",
		strings.NewReader(body),
	)
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, repo.courses, 1)
}
