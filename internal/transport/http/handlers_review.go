package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mvaleed/innkeep/internal/domain"
	"github.com/mvaleed/innkeep/internal/storage"
)

type reviewResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName,omitempty"`
	HotelID   string `json:"hotelId"`
	HotelName string `json:"hotelName,omitempty"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toReviewResponse(rv *domain.Review) reviewResponse {
	return reviewResponse{
		ID:        rv.ID.String(),
		UserID:    rv.UserID.String(),
		UserName:  rv.UserName,
		HotelID:   rv.HotelID.String(),
		HotelName: rv.HotelName,
		Rating:    rv.Rating,
		Comment:   rv.Comment,
		CreatedAt: rv.CreatedAt.Format(time.RFC3339),
		UpdatedAt: rv.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *Server) writeReviews(w http.ResponseWriter, r *http.Request, filter storage.ReviewFilter) {
	reviews, err := s.services.Reviews.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]reviewResponse, len(reviews))
	for i := range reviews {
		out[i] = toReviewResponse(&reviews[i])
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"reviews": out,
		"count":   len(out),
	})
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	var filter storage.ReviewFilter
	var err error
	if filter.HotelID, err = queryUUID(r, "hotelId"); err != nil {
		s.writeError(w, err)
		return
	}
	if filter.UserID, err = queryUUID(r, "userId"); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeReviews(w, r, filter)
}

// handleListHotelReviews serves both /hotels/{id}/reviews and /reviews/hotel/{hotelId}.
func (s *Server) handleListHotelReviews(w http.ResponseWriter, r *http.Request) {
	param := "id"
	if chi.URLParam(r, "hotelId") != "" {
		param = "hotelId"
	}
	hotelID, err := pathUUID(r, param)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeReviews(w, r, storage.ReviewFilter{HotelID: &hotelID})
}

func (s *Server) handleListUserReviews(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "userId")
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeReviews(w, r, storage.ReviewFilter{UserID: &userID})
}

func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	review, err := s.services.Reviews.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toReviewResponse(review))
}

type createReviewRequest struct {
	HotelID string `json:"hotelId" validate:"required,uuid"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	if claims == nil {
		s.writeError(w, domain.ErrUnauthorized)
		return
	}

	var req createReviewRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	review, err := s.services.Reviews.Create(r.Context(), claims.UserID, uuid.MustParse(req.HotelID), req.Rating, req.Comment)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, toReviewResponse(review))
}

type updateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	if claims == nil {
		s.writeError(w, domain.ErrUnauthorized)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req updateReviewRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	review, err := s.services.Reviews.Update(r.Context(), claims.UserID, id, req.Rating, req.Comment)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toReviewResponse(review))
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	if claims == nil {
		s.writeError(w, domain.ErrUnauthorized)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.services.Reviews.Delete(r.Context(), claims.UserID, id); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusNoContent, nil)
}
