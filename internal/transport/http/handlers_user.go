package http

import (
	"net/http"
	"time"

	"github.com/mvaleed/innkeep/internal/domain"
	"github.com/mvaleed/innkeep/internal/service"
	"github.com/mvaleed/innkeep/internal/storage"
)

type userResponse struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	PhoneNumber string   `json:"phoneNumber,omitempty"`
	Avatar      string   `json:"avatar,omitempty"`
	Type        string   `json:"type"`
	Status      string   `json:"status"`
	Favorites   []string `json:"favorites"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

func toUserResponse(u *domain.User) userResponse {
	resp := userResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		Name:        u.FullName,
		PhoneNumber: u.Phone,
		Avatar:      u.AvatarURL,
		Type:        string(u.Type),
		Status:      string(u.Status),
		Favorites:   make([]string, 0, len(u.Favorites)),
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   u.UpdatedAt.Format(time.RFC3339),
	}
	for _, id := range u.Favorites {
		resp.Favorites = append(resp.Favorites, id.String())
	}
	return resp
}

func (s *Server) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	if claims == nil {
		s.writeError(w, domain.ErrUnauthorized)
		return
	}

	user, err := s.services.Users.GetUser(r.Context(), claims.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toUserResponse(user))
}

type updateProfileRequest struct {
	Name        *string `json:"name,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
}

func (s *Server) handleUpdateCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	if claims == nil {
		s.writeError(w, domain.ErrUnauthorized)
		return
	}

	var req updateProfileRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	user, err := s.services.Users.UpdateProfile(r.Context(), claims.UserID, service.UpdateProfileInput{
		Name:   req.Name,
		Phone:  req.PhoneNumber,
		Avatar: req.Avatar,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toUserResponse(user))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	if claims == nil {
		s.writeError(w, domain.ErrUnauthorized)
		return
	}

	var req changePasswordRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.services.Users.ChangePassword(r.Context(), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"message": "password changed successfully"})
}

// Favorites

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	if claims == nil {
		s.writeError(w, domain.ErrUnauthorized)
		return
	}

	hotels, err := s.services.Users.ListFavorites(r.Context(), claims.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"favorites": toHotelResponses(hotels),
		"count":     len(hotels),
	})
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	if claims == nil {
		s.writeError(w, domain.ErrUnauthorized)
		return
	}

	hotelID, err := pathUUID(r, "hotelId")
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.services.Users.AddFavorite(r.Context(), claims.UserID, hotelID); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]string{"message": "added to favorites"})
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	claims := getUserClaims(r.Context())
	if claims == nil {
		s.writeError(w, domain.ErrUnauthorized)
		return
	}

	hotelID, err := pathUUID(r, "hotelId")
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.services.Users.RemoveFavorite(r.Context(), claims.UserID, hotelID); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusNoContent, nil)
}

// Admin user handlers

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, limit := pagination(r, 20, 100)

	filter := storage.UserFilter{
		Search: query.Get("search"),
		Offset: (page - 1) * limit,
		Limit:  limit,
	}

	if status := query.Get("status"); status != "" {
		st := domain.UserStatus(status)
		if st.Valid() {
			filter.Status = &st
		}
	}

	if userType := query.Get("type"); userType != "" {
		ut := domain.UserType(userType)
		if ut.Valid() {
			filter.Type = &ut
		}
	}

	users, total, err := s.services.Users.ListUsers(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}

	userResponses := make([]userResponse, len(users))
	for i, u := range users {
		userResponses[i] = toUserResponse(&u)
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"users": userResponses,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	user, err := s.services.Users.GetUser(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleSuspendUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.services.Users.SuspendUser(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"message": "user suspended"})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.services.Users.DeleteUser(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusNoContent, nil)
}
