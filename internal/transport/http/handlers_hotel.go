package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mvaleed/innkeep/internal/booking"
	"github.com/mvaleed/innkeep/internal/domain"
	"github.com/mvaleed/innkeep/internal/service"
	"github.com/mvaleed/innkeep/internal/storage"
)

type roomTypeResponse struct {
	Name          string          `json:"name"`
	PricePerNight decimal.Decimal `json:"pricePerNight"`
	MaxOccupancy  int             `json:"maxOccupancy"`
	Size          string          `json:"size,omitempty"`
	Beds          string          `json:"beds,omitempty"`
	Images        []string        `json:"images,omitempty"`
}

type hotelResponse struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Location     string             `json:"location"`
	Address      string             `json:"address,omitempty"`
	Description  string             `json:"description,omitempty"`
	Price        decimal.Decimal    `json:"price"`
	Rating       float64            `json:"rating"`
	ReviewCount  int                `json:"reviewCount"`
	Amenities    []string           `json:"amenities"`
	Policies     []string           `json:"policies"`
	Photos       []string           `json:"photos"`
	Latitude     *float64           `json:"latitude,omitempty"`
	Longitude    *float64           `json:"longitude,omitempty"`
	CheckInTime  string             `json:"checkInTime"`
	CheckOutTime string             `json:"checkOutTime"`
	RoomTypes    []roomTypeResponse `json:"roomTypes"`
	CreatedAt    string             `json:"createdAt"`
}

func toHotelResponse(h *domain.Hotel) hotelResponse {
	resp := hotelResponse{
		ID:           h.ID.String(),
		Name:         h.Name,
		Location:     h.Location,
		Address:      h.Address,
		Description:  h.Description,
		Price:        h.Price,
		Rating:       h.Rating,
		ReviewCount:  h.ReviewCount,
		Amenities:    emptyIfNil(h.Amenities),
		Policies:     emptyIfNil(h.Policies),
		Photos:       emptyIfNil(h.Photos),
		Latitude:     h.Latitude,
		Longitude:    h.Longitude,
		CheckInTime:  h.CheckInTime,
		CheckOutTime: h.CheckOutTime,
		RoomTypes:    make([]roomTypeResponse, len(h.RoomTypes)),
		CreatedAt:    h.CreatedAt.Format(time.RFC3339),
	}
	for i, rt := range h.RoomTypes {
		resp.RoomTypes[i] = roomTypeResponse(rt)
	}
	return resp
}

func toHotelResponses(hotels []domain.Hotel) []hotelResponse {
	out := make([]hotelResponse, len(hotels))
	for i := range hotels {
		out[i] = toHotelResponse(&hotels[i])
	}
	return out
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (s *Server) handleListHotels(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, limit := pagination(r, 10, 100)

	filter := storage.HotelFilter{
		Location: strings.TrimSpace(query.Get("location")),
		Offset:   (page - 1) * limit,
		Limit:    limit,
	}

	for _, bound := range []struct {
		name string
		dst  **decimal.Decimal
	}{{"minPrice", &filter.MinPrice}, {"maxPrice", &filter.MaxPrice}} {
		raw := query.Get(bound.name)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			s.writeError(w, domain.ValidationError{Field: bound.name, Message: "must be a number"})
			return
		}
		*bound.dst = &d
	}

	if raw := query.Get("rating"); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.writeError(w, domain.ValidationError{Field: "rating", Message: "must be a number"})
			return
		}
		filter.MinRating = &rating
	}

	if raw := query.Get("amenities"); raw != "" {
		for _, a := range strings.Split(raw, ",") {
			if a = strings.TrimSpace(a); a != "" {
				filter.Amenities = append(filter.Amenities, a)
			}
		}
	}

	hotels, total, err := s.services.Hotels.ListHotels(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"hotels": toHotelResponses(hotels),
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

func (s *Server) handleSearchHotels(w http.ResponseWriter, r *http.Request) {
	hotels, err := s.services.Hotels.SearchHotels(r.Context(), chi.URLParam(r, "location"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"hotels": toHotelResponses(hotels),
		"count":  len(hotels),
	})
}

func (s *Server) handleGetHotel(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	hotel, err := s.services.Hotels.GetHotel(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toHotelResponse(hotel))
}

type roomTypeRequest struct {
	Name          string          `json:"name" validate:"required,max=100"`
	PricePerNight decimal.Decimal `json:"pricePerNight"`
	MaxOccupancy  int             `json:"maxOccupancy" validate:"gte=0,lte=20"`
	Size          string          `json:"size"`
	Beds          string          `json:"beds"`
	Images        []string        `json:"images"`
}

type hotelRequest struct {
	Name         string            `json:"name" validate:"required,max=200"`
	Location     string            `json:"location" validate:"required"`
	Address      string            `json:"address"`
	Description  string            `json:"description"`
	Price        decimal.Decimal   `json:"price"`
	Amenities    []string          `json:"amenities"`
	Policies     []string          `json:"policies"`
	Photos       []string          `json:"photos" validate:"dive,required"`
	Latitude     *float64          `json:"latitude" validate:"omitempty,latitude"`
	Longitude    *float64          `json:"longitude" validate:"omitempty,longitude"`
	CheckInTime  string            `json:"checkInTime" validate:"omitempty,datetime=15:04"`
	CheckOutTime string            `json:"checkOutTime" validate:"omitempty,datetime=15:04"`
	RoomTypes    []roomTypeRequest `json:"roomTypes" validate:"dive"`
}

func (req hotelRequest) input() service.HotelInput {
	rooms := make([]booking.RoomType, len(req.RoomTypes))
	for i, rt := range req.RoomTypes {
		rooms[i] = booking.RoomType(rt)
	}
	return service.HotelInput{
		Name:         req.Name,
		Location:     req.Location,
		Address:      req.Address,
		Description:  req.Description,
		Price:        req.Price,
		Amenities:    req.Amenities,
		Policies:     req.Policies,
		Photos:       req.Photos,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		CheckInTime:  req.CheckInTime,
		CheckOutTime: req.CheckOutTime,
		RoomTypes:    rooms,
	}
}

func (s *Server) handleCreateHotel(w http.ResponseWriter, r *http.Request) {
	var req hotelRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	hotel, err := s.services.Hotels.CreateHotel(r.Context(), req.input())
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, toHotelResponse(hotel))
}

func (s *Server) handleUpdateHotel(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req hotelRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	hotel, err := s.services.Hotels.UpdateHotel(r.Context(), id, req.input())
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toHotelResponse(hotel))
}

func (s *Server) handleDeleteHotel(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.services.Hotels.DeleteHotel(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusNoContent, nil)
}
