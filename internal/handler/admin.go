package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kinohall/cinema-ticketing-engine/internal/model"
	"github.com/kinohall/cinema-ticketing-engine/internal/pricing"
	"github.com/kinohall/cinema-ticketing-engine/internal/repository"
)

// AdminHandler bundles the repositories used by cinema staff to
// provision theaters, seats and showtimes.
type AdminHandler struct {
	TheaterRepo  *repository.TheaterRepo
	SeatRepo     *repository.SeatRepo
	ShowtimeRepo *repository.ShowtimeRepo
}

// NewAdminHandler constructs an AdminHandler and panics if any dependency is nil.
func NewAdminHandler(theaterRepo *repository.TheaterRepo, seatRepo *repository.SeatRepo, showtimeRepo *repository.ShowtimeRepo) *AdminHandler {
	if theaterRepo == nil || seatRepo == nil || showtimeRepo == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{TheaterRepo: theaterRepo, SeatRepo: seatRepo, ShowtimeRepo: showtimeRepo}
}

// CreateTheater handles POST /v1/admin/theaters.  The seat roster is
// generated from seat_rows x seat_cols with labels like A1..A10, B1..
// and persisted together with the theater in one transaction.
func (h *AdminHandler) CreateTheater(c echo.Context) error {
	var body struct {
		CinemaID uint64 `json:"cinema_id"`
		Name     string `json:"name"`
		Quality  string `json:"quality"`
		SeatRows uint32 `json:"seat_rows"`
		SeatCols uint32 `json:"seat_cols"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(body.Name) == "" || body.CinemaID == 0 || body.SeatRows == 0 || body.SeatCols == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cinema_id, name, seat_rows and seat_cols are required and must be greater than zero"})
	}
	quality := model.ProjectionQuality(strings.ToUpper(strings.TrimSpace(body.Quality)))
	if _, ok := pricing.BasePriceCents(quality); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown projection quality"})
	}

	ctx := c.Request().Context()
	tx, err := h.TheaterRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	theater := &model.Theater{
		CinemaID:      body.CinemaID,
		Name:          strings.TrimSpace(body.Name),
		Capacity:      body.SeatRows * body.SeatCols,
		Quality:       quality,
		IsOperational: true,
	}
	if err := h.TheaterRepo.CreateTx(ctx, tx, theater); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create theater"})
	}

	total := int(body.SeatRows) * int(body.SeatCols)
	seats := make([]model.Seat, 0, total)
	for rIdx := uint32(0); rIdx < body.SeatRows; rIdx++ {
		label := indexToRowLabel(int(rIdx))
		for cIdx := uint32(1); cIdx <= body.SeatCols; cIdx++ {
			seats = append(seats, model.Seat{
				TheaterID:   theater.ID,
				Number:      label + strconv.Itoa(int(cIdx)),
				IsAvailable: true,
			})
		}
	}
	if err := h.SeatRepo.CreateBulkTx(ctx, tx, seats); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create seats"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit"})
	}
	committed = true

	return c.JSON(http.StatusCreated, echo.Map{
		"theater": theater,
		"seats":   total,
	})
}

// ListTheaters handles GET /v1/admin/cinemas/:id/theaters.
func (h *AdminHandler) ListTheaters(c echo.Context) error {
	cinemaID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cinema id"})
	}
	theaters, err := h.TheaterRepo.ListByCinema(c.Request().Context(), cinemaID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"theaters": theaters})
}

// DeleteTheater handles DELETE /v1/admin/theaters/:id.  A theater with
// scheduled showtimes cannot be removed.
func (h *AdminHandler) DeleteTheater(c echo.Context) error {
	theaterID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid theater id"})
	}
	if err := h.TheaterRepo.Delete(c.Request().Context(), theaterID); err != nil {
		switch {
		case errors.Is(err, repository.ErrTheaterNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "theater not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "theater has scheduled showtimes"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete theater"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": theaterID})
}

// UpdateSeatFlags handles PATCH /v1/admin/seats/:id.  Marking a seat
// unavailable removes it from future availability listings without
// touching existing reservations.
func (h *AdminHandler) UpdateSeatFlags(c echo.Context) error {
	seatID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}
	var body struct {
		IsAccessible *bool `json:"is_accessible"`
		IsAvailable  *bool `json:"is_available"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	seat, err := h.SeatRepo.GetByID(c.Request().Context(), seatID)
	if err != nil {
		if errors.Is(err, repository.ErrSeatNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	accessible := seat.IsAccessible
	available := seat.IsAvailable
	if body.IsAccessible != nil {
		accessible = *body.IsAccessible
	}
	if body.IsAvailable != nil {
		available = *body.IsAvailable
	}
	if err := h.SeatRepo.UpdateFlags(c.Request().Context(), seatID, accessible, available); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update seat"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"seat_id":       seatID,
		"is_accessible": accessible,
		"is_available":  available,
	})
}

// CreateShowtime handles POST /v1/admin/showtimes.  The ticket price
// is computed server-side from the projection quality, the signed
// adjustment and the promotion flag; a combination that would price a
// ticket at zero or below is refused.
func (h *AdminHandler) CreateShowtime(c echo.Context) error {
	var body struct {
		MovieID         uint64 `json:"movie_id"`
		TheaterID       uint64 `json:"theater_id"`
		StartsAt        string `json:"starts_at"`
		EndsAt          string `json:"ends_at"`
		Quality         string `json:"quality"`
		AdjustmentCents int64  `json:"adjustment_cents"`
		IsPromotion     bool   `json:"is_promotion"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.MovieID == 0 || body.TheaterID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie_id and theater_id are required"})
	}
	startsAt, err := time.Parse(time.RFC3339, body.StartsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC3339"})
	}
	endsAt, err := time.Parse(time.RFC3339, body.EndsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be RFC3339"})
	}
	if !endsAt.After(startsAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be after starts_at"})
	}

	theater, err := h.TheaterRepo.GetByID(c.Request().Context(), body.TheaterID)
	if err != nil {
		if errors.Is(err, repository.ErrTheaterNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "theater not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !theater.IsOperational {
		return c.JSON(http.StatusConflict, echo.Map{"error": "theater is not operational"})
	}

	quality := theater.Quality
	if q := strings.ToUpper(strings.TrimSpace(body.Quality)); q != "" {
		quality = model.ProjectionQuality(q)
	}
	finalPrice, err := pricing.Compute(quality, body.AdjustmentCents, body.IsPromotion)
	if err != nil {
		switch {
		case errors.Is(err, pricing.ErrInvalidQuality):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown projection quality"})
		case errors.Is(err, pricing.ErrInvalidPrice):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "adjustment drives the ticket price to zero or below"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute price"})
	}

	st := &model.Showtime{
		MovieID:         body.MovieID,
		TheaterID:       theater.ID,
		CinemaID:        theater.CinemaID,
		StartsAt:        startsAt.UTC(),
		EndsAt:          endsAt.UTC(),
		Quality:         quality,
		AdjustmentCents: body.AdjustmentCents,
		IsPromotion:     body.IsPromotion,
		FinalPriceCents: finalPrice,
		SeatsRemaining:  theater.Capacity,
	}
	if err := h.ShowtimeRepo.Create(c.Request().Context(), st); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create showtime"})
	}
	return c.JSON(http.StatusCreated, st)
}

// ListShowtimes handles GET /v1/admin/theaters/:id/showtimes and
// returns upcoming showtimes for the theater.
func (h *AdminHandler) ListShowtimes(c echo.Context) error {
	theaterID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid theater id"})
	}
	showtimes, err := h.ShowtimeRepo.ListUpcomingByTheater(c.Request().Context(), theaterID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"showtimes": showtimes})
}

// UpdateShowtimePricing handles PATCH /v1/admin/showtimes/:id/pricing.
// Pricing is frozen once the first reservation exists: tickets already
// sold keep the price they were sold at.
func (h *AdminHandler) UpdateShowtimePricing(c echo.Context) error {
	showtimeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	var body struct {
		Quality         string `json:"quality"`
		AdjustmentCents int64  `json:"adjustment_cents"`
		IsPromotion     bool   `json:"is_promotion"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	st, err := h.ShowtimeRepo.GetByID(c.Request().Context(), showtimeID)
	if err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	sold, err := h.ShowtimeRepo.HasReservations(c.Request().Context(), showtimeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if sold {
		return c.JSON(http.StatusConflict, echo.Map{"error": "showtime already has reservations, pricing is frozen"})
	}

	quality := st.Quality
	if q := strings.ToUpper(strings.TrimSpace(body.Quality)); q != "" {
		quality = model.ProjectionQuality(q)
	}
	finalPrice, err := pricing.Compute(quality, body.AdjustmentCents, body.IsPromotion)
	if err != nil {
		switch {
		case errors.Is(err, pricing.ErrInvalidQuality):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown projection quality"})
		case errors.Is(err, pricing.ErrInvalidPrice):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "adjustment drives the ticket price to zero or below"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute price"})
	}
	if err := h.ShowtimeRepo.UpdatePricing(c.Request().Context(), showtimeID, quality, body.AdjustmentCents, finalPrice, body.IsPromotion); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update pricing"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"showtime_id":       showtimeID,
		"quality":           quality,
		"adjustment_cents":  body.AdjustmentCents,
		"is_promotion":      body.IsPromotion,
		"final_price_cents": finalPrice,
	})
}
