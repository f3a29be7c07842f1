package adapthttp

import (
	"encoding/json"
	"errors"
	"net/http"

	"slimmom/internal/app"
	"slimmom/internal/domain"
)

type metricsBody struct {
	Date          string  `json:"date"`
	Height        float64 `json:"height"`
	Age           float64 `json:"age"`
	CurrentWeight float64 `json:"currentWeight"`
	DesiredWeight float64 `json:"desiredWeight"`
	BloodType     int     `json:"bloodType"`
}

func (b metricsBody) validate() error {
	if b.Height <= 0 || b.Age <= 0 || b.CurrentWeight <= 0 || b.DesiredWeight <= 0 || b.BloodType == 0 {
		return errors.New("missing required fields")
	}
	if b.BloodType < 1 || b.BloodType > 4 {
		return errors.New("bloodType must be between 1 and 4")
	}
	return nil
}

// productsField accepts either a single consumed product or an array of
// them, so a batch is always appended as flat entries.
type productsField []domain.ConsumedProduct

func (p *productsField) UnmarshalJSON(b []byte) error {
	var many []domain.ConsumedProduct
	if err := json.Unmarshal(b, &many); err == nil {
		*p = many
		return nil
	}
	var one domain.ConsumedProduct
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	*p = productsField{one}
	return nil
}

// handleCalories is the public target calculation: no account, no diary.
func (s *Server) handleCalories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body metricsBody
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := body.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	intake, notAllowed, err := s.diaries.CalculateIntake(r.Context(), body.Height, body.Age, body.CurrentWeight, body.DesiredWeight, body.BloodType)
	if errors.Is(err, domain.ErrInvalidGoal) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"caloriesIntake": intake,
		"notAllowedFood": notAllowed,
	})
}

func (s *Server) handleSubmitMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body metricsBody
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := body.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	day, err := domain.ParseDay(body.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	user := userFrom(r.Context())
	diary, err := s.diaries.SubmitMetrics(r.Context(), user.ID, day, body.Height, body.Age, body.CurrentWeight, body.DesiredWeight, body.BloodType)
	switch {
	case errors.Is(err, app.ErrFutureDate),
		errors.Is(err, app.ErrInvalidCalorieTarget),
		errors.Is(err, domain.ErrInvalidGoal):
		writeError(w, http.StatusBadRequest, err)
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeJSON(w, http.StatusCreated, diary)
	}
}

func (s *Server) handleAddProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		SelectedDate string        `json:"selectedDate"`
		Products     productsField `json:"products"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(body.Products) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("products are required"))
		return
	}
	for _, p := range body.Products {
		if p.Title == "" || p.Weight <= 0 {
			writeError(w, http.StatusBadRequest, errors.New("each product needs a title and a positive weight"))
			return
		}
	}

	day, err := domain.ParseDay(body.SelectedDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	user := userFrom(r.Context())
	diary, err := s.diaries.AddProducts(r.Context(), user.ID, day, body.Products)
	if errors.Is(err, app.ErrDiaryNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, diary)
}

func (s *Server) handleRemoveProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		SelectedDate string `json:"selectedDate"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	day, err := domain.ParseDay(body.SelectedDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	user := userFrom(r.Context())
	diary, err := s.diaries.RemoveProduct(r.Context(), user.ID, day, r.PathValue("productId"))
	if errors.Is(err, app.ErrDiaryNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, diary)
}

func (s *Server) handleListDiaries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	user := userFrom(r.Context())
	diaries, err := s.diaries.ListDiaries(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": diaries})
}
