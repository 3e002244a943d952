package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/fkhayef/spartan/pkg/response"
)

// Handler handles HTTP requests for user operations
type Handler struct {
	service  *Service
	validate *validator.Validate
	log      *logrus.Logger
}

// NewHandler creates a new user handler with service dependency injected
func NewHandler(service *Service, log *logrus.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		log:      log,
	}
}

// Routes returns the router for user endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}

// List handles GET /users
// @Summary      List users
// @Description  Get a paginated, sorted list of users
// @Tags         users
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        items_per_page query int false "Items per page" default(10)
// @Param        sort_by query string false "Sort field (id, username, email, created_at, updated_at)" default(id)
// @Param        sort_type query string false "Sort direction (asc or desc)" default(asc)
// @Success      200 {object} response.APIResponse{data=[]UserResponse}
// @Failure      500 {object} response.APIError
// @Router       /users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("items_per_page"))
	sortBy := r.URL.Query().Get("sort_by")
	sortType := r.URL.Query().Get("sort_type")

	// mirror the service clamps so the reported meta matches the query
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > MaxPerPage {
		perPage = DefaultPerPage
	}

	result, err := h.service.List(r.Context(), page, perPage, sortBy, sortType)
	if err != nil {
		h.log.WithError(err).Error("failed to list users")
		response.InternalError(w, "Internal server error")
		return
	}

	// A page past the end is an empty list, not an error.
	items := make([]*UserResponse, len(result.Items))
	for i, u := range result.Items {
		items[i] = u.ToResponse()
	}

	meta := &response.Meta{
		CurrentPage:  page,
		LastPage:     result.LastPage,
		FirstItem:    result.FirstItem,
		LastItem:     result.LastItem,
		ItemsPerPage: perPage,
		Total:        result.Total,
	}

	response.JSONWithMeta(w, http.StatusOK, items, meta)
}

// GetByID handles GET /users/{id}
// @Summary      Get user by ID
// @Description  Get a single user by their ID
// @Tags         users
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200 {object} response.APIResponse{data=UserResponse}
// @Failure      400 {object} response.APIError
// @Failure      404 {object} response.APIError
// @Router       /users/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	user, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		h.log.WithError(err).WithField("user_id", id).Error("failed to get user")
		response.InternalError(w, "Internal server error")
		return
	}

	response.JSON(w, http.StatusOK, user.ToResponse())
}

// Create handles POST /users
// @Summary      Create a new user
// @Description  Create a new user with username, email and password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body CreateUserRequest true "User creation request"
// @Success      201 {object} response.APIResponse{data=UserResponse}
// @Failure      400 {object} response.APIError
// @Failure      409 {object} response.APIError
// @Router       /users [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	user, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			response.Conflict(w, err.Error())
			return
		}
		h.log.WithError(err).Error("failed to create user")
		response.InternalError(w, "Internal server error")
		return
	}

	response.JSON(w, http.StatusCreated, user.ToResponse())
}

// Update handles PUT /users/{id}
// @Summary      Update a user
// @Description  Update a user's username. Email and password are immutable.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path int true "User ID"
// @Param        request body UpdateUserRequest true "User update request"
// @Success      200 {object} response.APIResponse{data=UserResponse}
// @Failure      400 {object} response.APIError
// @Failure      404 {object} response.APIError
// @Failure      409 {object} response.APIError
// @Router       /users/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	// Unknown fields are rejected so attempts to change email or
	// password fail loudly instead of being silently dropped.
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req UpdateUserRequest
	if err := dec.Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body: "+err.Error())
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	user, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			response.NotFound(w, "User not found")
		case errors.Is(err, ErrDuplicateUser):
			response.Conflict(w, err.Error())
		default:
			h.log.WithError(err).WithField("user_id", id).Error("failed to update user")
			response.InternalError(w, "Internal server error")
		}
		return
	}

	response.JSON(w, http.StatusOK, user.ToResponse())
}

// Delete handles DELETE /users/{id}
// @Summary      Delete a user
// @Description  Delete a user by their ID, returning the deleted record
// @Tags         users
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200 {object} response.APIResponse{data=UserResponse}
// @Failure      400 {object} response.APIError
// @Failure      404 {object} response.APIError
// @Router       /users/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	user, err := h.service.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		h.log.WithError(err).WithField("user_id", id).Error("failed to delete user")
		response.InternalError(w, "Internal server error")
		return
	}

	response.JSON(w, http.StatusOK, user.ToResponse())
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
