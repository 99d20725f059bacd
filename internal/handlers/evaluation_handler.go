package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/maxappraiser/appraiser-api/internal/models"
	"github.com/maxappraiser/appraiser-api/internal/services"
	apperrors "github.com/maxappraiser/appraiser-api/pkg/errors"
)

const (
	msgMissingFields  = "Missing required fields. Please provide idea, plan, and roadmap."
	msgInvalidBody    = "Invalid request body"
	msgBodyTooLarge   = "Request body too large"
	msgEvaluateFailed = "Failed to evaluate idea"
)

// NotAllowedMethods are answered with 405 on evaluation routes
var NotAllowedMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
	http.MethodConnect,
	http.MethodTrace,
}

type EvaluationHandler struct {
	service services.EvaluationServiceInterface
}

func NewEvaluationHandler(service services.EvaluationServiceInterface) *EvaluationHandler {
	RegisterValidators()
	return &EvaluationHandler{service: service}
}

// EvaluateIdea handles POST /evaluate/idea
func (h *EvaluationHandler) EvaluateIdea(c *gin.Context) {
	var req models.EvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.service.Evaluate(c.Request.Context(), &req)
	if err != nil {
		// scorer failures, upstream ones included, surface as 500
		if status := apperrors.HTTPStatus(err); status == http.StatusBadRequest {
			respondError(c, status, msgMissingFields, err)
			return
		}
		respondError(c, http.StatusInternalServerError, msgEvaluateFailed, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// MethodNotAllowed answers every non-POST request on evaluation routes
func (h *EvaluationHandler) MethodNotAllowed(c *gin.Context) {
	method := c.Request.Method
	c.Header("Allow", http.MethodPost)
	respondError(c, http.StatusMethodNotAllowed,
		fmt.Sprintf("Method %s not allowed", method),
		apperrors.MethodNotAllowedError(method))
}

// NoMethod answers 405 for known paths requested with an unregistered method.
// Evaluation paths advertise POST; other paths keep the Allow header gin
// computed from their routes.
func (h *EvaluationHandler) NoMethod(evaluationPaths ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, p := range evaluationPaths {
			if c.Request.URL.Path == p {
				h.MethodNotAllowed(c)
				return
			}
		}
		method := c.Request.Method
		respondError(c, http.StatusMethodNotAllowed,
			fmt.Sprintf("Method %s not allowed", method),
			apperrors.MethodNotAllowedError(method))
	}
}

func respondBindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	var validationErrs validator.ValidationErrors

	switch {
	case errors.As(err, &tooLarge):
		respondError(c, http.StatusRequestEntityTooLarge, msgBodyTooLarge, err)
	case errors.Is(err, io.EOF):
		respondError(c, http.StatusBadRequest, msgMissingFields, apperrors.InvalidInputError("body", "empty"))
	case errors.As(err, &validationErrs):
		fields := make([]string, 0, len(validationErrs))
		for _, v := range ParseValidationErrors(validationErrs) {
			fields = append(fields, v.Field)
		}
		respondError(c, http.StatusBadRequest, msgMissingFields,
			apperrors.InvalidInputError(strings.Join(fields, ","), "must not be blank"))
	default:
		respondError(c, http.StatusBadRequest, msgInvalidBody, fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err))
	}
}
