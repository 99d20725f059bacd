package form

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/maxappraiser/appraiser-api/internal/models"
	"github.com/tidwall/gjson"
)

// EvaluatePath is where the evaluation endpoint is mounted
const EvaluatePath = "/evaluate/idea"

// HTTPEvaluator posts submissions to a running appraiser API
type HTTPEvaluator struct {
	client *resty.Client
}

// NewHTTPEvaluator creates an evaluator for the API at baseURL. It never retries.
func NewHTTPEvaluator(baseURL string, timeout time.Duration) *HTTPEvaluator {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &HTTPEvaluator{client: client}
}

func (e *HTTPEvaluator) Evaluate(ctx context.Context, req *models.EvaluationRequest) (*models.EvaluationResponse, error) {
	var out models.EvaluationResponse

	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post(EvaluatePath)
	if err != nil {
		return nil, &AlertError{Message: err.Error(), Err: err}
	}

	if !resp.IsSuccess() {
		return nil, &AlertError{
			Message: errorMessage(resp.Body(), resp.StatusCode()),
			Status:  resp.StatusCode(),
		}
	}

	return &out, nil
}

// errorMessage prefers the "error" field of a JSON body, then the raw body,
// then the status text
func errorMessage(body []byte, status int) string {
	if gjson.ValidBytes(body) {
		if msg := gjson.GetBytes(body, "error"); msg.Type == gjson.String && msg.String() != "" {
			return msg.String()
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return http.StatusText(status)
}
