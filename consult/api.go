package consult

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lawdesk/models"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type envelope struct {
	Error   bool            `json:"error"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// OrderResponse is the booking and gateway order created for a checkout.
type OrderResponse struct {
	Booking *models.Booking `json:"booking"`
	Order   *models.Order   `json:"order"`
}

// VerifyResponse is returned once the backend confirmed the payment.
type VerifyResponse struct {
	Booking     *models.Booking          `json:"booking"`
	Credentials *models.MediaCredentials `json:"agora,omitempty"`
}

// API is a bearer-authenticated client for the REST backend. Every call is
// bound to the caller's context so teardown aborts it.
type API struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewAPI(baseURL, token string) *API {
	return &API{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *API) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}

	resp, err := a.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 300 || env.Error {
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func (a *API) Lawyers(ctx context.Context, specialization string) ([]models.Lawyer, error) {
	path := "/api/lawyers"
	if specialization != "" {
		path += "?specialization=" + url.QueryEscape(specialization)
	}
	lawyers := []models.Lawyer{}
	if err := a.do(ctx, http.MethodGet, path, nil, &lawyers); err != nil {
		return nil, err
	}
	return lawyers, nil
}

func (a *API) CreateOrder(ctx context.Context, lawyerID, mode string) (*OrderResponse, error) {
	var out OrderResponse
	err := a.do(ctx, http.MethodPost, "/api/bookings/order", map[string]string{"lawyerId": lawyerID, "mode": mode}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) VerifyPayment(ctx context.Context, v models.PaymentVerification) (*VerifyResponse, error) {
	var out VerifyResponse
	if err := a.do(ctx, http.MethodPost, "/api/bookings/verify", v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) UpdateBookingStatus(ctx context.Context, bookingID, status string) (*models.Booking, error) {
	var out models.Booking
	err := a.do(ctx, http.MethodPut, "/api/bookings/"+url.PathEscape(bookingID), map[string]string{"status": status}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) SendMessage(ctx context.Context, msg models.Message) (*models.Message, error) {
	var out models.Message
	if err := a.do(ctx, http.MethodPost, "/api/messages", msg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) History(ctx context.Context, bookingID string) ([]models.Message, error) {
	msgs := []models.Message{}
	if err := a.do(ctx, http.MethodGet, "/api/messages/"+url.PathEscape(bookingID), nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (a *API) ChatToken(ctx context.Context, username string) (*models.ChatToken, error) {
	var out models.ChatToken
	if err := a.do(ctx, http.MethodPost, "/api/chat/token", map[string]string{"username": username}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
