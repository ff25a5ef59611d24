package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"homesage_client/domain"
)

// ErrResp carries the status code of a non-2xx backend response so
// callers can remap specific codes to domain messages.
type ErrResp struct {
	URL        string
	StatusCode int
	Body       string
}

func (e ErrResp) Error() string {
	return fmt.Sprintf("request to %s failed with status %d: %s", e.URL, e.StatusCode, e.Body)
}

// StatusCode returns the backend status behind err, or 0 when err is
// not a backend rejection.
func StatusCode(err error) int {
	if errResp, ok := err.(ErrResp); ok {
		return errResp.StatusCode
	}
	return 0
}

// Client talks to the HomeSage backend. Authorized calls receive the
// session explicitly; there is no shared default header state. Cookies
// (the refresh token) live in the jar, which stands in for the browser
// cookie store.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *logrus.Logger
	tracer  trace.Tracer
	cb      *gobreaker.CircuitBreaker
}

func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger, tracer trace.Tracer) *Client {
	jar, _ := cookiejar.New(nil)

	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
			Jar:     jar,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				MaxConnsPerHost:     10,
			},
		},
		logger: logger,
		tracer: tracer,
		cb:     CircuitBreaker("homesage_backend", logger),
	}
}

func CircuitBreaker(name string, logger *logrus.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(
		gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     10 * time.Second,
			Interval:    0,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 2
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.Warnf("Circuit Breaker '%s' changed from '%s' to '%s'", name, from, to)
			},
			IsSuccessful: func(err error) bool {
				if err == nil {
					return true
				}
				errResp, ok := err.(ErrResp)
				return ok && errResp.StatusCode >= 400 && errResp.StatusCode < 500
			},
		},
	)
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, session *domain.Session, body io.Reader, contentType string) (*response, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	result, err := c.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
		if err != nil {
			return nil, err
		}

		req.Header.Set("X-Request-Id", uuid.NewString())
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if session != nil && session.Token != "" {
			req.Header.Set("Authorization", session.Token)
		}
		otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("error calling %s %s: %v", method, path, err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("error reading %s response: %v", path, err)
		}

		if resp.StatusCode >= 400 {
			return nil, ErrResp{URL: path, StatusCode: resp.StatusCode, Body: string(respBody)}
		}

		return &response{status: resp.StatusCode, header: resp.Header, body: respBody}, nil
	})

	if err != nil {
		c.logger.Errorf("Client.do : %s %s : %s", method, path, err)
		return nil, err
	}

	return result.(*response), nil
}

// Refresh renews the session. The new bearer token rides in the
// Authorization response header, not the body.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	ctx, span := c.tracer.Start(ctx, "Client.Refresh")
	defer span.End()

	resp, err := c.do(ctx, http.MethodGet, "/auth/refresh", nil, nil, nil, "")
	if err != nil {
		return "", err
	}

	return resp.header.Get("Authorization"), nil
}

func (c *Client) Login(ctx context.Context, credentials *domain.Credentials) (string, error) {
	ctx, span := c.tracer.Start(ctx, "Client.Login")
	defer span.End()

	body, err := json.Marshal(credentials)
	if err != nil {
		return "", err
	}

	resp, err := c.do(ctx, http.MethodPost, "/auth/login", nil, nil, bytes.NewReader(body), "application/json")
	if err != nil {
		return "", err
	}

	return resp.header.Get("Authorization"), nil
}

func (c *Client) Logout(ctx context.Context, session *domain.Session) error {
	ctx, span := c.tracer.Start(ctx, "Client.Logout")
	defer span.End()

	_, err := c.do(ctx, http.MethodDelete, "/auth/logout", nil, session, nil, "")
	return err
}

func (c *Client) ChangePassword(ctx context.Context, session *domain.Session, payload *domain.PasswordChange) error {
	ctx, span := c.tracer.Start(ctx, "Client.ChangePassword")
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	_, err = c.do(ctx, http.MethodPut, "/user/changedPassword", nil, session, bytes.NewReader(body), "application/json")
	return err
}

// MapSearch queries listings inside the map viewport. The records come
// back untyped; SaleStore filters and coerces them.
func (c *Client) MapSearch(ctx context.Context, lat, lng float64, radius int64) ([]domain.SaleRecord, error) {
	ctx, span := c.tracer.Start(ctx, "Client.MapSearch")
	defer span.End()

	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	query.Set("radius", strconv.FormatInt(radius, 10))

	resp, err := c.do(ctx, http.MethodGet, "/sales/map-search", query, nil, nil, "")
	if err != nil {
		return nil, err
	}

	return decodeSaleRecords(resp)
}

func (c *Client) ListSales(ctx context.Context, criteria *domain.SearchCriteria) ([]domain.SaleRecord, error) {
	ctx, span := c.tracer.Start(ctx, "Client.ListSales")
	defer span.End()

	resp, err := c.do(ctx, http.MethodGet, "/sales/list", criteriaQuery(criteria), nil, nil, "")
	if err != nil {
		return nil, err
	}

	return decodeSaleRecords(resp)
}

func criteriaQuery(criteria *domain.SearchCriteria) url.Values {
	query := url.Values{}
	if criteria == nil {
		return query
	}
	if criteria.Keyword != "" {
		query.Set("keyword", criteria.Keyword)
	}
	if criteria.SaleType != "" {
		query.Set("saleType", criteria.SaleType)
	}
	if criteria.MinPrice > 0 {
		query.Set("minPrice", strconv.FormatInt(criteria.MinPrice, 10))
	}
	if criteria.MaxPrice > 0 {
		query.Set("maxPrice", strconv.FormatInt(criteria.MaxPrice, 10))
	}
	if criteria.MinSpace > 0 {
		query.Set("minSpace", strconv.FormatInt(criteria.MinSpace, 10))
	}
	if criteria.MaxSpace > 0 {
		query.Set("maxSpace", strconv.FormatInt(criteria.MaxSpace, 10))
	}
	return query
}

func decodeSaleRecords(resp *response) ([]domain.SaleRecord, error) {
	if resp.status == http.StatusNoContent || len(resp.body) == 0 {
		return nil, nil
	}

	var records []domain.SaleRecord
	if err := json.Unmarshal(resp.body, &records); err != nil {
		return nil, domain.ErrMalformedPayload
	}

	return records, nil
}

// UploadSale posts the multipart listing-creation payload: a binary
// "file" part plus a JSON "data" part.
func (c *Client) UploadSale(ctx context.Context, session *domain.Session, data *domain.SaleUpload, image io.Reader, filename string) error {
	ctx, span := c.tracer.Start(ctx, "Client.UploadSale")
	defer span.End()

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	filePart, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(filePart, image); err != nil {
		return err
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="data"`)
	header.Set("Content-Type", "application/json")
	dataPart, err := writer.CreatePart(header)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(dataPart).Encode(data); err != nil {
		return err
	}

	if err := writer.Close(); err != nil {
		return err
	}

	_, err = c.do(ctx, http.MethodPost, "/sales/provider/upload", nil, session, buf, writer.FormDataContentType())
	return err
}

// ReservedTimes lists the already-booked visit datetimes of a listing.
func (c *Client) ReservedTimes(ctx context.Context, saleID int64) ([]string, error) {
	ctx, span := c.tracer.Start(ctx, "Client.ReservedTimes")
	defer span.End()

	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/sales/reserve/%d", saleID), nil, nil, nil, "")
	if err != nil {
		return nil, err
	}

	if resp.status == http.StatusNoContent || len(resp.body) == 0 {
		return nil, nil
	}

	var times []string
	if err := json.Unmarshal(resp.body, &times); err != nil {
		return nil, domain.ErrMalformedPayload
	}

	return times, nil
}

func (c *Client) InterestList(ctx context.Context, session *domain.Session) ([]domain.InterestItem, error) {
	ctx, span := c.tracer.Start(ctx, "Client.InterestList")
	defer span.End()

	resp, err := c.do(ctx, http.MethodGet, "/user/interest/list", nil, session, nil, "")
	if err != nil {
		return nil, err
	}

	if resp.status == http.StatusNoContent || len(resp.body) == 0 {
		return nil, nil
	}

	var items []domain.InterestItem
	if err := json.Unmarshal(resp.body, &items); err != nil {
		return nil, domain.ErrMalformedPayload
	}

	return items, nil
}

func (c *Client) ToggleInterest(ctx context.Context, session *domain.Session, saleID int64) (*domain.ToggleResult, error) {
	ctx, span := c.tracer.Start(ctx, "Client.ToggleInterest")
	defer span.End()

	resp, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/user/interest/%d", saleID), nil, session, bytes.NewReader([]byte("{}")), "application/json")
	if err != nil {
		return nil, err
	}

	result := &domain.ToggleResult{}
	if err := json.Unmarshal(resp.body, result); err != nil {
		return nil, domain.ErrMalformedPayload
	}

	return result, nil
}

func (c *Client) ReservationList(ctx context.Context, session *domain.Session) ([]domain.Reservation, error) {
	return c.reservations(ctx, session, "/user/reserve/list", "Client.ReservationList")
}

// ProviderReservationList returns the visits booked against the
// provider's own listings.
func (c *Client) ProviderReservationList(ctx context.Context, session *domain.Session) ([]domain.Reservation, error) {
	return c.reservations(ctx, session, "/user/provider/reserve/list", "Client.ProviderReservationList")
}

func (c *Client) reservations(ctx context.Context, session *domain.Session, path, spanName string) ([]domain.Reservation, error) {
	ctx, span := c.tracer.Start(ctx, spanName)
	defer span.End()

	resp, err := c.do(ctx, http.MethodGet, path, nil, session, nil, "")
	if err != nil {
		return nil, err
	}

	if resp.status == http.StatusNoContent || len(resp.body) == 0 {
		return nil, nil
	}

	var reservations []domain.Reservation
	if err := json.Unmarshal(resp.body, &reservations); err != nil {
		return nil, domain.ErrMalformedPayload
	}

	return reservations, nil
}

func (c *Client) MakeReservation(ctx context.Context, session *domain.Session, request *domain.ReservationRequest) error {
	ctx, span := c.tracer.Start(ctx, "Client.MakeReservation")
	defer span.End()

	body, err := json.Marshal(request)
	if err != nil {
		return err
	}

	_, err = c.do(ctx, http.MethodPost, "/user/reserve", nil, session, bytes.NewReader(body), "application/json")
	return err
}

func (c *Client) CancelReservation(ctx context.Context, session *domain.Session, saleID int64) error {
	ctx, span := c.tracer.Start(ctx, "Client.CancelReservation")
	defer span.End()

	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/user/cancel/%d", saleID), nil, session, nil, "")
	return err
}
