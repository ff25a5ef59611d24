// Package backendtest runs an in-memory stand-in for the HomeSage
// backend so the stores can be exercised over real HTTP.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"homesage_client/authorization"
	"homesage_client/domain"
)

// Key signs the tokens the fake backend issues.
var Key = []byte("backendtest-secret-key")

type Backend struct {
	mu     sync.Mutex
	server *httptest.Server

	role       domain.UserRole
	authorized bool
	password   string

	sales         []domain.SaleRecord
	rawSales      []byte
	reservedTimes map[int64][]string
	interests     map[int64]bool
	reservations  []domain.Reservation

	failures map[string]int
	requests map[string]int
	uploads  int
}

// New starts the fake backend issuing tokens for the given role.
func New(role domain.UserRole) *Backend {
	b := &Backend{
		role:          role,
		authorized:    true,
		password:      "correct-password",
		reservedTimes: make(map[int64][]string),
		interests:     make(map[int64]bool),
		failures:      make(map[string]int),
		requests:      make(map[string]int),
	}

	router := mux.NewRouter()
	router.HandleFunc("/auth/refresh", b.refresh).Methods(http.MethodGet)
	router.HandleFunc("/auth/login", b.login).Methods(http.MethodPost)
	router.HandleFunc("/auth/logout", b.logout).Methods(http.MethodDelete)
	router.HandleFunc("/user/changedPassword", b.changedPassword).Methods(http.MethodPut)
	router.HandleFunc("/sales/map-search", b.listSales).Methods(http.MethodGet)
	router.HandleFunc("/sales/list", b.listSales).Methods(http.MethodGet)
	router.HandleFunc("/sales/provider/upload", b.uploadSale).Methods(http.MethodPost)
	router.HandleFunc("/sales/reserve/{saleId}", b.saleReservedTimes).Methods(http.MethodGet)
	router.HandleFunc("/user/interest/list", b.interestList).Methods(http.MethodGet)
	router.HandleFunc("/user/interest/{saleId}", b.toggleInterest).Methods(http.MethodPut)
	router.HandleFunc("/user/reserve/list", b.reservationList).Methods(http.MethodGet)
	router.HandleFunc("/user/provider/reserve/list", b.reservationList).Methods(http.MethodGet)
	router.HandleFunc("/user/reserve", b.makeReservation).Methods(http.MethodPost)
	router.HandleFunc("/user/cancel/{saleId}", b.cancelReservation).Methods(http.MethodDelete)

	cors := gorillaHandlers.CORS(gorillaHandlers.AllowedOrigins([]string{"*"}))
	b.server = httptest.NewServer(cors(b.counted(router)))
	return b
}

func (b *Backend) URL() string {
	return b.server.URL
}

func (b *Backend) Close() {
	b.server.Close()
}

// Requests reports how many times "METHOD /path" was hit.
func (b *Backend) Requests(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[method+" "+path]
}

// Fail forces the endpoint to answer with the given status.
func (b *Backend) Fail(method, path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = status
}

// SetAuthorized controls whether /auth/refresh succeeds.
func (b *Backend) SetAuthorized(ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.authorized = ok
}

func (b *Backend) SetSales(sales []domain.SaleRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sales = sales
	b.rawSales = nil
}

// SetRawSales makes the search endpoints answer with an arbitrary body,
// for malformed-payload cases.
func (b *Backend) SetRawSales(raw string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rawSales = []byte(raw)
}

func (b *Backend) SetReservedTimes(saleID int64, times []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reservedTimes[saleID] = times
}

func (b *Backend) SetInterested(saleIDs ...int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range saleIDs {
		b.interests[id] = true
	}
}

func (b *Backend) AddReservation(reservation domain.Reservation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reservations = append(b.reservations, reservation)
}

func (b *Backend) Uploads() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.uploads
}

func (b *Backend) counted(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests[r.Method+" "+r.URL.Path]++
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// failed answers true when a forced failure was configured for the
// request and has been written.
func (b *Backend) failed(w http.ResponseWriter, r *http.Request) bool {
	b.mu.Lock()
	status, ok := b.failures[r.Method+" "+r.URL.Path]
	b.mu.Unlock()
	if !ok {
		return false
	}
	w.WriteHeader(status)
	fmt.Fprint(w, "forced failure")
	return true
}

func (b *Backend) issueToken(w http.ResponseWriter) {
	token, err := authorization.GenerateToken("tester", b.role, Key)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Authorization", "Bearer "+token)
	w.WriteHeader(http.StatusOK)
}

func (b *Backend) refresh(w http.ResponseWriter, r *http.Request) {
	if b.failed(w, r) {
		return
	}
	b.mu.Lock()
	authorized := b.authorized
	b.mu.Unlock()
	if !authorized {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	b.issueToken(w)
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	if b.failed(w, r) {
		return
	}

	credentials := &domain.Credentials{}
	if err := credentials.FromJSON(r.Body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if credentials.Password != b.password {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	b.issueToken(w)
}

func (b *Backend) logout(w http.ResponseWriter, r *http.Request) {
	if b.failed(w, r) {
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (b *Backend) changedPassword(w http.ResponseWriter, r *http.Request) {
	if b.failed(w, r) {
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (b *Backend) listSales(w http.ResponseWriter, r *http.Request) {
	if b.failed(w, r) {
		return
	}

	b.mu.Lock()
	raw := b.rawSales
	sales := b.sales
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if raw != nil {
		w.Write(raw)
		return
	}
	if sales == nil {
		sales = []domain.SaleRecord{}
	}
	json.NewEncoder(w).Encode(sales)
}

func (b *Backend) uploadSale(w http.ResponseWriter, r *http.Request) {
	if b.failed(w, r) {
		return
	}
	if requireSession(w, r) {
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	file.Close()

	data := &domain.SaleUpload{}
	if err := json.Unmarshal([]byte(r.FormValue("data")), data); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	b.uploads++
	b.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (b *Backend) saleReservedTimes(w http.ResponseWriter, r *http.Request) {
	if b.failed(w, r) {
		return
	}

	saleID := pathID(r)
	b.mu.Lock()
	times := b.reservedTimes[saleID]
	b.mu.Unlock()

	if times == nil {
		times = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(times)
}

func (b *Backend) interestList(w http.ResponseWriter, r *http.Request) {
	if b.failed(w, r) {
		return
	}
	if requireSession(w, r) {
		return
	}

	b.mu.Lock()
	items := make([]domain.InterestItem, 0, len(b.interests))
	for id, interested := range b.interests {
		if interested {
			items = append(items, domain.InterestItem{SaleID: id})
		}
	}
	b.mu.Unlock()

	if len(items) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func (b *Backend) toggleInterest(w http.ResponseWriter, r *http.Request) {
	if b.failed(w, r) {
		return
	}
	if requireSession(w, r) {
		return
	}

	saleID := pathID(r)
	b.mu.Lock()
	b.interests[saleID] = !b.interests[saleID]
	result := domain.ToggleResult{IsInterest: b.interests[saleID]}
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (b *Backend) reservationList(w http.ResponseWriter, r *http.Request) {
	if b.failed(w, r) {
		return
	}
	if requireSession(w, r) {
		return
	}

	b.mu.Lock()
	reservations := make([]domain.Reservation, len(b.reservations))
	copy(reservations, b.reservations)
	b.mu.Unlock()

	if len(reservations) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reservations)
}

func (b *Backend) makeReservation(w http.ResponseWriter, r *http.Request) {
	if b.failed(w, r) {
		return
	}
	if requireSession(w, r) {
		return
	}

	request := &domain.ReservationRequest{}
	if err := request.FromJSON(r.Body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, reservation := range b.reservations {
		if reservation.SaleID == request.SaleID {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}
	b.reservations = append(b.reservations, domain.Reservation{
		SaleID:              request.SaleID,
		ReservationDatetime: request.ReserveDate + "T" + request.ReserveTime + ":00",
	})
	w.WriteHeader(http.StatusOK)
}

func (b *Backend) cancelReservation(w http.ResponseWriter, r *http.Request) {
	if b.failed(w, r) {
		return
	}
	if requireSession(w, r) {
		return
	}

	saleID := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, reservation := range b.reservations {
		if reservation.SaleID == saleID {
			b.reservations = append(b.reservations[:i], b.reservations[i+1:]...)
			w.WriteHeader(http.StatusOK)
			return
		}
	}
	w.WriteHeader(http.StatusInternalServerError)
}

// requireSession rejects credentialed endpoints hit without a bearer
// token, and has written the response when it answers true.
func requireSession(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return true
	}
	return false
}

func pathID(r *http.Request) int64 {
	vars := mux.Vars(r)
	id, _ := strconv.ParseInt(vars["saleId"], 10, 64)
	return id
}
