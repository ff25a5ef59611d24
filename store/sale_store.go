package store

import (
	"context"
	"io"
	"math"
	"sync"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"homesage_client/api"
	"homesage_client/domain"
)

// SaleStore holds the listing search results the map and list views
// render. Read operations never return an error; failures land in the
// store-local error string and an empty result set, and the loading
// flag is always cleared at the end.
type SaleStore struct {
	mu     sync.RWMutex
	client *api.Client
	logger *logrus.Logger
	tracer trace.Tracer

	sales        []domain.Sale
	loading      bool
	errMsg       string
	selectedSale *domain.Sale
	searchMode   bool
}

func NewSaleStore(client *api.Client, logger *logrus.Logger, tracer trace.Tracer) *SaleStore {
	return &SaleStore{
		client: client,
		logger: logger,
		tracer: tracer,
	}
}

func (s *SaleStore) Sales() []domain.Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sales := make([]domain.Sale, len(s.sales))
	copy(sales, s.sales)
	return sales
}

func (s *SaleStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *SaleStore) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

func (s *SaleStore) IsSearchMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchMode
}

func (s *SaleStore) HasSales() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sales) > 0
}

func (s *SaleStore) HasSelected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedSale != nil
}

func (s *SaleStore) SelectedSale() *domain.Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selectedSale == nil {
		return nil
	}
	sale := *s.selectedSale
	return &sale
}

func (s *SaleStore) SetSelectedSale(sale *domain.Sale) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sale == nil {
		s.selectedSale = nil
		return
	}
	copied := *sale
	s.selectedSale = &copied
}

func (s *SaleStore) ClearSelectedSale() {
	s.SetSelectedSale(nil)
}

// FetchSalesByMapCenter loads the listings inside the map viewport.
// Zero values for any parameter are rejected locally without a network
// call; whether 0 is a legitimate coordinate is an open product
// question, and the web client's truthy check is preserved.
func (s *SaleStore) FetchSalesByMapCenter(ctx context.Context, centerLat, centerLng, radius float64) {
	if centerLat == 0 || centerLng == 0 || radius == 0 {
		s.logger.Errorf("SaleStore.FetchSalesByMapCenter : invalid parameters: lat=%v lng=%v radius=%v", centerLat, centerLng, radius)
		return
	}

	ctx, span := s.tracer.Start(ctx, "SaleStore.FetchSalesByMapCenter")
	defer span.End()

	s.beginLoad()
	defer s.endLoad()

	records, err := s.client.MapSearch(ctx, centerLat, centerLng, int64(math.Round(radius)))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.Errorf("SaleStore.FetchSalesByMapCenter : map search failed: %s", err)
		s.setResult(nil, domain.FetchSalesFailed)
		return
	}

	s.setResult(ProcessSales(records), "")
}

// SearchSales runs a criteria search. It flips the persistent search
// mode flag; resetting that flag is an external concern.
func (s *SaleStore) SearchSales(ctx context.Context, criteria *domain.SearchCriteria) {
	ctx, span := s.tracer.Start(ctx, "SaleStore.SearchSales")
	defer span.End()

	s.beginLoad()
	defer s.endLoad()

	s.mu.Lock()
	s.searchMode = true
	s.mu.Unlock()
	s.logger.Infoln("SaleStore.SearchSales : search mode started")

	records, err := s.client.ListSales(ctx, criteria)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.Errorf("SaleStore.SearchSales : search failed: %s", err)
		s.setResult(nil, domain.SearchSalesFailed)
		return
	}

	sales := ProcessSales(records)
	s.logger.Infof("SaleStore.SearchSales : found %d properties", len(sales))
	s.setResult(sales, "")
}

// UploadSale packages the listing as multipart (binary image part plus
// JSON data part). Unlike the read paths it rethrows after recording
// the error string, so the upload form can react.
func (s *SaleStore) UploadSale(ctx context.Context, session *domain.Session, data *domain.SaleUpload, image io.Reader, filename string) error {
	ctx, span := s.tracer.Start(ctx, "SaleStore.UploadSale")
	defer span.End()

	s.beginLoad()
	defer s.endLoad()

	if err := data.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.setError(domain.UploadSaleFailed)
		return err
	}

	if err := s.client.UploadSale(ctx, session, data, image, filename); err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.Errorf("SaleStore.UploadSale : upload failed: %s", err)
		s.setError(domain.UploadSaleFailed)
		return err
	}

	return nil
}

// FetchReservedTimes reads the already-booked visit datetimes for a
// listing. Failure yields an empty slice plus the error string.
func (s *SaleStore) FetchReservedTimes(ctx context.Context, saleID int64) []string {
	ctx, span := s.tracer.Start(ctx, "SaleStore.FetchReservedTimes")
	defer span.End()

	s.beginLoad()
	defer s.endLoad()

	times, err := s.client.ReservedTimes(ctx, saleID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.Errorf("SaleStore.FetchReservedTimes : fetch failed: %s", err)
		s.setError(domain.ReservedTimesFailed)
		return []string{}
	}

	return times
}

// ProcessSales drops records without a finite numeric latitude and
// longitude, coerces the remaining numeric fields and preserves order.
// Falsy fee values become nil.
func ProcessSales(records []domain.SaleRecord) []domain.Sale {
	sales := make([]domain.Sale, 0, len(records))
	for _, record := range records {
		lat, ok := domain.StrictNumber(record["latitude"])
		if !ok {
			continue
		}
		lng, ok := domain.StrictNumber(record["longitude"])
		if !ok {
			continue
		}

		sales = append(sales, domain.Sale{
			SaleID:        record.SaleID(),
			Latitude:      lat,
			Longitude:     lng,
			Price:         domain.Numeric(record["price"]),
			MonthlyFee:    optionalFee(record["monthlyFee"]),
			ManagementFee: optionalFee(record["managementFee"]),
			Space:         domain.Numeric(record["space"]),
			Extra:         record,
		})
	}
	return sales
}

func optionalFee(value interface{}) *float64 {
	fee := domain.Numeric(value)
	if math.IsNaN(fee) || fee == 0 {
		return nil
	}
	return &fee
}

func (s *SaleStore) beginLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
	s.errMsg = ""
}

func (s *SaleStore) endLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
}

func (s *SaleStore) setResult(sales []domain.Sale, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales = sales
	s.errMsg = errMsg
}

func (s *SaleStore) setError(errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = errMsg
}
