package store

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homesage_client/domain"
)

func TestProcessSales(t *testing.T) {
	records := []domain.SaleRecord{
		{
			"saleId":        float64(1),
			"latitude":      37.5665,
			"longitude":     126.978,
			"price":         "12000",
			"monthlyFee":    float64(50),
			"managementFee": float64(0),
			"space":         float64(84),
		},
		{
			// Non-numeric latitude: the record is dropped entirely.
			"saleId":    float64(2),
			"latitude":  "37.1",
			"longitude": 127.0,
		},
		{
			"saleId":    float64(3),
			"latitude":  35.1796,
			"longitude": 129.0756,
		},
	}

	sales := ProcessSales(records)
	require.Len(t, sales, 2)

	first := sales[0]
	assert.Equal(t, int64(1), first.SaleID)
	assert.Equal(t, 37.5665, first.Latitude)
	assert.Equal(t, float64(12000), first.Price)
	require.NotNil(t, first.MonthlyFee)
	assert.Equal(t, float64(50), *first.MonthlyFee)
	assert.Nil(t, first.ManagementFee)
	assert.Equal(t, float64(84), first.Space)

	// Order of surviving records is preserved.
	assert.Equal(t, int64(3), sales[1].SaleID)
	assert.Nil(t, sales[1].MonthlyFee)
}

func TestProcessSalesEmpty(t *testing.T) {
	assert.Empty(t, ProcessSales(nil))
	assert.Empty(t, ProcessSales([]domain.SaleRecord{}))
}

func TestFetchSalesByMapCenter(t *testing.T) {
	backend := newBackend(t, domain.Consumer)
	backend.SetSales([]domain.SaleRecord{
		{"saleId": float64(7), "latitude": 37.5, "longitude": 127.0, "price": float64(9000)},
	})

	store := NewSaleStore(testClient(backend), testLogger(), testTracer())
	store.FetchSalesByMapCenter(context.Background(), 37.5, 127.0, 500.4)

	sales := store.Sales()
	require.Len(t, sales, 1)
	assert.Equal(t, int64(7), sales[0].SaleID)
	assert.Equal(t, "", store.Error())
	assert.False(t, store.Loading())
	assert.True(t, store.HasSales())
	assert.Equal(t, 1, backend.Requests(http.MethodGet, "/sales/map-search"))
}

func TestFetchSalesByMapCenterRejectsZeroParams(t *testing.T) {
	backend := newBackend(t, domain.Consumer)
	store := NewSaleStore(testClient(backend), testLogger(), testTracer())

	store.FetchSalesByMapCenter(context.Background(), 0, 127.0, 500)
	store.FetchSalesByMapCenter(context.Background(), 37.5, 0, 500)
	store.FetchSalesByMapCenter(context.Background(), 37.5, 127.0, 0)

	assert.Equal(t, 0, backend.Requests(http.MethodGet, "/sales/map-search"))
	assert.Equal(t, "", store.Error())
}

func TestFetchSalesByMapCenterBackendFailure(t *testing.T) {
	backend := newBackend(t, domain.Consumer)
	backend.Fail(http.MethodGet, "/sales/map-search", http.StatusInternalServerError)

	store := NewSaleStore(testClient(backend), testLogger(), testTracer())
	store.FetchSalesByMapCenter(context.Background(), 37.5, 127.0, 500)

	assert.Empty(t, store.Sales())
	assert.Equal(t, domain.FetchSalesFailed, store.Error())
	assert.False(t, store.Loading())
}

func TestFetchSalesByMapCenterMalformedPayload(t *testing.T) {
	backend := newBackend(t, domain.Consumer)
	backend.SetRawSales("{}")

	store := NewSaleStore(testClient(backend), testLogger(), testTracer())
	store.FetchSalesByMapCenter(context.Background(), 37.5, 127.0, 500)

	assert.Empty(t, store.Sales())
	assert.Equal(t, domain.FetchSalesFailed, store.Error())
}

func TestSearchSales(t *testing.T) {
	backend := newBackend(t, domain.Consumer)
	backend.SetSales([]domain.SaleRecord{
		{"saleId": float64(11), "latitude": 37.5, "longitude": 127.0},
	})

	store := NewSaleStore(testClient(backend), testLogger(), testTracer())
	require.False(t, store.IsSearchMode())

	store.SearchSales(context.Background(), &domain.SearchCriteria{Keyword: "역삼동", MaxPrice: 20000})

	assert.True(t, store.IsSearchMode())
	assert.Len(t, store.Sales(), 1)
	assert.Equal(t, 1, backend.Requests(http.MethodGet, "/sales/list"))
}

func TestSearchModeStaysOnFailure(t *testing.T) {
	backend := newBackend(t, domain.Consumer)
	backend.Fail(http.MethodGet, "/sales/list", http.StatusInternalServerError)

	store := NewSaleStore(testClient(backend), testLogger(), testTracer())
	store.SearchSales(context.Background(), nil)

	assert.True(t, store.IsSearchMode())
	assert.Equal(t, domain.SearchSalesFailed, store.Error())
	assert.Empty(t, store.Sales())
}

func TestSelectedSale(t *testing.T) {
	backend := newBackend(t, domain.Consumer)
	store := NewSaleStore(testClient(backend), testLogger(), testTracer())

	assert.False(t, store.HasSelected())
	assert.Nil(t, store.SelectedSale())

	store.SetSelectedSale(&domain.Sale{SaleID: 42})
	require.True(t, store.HasSelected())
	assert.Equal(t, int64(42), store.SelectedSale().SaleID)

	// The getter hands out a copy.
	store.SelectedSale().SaleID = 99
	assert.Equal(t, int64(42), store.SelectedSale().SaleID)

	store.ClearSelectedSale()
	assert.False(t, store.HasSelected())
}

func TestUploadSale(t *testing.T) {
	backend := newBackend(t, domain.Provider)
	notifier := &captureNotifier{}
	auth := loggedInAuthStore(backend, notifier)
	store := NewSaleStore(testClient(backend), testLogger(), testTracer())

	data := &domain.SaleUpload{
		Title:     "역삼동 오피스텔",
		Address:   "서울 강남구 역삼동 123-4",
		SaleType:  "MONTHLY",
		Latitude:  37.5,
		Longitude: 127.03,
		Price:     1000,
		Space:     23,
	}

	err := store.UploadSale(context.Background(), auth.Session(), data, bytes.NewReader([]byte("image-bytes")), "photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, 1, backend.Uploads())
	assert.Equal(t, "", store.Error())
}

func TestUploadSaleInvalidPayloadSkipsNetwork(t *testing.T) {
	backend := newBackend(t, domain.Provider)
	auth := loggedInAuthStore(backend, nil)
	store := NewSaleStore(testClient(backend), testLogger(), testTracer())

	err := store.UploadSale(context.Background(), auth.Session(), &domain.SaleUpload{}, bytes.NewReader(nil), "photo.jpg")
	require.Error(t, err)
	assert.Equal(t, domain.UploadSaleFailed, store.Error())
	assert.Equal(t, 0, backend.Requests(http.MethodPost, "/sales/provider/upload"))
}

func TestUploadSaleBackendFailureRethrows(t *testing.T) {
	backend := newBackend(t, domain.Provider)
	backend.Fail(http.MethodPost, "/sales/provider/upload", http.StatusBadRequest)
	auth := loggedInAuthStore(backend, nil)
	store := NewSaleStore(testClient(backend), testLogger(), testTracer())

	data := &domain.SaleUpload{
		Title:     "매물",
		Address:   "주소",
		SaleType:  "SALE",
		Latitude:  37.5,
		Longitude: 127.03,
		Space:     10,
	}

	err := store.UploadSale(context.Background(), auth.Session(), data, bytes.NewReader([]byte("img")), "photo.jpg")
	require.Error(t, err)
	assert.Equal(t, domain.UploadSaleFailed, store.Error())
}

func TestFetchReservedTimes(t *testing.T) {
	backend := newBackend(t, domain.Consumer)
	backend.SetReservedTimes(5, []string{"2024-05-20T14:00:00", "2024-05-20T15:00:00"})

	store := NewSaleStore(testClient(backend), testLogger(), testTracer())

	times := store.FetchReservedTimes(context.Background(), 5)
	assert.Equal(t, []string{"2024-05-20T14:00:00", "2024-05-20T15:00:00"}, times)

	assert.Empty(t, store.FetchReservedTimes(context.Background(), 6))
	assert.Equal(t, "", store.Error())
}

func TestFetchReservedTimesFailure(t *testing.T) {
	backend := newBackend(t, domain.Consumer)
	backend.Fail(http.MethodGet, "/sales/reserve/5", http.StatusInternalServerError)

	store := NewSaleStore(testClient(backend), testLogger(), testTracer())

	times := store.FetchReservedTimes(context.Background(), 5)
	assert.Equal(t, []string{}, times)
	assert.Equal(t, domain.ReservedTimesFailed, store.Error())
}
