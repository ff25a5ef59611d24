package store

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"homesage_client/api"
	"homesage_client/domain"
)

// UserStore keeps the current user's interest (favorite) and
// reservation bookkeeping. Every operation is gated on the auth store:
// reads return silently when logged out, mutations fail before any
// network call.
type UserStore struct {
	mu     sync.RWMutex
	client *api.Client
	logger *logrus.Logger
	tracer trace.Tracer
	auth   *AuthStore

	interestedSales      []int64
	reservations         []domain.Reservation
	providerReservations []domain.Reservation
}

func NewUserStore(client *api.Client, auth *AuthStore, logger *logrus.Logger, tracer trace.Tracer) *UserStore {
	return &UserStore{
		client: client,
		logger: logger,
		tracer: tracer,
		auth:   auth,
	}
}

func (s *UserStore) InterestedSales() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, len(s.interestedSales))
	copy(ids, s.interestedSales)
	return ids
}

func (s *UserStore) Reservations() []domain.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reservations := make([]domain.Reservation, len(s.reservations))
	copy(reservations, s.reservations)
	return reservations
}

func (s *UserStore) ProviderReservations() []domain.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reservations := make([]domain.Reservation, len(s.providerReservations))
	copy(reservations, s.providerReservations)
	return reservations
}

// FetchInterestedSales reloads the authoritative favorite list. An
// empty or 204 response is a user with no favorites, not an error.
func (s *UserStore) FetchInterestedSales(ctx context.Context) error {
	if !s.auth.IsAuthenticated() {
		return nil
	}

	ctx, span := s.tracer.Start(ctx, "UserStore.FetchInterestedSales")
	defer span.End()

	items, err := s.client.InterestList(ctx, s.auth.Session())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.Errorf("UserStore.FetchInterestedSales : fetch failed: %s", err)
		s.setInterests(nil)
		return errors.New(domain.InterestListFailed)
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.SaleID)
	}
	s.setInterests(ids)
	return nil
}

// FetchReservations reloads the authoritative reservation list.
func (s *UserStore) FetchReservations(ctx context.Context) error {
	if !s.auth.IsAuthenticated() {
		return nil
	}

	ctx, span := s.tracer.Start(ctx, "UserStore.FetchReservations")
	defer span.End()

	reservations, err := s.client.ReservationList(ctx, s.auth.Session())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.Errorf("UserStore.FetchReservations : fetch failed: %s", err)
		s.setReservations(nil)
		return errors.New(domain.ReservationListFailed)
	}

	s.setReservations(reservations)
	return nil
}

// FetchProviderReservations reads the visits booked against the
// provider's own listings.
func (s *UserStore) FetchProviderReservations(ctx context.Context) error {
	if !s.auth.IsAuthenticated() {
		return nil
	}

	ctx, span := s.tracer.Start(ctx, "UserStore.FetchProviderReservations")
	defer span.End()

	reservations, err := s.client.ProviderReservationList(ctx, s.auth.Session())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.Errorf("UserStore.FetchProviderReservations : fetch failed: %s", err)
		s.mu.Lock()
		s.providerReservations = nil
		s.mu.Unlock()
		return errors.New(domain.ReservationListFailed)
	}

	s.mu.Lock()
	s.providerReservations = reservations
	s.mu.Unlock()
	return nil
}

func (s *UserStore) IsInterested(saleID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.interestedSales {
		if id == saleID {
			return true
		}
	}
	return false
}

func (s *UserStore) IsReserved(saleID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, reservation := range s.reservations {
		if reservation.SaleID == saleID {
			return true
		}
	}
	return false
}

// ToggleInterest flips the favorite state of a listing, then re-fetches
// the authoritative list instead of trusting the toggle response to
// mutate local state.
func (s *UserStore) ToggleInterest(ctx context.Context, saleID int64) (bool, error) {
	if !s.auth.IsAuthenticated() {
		return false, domain.ErrNotAuthenticated
	}

	ctx, span := s.tracer.Start(ctx, "UserStore.ToggleInterest")
	defer span.End()

	result, err := s.client.ToggleInterest(ctx, s.auth.Session(), saleID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.Errorf("UserStore.ToggleInterest : toggle failed: %s", err)
		return false, errors.New(domain.InterestToggleFailed)
	}

	if err := s.FetchInterestedSales(ctx); err != nil {
		return result.IsInterest, err
	}

	return result.IsInterest, nil
}

// MakeReservation books a visit slot, then re-fetches the reservation
// list. The backend answers 500 for a duplicate booking.
func (s *UserStore) MakeReservation(ctx context.Context, request *domain.ReservationRequest) error {
	if !s.auth.IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}

	ctx, span := s.tracer.Start(ctx, "UserStore.MakeReservation")
	defer span.End()

	if err := request.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return errors.New(domain.ReservationFailed)
	}

	if err := s.client.MakeReservation(ctx, s.auth.Session(), request); err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.Errorf("UserStore.MakeReservation : reservation failed: %s", err)
		if api.StatusCode(err) == http.StatusInternalServerError {
			return domain.ErrAlreadyReserved
		}
		return errors.New(domain.ReservationFailed)
	}

	return s.FetchReservations(ctx)
}

// CancelReservation deletes the booking and filters the cached list
// locally. Asymmetric with the favorite toggle's re-fetch on purpose:
// the web client behaved this way and the contract preserves it.
func (s *UserStore) CancelReservation(ctx context.Context, saleID int64) error {
	if !s.auth.IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}

	ctx, span := s.tracer.Start(ctx, "UserStore.CancelReservation")
	defer span.End()

	if err := s.client.CancelReservation(ctx, s.auth.Session(), saleID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.Errorf("UserStore.CancelReservation : cancel failed: %s", err)
		if api.StatusCode(err) == http.StatusInternalServerError {
			return domain.ErrAlreadyCancelled
		}
		return errors.New(domain.CancelFailed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.reservations[:0]
	for _, reservation := range s.reservations {
		if reservation.SaleID != saleID {
			kept = append(kept, reservation)
		}
	}
	s.reservations = kept
	return nil
}

func (s *UserStore) setInterests(ids []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interestedSales = ids
}

func (s *UserStore) setReservations(reservations []domain.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations = reservations
}
