package domain

import (
	"encoding/json"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

type UserRole string

const (
	Consumer UserRole = "CONSUMER"
	Provider UserRole = "PROVIDER"
)

// Session is the client-held belief about the current authentication
// state, reconciled against the backend via the refresh endpoint. It is
// passed explicitly to every authorized call instead of living in a
// shared default header.
type Session struct {
	Token         string
	Role          UserRole
	Authenticated bool
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type PasswordChange struct {
	OldPassword        string `json:"oldPassword" validate:"required"`
	NewPassword        string `json:"newPassword" validate:"required"`
	NewPasswordConfirm string `json:"newPasswordConfirm" validate:"required,eqfield=NewPassword"`
}

type Claims struct {
	Username  string    `json:"username,omitempty"`
	UserRole  UserRole  `json:"userRole"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// SaleRecord is a listing exactly as the backend serialized it. Field
// types are only trusted after ProcessSales has filtered and coerced
// the record into a Sale.
type SaleRecord map[string]interface{}

// Sale is a validated listing. Latitude and longitude are guaranteed
// finite; remaining backend fields ride along in Extra untouched.
type Sale struct {
	SaleID        int64    `json:"saleId"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	Price         float64  `json:"price"`
	MonthlyFee    *float64 `json:"monthlyFee"`
	ManagementFee *float64 `json:"managementFee"`
	Space         float64  `json:"space"`
	Extra         SaleRecord
}

// SaleUpload is the JSON part of the multipart listing-creation payload.
type SaleUpload struct {
	Title         string   `json:"title" validate:"required"`
	Address       string   `json:"address" validate:"required"`
	SaleType      string   `json:"saleType" validate:"required"`
	Latitude      float64  `json:"latitude" validate:"required"`
	Longitude     float64  `json:"longitude" validate:"required"`
	Price         float64  `json:"price" validate:"gte=0"`
	MonthlyFee    *float64 `json:"monthlyFee,omitempty"`
	ManagementFee *float64 `json:"managementFee,omitempty"`
	Space         float64  `json:"space" validate:"gt=0"`
}

type SearchCriteria struct {
	Keyword  string `json:"keyword,omitempty"`
	SaleType string `json:"saleType,omitempty"`
	MinPrice int64  `json:"minPrice,omitempty"`
	MaxPrice int64  `json:"maxPrice,omitempty"`
	MinSpace int64  `json:"minSpace,omitempty"`
	MaxSpace int64  `json:"maxSpace,omitempty"`
}

type ReservationRequest struct {
	SaleID      int64  `json:"saleId" validate:"required"`
	ReserveDate string `json:"reserveDate" validate:"required"`
	ReserveTime string `json:"reserveTime" validate:"required"`
}

// Reservation is one booked visit slot. ReservationDatetime is the
// backend's ISO-8601 string and stays a string on the client; only the
// calendar-event pager parses it.
type Reservation struct {
	SaleID              int64  `json:"saleId"`
	ReservationDatetime string `json:"reservationDatetime"`
	Title               string `json:"title,omitempty"`
	Address             string `json:"address,omitempty"`
	UserName            string `json:"userName,omitempty"`
}

type InterestItem struct {
	SaleID int64 `json:"saleId"`
}

type ToggleResult struct {
	IsInterest bool `json:"isInterest"`
}

// CalendarDate is one cell of the fixed 42-cell booking grid. Month is
// 1-indexed.
type CalendarDate struct {
	Year           int  `json:"year"`
	Month          int  `json:"month"`
	Day            int  `json:"date"`
	IsCurrentMonth bool `json:"isCurrentMonth"`
	IsPast         bool `json:"isPast"`
}

// FormattedSelection is the reservation payload shape the backend
// expects for a chosen date and time.
type FormattedSelection struct {
	ReserveDate string `json:"reserveDate"`
	ReserveTime string `json:"reserveTime"`
}

var validate = validator.New()

func (c *Credentials) Validate() error {
	return validate.Struct(c)
}

func (p *PasswordChange) Validate() error {
	return validate.Struct(p)
}

func (s *SaleUpload) Validate() error {
	return validate.Struct(s)
}

func (r *ReservationRequest) Validate() error {
	return validate.Struct(r)
}

// Numeric reads a loosely typed backend value as a number the way the
// web client did: numbers pass through, numeric strings are parsed,
// anything else is NaN.
func Numeric(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// StrictNumber accepts only a value that was a JSON number on the wire.
func StrictNumber(value interface{}) (float64, bool) {
	f, ok := value.(float64)
	if !ok || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func (r SaleRecord) SaleID() int64 {
	id := Numeric(r["saleId"])
	if math.IsNaN(id) {
		return 0
	}
	return int64(id)
}

func (s *Sale) FromJSON(reader io.Reader) error {
	return json.NewDecoder(reader).Decode(s)
}

func (s *Sale) ToJSON(writer io.Writer) error {
	return json.NewEncoder(writer).Encode(s)
}

func (r *ReservationRequest) FromJSON(reader io.Reader) error {
	return json.NewDecoder(reader).Decode(r)
}

func (c *Credentials) FromJSON(reader io.Reader) error {
	return json.NewDecoder(reader).Decode(c)
}
