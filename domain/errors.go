package domain

import "errors"

// User-facing messages, kept verbatim from the web client.
const (
	LoginRequired          = "로그인이 필요한 서비스입니다."
	LoginRequiredPage      = "로그인이 필요한 페이지입니다."
	LoginSuccess           = "로그인 성공!"
	LoginFailed            = "로그인 실패. 이메일과 비밀번호를 확인해주세요."
	PasswordChanged        = "비밀번호 변경이 완료되었습니다!"
	PasswordChangeFailed   = "기존 비밀번호가 일치하지 않습니다."
	FetchSalesFailed       = "매물을 불러오는데 실패했습니다."
	SearchSalesFailed      = "매물을 검색하는데 실패했습니다."
	UploadSaleFailed       = "매물 등록에 실패했습니다."
	ReservedTimesFailed    = "예약된 시간을 조회하는데 실패했습니다."
	InterestListFailed     = "찜 목록을 불러오는데 실패했습니다."
	ReservationListFailed  = "예약 목록을 불러오는데 실패했습니다."
	InterestToggleFailed   = "찜하기 처리 중 오류가 발생했습니다."
	AlreadyReserved        = "이미 예약된 매물입니다."
	ReservationFailed      = "예약 처리 중 오류가 발생했습니다."
	AlreadyCancelled       = "이미 취소된 예약입니다."
	CancelFailed           = "예약 취소 중 오류가 발생했습니다."
	MissingRoleInformation = "권한 정보가 없습니다"
)

var (
	ErrNotAuthenticated = errors.New(LoginRequired)
	ErrAlreadyReserved  = errors.New(AlreadyReserved)
	ErrAlreadyCancelled = errors.New(AlreadyCancelled)
	ErrMalformedPayload = errors.New("malformed response payload")
	ErrInvalidParams    = errors.New("invalid search parameters")
)
