package domain

import "fmt"

// IssueInstrumentDeclined - код отказа платёжного инструмента, после которого покупатель может повторить оплату
const IssueInstrumentDeclined = "INSTRUMENT_DECLINED"

// FetchError - каталог недоступен. Message показывается покупателю вместо списка товаров.
type FetchError struct {
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return "catalog fetch failed"
	}
	return fmt.Sprintf("catalog fetch failed: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// PaymentOrderError - ошибка создания или capture заказа, полученная от платёжного сервиса
type PaymentOrderError struct {
	Issue       string
	Description string
	DebugID     string
	// Raw - тело ответа, если в нём не нашлось details
	Raw string
}

func (e *PaymentOrderError) Error() string {
	if e.Issue == "" && e.Description == "" {
		return e.Raw
	}
	return fmt.Sprintf("%s %s (%s)", e.Issue, e.Description, e.DebugID)
}

// Declined - восстановимый отказ (INSTRUMENT_DECLINED): оформление перезапускается
func (e *PaymentOrderError) Declined() bool {
	return e.Issue == IssueInstrumentDeclined
}

// Capture - результат успешного capture
type Capture struct {
	Status string
	ID     string
}
