package helper

import (
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ServerErrorReporter is the slice of the error handler that background
// tasks need. Kept as an interface to avoid an import cycle with errHandler.
type ServerErrorReporter interface {
	ReportServerError(r *http.Request, err error)
}

type HelperRepository struct {
	baseUrl    *string
	WG         *sync.WaitGroup
	errHandler ServerErrorReporter
	printer    *message.Printer
}

func New(baseUrl *string, wg *sync.WaitGroup, errHandler ServerErrorReporter) *HelperRepository {
	return &HelperRepository{
		baseUrl:    baseUrl,
		WG:         wg,
		errHandler: errHandler,
		printer:    message.NewPrinter(language.English),
	}
}

// SetErrorReporter breaks the construction cycle between the helper and the
// error handler: the helper is built first, the error handler is built with
// it, then the reporter is attached here.
func (h *HelperRepository) SetErrorReporter(reporter ServerErrorReporter) {
	h.errHandler = reporter
}

func (h *HelperRepository) NewEmailData() map[string]any {
	data := map[string]any{
		"BaseURL": h.baseUrl,
	}

	return data
}

// FormatAmount renders a Naira amount for customer-facing messages,
// e.g. 200 -> "NGN 200.00".
func (h *HelperRepository) FormatAmount(amount float64) string {
	return h.printer.Sprintf("NGN %.2f", amount)
}

func (h *HelperRepository) BackgroundTask(r *http.Request, fn func() error) {
	h.WG.Add(1)

	go func() {
		defer h.WG.Done()

		defer func() {
			err := recover()
			if err != nil && h.errHandler != nil {
				h.errHandler.ReportServerError(nil, fmt.Errorf("%s", err))
			}
		}()

		err := fn()
		if err != nil && h.errHandler != nil {
			h.errHandler.ReportServerError(nil, err)
		}
	}()
}
