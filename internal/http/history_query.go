package http

import (
	"net/http"
	"time"

	"github.com/AbhaySingh4321/shop-managerr/internal/apperr"
	"github.com/AbhaySingh4321/shop-managerr/internal/history"
	"github.com/AbhaySingh4321/shop-managerr/internal/ledger"
)

// dateLayout is the calendar-day format accepted by the from/to query params.
// Bounds are inclusive of the whole day.
const dateLayout = "2006-01-02"

func historyFilterFromQuery(r *http.Request) (history.Filter, error) {
	q := r.URL.Query()

	f := history.Filter{Query: q.Get("q")}

	var err error
	if f.From, err = parseQueryDate(q.Get("from")); err != nil {
		return history.Filter{}, err
	}
	if f.To, err = parseQueryDate(q.Get("to")); err != nil {
		return history.Filter{}, err
	}

	return f, nil
}

func parseQueryDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(dateLayout, v, time.Local)
	if err != nil {
		return time.Time{}, apperr.ValidationErr.WrapParent(err)
	}
	return t, nil
}

func filteredSales(ldg *ledger.Ledger, f history.Filter) []history.SaleRow {
	return history.FilterSales(ldg.Sales(), ldg.Products(), f)
}

func filteredRestocks(ldg *ledger.Ledger, f history.Filter) []history.RestockRow {
	return history.FilterRestocks(ldg.Restocks(), ldg.Products(), f)
}
