package handlers

import (
	"net/http"
	"time"

	"github.com/baharkarakas/stocksim/internal/api/httpx"
	"github.com/baharkarakas/stocksim/internal/models"
	"github.com/baharkarakas/stocksim/internal/services"
)

type PortfolioHandler struct {
	Portfolio    *services.PortfolioService
	Transactions *services.HistoryService
}

func NewPortfolioHandler(ps *services.PortfolioService, hs *services.HistoryService) *PortfolioHandler {
	return &PortfolioHandler{Portfolio: ps, Transactions: hs}
}

type holdingView struct {
	Symbol       string `json:"symbol"`
	Quantity     int64  `json:"quantity"`
	Price        string `json:"price"`
	PriceDisplay string `json:"price_display"`
	Value        string `json:"value"`
	ValueDisplay string `json:"value_display"`
}

type portfolioView struct {
	Username          string        `json:"username"`
	Holdings          []holdingView `json:"holdings"`
	Cash              string        `json:"cash"`
	CashDisplay       string        `json:"cash_display"`
	StockValue        string        `json:"stock_value"`
	StockValueDisplay string        `json:"stock_value_display"`
	Total             string        `json:"total"`
	TotalDisplay      string        `json:"total_display"`
}

type historyEntry struct {
	Symbol       string    `json:"symbol"`
	Type         string    `json:"type"`
	Shares       int64     `json:"shares"`
	Price        string    `json:"price"`
	PriceDisplay string    `json:"price_display"`
	Timestamp    time.Time `json:"timestamp"`
}

type historyView struct {
	Transactions []historyEntry `json:"transactions"`
}

// Index renders the user's holdings valued at current prices.
func (h *PortfolioHandler) Index(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	p, err := h.Portfolio.Portfolio(r.Context(), uid)
	if err != nil {
		fail(w, r, err, http.StatusBadRequest)
		return
	}

	view := portfolioView{
		Username:          p.Username,
		Holdings:          make([]holdingView, 0, len(p.Holdings)),
		Cash:              p.Cash.StringFixed(2),
		CashDisplay:       models.USD(p.Cash),
		StockValue:        p.StockValue.StringFixed(2),
		StockValueDisplay: models.USD(p.StockValue),
		Total:             p.Total.StringFixed(2),
		TotalDisplay:      models.USD(p.Total),
	}
	for _, l := range p.Holdings {
		view.Holdings = append(view.Holdings, holdingView{
			Symbol:       l.Symbol,
			Quantity:     l.Quantity,
			Price:        l.Price.String(),
			PriceDisplay: models.USD(l.Price),
			Value:        l.Value.StringFixed(2),
			ValueDisplay: models.USD(l.Value),
		})
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *PortfolioHandler) History(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	txs, err := h.Transactions.List(r.Context(), uid)
	if err != nil {
		fail(w, r, err, http.StatusBadRequest)
		return
	}

	view := historyView{Transactions: make([]historyEntry, 0, len(txs))}
	for _, t := range txs {
		view.Transactions = append(view.Transactions, historyEntry{
			Symbol:       t.Symbol,
			Type:         string(t.Type),
			Shares:       t.Quantity,
			Price:        t.Price.String(),
			PriceDisplay: models.USD(t.Price),
			Timestamp:    t.CreatedAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}
