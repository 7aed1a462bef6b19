package handlers

import (
	"net/http"

	"github.com/baharkarakas/stocksim/internal/api/httpx"
	"github.com/baharkarakas/stocksim/internal/models"
	"github.com/baharkarakas/stocksim/internal/services"
)

type TradeHandler struct {
	Trades    *services.TradeService
	Portfolio *services.PortfolioService
}

func NewTradeHandler(ts *services.TradeService, ps *services.PortfolioService) *TradeHandler {
	return &TradeHandler{Trades: ts, Portfolio: ps}
}

type buyFormView struct {
	Fields      []string `json:"fields"`
	Cash        string   `json:"cash"`
	CashDisplay string   `json:"cash_display"`
}

type sellFormView struct {
	Fields  []string `json:"fields"`
	Symbols []string `json:"symbols"`
}

type quoteView struct {
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Price        string `json:"price"`
	PriceDisplay string `json:"price_display"`
}

func (h *TradeHandler) BuyForm(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	cash, err := h.Portfolio.Cash(r.Context(), uid)
	if err != nil {
		fail(w, r, err, http.StatusBadRequest)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, buyFormView{
		Fields:      []string{"symbol", "shares"},
		Cash:        cash.StringFixed(2),
		CashDisplay: models.USD(cash),
	})
}

func (h *TradeHandler) Buy(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	_, err := h.Trades.Buy(r.Context(), uid, services.TradeArgs{
		Symbol: r.PostFormValue("symbol"),
		Shares: r.PostFormValue("shares"),
	})
	if err != nil {
		fail(w, r, err, http.StatusBadRequest)
		return
	}
	home(w, r)
}

// SellForm lists the symbols the user currently owns.
func (h *TradeHandler) SellForm(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	symbols, err := h.Portfolio.OwnedSymbols(r.Context(), uid)
	if err != nil {
		fail(w, r, err, http.StatusBadRequest)
		return
	}
	if symbols == nil {
		symbols = []string{}
	}
	httpx.WriteJSON(w, http.StatusOK, sellFormView{Fields: []string{"symbol", "shares"}, Symbols: symbols})
}

func (h *TradeHandler) Sell(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	_, err := h.Trades.Sell(r.Context(), uid, services.TradeArgs{
		Symbol: r.PostFormValue("symbol"),
		Shares: r.PostFormValue("shares"),
	})
	if err != nil {
		fail(w, r, err, http.StatusBadRequest)
		return
	}
	home(w, r)
}

func (h *TradeHandler) QuoteForm(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, formView{Fields: []string{"symbol"}})
}

func (h *TradeHandler) Quote(w http.ResponseWriter, r *http.Request) {
	q, err := h.Trades.Quote(r.Context(), r.PostFormValue("symbol"))
	if err != nil {
		fail(w, r, err, http.StatusBadRequest)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, quoteView{
		Symbol:       q.Symbol,
		Name:         q.Name,
		Price:        q.Price.String(),
		PriceDisplay: models.USD(q.Price),
	})
}
