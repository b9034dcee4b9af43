package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"tradebook/internal/booking"
	"tradebook/internal/store/model"
	"tradebook/internal/trade"

	"github.com/gin-gonic/gin"
)

const maxTradeBody = 1 << 20

// Booker is satisfied by *booking.Service.
type Booker interface {
	Book(ctx context.Context, source string, content []byte) (*booking.Batch, error)
}

// MessageLister is satisfied by the SQLite message store.
type MessageLister interface {
	ListByTradeID(ctx context.Context, tradeID string, limit int) ([]model.BookedMessageModel, error)
}

type Router struct {
	booker   Booker
	messages MessageLister
}

func NewRouter(b Booker, m MessageLister) *Router {
	return &Router{booker: b, messages: m}
}

func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.POST("/trades", r.handleBook)
	if r.messages != nil {
		group.GET("/messages/:tradeId", r.handleMessages)
	}
}

type unitView struct {
	Unit     int      `json:"unit"`
	Checksum string   `json:"checksum,omitempty"`
	Error    string   `json:"error,omitempty"`
	Delivery []string `json:"delivery_errors,omitempty"`
}

type bookResponse struct {
	Batch    string            `json:"batch"`
	TradeID  string            `json:"trade_id"`
	Class    string            `json:"classification"`
	Units    []unitView        `json:"units"`
	Messages []json.RawMessage `json:"messages"`
}

func (r *Router) handleBook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxTradeBody))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	}
	source := "http:" + c.ClientIP()
	batch, err := r.booker.Book(c.Request.Context(), source, body)
	if err != nil {
		c.JSON(recordStatus(err), gin.H{"error": err.Error()})
		return
	}

	resp := bookResponse{
		Batch:    batch.ID.String(),
		TradeID:  batch.TradeID,
		Class:    batch.Class.String(),
		Units:    make([]unitView, 0, len(batch.Results)),
		Messages: make([]json.RawMessage, 0, len(batch.Results)),
	}
	status := http.StatusOK
	for _, res := range batch.Results {
		view := unitView{Unit: res.Number()}
		if res.Err != nil {
			view.Error = res.Err.Error()
			status = http.StatusUnprocessableEntity
		}
		if res.Message != nil {
			view.Checksum = res.Message.Checksum()
			raw, err := res.Message.MarshalJSON()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			resp.Messages = append(resp.Messages, raw)
		}
		for _, d := range res.Delivery {
			view.Delivery = append(view.Delivery, d.Error())
			if status == http.StatusOK {
				status = http.StatusBadGateway
			}
		}
		resp.Units = append(resp.Units, view)
	}
	// message bodies must stay byte-identical to their checksummed form
	c.PureJSON(status, resp)
}

func recordStatus(err error) int {
	switch {
	case errors.Is(err, trade.ErrStructural), errors.Is(err, trade.ErrSemantic):
		return http.StatusBadRequest
	case errors.Is(err, trade.ErrUnsupported):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

type storedView struct {
	ID        int64           `json:"id"`
	Checksum  string          `json:"checksum"`
	Ref       string          `json:"ref"`
	CreatedAt int64           `json:"created_at"`
	Message   json.RawMessage `json:"message"`
}

func (r *Router) handleMessages(c *gin.Context) {
	tradeID := strings.TrimSpace(c.Param("tradeId"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	rows, err := r.messages.ListByTradeID(c.Request.Context(), tradeID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no messages for trade " + tradeID})
		return
	}
	out := make([]storedView, 0, len(rows))
	for _, row := range rows {
		out = append(out, storedView{
			ID:        row.ID,
			Checksum:  row.Checksum,
			Ref:       row.Ref,
			CreatedAt: row.CreatedAtUnix,
			Message:   json.RawMessage(row.Body),
		})
	}
	c.PureJSON(http.StatusOK, gin.H{"trade_id": tradeID, "messages": out})
}
