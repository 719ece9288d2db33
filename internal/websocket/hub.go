package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"crowdfund-platform/internal/models"
)

type Client struct {
	Hub          *Hub
	Conn         *websocket.Conn
	Send         chan []byte
	FundraiserID string
}

func NewClient(hub *Hub, conn *websocket.Conn, fundraiserID string) *Client {
	return &Client{Hub: hub, Conn: conn, Send: make(chan []byte, 256), FundraiserID: fundraiserID}
}

type DonationAlert struct {
	FundraiserID string    `json:"fundraiser_id"`
	DonorName    string    `json:"donor_name"`
	Amount       int64     `json:"amount"`
	Comment      string    `json:"comment"`
	RaisedAmount int64     `json:"raised_amount"`
	CreatedAt    time.Time `json:"created_at"`
}

// Hub fans donation alerts out to every viewer of a fundraiser. All client
// bookkeeping happens on the Run goroutine.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan DonationAlert
	done       chan struct{}
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan DonationAlert, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves the hub until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for id, group := range h.clients {
				for client := range group {
					close(client.Send)
				}
				delete(h.clients, id)
			}
			return nil

		case client := <-h.register:
			group, ok := h.clients[client.FundraiserID]
			if !ok {
				group = make(map[*Client]struct{})
				h.clients[client.FundraiserID] = group
			}
			group[client] = struct{}{}
			h.log.Debug("websocket client registered", zap.String("fundraiser_id", client.FundraiserID), zap.Int("viewers", len(group)))

		case client := <-h.unregister:
			h.remove(client)

		case alert := <-h.broadcast:
			group := h.clients[alert.FundraiserID]
			if len(group) == 0 {
				continue
			}
			data, err := json.Marshal(alert)
			if err != nil {
				h.log.Error("failed to marshal donation alert", zap.Error(err))
				continue
			}
			for client := range group {
				select {
				case client.Send <- data:
				default:
					// Slow reader; drop it rather than stall everyone else
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	group, ok := h.clients[client.FundraiserID]
	if !ok {
		return
	}
	if _, ok := group[client]; !ok {
		return
	}
	delete(group, client)
	close(client.Send)
	if len(group) == 0 {
		delete(h.clients, client.FundraiserID)
	}
	h.log.Debug("websocket client unregistered", zap.String("fundraiser_id", client.FundraiserID))
}

// Register adds client to the hub. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// NotifyDonation queues an alert without blocking the caller. Alerts are
// dropped when the queue is full.
func (h *Hub) NotifyDonation(d models.Donation, raisedAmount int64) {
	alert := DonationAlert{
		FundraiserID: d.FundraiserID,
		DonorName:    d.DonorName,
		Amount:       d.Amount,
		Comment:      d.Comment,
		RaisedAmount: raisedAmount,
		CreatedAt:    d.CreatedAt,
	}
	select {
	case h.broadcast <- alert:
	default:
		h.log.Warn("donation alert dropped", zap.String("fundraiser_id", d.FundraiserID))
	}
}
