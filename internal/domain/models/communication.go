package models

import "time"

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelSMS      Channel = "sms"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelEmail, ChannelWhatsApp, ChannelSMS:
		return true
	}
	return false
}

type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
)

func (d Direction) Valid() bool {
	return d == DirectionOutgoing || d == DirectionIncoming
}

type DeliveryStatus string

const (
	DeliverySent      DeliveryStatus = "sent"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
)

func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliverySent, DeliveryDelivered, DeliveryFailed:
		return true
	}
	return false
}

// CommunicationLog is an append-only record of a message exchanged with a customer.
type CommunicationLog struct {
	ID          int64          `json:"id"`
	CustomerID  int64          `json:"customer"`
	Channel     Channel        `json:"channel"`
	Direction   Direction      `json:"direction"`
	Content     string         `json:"content"`
	Status      DeliveryStatus `json:"status"`
	TriggeredBy string         `json:"triggered_by"`
	CreatedAt   time.Time      `json:"created_at"`
}
