package domain

import "time"

// Request is the valuation request that owns a message thread. Only the
// fields messaging needs are modelled here; the rest of the request
// (vehicle data, offer history) belongs to other services.
type Request struct {
	Id            RequestId     `json:"id"`
	Status        RequestStatus `json:"status"`
	CustomerId    UserId        `json:"customer_id"`
	CustomerEmail string        `json:"customer_email"`
	CreatedAt     time.Time     `json:"created_at"`
}
