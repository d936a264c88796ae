package models

import "github.com/google/uuid"

type Customer struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Project - имя уникально в пределах заказчика
type Project struct {
	ID          uuid.UUID `json:"id"`
	CustomerID  uuid.UUID `json:"customer_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}
