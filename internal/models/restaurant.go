// internal/models/restaurant.go
package models

// DeliveryWindow is the estimated delivery range in minutes.
type DeliveryWindow struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type Restaurant struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	Rating       float64        `json:"rating"`
	ReviewCount  int            `json:"reviewCount"`
	DeliveryTime DeliveryWindow `json:"deliveryTime"`
	DeliveryFee  float64        `json:"deliveryFee"`
	CuisineTags  []string       `json:"cuisineTags"`
	PriceLevel   int            `json:"priceLevel"`
	IsOpen       bool           `json:"isOpen"`
	Address      string         `json:"address"`
	ImageURL     string         `json:"imageUrl,omitempty"`
	Promoted     bool           `json:"promoted,omitempty"`
}

type Driver struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	VehicleType string  `json:"vehicleType"`
	Rating      float64 `json:"rating"`
}
