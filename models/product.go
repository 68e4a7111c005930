package models

type Product struct {
	SKU   string `json:"sku" bson:"sku"`
	Name  string `json:"name" bson:"name"`
	Price string `json:"price" bson:"price"`
	Image string `json:"image,omitempty" bson:"image,omitempty"`
}
