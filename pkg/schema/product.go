package schema

import "github.com/hamba/avro/v2"

const ProductSchemaTextV1 = `{
	"type": "record",
	"namespace": "farmconnect",
	"name": "product",
	"fields": [
		{"name": "id", "type": "long"},
		{"name": "name", "type": "string"},
		{"name": "price", "type": "string"},
		{"name": "quantity", "type": "long"},
		{"name": "category", "type": "string"},
		{"name": "location", "type": ["null", "string"], "default": null},
		{"name": "description", "type": ["null", "string"], "default": null},
		{"name": "image_url", "type": ["null", "string"], "default": null},
		{"name": "seller_id", "type": "long"},
		{"name": "status", "type": "string"}
	]
}`

// ProductV1 is a catalog entry. Price keeps its exact decimal text.
type ProductV1 struct {
	ID          int64   `avro:"id"`
	Name        string  `avro:"name"`
	Price       string  `avro:"price"`
	Quantity    int64   `avro:"quantity"`
	Category    string  `avro:"category"`
	Location    *string `avro:"location"`
	Description *string `avro:"description"`
	ImageURL    *string `avro:"image_url"`
	SellerID    int64   `avro:"seller_id"`
	Status      string  `avro:"status"`
}

func ProductV1Avro() avro.Schema {
	return parse(ProductSchemaTextV1)
}
