package schema

import "github.com/hamba/avro/v2"

const CartEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront.cart",
	"name": "cart_event",
	"fields": [
		{"name": "session_id", "type": "string"},
		{"name": "kind", "type": "string"},
		{"name": "product_id", "type": "long"},
		{"name": "size", "type": "string", "default": ""},
		{"name": "color", "type": "string", "default": ""},
		{"name": "quantity", "type": "long"},
		{"name": "unit_price", "type": "double"},
		{"name": "cart_items", "type": "long"},
		{"name": "cart_total", "type": "double"},
		{"name": "occurred_at_ms", "type": "long"}
	]
}`

type CartEventV1 struct {
	SessionID    string  `avro:"session_id"`
	Kind         string  `avro:"kind"`
	ProductID    int64   `avro:"product_id"`
	Size         string  `avro:"size"`
	Color        string  `avro:"color"`
	Quantity     int64   `avro:"quantity"`
	UnitPrice    float64 `avro:"unit_price"`
	CartItems    int64   `avro:"cart_items"`
	CartTotal    float64 `avro:"cart_total"`
	OccurredAtMs int64   `avro:"occurred_at_ms"`
}

// CartEventV1Avro panics if [CartEventSchemaTextV1] is malformed.
func CartEventV1Avro() avro.Schema {
	return avro.MustParse(CartEventSchemaTextV1)
}
