package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "pbc_payments00001",
			"name": "payments",
			"type": "base",
			"system": false,
			"fields": [
				{
					"id": "text3208210256",
					"name": "id",
					"type": "text",
					"system": true,
					"required": true,
					"primaryKey": true,
					"autogeneratePattern": "[a-z0-9]{15}",
					"pattern": "^[a-z0-9]+$",
					"min": 15,
					"max": 15
				},
				{
					"id": "relation4001",
					"name": "booking_id",
					"type": "relation",
					"required": true,
					"collectionId": "pbc_bookings00001",
					"cascadeDelete": false,
					"maxSelect": 1
				},
				{
					"id": "number4002",
					"name": "amount",
					"type": "number",
					"required": true,
					"min": 0
				},
				{
					"id": "select4003",
					"name": "payment_status",
					"type": "select",
					"required": true,
					"maxSelect": 1,
					"values": ["pending", "success", "failed"]
				},
				{
					"id": "text4004",
					"name": "payment_method",
					"type": "text",
					"max": 50
				},
				{
					"id": "text4005",
					"name": "razorpay_payment_id",
					"type": "text",
					"max": 100
				},
				{
					"id": "text4006",
					"name": "razorpay_order_id",
					"type": "text",
					"max": 100
				},
				{
					"id": "text4007",
					"name": "razorpay_signature",
					"type": "text",
					"max": 200
				},
				{
					"id": "autodate4008",
					"name": "created",
					"type": "autodate",
					"onCreate": true
				},
				{
					"id": "autodate4009",
					"name": "updated",
					"type": "autodate",
					"onCreate": true,
					"onUpdate": true
				}
			],
			"indexes": [
				"CREATE INDEX idx_payments_booking ON payments (booking_id)",
				"CREATE INDEX idx_payments_status ON payments (payment_status)",
				"CREATE INDEX idx_payments_razorpay_payment ON payments (razorpay_payment_id)",
				"CREATE INDEX idx_payments_razorpay_order ON payments (razorpay_order_id)"
			],
			"listRule": null,
			"viewRule": null,
			"createRule": null,
			"updateRule": null,
			"deleteRule": null
		}`

		collection := &core.Collection{}
		if err := json.Unmarshal([]byte(jsonData), collection); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("pbc_payments00001")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
