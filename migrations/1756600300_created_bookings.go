package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "pbc_bookings00001",
			"name": "bookings",
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
					"id": "relation3001",
					"name": "property_id",
					"type": "relation",
					"required": true,
					"collectionId": "pbc_properties001",
					"cascadeDelete": false,
					"maxSelect": 1
				},
				{
					"id": "relation3002",
					"name": "user_id",
					"type": "relation",
					"required": true,
					"collectionId": "_pb_users_auth_",
					"cascadeDelete": false,
					"maxSelect": 1
				},
				{
					"id": "relation3003",
					"name": "owner_id",
					"type": "relation",
					"required": true,
					"collectionId": "_pb_users_auth_",
					"cascadeDelete": false,
					"maxSelect": 1
				},
				{
					"id": "date3004",
					"name": "check_in",
					"type": "date",
					"required": true
				},
				{
					"id": "date3005",
					"name": "check_out",
					"type": "date",
					"required": true
				},
				{
					"id": "select3006",
					"name": "status",
					"type": "select",
					"required": true,
					"maxSelect": 1,
					"values": ["pending", "confirmed", "cancelled"]
				},
				{
					"id": "autodate3007",
					"name": "created",
					"type": "autodate",
					"onCreate": true
				},
				{
					"id": "autodate3008",
					"name": "updated",
					"type": "autodate",
					"onCreate": true,
					"onUpdate": true
				}
			],
			"indexes": [
				"CREATE INDEX idx_bookings_user ON bookings (user_id)",
				"CREATE INDEX idx_bookings_owner ON bookings (owner_id)",
				"CREATE INDEX idx_bookings_property_status ON bookings (property_id, status)"
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
		collection, err := app.FindCollectionByNameOrId("pbc_bookings00001")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
