package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "pbc_properties001",
			"name": "properties",
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
					"id": "relation1001",
					"name": "owner_id",
					"type": "relation",
					"required": true,
					"collectionId": "_pb_users_auth_",
					"cascadeDelete": false,
					"maxSelect": 1
				},
				{
					"id": "text1002",
					"name": "title",
					"type": "text",
					"required": true,
					"max": 200
				},
				{
					"id": "text1003",
					"name": "description",
					"type": "text",
					"max": 5000
				},
				{
					"id": "number1004",
					"name": "price",
					"type": "number",
					"required": true,
					"min": 0
				},
				{
					"id": "text1005",
					"name": "location",
					"type": "text",
					"required": true,
					"max": 300
				},
				{
					"id": "number1006",
					"name": "latitude",
					"type": "number"
				},
				{
					"id": "number1007",
					"name": "longitude",
					"type": "number"
				},
				{
					"id": "text1008",
					"name": "property_type",
					"type": "text",
					"max": 50
				},
				{
					"id": "select1009",
					"name": "status",
					"type": "select",
					"required": true,
					"maxSelect": 1,
					"values": ["available", "unavailable"]
				},
				{
					"id": "autodate1010",
					"name": "created",
					"type": "autodate",
					"onCreate": true
				},
				{
					"id": "autodate1011",
					"name": "updated",
					"type": "autodate",
					"onCreate": true,
					"onUpdate": true
				}
			],
			"indexes": [
				"CREATE INDEX idx_properties_owner ON properties (owner_id)",
				"CREATE INDEX idx_properties_status ON properties (status)"
			],
			"listRule": "",
			"viewRule": "",
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
		collection, err := app.FindCollectionByNameOrId("pbc_properties001")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
