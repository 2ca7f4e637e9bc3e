package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "pbc_profiles00001",
			"name": "profiles",
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
					"id": "relation5001",
					"name": "user",
					"type": "relation",
					"required": true,
					"collectionId": "_pb_users_auth_",
					"cascadeDelete": true,
					"maxSelect": 1
				},
				{
					"id": "text5002",
					"name": "first_name",
					"type": "text",
					"max": 100
				},
				{
					"id": "text5003",
					"name": "last_name",
					"type": "text",
					"max": 100
				},
				{
					"id": "email5004",
					"name": "email",
					"type": "email"
				},
				{
					"id": "text5005",
					"name": "phone",
					"type": "text",
					"max": 30
				},
				{
					"id": "select5006",
					"name": "role",
					"type": "select",
					"required": true,
					"maxSelect": 1,
					"values": ["user", "owner", "admin"]
				},
				{
					"id": "autodate5007",
					"name": "created",
					"type": "autodate",
					"onCreate": true
				},
				{
					"id": "autodate5008",
					"name": "updated",
					"type": "autodate",
					"onCreate": true,
					"onUpdate": true
				}
			],
			"indexes": [
				"CREATE UNIQUE INDEX idx_profiles_user ON profiles (user)"
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
		collection, err := app.FindCollectionByNameOrId("pbc_profiles00001")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
