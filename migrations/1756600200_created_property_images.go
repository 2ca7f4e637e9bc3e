package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "pbc_propimages001",
			"name": "property_images",
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
					"id": "relation2001",
					"name": "property_id",
					"type": "relation",
					"required": true,
					"collectionId": "pbc_properties001",
					"cascadeDelete": true,
					"maxSelect": 1
				},
				{
					"id": "file2002",
					"name": "image",
					"type": "file",
					"maxSelect": 1,
					"maxSize": 5242880,
					"mimeTypes": ["image/jpeg", "image/png", "image/webp"]
				},
				{
					"id": "text2003",
					"name": "image_url",
					"type": "text",
					"max": 500
				},
				{
					"id": "autodate2004",
					"name": "created",
					"type": "autodate",
					"onCreate": true
				}
			],
			"indexes": [
				"CREATE INDEX idx_property_images_property ON property_images (property_id)"
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
		collection, err := app.FindCollectionByNameOrId("pbc_propimages001")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
