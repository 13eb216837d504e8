package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMenuItemDocument_BSONMapping(t *testing.T) {
	id := primitive.NewObjectID()
	raw, err := bson.Marshal(bson.M{
		"_id":           id,
		"restaurant_id": "r1",
		"name":          "Sate Ayam",
		"price":         int64(22000),
		"image_url":     "/sate.png",
		"is_available":  true,
	})
	assert.NoError(t, err)

	var doc menuItemDocument
	assert.NoError(t, bson.Unmarshal(raw, &doc))

	item := doc.toMenuItem()
	assert.Equal(t, id.Hex(), item.ID)
	assert.Equal(t, "r1", item.RestaurantID)
	assert.Equal(t, int64(22000), item.Price)
	assert.True(t, item.IsAvailable)
}

func TestRestaurantDocument_ToRestaurant(t *testing.T) {
	id := primitive.NewObjectID()
	r := restaurantDocument{ID: id, Name: "Sate Khas Madura", Logo: "/logo.png"}.toRestaurant()
	assert.Equal(t, id.Hex(), r.ID)
	assert.Equal(t, "Sate Khas Madura", r.Name)
}
