package catalog

import (
	"context"
	"errors"
	"fmt"

	"golang-food-cart/internal/cart"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type menuItemDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	RestaurantID string             `bson:"restaurant_id"`
	Name         string             `bson:"name"`
	Price        int64              `bson:"price"`
	ImageURL     string             `bson:"image_url"`
	IsAvailable  bool               `bson:"is_available"`
}

func (d menuItemDocument) toMenuItem() *cart.MenuItem {
	return &cart.MenuItem{
		ID:           d.ID.Hex(),
		RestaurantID: d.RestaurantID,
		Name:         d.Name,
		Price:        d.Price,
		ImageURL:     d.ImageURL,
		IsAvailable:  d.IsAvailable,
	}
}

type restaurantDocument struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name"`
	Logo string             `bson:"logo"`
}

func (d restaurantDocument) toRestaurant() *Restaurant {
	return &Restaurant{ID: d.ID.Hex(), Name: d.Name, Logo: d.Logo}
}

// MongoCatalog reads the menu_items and restaurants collections.
type MongoCatalog struct {
	menuItems   *mongo.Collection
	restaurants *mongo.Collection
}

func NewMongoCatalog(db *mongo.Database) *MongoCatalog {
	return &MongoCatalog{
		menuItems:   db.Collection("menu_items"),
		restaurants: db.Collection("restaurants"),
	}
}

func (m *MongoCatalog) GetRestaurant(ctx context.Context, restaurantID string) (*Restaurant, error) {
	id, err := primitive.ObjectIDFromHex(restaurantID)
	if err != nil {
		return nil, fmt.Errorf("restaurant %q: %w", restaurantID, ErrNotFound)
	}

	var doc restaurantDocument
	err = m.restaurants.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("restaurant %q: %w", restaurantID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return doc.toRestaurant(), nil
}

func (m *MongoCatalog) GetMenuItem(ctx context.Context, restaurantID, menuItemID string) (*cart.MenuItem, error) {
	id, err := primitive.ObjectIDFromHex(menuItemID)
	if err != nil {
		return nil, fmt.Errorf("menu item %q: %w", menuItemID, ErrNotFound)
	}

	var doc menuItemDocument
	filter := bson.M{"_id": id, "restaurant_id": restaurantID}
	err = m.menuItems.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("menu item %q: %w", menuItemID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return doc.toMenuItem(), nil
}

// Lookup queries the two collections; the restaurant is read first so an
// unknown restaurant reports as such.
func (m *MongoCatalog) Lookup(ctx context.Context, restaurantID, menuItemID string) (*Restaurant, *cart.MenuItem, error) {
	restaurant, err := m.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, nil, err
	}
	item, err := m.GetMenuItem(ctx, restaurantID, menuItemID)
	if err != nil {
		return nil, nil, err
	}
	return restaurant, item, nil
}
