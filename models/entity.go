// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "fmt"

// EntityType names a kind of itinerary entity that can be mutated and
// queued while offline. Every EntityType is stored in exactly one
// [Collection].
type EntityType string

const (
	// Trip is a single journey with its dates and destination.
	Trip EntityType = "trip"

	// Block is a scheduled itinerary block (flight, hotel, activity) inside a trip.
	Block EntityType = "block"

	// Todo is a trip-related task.
	Todo EntityType = "todo"

	// PackingItem is a single entry of a packing list.
	PackingItem EntityType = "packingItem"

	// Expense is a recorded trip expense.
	Expense EntityType = "expense"
)

// EntityTypes lists all queueable entity types in a stable order.
var EntityTypes = []EntityType{Trip, Block, Todo, PackingItem, Expense}

// Collection names a locally persisted collection. It is also the field name
// used on the wire when a snapshot is pushed or pulled.
type Collection string

const (
	Trips        Collection = "trips"
	Blocks       Collection = "blocks"
	Todos        Collection = "todos"
	PackingItems Collection = "packingItems"
	Expenses     Collection = "expenses"

	// Settings is the only object-shaped collection: a single JSON object
	// rather than an array of records.
	Settings Collection = "settings"
)

// Collections lists every collection in push order.
var Collections = []Collection{Trips, Blocks, Todos, PackingItems, Expenses, Settings}

var entityCollections = map[EntityType]Collection{
	Trip:        Trips,
	Block:       Blocks,
	Todo:        Todos,
	PackingItem: PackingItems,
	Expense:     Expenses,
}

// Collection returns the collection the entity type is stored in.
// An unknown entity type yields an empty Collection.
func (e EntityType) Collection() Collection {
	return entityCollections[e]
}

// Valid reports whether e is one of the known entity types.
func (e EntityType) Valid() bool {
	_, ok := entityCollections[e]
	return ok
}

// ParseEntityType converts s to an [EntityType], returning an error for
// unknown names.
func ParseEntityType(s string) (EntityType, error) {
	e := EntityType(s)
	if !e.Valid() {
		return "", fmt.Errorf("unknown entity type %q", s)
	}
	return e, nil
}

// EntityType returns the entity type stored in c. Settings has no entity
// type and yields false.
func (c Collection) EntityType() (EntityType, bool) {
	for e, col := range entityCollections {
		if col == c {
			return e, true
		}
	}
	return "", false
}

// Valid reports whether c is one of the known collections.
func (c Collection) Valid() bool {
	for _, known := range Collections {
		if known == c {
			return true
		}
	}
	return false
}

// IsList reports whether the collection is serialized as a JSON array of
// records. Only [Settings] is an object.
func (c Collection) IsList() bool {
	return c != Settings
}
