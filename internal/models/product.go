// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures exchanged with the remote
// catalog service and persisted by the credential store.
package models

// Rating holds the aggregate review score for a product.
type Rating struct {
	Rate  float64 `json:"rate" validate:"gte=0,lte=5"`
	Count int     `json:"count" validate:"gte=0"`
}

// Product is a catalog record as returned by the remote service.
// The ID is opaque and server-assigned; clients never invent one.
type Product struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      Rating  `json:"rating"`
}

// Draft is a product payload without a server-assigned ID, used for
// create and replace requests. Validation tags match what the management
// UI enforces before a command is dispatched.
type Draft struct {
	Title       string  `json:"title" validate:"required"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Description string  `json:"description" validate:"required"`
	Category    string  `json:"category" validate:"required"`
	Image       string  `json:"image" validate:"required,url"`
	Rating      Rating  `json:"rating"`
}
