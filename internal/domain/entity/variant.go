package entity

import "time"

// Variant es la vista mínima de una variante de producto que necesita el
// libro de stock: el catálogo es dueño de la entidad completa; aquí solo se
// lee y se actualiza condicionalmente el campo Stock.
type Variant struct {
	ID        string
	Stock     int
	UpdatedAt time.Time
}
