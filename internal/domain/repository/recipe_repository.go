package repository

import "github.com/jhoicas/panaderia-api/internal/domain/entity"

// RecipeRepository lectura de recetas y su expansión (ingredientes y rendimientos).
type RecipeRepository interface {
	GetByID(id string) (*entity.Recipe, error)
	ListIngredients(recipeID string) ([]*entity.RecipeIngredient, error)
	ListProducts(recipeID string) ([]*entity.RecipeProduct, error)
}

// ProductRepository lectura de productos terminados (empaque, conversión).
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
}

// MaterialRepository lectura de materias primas.
type MaterialRepository interface {
	GetByID(id string) (*entity.Material, error)
}
