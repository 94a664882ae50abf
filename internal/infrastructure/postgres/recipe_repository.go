package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/panaderia-api/internal/domain/entity"
	"github.com/jhoicas/panaderia-api/internal/domain/repository"
)

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// RecipeRepo lectura de recetas, ingredientes y rendimientos.
type RecipeRepo struct {
	q Querier
}

// NewRecipeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRecipeRepository(q Querier) *RecipeRepo {
	return &RecipeRepo{q: q}
}

// GetByID obtiene una receta; nil si no existe.
func (r *RecipeRepo) GetByID(id string) (*entity.Recipe, error) {
	query := `SELECT id, name FROM recipes WHERE id = $1`
	var rec entity.Recipe
	err := r.q.QueryRow(context.Background(), query, id).Scan(&rec.ID, &rec.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return &rec, nil
}

// ListIngredients ingredientes de la receta con el nombre del material
// (para reportes de faltantes legibles).
func (r *RecipeRepo) ListIngredients(recipeID string) ([]*entity.RecipeIngredient, error) {
	query := `
		SELECT ri.recipe_id, ri.material_id, m.name, ri.per_batch, ri.unit
		FROM recipe_ingredients ri
		JOIN materials m ON m.id = ri.material_id
		WHERE ri.recipe_id = $1
		ORDER BY m.name ASC`
	rows, err := r.q.Query(context.Background(), query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()
	var list []*entity.RecipeIngredient
	for rows.Next() {
		var ing entity.RecipeIngredient
		if err := rows.Scan(&ing.RecipeID, &ing.MaterialID, &ing.MaterialName, &ing.PerBatch, &ing.Unit); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		list = append(list, &ing)
	}
	return list, rows.Err()
}

// ListProducts rendimientos de la receta con su política de vida útil.
func (r *RecipeRepo) ListProducts(recipeID string) ([]*entity.RecipeProduct, error) {
	query := `
		SELECT rp.recipe_id, rp.product_id, p.name, rp.units_per_batch,
		       rp.shelf_life_days, rp.shelf_life_anchor, rp.requires_freezing
		FROM recipe_products rp
		JOIN products p ON p.id = rp.product_id
		WHERE rp.recipe_id = $1
		ORDER BY p.name ASC`
	rows, err := r.q.Query(context.Background(), query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("list recipe products: %w", err)
	}
	defer rows.Close()
	var list []*entity.RecipeProduct
	for rows.Next() {
		var rp entity.RecipeProduct
		if err := rows.Scan(&rp.RecipeID, &rp.ProductID, &rp.ProductName, &rp.UnitsPerBatch,
			&rp.ShelfLifeDays, &rp.ShelfLifeAnchor, &rp.RequiresFreezing); err != nil {
			return nil, fmt.Errorf("scan recipe product: %w", err)
		}
		list = append(list, &rp)
	}
	return list, rows.Err()
}

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo lectura de productos terminados.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetByID obtiene un producto; nil si no existe.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	query := `
		SELECT id, name, default_stage, units_per_package, packaging_material_id,
		       bags_per_unit, shelf_life_days, shelf_life_anchor
		FROM products WHERE id = $1`
	var p entity.Product
	var packagingID *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.Name, &p.DefaultStage, &p.UnitsPerPackage, &packagingID,
		&p.BagsPerUnit, &p.ShelfLifeDays, &p.ShelfLifeAnchor,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	if packagingID != nil {
		p.PackagingMaterialID = *packagingID
	}
	return &p, nil
}

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

// MaterialRepo lectura de materias primas.
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

// GetByID obtiene una materia prima; nil si no existe.
func (r *MaterialRepo) GetByID(id string) (*entity.Material, error) {
	query := `SELECT id, name, unit FROM materials WHERE id = $1`
	var m entity.Material
	err := r.q.QueryRow(context.Background(), query, id).Scan(&m.ID, &m.Name, &m.Unit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material: %w", err)
	}
	return &m, nil
}
