package entity

import "github.com/shopspring/decimal"

// Anclas de vida útil: desde cuándo corre el vencimiento del lote producido.
const (
	ShelfLifeAnchorProduction = "PRODUCTION"  // desde el registro de producción
	ShelfLifeAnchorStageEntry = "STAGE_ENTRY" // desde la entrada a la etapa
)

// Material materia prima (harina, levadura, bolsas de empaque...).
type Material struct {
	ID   string
	Name string
	Unit string // kg, g, l, unidad...
}

// Product producto terminado.
type Product struct {
	ID                  string
	Name                string
	DefaultStage        string          // etapa destino cuando no requiere congelado previo
	UnitsPerPackage     int64           // unidades por paquete para conversión unidad⇄paquete
	PackagingMaterialID string          // materia prima de empaque; vacío si no consume
	BagsPerUnit         decimal.Decimal // bolsas consumidas por unidad empacada
	ShelfLifeDays       int             // política de vida útil usada al cambiar de etapa
	ShelfLifeAnchor     string
}

// ConsumesPackaging indica si el producto descuenta material de empaque al
// entrar a etapa no congelada.
func (p *Product) ConsumesPackaging() bool {
	return p.PackagingMaterialID != "" && p.BagsPerUnit.GreaterThan(decimal.Zero)
}

// Recipe receta de producción.
type Recipe struct {
	ID   string
	Name string
}

// RecipeIngredient materia prima requerida por una tanda de la receta.
type RecipeIngredient struct {
	RecipeID     string
	MaterialID   string
	MaterialName string
	PerBatch     decimal.Decimal // cantidad por tanda
	Unit         string
}

// RecipeProduct producto terminado que rinde la receta, con su política de
// vida útil.
type RecipeProduct struct {
	RecipeID         string
	ProductID        string
	ProductName      string
	UnitsPerBatch    int64
	ShelfLifeDays    int
	ShelfLifeAnchor  string // PRODUCTION o STAGE_ENTRY
	RequiresFreezing bool   // true: el lote producido entra en FROZEN
}
