package models_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse/internal/db/dbtest"
	"warehouse/models"
)

func TestCreateProductDerivesEntryUnits(t *testing.T) {
	database := dbtest.New(t)
	repo := models.NewProductsRepository(database)
	fabric := createMaterial(t, database, "Fabric", models.UnitSquareMeter)
	screws := createMaterial(t, database, "Screws", models.UnitPiece)

	product := models.Product{Name: "Chair", Code: "CH-9"}
	err := repo.Create(&product, []models.BOMLineInput{
		{RawMaterialID: fabric.ID, Quantity: decimal.RequireFromString("2.5")},
		{RawMaterialID: screws.ID, Quantity: decimal.NewFromInt(12)},
	})
	require.NoError(t, err)

	stored, err := repo.GetByID(product.ID)
	require.NoError(t, err)
	require.Len(t, stored.Materials, 2)
	assert.Equal(t, models.UnitSquareMeter, stored.Materials[0].Unit)
	assert.True(t, stored.Materials[0].Quantity.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, models.UnitPiece, stored.Materials[1].Unit)
}

func TestCreateProductRollsBackOnUnknownMaterial(t *testing.T) {
	database := dbtest.New(t)
	repo := models.NewProductsRepository(database)
	fabric := createMaterial(t, database, "Fabric", models.UnitSquareMeter)

	product := models.Product{Name: "Swing", Code: "SW-9"}
	err := repo.Create(&product, []models.BOMLineInput{
		{RawMaterialID: fabric.ID, Quantity: decimal.NewFromInt(1)},
		{RawMaterialID: 999, Quantity: decimal.NewFromInt(1)},
	})
	require.ErrorIs(t, err, models.ErrRawMaterialNotFound)

	var productCount, entryCount int64
	require.NoError(t, database.Model(&models.Product{}).Where("code = ?", "SW-9").Count(&productCount).Error)
	require.NoError(t, database.Model(&models.BOMEntry{}).Count(&entryCount).Error)
	assert.Zero(t, productCount, "product row must not survive a failed composition")
	assert.Zero(t, entryCount, "no partial composition may persist")
}

func TestGetByCode(t *testing.T) {
	database := dbtest.New(t)
	repo := models.NewProductsRepository(database)

	product := models.Product{Name: "Table", Code: "TB-7"}
	require.NoError(t, repo.Create(&product, nil))

	found, err := repo.GetByCode("TB-7")
	require.NoError(t, err)
	assert.Equal(t, product.ID, found.ID)

	_, err = repo.GetByCode("missing")
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}
