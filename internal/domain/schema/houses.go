package schema

// DefaultString is the placeholder value string columns take when a record
// omits them. It matches the sample frame the schema was declared from.
const DefaultString = "example_value"

// houseColumns is the fixed contract of the house-price model: Id followed by
// the 79 feature columns, in training order.
var houseColumns = []Column{
	{Name: "Id", Kind: KindInt16},
	{Name: "MSSubClass", Kind: KindInt16},
	{Name: "MSZoning", Kind: KindString},
	{Name: "LotFrontage", Kind: KindFloat32},
	{Name: "LotArea", Kind: KindInt32},
	{Name: "Street", Kind: KindString},
	{Name: "Alley", Kind: KindString},
	{Name: "LotShape", Kind: KindString},
	{Name: "LandContour", Kind: KindString},
	{Name: "Utilities", Kind: KindString},
	{Name: "LotConfig", Kind: KindString},
	{Name: "LandSlope", Kind: KindString},
	{Name: "Neighborhood", Kind: KindString},
	{Name: "Condition1", Kind: KindString},
	{Name: "Condition2", Kind: KindString},
	{Name: "BldgType", Kind: KindString},
	{Name: "HouseStyle", Kind: KindString},
	{Name: "OverallQual", Kind: KindInt8},
	{Name: "OverallCond", Kind: KindInt8},
	{Name: "YearBuilt", Kind: KindInt16},
	{Name: "YearRemodAdd", Kind: KindInt16},
	{Name: "RoofStyle", Kind: KindString},
	{Name: "RoofMatl", Kind: KindString},
	{Name: "Exterior1st", Kind: KindString},
	{Name: "Exterior2nd", Kind: KindString},
	{Name: "MasVnrType", Kind: KindString},
	{Name: "MasVnrArea", Kind: KindFloat32},
	{Name: "ExterQual", Kind: KindString},
	{Name: "ExterCond", Kind: KindString},
	{Name: "Foundation", Kind: KindString},
	{Name: "BsmtQual", Kind: KindString},
	{Name: "BsmtCond", Kind: KindString},
	{Name: "BsmtExposure", Kind: KindString},
	{Name: "BsmtFinType1", Kind: KindString},
	{Name: "BsmtFinSF1", Kind: KindFloat32},
	{Name: "BsmtFinType2", Kind: KindString},
	{Name: "BsmtFinSF2", Kind: KindFloat32},
	{Name: "BsmtUnfSF", Kind: KindFloat32},
	{Name: "TotalBsmtSF", Kind: KindFloat32},
	{Name: "Heating", Kind: KindString},
	{Name: "HeatingQC", Kind: KindString},
	{Name: "CentralAir", Kind: KindBool},
	{Name: "Electrical", Kind: KindString},
	{Name: "1stFlrSF", Kind: KindInt16},
	{Name: "2ndFlrSF", Kind: KindInt16},
	{Name: "LowQualFinSF", Kind: KindInt16},
	{Name: "GrLivArea", Kind: KindInt16},
	{Name: "BsmtFullBath", Kind: KindFloat32},
	{Name: "BsmtHalfBath", Kind: KindFloat32},
	{Name: "FullBath", Kind: KindInt8},
	{Name: "HalfBath", Kind: KindInt8},
	{Name: "BedroomAbvGr", Kind: KindInt8},
	{Name: "KitchenAbvGr", Kind: KindInt8},
	{Name: "KitchenQual", Kind: KindString},
	{Name: "TotRmsAbvGrd", Kind: KindInt8},
	{Name: "Functional", Kind: KindString},
	{Name: "Fireplaces", Kind: KindInt8},
	{Name: "FireplaceQu", Kind: KindString},
	{Name: "GarageType", Kind: KindString},
	{Name: "GarageYrBlt", Kind: KindFloat32},
	{Name: "GarageFinish", Kind: KindString},
	{Name: "GarageCars", Kind: KindFloat32},
	{Name: "GarageArea", Kind: KindFloat32},
	{Name: "GarageQual", Kind: KindString},
	{Name: "GarageCond", Kind: KindString},
	{Name: "PavedDrive", Kind: KindString},
	{Name: "WoodDeckSF", Kind: KindInt16},
	{Name: "OpenPorchSF", Kind: KindInt16},
	{Name: "EnclosedPorch", Kind: KindInt16},
	{Name: "3SsnPorch", Kind: KindInt16},
	{Name: "ScreenPorch", Kind: KindInt16},
	{Name: "PoolArea", Kind: KindInt16},
	{Name: "PoolQC", Kind: KindString},
	{Name: "Fence", Kind: KindString},
	{Name: "MiscFeature", Kind: KindString},
	{Name: "MiscVal", Kind: KindInt16},
	{Name: "MoSold", Kind: KindInt8},
	{Name: "YrSold", Kind: KindInt16},
	{Name: "SaleType", Kind: KindString},
	{Name: "SaleCondition", Kind: KindString},
}

// HousePrices returns the schema scored by the house-price model.
func HousePrices() *Schema {
	s, err := New(houseColumns)
	if err != nil {
		panic("house schema: " + err.Error())
	}
	return s
}
