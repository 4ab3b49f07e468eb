package data

import (
	_ "embed"
)

//go:embed seed/catalog.json
var SeedCatalog []byte
