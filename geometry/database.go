package geometry

import (
	"context"
	"fmt"
	"sort"

	"github.com/decibelcooper/hgcalhistory"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// LayerRow is one row of the conditions table:
//
//	CREATE TABLE LayerPositions (Tag TEXT, Endcap TEXT, Layer INT, Z DOUBLE)
//
// Endcap is "+" or "-".
type LayerRow struct {
	Endcap string  `db:"Endcap"`
	Layer  int     `db:"Layer"`
	Z      float64 `db:"Z"`
}

// Connect opens the conditions database. driver is "mysql" or "sqlite".
func Connect(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to %s geometry database: %w", driver, err)
	}
	return db, nil
}

// LoadFromDB builds the detector stored under tag. Both endcaps must register
// the same set of layers.
func LoadFromDB(ctx context.Context, db *sqlx.DB, tag string) (*Detector, error) {
	var rows []LayerRow
	query := "SELECT Endcap, Layer, Z FROM LayerPositions WHERE Tag = ? ORDER BY Layer"
	if err := db.SelectContext(ctx, &rows, query, tag); err != nil {
		return nil, fmt.Errorf("error getting layer positions for tag %q: %w", tag, err)
	}
	return FromRows(rows)
}

// FromRows assembles a detector from conditions rows in any order.
func FromRows(rows []LayerRow) (*Detector, error) {
	pos := make(map[int]float64)
	neg := make(map[int]float64)
	for _, r := range rows {
		switch r.Endcap {
		case "+":
			pos[r.Layer] = r.Z
		case "-":
			neg[r.Layer] = r.Z
		default:
			return nil, hgcalhistory.Constructionf("detector", "layer %d: unknown endcap %q", r.Layer, r.Endcap)
		}
	}

	layers := make([]int, 0, len(pos))
	for layer := range pos {
		layers = append(layers, layer)
	}
	sort.Ints(layers)

	if len(neg) != len(pos) {
		return nil, hgcalhistory.Constructionf("detector", "%d positive but %d negative layers", len(pos), len(neg))
	}
	zPos := make([]float64, 0, len(layers))
	zNeg := make([]float64, 0, len(layers))
	for _, layer := range layers {
		z, ok := neg[layer]
		if !ok {
			return nil, hgcalhistory.Constructionf("detector", "layer %d has no negative endcap position", layer)
		}
		zPos = append(zPos, pos[layer])
		zNeg = append(zNeg, z)
	}
	return New(layers, zPos, zNeg)
}
