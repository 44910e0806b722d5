package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nerrad567/warehouse-core/internal/warehouse"
)

// inventorySheet is the worksheet name of the inventory export.
const inventorySheet = "Inventory"

var inventoryHeaders = []any{"ID", "SKU", "Name", "Quantity", "Threshold", "Location", "Status", "Last Updated"}

// InventoryWorkbook builds a spreadsheet with a header row and one row per item.
// The caller closes the returned file.
func InventoryWorkbook(items []warehouse.InventoryItem) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", inventorySheet); err != nil {
		f.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	header := inventoryHeaders
	if err := f.SetSheetRow(inventorySheet, "A1", &header); err != nil {
		f.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("writing header: %w", err)
	}
	if bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		//nolint:errcheck // Cosmetic
		f.SetRowStyle(inventorySheet, 1, 1, bold)
	}

	for i, item := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close() //nolint:errcheck // already failing
			return nil, err
		}
		row := []any{
			item.ID,
			item.SKU,
			item.Name,
			item.Quantity,
			item.Threshold,
			item.Location,
			string(item.Status),
			lastUpdated(item.LastUpdated),
		}
		if err := f.SetSheetRow(inventorySheet, cell, &row); err != nil {
			f.Close() //nolint:errcheck // already failing
			return nil, fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return f, nil
}

func lastUpdated(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// handleInventoryExport streams the inventory as an .xlsx download. The
// feed snapshot is used when available; otherwise the store is read.
func (s *Server) handleInventoryExport(w http.ResponseWriter, r *http.Request) {
	items, ok := Records[warehouse.InventoryItem](s.board, warehouse.TypeInventoryItem)
	if !ok {
		var err error
		items, err = s.repo.Inventory(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
	}

	f, err := InventoryWorkbook(items)
	if err != nil {
		s.logger.Error("building inventory export failed", "error", err)
		writeInternalError(w, "failed to build export")
		return
	}
	defer f.Close()

	name := fmt.Sprintf("inventory-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := f.Write(w); err != nil {
		s.logger.Warn("writing inventory export failed", "error", err)
	}
}
