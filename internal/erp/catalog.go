package erp

import (
	"context"
	"fmt"

	"github.com/sitesupply/procurement-api/internal/domain"
)

// materialQuery reads the material master. The view is maintained on the
// ERP side; only active materials are exposed.
const materialQuery = `
	SELECT MaterialCode, MaterialName, BaseUnit, CategoryName
	FROM dbo.vw_material_master
	WHERE IsActive = 1 AND (MaterialName LIKE @p1 OR MaterialCode LIKE @p1)
	ORDER BY MaterialName`

// SearchMaterials returns catalog entries whose name or code matches the
// search term. An empty term lists the catalog up to limit.
func (c *Client) SearchMaterials(ctx context.Context, term string, limit int) ([]domain.ErpMaterialDTO, error) {
	if !c.IsEnabled() {
		return nil, fmt.Errorf("erp catalog not available")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	pattern := "%" + term + "%"
	rows, err := c.Query(ctx, materialQuery, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	materials := make([]domain.ErpMaterialDTO, 0, limit)
	for rows.Next() {
		var m domain.ErpMaterialDTO
		if err := rows.Scan(&m.Code, &m.Name, &m.Unit, &m.Category); err != nil {
			return nil, fmt.Errorf("failed to scan material row: %w", err)
		}
		materials = append(materials, m)
		if len(materials) >= limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating material rows: %w", err)
	}
	return materials, nil
}
