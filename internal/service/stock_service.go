package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sitesupply/procurement-api/internal/domain"
	"github.com/sitesupply/procurement-api/internal/mapper"
	"github.com/sitesupply/procurement-api/internal/repository"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StockService manages the append-only stock ledger. Receipts append
// positive rows, issues append negative rows; balances are always derived
// by replaying the ledger.
type StockService struct {
	stockRepo *repository.StockRepository
	logger    *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(stockRepo *repository.StockRepository, logger *zap.Logger) *StockService {
	return &StockService{
		stockRepo: stockRepo,
		logger:    logger,
	}
}

// Receive appends one positive ledger row per input item. Quantities
// arrive already coerced (unparseable input decoded as 0); the sign is
// forced positive here.
func (s *StockService) Receive(ctx context.Context, userID uuid.UUID, req *domain.StockBatchRequest) ([]domain.StockTransactionDTO, error) {
	rows, err := s.buildRows(userID, req.Items, false)
	if err != nil {
		return nil, err
	}
	return s.appendRows(ctx, rows, "receive")
}

// Deduct appends one negative ledger row per input item. The sign is
// forced negative regardless of the input sign; an optional request link
// ties the issue to the consuming request.
func (s *StockService) Deduct(ctx context.Context, userID uuid.UUID, req *domain.StockBatchRequest) ([]domain.StockTransactionDTO, error) {
	rows, err := s.buildRows(userID, req.Items, true)
	if err != nil {
		return nil, err
	}
	return s.appendRows(ctx, rows, "deduct")
}

func (s *StockService) buildRows(userID uuid.UUID, inputs []domain.StockRowInput, deduct bool) ([]*domain.StockTransaction, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrInvalidInput)
	}

	rows := make([]*domain.StockTransaction, 0, len(inputs))
	for _, input := range inputs {
		if strings.TrimSpace(input.Item) == "" && strings.TrimSpace(input.Description) == "" {
			return nil, fmt.Errorf("%w: each row needs an item name or description", ErrInvalidInput)
		}
		if !input.Unit.IsValid() {
			return nil, fmt.Errorf("%w: unit %q", ErrInvalidInput, input.Unit)
		}

		date := time.Now().UTC().Truncate(24 * time.Hour)
		if input.Date != "" {
			parsed, err := mapper.ParseDate(input.Date)
			if err != nil {
				return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
			}
			date = *parsed
		}

		quantity := math.Abs(float64(input.Quantity))
		if deduct {
			quantity = -quantity
		}

		rows = append(rows, &domain.StockTransaction{
			Date:        date,
			Item:        input.Item,
			Description: input.Description,
			Quantity:    quantity,
			Unit:        input.Unit,
			Category:    input.Category,
			CreatedByID: userID,
			RequestID:   input.RequestID,
		})
	}
	return rows, nil
}

func (s *StockService) appendRows(ctx context.Context, rows []*domain.StockTransaction, op string) ([]domain.StockTransactionDTO, error) {
	if err := s.stockRepo.CreateBatch(ctx, rows); err != nil {
		return nil, fmt.Errorf("failed to append ledger rows: %w", err)
	}

	s.logger.Info("stock ledger appended",
		zap.String("operation", op),
		zap.Int("rows", len(rows)),
	)

	dtos := make([]domain.StockTransactionDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, mapper.ToStockTransactionDTO(row))
	}
	return dtos, nil
}

// List returns paginated ledger rows, newest first.
func (s *StockService) List(ctx context.Context, filter *repository.StockFilter, page, pageSize int) ([]domain.StockTransactionDTO, int64, error) {
	rows, total, err := s.stockRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list stock transactions: %w", err)
	}

	dtos := make([]domain.StockTransactionDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, mapper.ToStockTransactionDTO(&rows[i]))
	}
	return dtos, total, nil
}

// UpdateRow edits descriptive fields of one ledger row. The signed
// quantity is never touched.
func (s *StockService) UpdateRow(ctx context.Context, id uuid.UUID, req *domain.UpdateStockRowRequest) (*domain.StockTransactionDTO, error) {
	updates := map[string]interface{}{}
	if req.Item != nil {
		updates["item"] = *req.Item
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: no editable fields provided", ErrInvalidInput)
	}

	if err := s.stockRepo.UpdateDescriptive(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update ledger row: %w", err)
	}

	row, err := s.stockRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload ledger row: %w", err)
	}
	dto := mapper.ToStockTransactionDTO(row)
	return &dto, nil
}

// Balances replays the full ledger and returns current on-hand balances.
func (s *StockService) Balances(ctx context.Context) ([]domain.StockBalance, error) {
	rows, err := s.stockRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	return ComputeBalances(rows), nil
}

// CachedBalances serves balances from the snapshot table instead of
// replaying the ledger. The cache lags the ledger by up to one refresh
// interval; callers that need exact figures use Balances.
func (s *StockService) CachedBalances(ctx context.Context) ([]domain.StockBalance, error) {
	snapshots, err := s.stockRepo.ListSnapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load balance snapshots: %w", err)
	}

	balances := make([]domain.StockBalance, 0, len(snapshots))
	for _, snap := range snapshots {
		balances = append(balances, domain.StockBalance{
			Item:     snap.Item,
			Unit:     snap.Unit,
			Category: snap.Category,
			TotalQty: snap.TotalQty,
		})
	}
	return balances, nil
}

// ComputeBalances aggregates ledger rows into on-hand balances. Rows are
// grouped case-insensitively by (display name, unit), signed quantities
// are summed per group, groups with total <= 0 are dropped, and the result
// is sorted by display name. Summation makes the result independent of
// row order.
func ComputeBalances(rows []domain.StockTransaction) []domain.StockBalance {
	type group struct {
		balance domain.StockBalance
	}
	groups := make(map[string]*group)

	for i := range rows {
		row := &rows[i]
		name := row.DisplayName()
		key := strings.ToLower(name) + "\x00" + strings.ToLower(string(row.Unit))

		g, ok := groups[key]
		if !ok {
			g = &group{balance: domain.StockBalance{
				Item:     name,
				Unit:     row.Unit,
				Category: row.Category,
			}}
			groups[key] = g
		}
		g.balance.TotalQty += row.Quantity
		if g.balance.Category == "" {
			g.balance.Category = row.Category
		}
	}

	balances := make([]domain.StockBalance, 0, len(groups))
	for _, g := range groups {
		if g.balance.TotalQty <= 0 {
			continue
		}
		balances = append(balances, g.balance)
	}

	sort.Slice(balances, func(i, j int) bool {
		return balances[i].Item < balances[j].Item
	})
	return balances
}

// RebuildSnapshots recomputes balances from the ledger and rewrites the
// snapshot cache. Called by the cron job; the ledger stays the source of
// truth.
func (s *StockService) RebuildSnapshots(ctx context.Context) (int, error) {
	balances, err := s.Balances(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	snapshots := make([]domain.StockBalanceSnapshot, 0, len(balances))
	for _, b := range balances {
		snapshots = append(snapshots, domain.StockBalanceSnapshot{
			Item:        b.Item,
			Unit:        b.Unit,
			Category:    b.Category,
			TotalQty:    b.TotalQty,
			RefreshedAt: now,
		})
	}

	if err := s.stockRepo.ReplaceSnapshots(ctx, snapshots); err != nil {
		return 0, fmt.Errorf("failed to replace snapshots: %w", err)
	}
	return len(snapshots), nil
}

// ImportReceipts parses an xlsx sheet into a Receive batch. Expected
// columns: date, item, description, quantity, unit, category; the first
// row is a header. The whole file is validated before anything is
// appended, so a bad row fails the import without partial writes.
func (s *StockService) ImportReceipts(ctx context.Context, userID uuid.UUID, r io.Reader) ([]domain.StockTransactionDTO, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: not a valid xlsx file", ErrInvalidInput)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: sheet has no data rows", ErrInvalidInput)
	}

	inputs := make([]domain.StockRowInput, 0, len(rows)-1)
	for i, row := range rows[1:] {
		input, err := parseImportRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrInvalidInput, i+2, err)
		}
		if input == nil {
			continue
		}
		inputs = append(inputs, *input)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: sheet has no usable rows", ErrInvalidInput)
	}

	return s.Receive(ctx, userID, &domain.StockBatchRequest{Items: inputs})
}

func parseImportRow(row []string) (*domain.StockRowInput, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	item := cell(1)
	description := cell(2)
	if item == "" && description == "" {
		// Blank line, skip.
		return nil, nil
	}

	unit := domain.ItemUnit(strings.ToLower(cell(4)))
	if !unit.IsValid() {
		return nil, fmt.Errorf("unknown unit %q", cell(4))
	}

	// Unparseable quantities become 0 to match the API behavior.
	quantity, err := strconv.ParseFloat(cell(3), 64)
	if err != nil {
		quantity = 0
	}

	return &domain.StockRowInput{
		Date:        cell(0),
		Item:        item,
		Description: description,
		Quantity:    domain.Quantity(quantity),
		Unit:        unit,
		Category:    cell(5),
	}, nil
}
