package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/srininfo19-png/Salesdashboard-GRT/internal/model"
)

func decodeSales(data []byte) ([]model.RawSalesRecord, error) {
	records := []model.RawSalesRecord{}
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode sales document: %w", err)
	}
	if records == nil {
		records = []model.RawSalesRecord{}
	}
	return records, nil
}

func encodeSales(records []model.RawSalesRecord) ([]byte, error) {
	if records == nil {
		records = []model.RawSalesRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sales document: %w", err)
	}
	return data, nil
}

func decodeOverrides(data []byte) (map[string]string, error) {
	out := map[string]string{}
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode status overrides: %w", err)
	}
	if out == nil {
		out = map[string]string{}
	}
	return out, nil
}

// LoadSales reads the 'latest' dataset; empty on first run
func (s *Store) LoadSales(ctx context.Context) ([]model.RawSalesRecord, error) {
	data, err := s.getDocument(ctx, SalesDocumentID)
	if errors.Is(err, ErrNotFound) {
		return []model.RawSalesRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSales(data)
}

// SaveSales replaces the dataset
func (s *Store) SaveSales(ctx context.Context, records []model.RawSalesRecord) error {
	data, err := encodeSales(records)
	if err != nil {
		return err
	}
	return s.putDocument(ctx, SalesDocumentID, data)
}

// LoadStatusOverrides reads saved training statuses
func (s *Store) LoadStatusOverrides(ctx context.Context) (map[string]string, error) {
	data, err := s.getDocument(ctx, StatusDocumentID)
	if errors.Is(err, ErrNotFound) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeOverrides(data)
}

// SaveStatusOverrides replaces saved training statuses
func (s *Store) SaveStatusOverrides(ctx context.Context, overrides map[string]string) error {
	if overrides == nil {
		overrides = map[string]string{}
	}
	data, err := json.Marshal(overrides)
	if err != nil {
		return fmt.Errorf("failed to encode status overrides: %w", err)
	}
	return s.putDocument(ctx, StatusDocumentID, data)
}
