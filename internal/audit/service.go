// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package audit

import (
	"context"
	"log/slog"
)

// # Service Layer

// Service exposes the read-only audit viewer operations.
//
// Writes never pass through here; they happen via [InsertTx] inside the
// transactions of the privileged actions themselves.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new audit [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

/*
ListEntries retrieves a filtered, paginated page of the audit log.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit, offset: int

Returns:
  - []*Entry: Newest-first entries
  - int: Total matching count
  - error: Retrieval errors
*/
func (service *Service) ListEntries(context context.Context, filter Filter, limit, offset int) ([]*Entry, int, error) {
	return service.repo.List(context, filter, limit, offset)
}

/*
GetEntry retrieves a single audit entry by id.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Entry: Hydrated entry
  - error: ErrNotFound if missing
*/
func (service *Service) GetEntry(context context.Context, id string) (*Entry, error) {
	return service.repo.FindByID(context, id)
}
